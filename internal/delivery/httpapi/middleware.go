package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CredentialChecker validates an admin api key against the credential
// store.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context, apiKey string) (bool, error)
}

const adminKeyHeader = "X-Admin-Key"

// AdminAuthMiddleware gates the admin group behind an api key header.
func AdminAuthMiddleware(checker CredentialChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(adminKeyHeader)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing admin api key"})
			return
		}

		ok, err := checker.CheckCredentials(c.Request.Context(), apiKey)
		if err != nil {
			slog.Error("admin credential check failed", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "credential store unavailable"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "invalid admin api key"})
			return
		}

		c.Next()
	}
}
