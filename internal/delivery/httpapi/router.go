package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the handlers and middleware the router wires up.
type RouterConfig struct {
	Payments  *PaymentHandler
	Admin     *AdminHandler
	AdminAuth CredentialChecker
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/payments", cfg.Payments.CreatePayment)
		v1.GET("/payments/:id", cfg.Payments.GetPayment)
		v1.GET("/payments/:id/events", cfg.Payments.GetPaymentEvents)
		v1.POST("/payments/:id/settle", cfg.Payments.SettlePayment)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(AdminAuthMiddleware(cfg.AdminAuth))
	{
		admin.GET("/payments", cfg.Admin.ListPayments)

		admin.GET("/sweep/config", cfg.Admin.GetSweepConfig)
		admin.PUT("/sweep/config", cfg.Admin.UpdateSweepConfig)
		admin.POST("/sweep/start", cfg.Admin.StartSweep)
		admin.POST("/sweep/stop", cfg.Admin.StopSweep)
		admin.POST("/sweep/force", cfg.Admin.ForceSweep)

		admin.GET("/migrations", cfg.Admin.MigrationStatus)
		admin.POST("/migrations/run", cfg.Admin.RunMigrations)
		admin.POST("/migrations/rollback", cfg.Admin.RollbackMigrations)
	}

	return router
}

func queryInt64(c *gin.Context, name string, fallback int64) int64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
