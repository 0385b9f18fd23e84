package httpapi

import (
	"errors"
	"net/http"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	uc                domain.PaymentUsecase
	defaultTTLMinutes int
}

func NewPaymentHandler(uc domain.PaymentUsecase, defaultTTLMinutes int) *PaymentHandler {
	return &PaymentHandler{uc: uc, defaultTTLMinutes: defaultTTLMinutes}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "amount must be a decimal string"})
		return
	}

	ttl := h.defaultTTLMinutes
	if req.TTLMinutes != nil {
		ttl = *req.TTLMinutes
	}

	payment, err := h.uc.CreatePayment(c.Request.Context(), req.ServiceName, req.Description, amount, req.WebhookURL, ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toPaymentResponse(payment))
}

func (h *PaymentHandler) SettlePayment(c *gin.Context) {
	var req SettlePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	payment, err := h.uc.BeginSettlement(c.Request.Context(), c.Param("id"), domain.Chain(req.Chain), req.WalletAddress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.uc.GetPaymentByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(payment))
}

func (h *PaymentHandler) GetPaymentEvents(c *gin.Context) {
	events, err := h.uc.GetPaymentEvents(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": toPaymentEventResponses(events)})
}

// respondError maps domain sentinels to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrPaymentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnsupportedChain):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrPaymentExpired):
		status = http.StatusGone
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrSweepDisabled):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientAllowance), errors.Is(err, domain.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	default:
		status = http.StatusInternalServerError
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
