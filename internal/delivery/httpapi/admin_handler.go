package httpapi

import (
	"net/http"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/migrate"
	"github.com/TechSavvyAce/safeping-sub001/internal/usecase/sweep"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentLister is the admin-side read surface over payments.
type PaymentLister interface {
	GetPayments(filters domain.PaymentFilters, page, limit int64) ([]*domain.Payment, int64, error)
}

type AdminHandler struct {
	scheduler *sweep.Scheduler
	runner    *migrate.Runner
	payments  PaymentLister
}

func NewAdminHandler(scheduler *sweep.Scheduler, runner *migrate.Runner, payments PaymentLister) *AdminHandler {
	return &AdminHandler{scheduler: scheduler, runner: runner, payments: payments}
}

type SweepConfigResponse struct {
	Enabled           bool              `json:"enabled"`
	MinBalance        string            `json:"min_balance"`
	MaxTransferAmount string            `json:"max_transfer_amount"`
	IntervalMinutes   int               `json:"interval_minutes"`
	Destinations      map[string]string `json:"destinations"`
}

type UpdateSweepConfigRequest struct {
	Enabled           *bool   `json:"enabled"`
	MinBalance        *string `json:"min_balance"`
	MaxTransferAmount *string `json:"max_transfer_amount"`
	IntervalMinutes   *int    `json:"interval_minutes"`
}

type ForceSweepRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Chain         string `json:"chain" binding:"required"`
	// Amount optionally bounds the sweep; empty means the full live balance.
	Amount string `json:"amount"`
}

type RollbackRequest struct {
	ToVersion *int `json:"to_version" binding:"required"`
}

func (h *AdminHandler) GetSweepConfig(c *gin.Context) {
	c.JSON(http.StatusOK, toSweepConfigResponse(h.scheduler.Settings()))
}

func (h *AdminHandler) UpdateSweepConfig(c *gin.Context) {
	var req UpdateSweepConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	settings := h.scheduler.Settings()
	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.MinBalance != nil {
		v, err := decimal.NewFromString(*req.MinBalance)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "min_balance must be a decimal string"})
			return
		}
		settings.MinBalance = v
	}
	if req.MaxTransferAmount != nil {
		v, err := decimal.NewFromString(*req.MaxTransferAmount)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "max_transfer_amount must be a decimal string"})
			return
		}
		settings.MaxTransferAmount = v
	}
	if req.IntervalMinutes != nil {
		if *req.IntervalMinutes < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "interval_minutes must be at least 1"})
			return
		}
		settings.Interval = time.Duration(*req.IntervalMinutes) * time.Minute
	}

	if err := h.scheduler.Reload(settings); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, toSweepConfigResponse(h.scheduler.Settings()))
}

func (h *AdminHandler) StartSweep(c *gin.Context) {
	if err := h.scheduler.Start(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

func (h *AdminHandler) StopSweep(c *gin.Context) {
	h.scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (h *AdminHandler) ForceSweep(c *gin.Context) {
	var req ForceSweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	chain := domain.Chain(req.Chain)
	if !chain.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unsupported chain: " + req.Chain})
		return
	}

	amount := decimal.Zero
	if req.Amount != "" {
		v, err := decimal.NewFromString(req.Amount)
		if err != nil || !v.IsPositive() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "amount must be a positive decimal string"})
			return
		}
		amount = v
	}

	if err := h.scheduler.ForceSweep(c.Request.Context(), req.WalletAddress, chain, amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "swept"})
}

func (h *AdminHandler) MigrationStatus(c *gin.Context) {
	current, err := h.runner.CurrentVersion(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	history, err := h.runner.History(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"current_version": current,
		"target_version":  h.runner.TargetVersion(),
		"applied":         history,
	})
}

func (h *AdminHandler) RunMigrations(c *gin.Context) {
	if err := h.runner.Migrate(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	current, err := h.runner.CurrentVersion(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_version": current})
}

func (h *AdminHandler) RollbackMigrations(c *gin.Context) {
	var req RollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.runner.Rollback(c.Request.Context(), *req.ToVersion); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	current, err := h.runner.CurrentVersion(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"current_version": current})
}

func (h *AdminHandler) ListPayments(c *gin.Context) {
	var filters domain.PaymentFilters
	if status := c.Query("status"); status != "" {
		filters.Statuses = []domain.PaymentStatus{domain.PaymentStatus(status)}
	}
	if chain := c.Query("chain"); chain != "" {
		filters.Chain = domain.Chain(chain)
	}

	page := queryInt64(c, "page", 1)
	limit := queryInt64(c, "limit", 50)

	payments, total, err := h.payments.GetPayments(filters, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"payments": out, "total": total, "page": page, "limit": limit})
}

func toSweepConfigResponse(s sweep.Settings) SweepConfigResponse {
	destinations := make(map[string]string, len(s.Destinations))
	for chain, addr := range s.Destinations {
		destinations[string(chain)] = addr
	}
	return SweepConfigResponse{
		Enabled:           s.Enabled,
		MinBalance:        s.MinBalance.String(),
		MaxTransferAmount: s.MaxTransferAmount.String(),
		IntervalMinutes:   int(s.Interval / time.Minute),
		Destinations:      destinations,
	}
}
