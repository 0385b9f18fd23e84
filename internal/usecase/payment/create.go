package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/shopspring/decimal"
)

// CreatePayment registers a new payment intent in pending state. No
// chain is committed yet: the payer picks the network later, when the
// wallet connects and settlement begins.
func (uc *DefaultPaymentUsecase) CreatePayment(
	ctx context.Context,
	serviceName, description string,
	amount decimal.Decimal,
	webhookURL string,
	ttlMinutes int,
) (*domain.Payment, error) {
	if strings.TrimSpace(serviceName) == "" {
		return nil, fmt.Errorf("%w: service name is required", domain.ErrValidation)
	}
	if amount.LessThan(uc.Limits.MinAmount) || amount.GreaterThan(uc.Limits.MaxAmount) {
		return nil, fmt.Errorf("%w: amount %s outside allowed range [%s, %s]",
			domain.ErrValidation, amount.String(), uc.Limits.MinAmount.String(), uc.Limits.MaxAmount.String())
	}
	if ttlMinutes < 0 {
		return nil, fmt.Errorf("%w: ttl must not be negative", domain.ErrValidation)
	}
	if uc.Limits.MaxTTLMinutes > 0 && ttlMinutes > uc.Limits.MaxTTLMinutes {
		return nil, fmt.Errorf("%w: ttl %d exceeds maximum %d minutes",
			domain.ErrValidation, ttlMinutes, uc.Limits.MaxTTLMinutes)
	}

	now := uc.now()
	payment := &domain.Payment{
		ID:          uc.newID(),
		ServiceName: serviceName,
		Description: description,
		Amount:      amount,
		Status:      domain.StatusPending,
		WebhookURL:  webhookURL,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(ttlMinutes) * time.Minute),
	}

	if err := uc.PaymentRepo.CreatePayment(payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	uc.recordEvent(payment.ID, domain.EventCreated, map[string]string{
		"service_name": serviceName,
		"amount":       amount.String(),
	})
	uc.publishStatus(payment, "")
	if uc.Metrics != nil {
		uc.Metrics.PaymentsCreatedTotal.WithLabelValues(serviceName).Inc()
	}

	slog.Info("payment created",
		"payment_id", payment.ID,
		"service_name", serviceName,
		"amount", amount.String(),
		"expires_at", payment.ExpiresAt.Format(time.RFC3339))

	return payment, nil
}
