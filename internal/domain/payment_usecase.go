package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type PaymentUsecase interface {
	CreatePayment(ctx context.Context, serviceName, description string, amount decimal.Decimal, webhookURL string, ttlMinutes int) (*Payment, error)
	BeginSettlement(ctx context.Context, paymentID string, chain Chain, walletAddress string) (*Payment, error)
	CompleteSettlement(ctx context.Context, paymentID, txHash string) error
	FailSettlement(ctx context.Context, paymentID, reason string) error
	SweepExpired(ctx context.Context) error
	GetPaymentByID(paymentID string) (*Payment, error)
	GetPaymentEvents(paymentID string) ([]*PaymentEvent, error)
}
