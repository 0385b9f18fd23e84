package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRepository interface {
	CreatePayment(payment *Payment) error
	GetPaymentByID(paymentID string) (*Payment, error)
	// UpdatePaymentStatus performs a conditional transition: the row is
	// updated only when its current status is fromStatus. Returns
	// ErrInvalidState when the precondition no longer holds, so the
	// persisted state stays the arbiter between concurrent callers.
	UpdatePaymentStatus(paymentID string, fromStatus, toStatus PaymentStatus) error
	// MarkProcessing atomically claims a pending payment for settlement,
	// recording the chosen chain and payer wallet.
	MarkProcessing(paymentID string, chain Chain, walletAddress string) error
	SetTxHash(paymentID, txHash string) error
	FindExpiredPayments(now time.Time) ([]*Payment, error)
	GetPayments(filters PaymentFilters, page, limit int64) ([]*Payment, int64, error)
}

type PaymentEventRepository interface {
	AppendEvent(event *PaymentEvent) error
	GetEventsByPaymentID(paymentID string) ([]*PaymentEvent, error)
}

type WalletBalanceRepository interface {
	// RecordActivity upserts the observed view for a wallet, adding the
	// handled amount and bumping the last-activity timestamp.
	RecordActivity(address string, chain Chain, amount decimal.Decimal, at time.Time) error
	ListWallets() ([]*WalletBalanceRecord, error)
}

type SweepAttemptRepository interface {
	RecordAttempt(attempt *SweepAttempt) error
	GetAttemptsByWallet(address string, limit int64) ([]*SweepAttempt, error)
	LastSuccessfulAttempt(address string, chain Chain) (*SweepAttempt, error)
}
