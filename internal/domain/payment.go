package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusExpired    PaymentStatus = "expired"
)

// IsTerminal reports whether no further transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusExpired
}

// CanTransitionTo checks an edge of the payment state machine.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusExpired
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

type Payment struct {
	ID            string
	ServiceName   string
	Description   string
	Amount        decimal.Decimal
	Chain         Chain // empty until a wallet commits to a network
	Status        PaymentStatus
	WalletAddress string
	TxHash        string
	WebhookURL    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the payment TTL has passed. Status is not
// consulted: terminal payments are unaffected by expiry.
func (p *Payment) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}

type PaymentEventType string

const (
	EventCreated           PaymentEventType = "created"
	EventProcessingStarted PaymentEventType = "processing_started"
	EventStatusUpdated     PaymentEventType = "status_updated"
	EventSettlementFailed  PaymentEventType = "settlement_failed"
	EventSettlementAttempt PaymentEventType = "settlement_attempt_failed"
	EventCompleted         PaymentEventType = "completed"
	EventExpired           PaymentEventType = "expired"
	EventWebhookDispatched PaymentEventType = "webhook_dispatched"
)

// PaymentEvent is an append-only fact about a payment. Written once,
// never mutated; forms the audit trail used for reconciliation.
type PaymentEvent struct {
	ID        string
	PaymentID string
	Type      PaymentEventType
	Data      string // optional structured payload, JSON
	CreatedAt time.Time
}

// WalletBalanceRecord is the observed view of a payer wallet. Not
// authoritative for on-chain truth: the live balance is always
// re-verified against the chain before any fund-moving action.
type WalletBalanceRecord struct {
	Address      string
	Chain        Chain
	TotalHandled decimal.Decimal
	LastActivity time.Time
}

// SweepAttempt records one treasury-sweep transfer try, successful or not.
type SweepAttempt struct {
	ID           string
	FromAddress  string
	ToAddress    string
	Amount       decimal.Decimal
	Chain        Chain
	TxHash       string
	Success      bool
	ErrorMessage string
	CreatedAt    time.Time
}

type PaymentFilters struct {
	Statuses []PaymentStatus
	Chain    Chain
	DateFrom time.Time
	DateTo   time.Time
}
