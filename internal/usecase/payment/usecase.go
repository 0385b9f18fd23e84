package usecase

import (
	"fmt"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	publisher "github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/kafka"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/metrics"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/notifier"
	"github.com/jaevor/go-nanoid"
	"github.com/shopspring/decimal"
)

// EventPublisher is the slice of the message broker the settlement
// engine needs.
type EventPublisher interface {
	PublishPayment(event publisher.PaymentEvent) error
}

// CallbackSender delivers merchant webhooks.
type CallbackSender interface {
	SendCallback(callbackURL string, payload notifier.WebhookPayload)
}

// OperatorNotifier posts operational alerts to the on-call channel.
type OperatorNotifier interface {
	Notify(text string)
}

// PaymentLimits bounds what callers may create.
type PaymentLimits struct {
	MinAmount     decimal.Decimal
	MaxAmount     decimal.Decimal
	MaxTTLMinutes int
}

type DefaultPaymentUsecase struct {
	PaymentRepo domain.PaymentRepository
	EventRepo   domain.PaymentEventRepository
	WalletRepo  domain.WalletBalanceRepository
	Chains      domain.ChainRegistry

	// Collection maps each network to the deposit wallet delegated
	// transfers settle into.
	Collection map[domain.Chain]string

	Publisher EventPublisher
	Webhook   CallbackSender
	Operator  OperatorNotifier
	Metrics   *metrics.PaymentMetrics

	Limits PaymentLimits

	newID func() string
	now   func() time.Time
}

func NewDefaultPaymentUsecase(
	paymentRepo domain.PaymentRepository,
	eventRepo domain.PaymentEventRepository,
	walletRepo domain.WalletBalanceRepository,
	chains domain.ChainRegistry,
	collection map[domain.Chain]string,
	pub EventPublisher,
	webhook CallbackSender,
	operator OperatorNotifier,
	m *metrics.PaymentMetrics,
	limits PaymentLimits,
) (*DefaultPaymentUsecase, error) {
	gen, err := nanoid.Standard(21)
	if err != nil {
		return nil, fmt.Errorf("failed to init id generator: %w", err)
	}

	return &DefaultPaymentUsecase{
		PaymentRepo: paymentRepo,
		EventRepo:   eventRepo,
		WalletRepo:  walletRepo,
		Chains:      chains,
		Collection:  collection,
		Publisher:   pub,
		Webhook:     webhook,
		Operator:    operator,
		Metrics:     m,
		Limits:      limits,
		newID:       gen,
		now:         time.Now,
	}, nil
}
