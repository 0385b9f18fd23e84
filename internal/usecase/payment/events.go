package usecase

import (
	"encoding/json"
	"log/slog"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	publisher "github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/kafka"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/notifier"
	"github.com/google/uuid"
)

// recordEvent appends an audit-trail fact. Append failures are logged
// and swallowed: the trail is best-effort, the payment row is the
// source of truth.
func (uc *DefaultPaymentUsecase) recordEvent(paymentID string, eventType domain.PaymentEventType, data any) {
	var payload string
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			slog.Error("failed to marshal event payload", "payment_id", paymentID, "type", string(eventType), "error", err.Error())
		} else {
			payload = string(raw)
		}
	}

	event := &domain.PaymentEvent{
		ID:        uuid.New().String(),
		PaymentID: paymentID,
		Type:      eventType,
		Data:      payload,
		CreatedAt: uc.now(),
	}
	if err := uc.EventRepo.AppendEvent(event); err != nil {
		slog.Error("failed to append payment event", "payment_id", paymentID, "type", string(eventType), "error", err.Error())
	}
}

// recordStatusChange mirrors a state-machine transition in the audit
// trail alongside the transition-specific event.
func (uc *DefaultPaymentUsecase) recordStatusChange(paymentID string, from, to domain.PaymentStatus) {
	uc.recordEvent(paymentID, domain.EventStatusUpdated, map[string]string{
		"from": string(from),
		"to":   string(to),
	})
}

func (uc *DefaultPaymentUsecase) publishStatus(payment *domain.Payment, reason string) {
	if uc.Publisher == nil {
		return
	}

	err := uc.Publisher.PublishPayment(publisher.PaymentEvent{
		PaymentID:   payment.ID,
		ServiceName: payment.ServiceName,
		Status:      string(payment.Status),
		Amount:      payment.Amount.String(),
		Chain:       string(payment.Chain),
		TxHash:      payment.TxHash,
		Reason:      reason,
	})
	if err != nil {
		slog.Error("failed to publish payment event", "payment_id", payment.ID, "error", err.Error())
	}
}

// dispatchCallback sends the merchant webhook for a status change and
// records the dispatch in the audit trail.
func (uc *DefaultPaymentUsecase) dispatchCallback(payment *domain.Payment, reason string) {
	if uc.Webhook == nil || payment.WebhookURL == "" {
		return
	}

	uc.Webhook.SendCallback(payment.WebhookURL, notifier.WebhookPayload{
		PaymentID:   payment.ID,
		ServiceName: payment.ServiceName,
		Status:      string(payment.Status),
		Amount:      payment.Amount.String(),
		Chain:       string(payment.Chain),
		TxHash:      payment.TxHash,
		Reason:      reason,
	})
	uc.recordEvent(payment.ID, domain.EventWebhookDispatched, map[string]string{
		"url":    payment.WebhookURL,
		"status": string(payment.Status),
	})
}

func (uc *DefaultPaymentUsecase) alertOperator(text string) {
	if uc.Operator != nil {
		uc.Operator.Notify(text)
	}
}
