package usecase

import (
	"context"
	"log/slog"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

// SweepExpired moves every pending payment past its TTL into the
// expired state. Called periodically by the background loop; safe to
// run concurrently with settlement because each transition is the same
// conditional update settlement uses.
func (uc *DefaultPaymentUsecase) SweepExpired(ctx context.Context) error {
	expired, err := uc.PaymentRepo.FindExpiredPayments(uc.now())
	if err != nil {
		return err
	}

	for _, payment := range expired {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		uc.expirePayment(payment)
	}

	return nil
}

// expirePayment performs the pending to expired transition. A lost
// race means another caller already moved the payment on, which is
// fine: the persisted state decided.
func (uc *DefaultPaymentUsecase) expirePayment(payment *domain.Payment) {
	if err := uc.PaymentRepo.UpdatePaymentStatus(payment.ID, domain.StatusPending, domain.StatusExpired); err != nil {
		slog.Debug("expiry transition skipped", "payment_id", payment.ID, "error", err.Error())
		return
	}

	payment.Status = domain.StatusExpired
	uc.recordEvent(payment.ID, domain.EventExpired, nil)
	uc.recordStatusChange(payment.ID, domain.StatusPending, domain.StatusExpired)
	uc.publishStatus(payment, "payment ttl elapsed")
	uc.dispatchCallback(payment, "payment ttl elapsed")

	if uc.Metrics != nil {
		uc.Metrics.PaymentsExpiredTotal.Inc()
	}

	slog.Info("payment expired", "payment_id", payment.ID, "service_name", payment.ServiceName)
}
