package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
)

// BeginSettlement claims a pending payment for the given network and
// payer wallet, then executes the delegated USDT transfer into the
// collection wallet. The persisted payment row arbitrates concurrent
// claims: whichever caller flips pending to processing first wins, the
// loser gets ErrInvalidState.
//
// Re-entry with the same wallet while the payment is still processing
// retries the transfer without emitting a second processing_started
// event, so a wallet that timed out client-side can safely call again.
func (uc *DefaultPaymentUsecase) BeginSettlement(ctx context.Context, paymentID string, chain domain.Chain, walletAddress string) (*domain.Payment, error) {
	if !chain.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedChain, chain)
	}
	if strings.TrimSpace(walletAddress) == "" {
		return nil, fmt.Errorf("%w: wallet address is required", domain.ErrValidation)
	}

	payment, err := uc.PaymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, err
	}

	if payment.Status == domain.StatusPending && payment.Expired(uc.now()) {
		uc.expirePayment(payment)
		return nil, domain.ErrPaymentExpired
	}

	switch {
	case payment.Status == domain.StatusProcessing &&
		payment.WalletAddress == walletAddress && payment.Chain == chain:
		// Same wallet retrying the same claim, fall through to the
		// transfer.

	case payment.Status == domain.StatusPending:
		if err := uc.PaymentRepo.MarkProcessing(paymentID, chain, walletAddress); err != nil {
			return nil, err
		}
		uc.recordEvent(paymentID, domain.EventProcessingStarted, map[string]string{
			"chain":  string(chain),
			"wallet": walletAddress,
		})
		uc.recordStatusChange(paymentID, domain.StatusPending, domain.StatusProcessing)
		slog.Info("settlement started", "payment_id", paymentID, "chain", string(chain), "wallet", walletAddress)

	default:
		return nil, fmt.Errorf("%w: payment is %s", domain.ErrInvalidState, payment.Status)
	}

	payment, err = uc.PaymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, err
	}

	client, err := uc.Chains.Client(chain)
	if err != nil {
		return nil, err
	}
	collection, ok := uc.Collection[chain]
	if !ok || collection == "" {
		return nil, fmt.Errorf("%w: no collection wallet configured for %s", domain.ErrUnsupportedChain, chain)
	}

	txHash, err := client.SubmitDelegatedTransfer(ctx, walletAddress, collection, payment.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientAllowance) || errors.Is(err, domain.ErrInsufficientFunds) {
			if failErr := uc.FailSettlement(ctx, paymentID, err.Error()); failErr != nil {
				slog.Error("failed to mark payment failed", "payment_id", paymentID, "error", failErr.Error())
			}
			return nil, err
		}

		// Transient submission failure: keep the claim so the same
		// wallet can retry, but leave a trace.
		uc.recordEvent(paymentID, domain.EventSettlementAttempt, map[string]string{
			"chain":  string(chain),
			"reason": err.Error(),
		})
		slog.Warn("settlement attempt failed", "payment_id", paymentID, "chain", string(chain), "error", err.Error())
		return nil, err
	}

	if err := uc.CompleteSettlement(ctx, paymentID, txHash); err != nil {
		return nil, err
	}

	return uc.PaymentRepo.GetPaymentByID(paymentID)
}

// CompleteSettlement finalizes a processing payment with its on-chain
// transaction hash.
func (uc *DefaultPaymentUsecase) CompleteSettlement(ctx context.Context, paymentID, txHash string) error {
	payment, err := uc.PaymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return err
	}

	claimedAt := payment.UpdatedAt

	if err := uc.PaymentRepo.UpdatePaymentStatus(paymentID, domain.StatusProcessing, domain.StatusCompleted); err != nil {
		return err
	}
	if err := uc.PaymentRepo.SetTxHash(paymentID, txHash); err != nil {
		slog.Error("failed to store tx hash", "payment_id", paymentID, "tx_hash", txHash, "error", err.Error())
	}

	payment, err = uc.PaymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return err
	}

	uc.recordEvent(paymentID, domain.EventCompleted, map[string]string{
		"tx_hash": txHash,
	})
	uc.recordStatusChange(paymentID, domain.StatusProcessing, domain.StatusCompleted)

	if collection, ok := uc.Collection[payment.Chain]; ok && collection != "" {
		if err := uc.WalletRepo.RecordActivity(collection, payment.Chain, payment.Amount, uc.now()); err != nil {
			slog.Error("failed to record wallet activity", "wallet", collection, "error", err.Error())
		}
	}

	uc.publishStatus(payment, "")
	uc.dispatchCallback(payment, "")
	uc.alertOperator(fmt.Sprintf("Payment %s completed: %s USDT on %s (tx %s)",
		payment.ID, payment.Amount.String(), payment.Chain, txHash))

	if uc.Metrics != nil {
		uc.Metrics.PaymentsCompletedTotal.WithLabelValues(payment.ServiceName, string(payment.Chain)).Inc()
		uc.Metrics.SettlementDuration.WithLabelValues(string(payment.Chain)).
			Observe(uc.now().Sub(claimedAt).Seconds())
	}

	slog.Info("payment completed", "payment_id", paymentID, "chain", string(payment.Chain), "tx_hash", txHash)
	return nil
}

// FailSettlement moves a processing payment to the terminal failed
// state, keeping the reason in the audit trail.
func (uc *DefaultPaymentUsecase) FailSettlement(ctx context.Context, paymentID, reason string) error {
	if err := uc.PaymentRepo.UpdatePaymentStatus(paymentID, domain.StatusProcessing, domain.StatusFailed); err != nil {
		return err
	}

	payment, err := uc.PaymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return err
	}

	uc.recordEvent(paymentID, domain.EventSettlementFailed, map[string]string{
		"reason": reason,
	})
	uc.recordStatusChange(paymentID, domain.StatusProcessing, domain.StatusFailed)
	uc.publishStatus(payment, reason)
	uc.dispatchCallback(payment, reason)
	uc.alertOperator(fmt.Sprintf("Payment %s failed on %s: %s", payment.ID, payment.Chain, reason))

	if uc.Metrics != nil {
		uc.Metrics.PaymentsFailedTotal.WithLabelValues(payment.ServiceName, string(payment.Chain)).Inc()
	}

	slog.Warn("payment failed", "payment_id", paymentID, "reason", reason)
	return nil
}
