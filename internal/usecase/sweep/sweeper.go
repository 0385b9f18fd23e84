package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Run executes one sweep pass over every tracked deposit wallet. A
// failure on one wallet never blocks the rest of the pass.
func (s *Scheduler) Run(ctx context.Context) error {
	policy := s.Settings()

	wallets, err := s.walletRepo.ListWallets()
	if err != nil {
		return fmt.Errorf("failed to list wallets: %w", err)
	}

	slog.Info("sweep pass started", "wallets", len(wallets))

	for _, wallet := range wallets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if wallet.TotalHandled.LessThan(policy.MinBalance) {
			continue
		}

		if err := s.sweepWallet(ctx, policy, wallet.Address, wallet.Chain, wallet.TotalHandled); err != nil {
			slog.Warn("wallet sweep failed", "wallet", wallet.Address, "chain", string(wallet.Chain), "error", err.Error())
		}
	}

	return nil
}

// ForceSweep sweeps a single wallet immediately, ignoring the
// minimum-balance threshold. A zero amount means the full live balance;
// the per-transfer cap still applies.
func (s *Scheduler) ForceSweep(ctx context.Context, address string, chain domain.Chain, amount decimal.Decimal) error {
	policy := s.Settings()

	client, err := s.chains.Client(chain)
	if err != nil {
		return err
	}

	live := client.GetUsdtBalance(ctx, address)
	if !live.IsPositive() {
		return fmt.Errorf("%w: wallet %s holds no USDT on %s", domain.ErrInsufficientFunds, address, chain)
	}

	candidate := live
	if amount.IsPositive() && amount.LessThan(live) {
		candidate = amount
	}

	return s.sweepWallet(ctx, policy, address, chain, candidate)
}

// sweepWallet moves min(candidate, cap) from the wallet to the chain
// treasury. The stored record is only a hint: the live balance is
// re-verified and is authoritative, so a wallet drained since the last
// settlement produces a recorded failed attempt instead of a doomed
// transfer.
func (s *Scheduler) sweepWallet(ctx context.Context, policy Settings, address string, chain domain.Chain, candidate decimal.Decimal) error {
	destination, ok := policy.Destinations[chain]
	if !ok || destination == "" {
		return fmt.Errorf("%w: no treasury destination for %s", domain.ErrUnsupportedChain, chain)
	}

	client, err := s.chains.Client(chain)
	if err != nil {
		return err
	}

	amount := candidate
	if amount.GreaterThan(policy.MaxTransferAmount) {
		amount = policy.MaxTransferAmount
	}

	live := client.GetUsdtBalance(ctx, address)
	if live.LessThan(amount) {
		if live.IsPositive() && live.GreaterThanOrEqual(policy.MinBalance) {
			amount = live
		} else {
			reason := fmt.Sprintf("live balance %s below sweep amount %s", live.String(), amount.String())
			s.recordAttempt(address, destination, chain, amount, "", false, reason)

			// A recent successful sweep explains the gap; otherwise the
			// stored record is stale and worth a human look.
			if last, lookupErr := s.attemptRepo.LastSuccessfulAttempt(address, chain); lookupErr == nil && last != nil {
				slog.Info("wallet already drained by earlier sweep",
					"wallet", address, "chain", string(chain), "last_sweep", last.CreatedAt.Format(time.RFC3339))
			} else {
				slog.Warn("stored wallet record disagrees with chain",
					"wallet", address, "chain", string(chain), "stored", candidate.String(), "live", live.String())
			}
			return fmt.Errorf("%w: live balance %s, wanted %s", domain.ErrInsufficientFunds, live.String(), amount.String())
		}
	}

	txHash, err := client.SubmitDelegatedTransfer(ctx, address, destination, amount)
	if err != nil {
		s.recordAttempt(address, destination, chain, amount, "", false, err.Error())
		s.notify(fmt.Sprintf("Sweep failed for %s on %s: %s", address, chain, err.Error()))
		return err
	}

	s.recordAttempt(address, destination, chain, amount, txHash, true, "")
	if s.metrics != nil {
		swept, _ := amount.Float64()
		s.metrics.SweptAmountTotal.WithLabelValues(string(chain)).Add(swept)
	}
	s.notify(fmt.Sprintf("Swept %s USDT from %s to treasury on %s (tx %s)", amount.String(), address, chain, txHash))

	slog.Info("wallet swept", "wallet", address, "chain", string(chain), "amount", amount.String(), "tx_hash", txHash)
	return nil
}

func (s *Scheduler) recordAttempt(from, to string, chain domain.Chain, amount decimal.Decimal, txHash string, success bool, reason string) {
	attempt := &domain.SweepAttempt{
		ID:           uuid.New().String(),
		FromAddress:  from,
		ToAddress:    to,
		Amount:       amount,
		Chain:        chain,
		TxHash:       txHash,
		Success:      success,
		ErrorMessage: reason,
		CreatedAt:    time.Now(),
	}
	if err := s.attemptRepo.RecordAttempt(attempt); err != nil {
		slog.Error("failed to record sweep attempt", "wallet", from, "error", err.Error())
	}

	if s.metrics != nil {
		s.metrics.SweepAttemptsTotal.WithLabelValues(string(chain), fmt.Sprintf("%t", success)).Inc()
	}
}

func (s *Scheduler) notify(text string) {
	if s.operator != nil {
		s.operator.Notify(text)
	}
}
