package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/metrics"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// Settings is the runtime sweep policy. Amounts are USDT.
type Settings struct {
	Enabled           bool
	MinBalance        decimal.Decimal
	MaxTransferAmount decimal.Decimal
	Interval          time.Duration
	// Destinations maps each network to its treasury address.
	Destinations map[domain.Chain]string
}

// OperatorNotifier posts sweep alerts to the on-call channel.
type OperatorNotifier interface {
	Notify(text string)
}

// Scheduler periodically consolidates collected USDT from deposit
// wallets into the per-chain treasury. The cron instance owns the
// schedule; Stop waits for an in-flight run to finish, so a run never
// races its own shutdown.
type Scheduler struct {
	walletRepo  domain.WalletBalanceRepository
	attemptRepo domain.SweepAttemptRepository
	chains      domain.ChainRegistry
	operator    OperatorNotifier
	metrics     *metrics.PaymentMetrics

	mu       sync.Mutex
	settings Settings
	cron     *cron.Cron
	entryID  cron.EntryID
	running  bool
}

func NewScheduler(
	walletRepo domain.WalletBalanceRepository,
	attemptRepo domain.SweepAttemptRepository,
	chains domain.ChainRegistry,
	operator OperatorNotifier,
	m *metrics.PaymentMetrics,
	settings Settings,
) *Scheduler {
	return &Scheduler{
		walletRepo:  walletRepo,
		attemptRepo: attemptRepo,
		chains:      chains,
		operator:    operator,
		metrics:     m,
		settings:    settings,
		cron:        cron.New(),
	}
}

// Start registers the periodic run and launches the cron loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.Enabled {
		return domain.ErrSweepDisabled
	}
	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(cronSpec(s.settings.Interval), s.runOnce)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.running = true

	slog.Info("sweep scheduler started", "interval", s.settings.Interval.String())
	return nil
}

// Stop halts the schedule and blocks until any in-flight run returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cron.Remove(s.entryID)
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	slog.Info("sweep scheduler stopped")
}

// Reload swaps in new settings. If the interval changed while running,
// the cron entry is replaced; an in-flight run finishes under the old
// policy.
func (s *Scheduler) Reload(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previousInterval := s.settings.Interval
	intervalChanged := settings.Interval != previousInterval
	wasRunning := s.running
	s.settings = settings

	if !wasRunning {
		return nil
	}

	if !settings.Enabled {
		s.cron.Remove(s.entryID)
		s.running = false
		slog.Info("sweep scheduler disabled by reload")
		return nil
	}

	if intervalChanged {
		// Parse before touching the old entry so a bad spec leaves the
		// previous schedule running.
		schedule, err := cron.ParseStandard(cronSpec(settings.Interval))
		if err != nil {
			s.settings.Interval = previousInterval
			return fmt.Errorf("failed to reschedule sweep: %w", err)
		}
		s.cron.Remove(s.entryID)
		s.entryID = s.cron.Schedule(schedule, cron.FuncJob(s.runOnce))
		slog.Info("sweep interval updated", "interval", settings.Interval.String())
	}

	return nil
}

// Settings returns a copy of the current policy.
func (s *Scheduler) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		slog.Error("sweep run failed", "error", err.Error())
	}
}

func cronSpec(interval time.Duration) string {
	if interval < time.Minute {
		interval = time.Minute
	}
	return fmt.Sprintf("@every %s", interval.Truncate(time.Minute).String())
}
