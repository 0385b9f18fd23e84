package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/TechSavvyAce/safeping-sub001/internal/app/background"
	"github.com/TechSavvyAce/safeping-sub001/internal/config"
	"github.com/TechSavvyAce/safeping-sub001/internal/delivery/httpapi"
	"github.com/TechSavvyAce/safeping-sub001/internal/domain"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/chain"
	publisher "github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/kafka"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/metrics"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/migrate"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/notifier"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/postgres/repository"
	"github.com/TechSavvyAce/safeping-sub001/internal/infrastructure/redisauth"
	usecase "github.com/TechSavvyAce/safeping-sub001/internal/usecase/payment"
	"github.com/TechSavvyAce/safeping-sub001/internal/usecase/sweep"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql db: %v", err)
	}

	// Apply schema migrations
	runner, err := migrate.NewRunner(sqlDB, migrate.DefaultMigrations())
	if err != nil {
		log.Fatalf("failed to init migration runner: %v", err)
	}
	if err := runner.Migrate(context.Background()); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	// Init chain adapters
	registry, err := chain.NewRegistry(cfg.Chains)
	if err != nil {
		log.Fatalf("failed to init chain registry: %v", err)
	}

	// Init repositories
	paymentRepo := repository.NewDefaultPaymentRepository(db)
	eventRepo := repository.NewDefaultPaymentEventRepository(db)
	walletRepo := repository.NewDefaultWalletBalanceRepository(db)
	attemptRepo := repository.NewDefaultSweepAttemptRepository(db)

	// Init messaging and notifications
	brokers := []string{fmt.Sprintf("%s:%s", cfg.Kafka.Host, cfg.Kafka.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers, cfg.Kafka.Topic)
	webhook := notifier.NewWebhookNotifier()
	telegram := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	paymentMetrics := metrics.NewPaymentMetrics()

	// Init payment usecase
	limits := usecase.PaymentLimits{
		MinAmount:     mustDecimal(cfg.Payments.MinAmount),
		MaxAmount:     mustDecimal(cfg.Payments.MaxAmount),
		MaxTTLMinutes: cfg.Payments.MaxTTLMinutes,
	}
	collection := make(map[domain.Chain]string, len(cfg.Chains))
	for _, chainCfg := range cfg.Chains {
		collection[domain.Chain(chainCfg.Name)] = chainCfg.CollectionAddress
	}
	paymentUC, err := usecase.NewDefaultPaymentUsecase(
		paymentRepo,
		eventRepo,
		walletRepo,
		registry,
		collection,
		pub,
		webhook,
		telegram,
		paymentMetrics,
		limits,
	)
	if err != nil {
		log.Fatalf("failed to init payment usecase: %v", err)
	}

	// Init sweep scheduler
	destinations := make(map[domain.Chain]string, len(cfg.Sweep.Destinations))
	for name, addr := range cfg.Sweep.Destinations {
		destinations[domain.Chain(name)] = addr
	}
	scheduler := sweep.NewScheduler(walletRepo, attemptRepo, registry, telegram, paymentMetrics, sweep.Settings{
		Enabled:           cfg.Sweep.Enabled,
		MinBalance:        mustDecimal(cfg.Sweep.MinBalance),
		MaxTransferAmount: mustDecimal(cfg.Sweep.MaxTransferAmount),
		Interval:          time.Duration(cfg.Sweep.IntervalMinutes) * time.Minute,
		Destinations:      destinations,
	})
	if cfg.Sweep.Enabled {
		if err := scheduler.Start(); err != nil {
			log.Fatalf("failed to start sweep scheduler: %v", err)
		}
	}

	// Init HTTP server
	adminAuth := redisauth.NewAdminAuth(cfg.AdminAuth)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Payments:  httpapi.NewPaymentHandler(paymentUC, cfg.Payments.DefaultTTLMinutes),
		Admin:     httpapi.NewAdminHandler(scheduler, runner, paymentUC),
		AdminAuth: adminAuth,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background expiry loop
	tasks := background.NewBackgroundTasks(paymentUC)
	tasks.StartAll(ctx)

	go func() {
		slog.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err.Error())
	}
	scheduler.Stop()

	slog.Info("shutdown complete")
}

func mustDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("invalid decimal in config: %q", s)
	}
	return v
}
