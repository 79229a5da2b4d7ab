package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leakcalc_backend/internal/admin"
	"leakcalc_backend/internal/archive"
	"leakcalc_backend/internal/calculator"
	"leakcalc_backend/internal/calculator/engine"
	"leakcalc_backend/internal/crm"
	crmservice "leakcalc_backend/internal/crm/service"
	"leakcalc_backend/internal/email"
	"leakcalc_backend/internal/events"
	apphttp "leakcalc_backend/internal/http"
	"leakcalc_backend/internal/http/router"
	"leakcalc_backend/internal/notification"
	"leakcalc_backend/internal/scheduler"
	"leakcalc_backend/internal/sequences"
	sequencesservice "leakcalc_backend/internal/sequences/service"
	"leakcalc_backend/migrations"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/db"
	"leakcalc_backend/platform/logger"
	"leakcalc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.Migrate(cfg.DatabaseURL, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	taskClient, closeTaskClient := initTaskClient(cfg, log)
	if closeTaskClient != nil {
		defer closeTaskClient()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	benchmarks, err := engine.LoadBenchmarks(cfg.GetBenchmarksFile())
	if err != nil {
		log.Error("failed to load benchmarks", "error", err)
		panic("failed to load benchmarks: " + err.Error())
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	calculatorModule := calculator.NewModule(pool, benchmarks, eventBus, val, log)
	adminModule := admin.NewModule(calculatorModule.Service(), val)

	var stepScheduler sequencesservice.StepScheduler
	var deliveryScheduler crmservice.DeliveryScheduler
	if taskClient != nil {
		stepScheduler = taskClient
		deliveryScheduler = taskClient
	}

	sequencesModule := sequences.NewModule(pool, sender, stepScheduler, cfg, log)
	sequencesModule.RegisterHandlers(eventBus)

	crmModule := crm.NewModule(pool, calculatorModule.Repository(), deliveryScheduler, val, log)
	crmModule.RegisterHandlers(eventBus)

	// Submission archival to object storage (optional)
	if cfg.IsArchiveEnabled() {
		archiveSvc, err := archive.New(cfg, log)
		if err != nil {
			log.Error("failed to initialize archive service", "error", err)
			panic("failed to initialize archive service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure archive bucket", 5, 2*time.Second, func() error {
			return archiveSvc.EnsureBucketExists(ctx)
		}); err != nil {
			log.Error("failed to ensure archive bucket exists", "error", err)
			panic("failed to ensure archive bucket exists: " + err.Error())
		}
		archiveSvc.RegisterHandlers(eventBus)
		log.Info("archive service initialized", "bucket", cfg.ArchiveBucket)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			calculatorModule,
			sequencesModule,
			crmModule,
			adminModule,
		},
	}

	ginEngine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- ginEngine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initTaskClient(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; sequence steps and CRM deliveries disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
