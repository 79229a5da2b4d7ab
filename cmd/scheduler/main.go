package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leakcalc_backend/internal/calculator/engine"
	calcrepo "leakcalc_backend/internal/calculator/repository"
	calcservice "leakcalc_backend/internal/calculator/service"
	crmrepo "leakcalc_backend/internal/crm/repository"
	crmservice "leakcalc_backend/internal/crm/service"
	"leakcalc_backend/internal/email"
	"leakcalc_backend/internal/scheduler"
	seqrepo "leakcalc_backend/internal/sequences/repository"
	seqservice "leakcalc_backend/internal/sequences/service"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/db"
	"leakcalc_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// The worker needs its own client to schedule follow-up steps.
	taskClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		panic("failed to initialize task client: " + err.Error())
	}
	defer func() { _ = taskClient.Close() }()

	benchmarks, err := engine.LoadBenchmarks(cfg.GetBenchmarksFile())
	if err != nil {
		log.Error("failed to load benchmarks", "error", err)
		panic("failed to load benchmarks: " + err.Error())
	}

	sequencesSvc := seqservice.New(seqrepo.New(pool), sender, taskClient, cfg, log)
	crmSvc := crmservice.New(crmrepo.New(pool), calcrepo.New(pool), taskClient, log)
	calcSvc := calcservice.New(calcrepo.New(pool), benchmarks, log)

	sweepInterval := getDurationEnv("ABANDONED_SWEEP_INTERVAL", 30*time.Minute)
	sweeper := scheduler.NewAbandonedSweeper(calcSvc, log, sweepInterval)
	go sweeper.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	worker.SetSequenceProcessor(sequencesSvc)
	worker.SetCRMProcessor(crmSvc)

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
