// Command recompute-backfill re-runs the estimation engine over completed
// submissions whose stored result was computed by an older engine version.
package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"leakcalc_backend/internal/calculator/engine"
	"leakcalc_backend/internal/calculator/repository"
	"leakcalc_backend/internal/calculator/service"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/db"
	"leakcalc_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting recompute backfill", "engine_version", engine.Version)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	benchmarks, err := engine.LoadBenchmarks(cfg.GetBenchmarksFile())
	if err != nil {
		log.Error("failed to load benchmarks", "error", err)
		panic("failed to load benchmarks: " + err.Error())
	}

	svc := service.New(repository.New(pool), benchmarks, log)

	ids, err := svc.PendingRecomputeIDs(ctx)
	if err != nil {
		log.Error("failed to list pending submissions", "error", err)
		panic("failed to list pending submissions: " + err.Error())
	}
	if len(ids) == 0 {
		log.Info("no submissions need recomputing")
		return
	}
	log.Info("recomputing stored results", "pending", len(ids))

	concurrency := getPositiveIntEnv("RECOMPUTE_CONCURRENCY", 4)

	var succeeded, failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for _, id := range ids {
		id := id
		group.Go(func() error {
			if _, _, err := svc.Recompute(groupCtx, id); err != nil {
				failed.Add(1)
				log.Error("recompute failed", "submission_id", id, "error", err)
				// Keep going; one bad submission should not stop the batch.
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("recompute backfill aborted", "error", err)
		panic("recompute backfill aborted: " + err.Error())
	}

	log.Info("recompute backfill completed",
		"processed", len(ids), "succeeded", succeeded.Load(), "failed", failed.Load())
}

func getPositiveIntEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
