package scheduler

import (
	"context"
	"time"

	"leakcalc_backend/platform/logger"
)

const defaultSweepInterval = 30 * time.Minute

// SubmissionSweeper marks stale in-progress submissions as abandoned.
type SubmissionSweeper interface {
	SweepAbandoned(ctx context.Context) (int64, error)
}

// AbandonedSweeper periodically sweeps submissions that were started but
// never completed so funnel stats stay honest.
type AbandonedSweeper struct {
	sweeper  SubmissionSweeper
	log      *logger.Logger
	interval time.Duration
}

func NewAbandonedSweeper(sweeper SubmissionSweeper, log *logger.Logger, interval time.Duration) *AbandonedSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &AbandonedSweeper{
		sweeper:  sweeper,
		log:      log,
		interval: interval,
	}
}

func (s *AbandonedSweeper) Run(ctx context.Context) {
	if s == nil || s.sweeper == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *AbandonedSweeper) sweep(ctx context.Context) {
	marked, err := s.sweeper.SweepAbandoned(ctx)
	if err != nil {
		s.log.Warn("abandoned submission sweep failed", "error", err)
		return
	}

	if marked > 0 {
		s.log.Info("abandoned submissions marked", "count", marked)
	}
}
