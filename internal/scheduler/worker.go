package scheduler

import (
	"context"
	"fmt"

	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// SequenceStepProcessor delivers a due nurture step.
type SequenceStepProcessor interface {
	ProcessStepDue(ctx context.Context, enrollmentID uuid.UUID, step int) error
}

// CRMDeliveryProcessor attempts a pending outbound webhook delivery.
type CRMDeliveryProcessor interface {
	ProcessDelivery(ctx context.Context, deliveryID uuid.UUID) error
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	sequences SequenceStepProcessor
	crm       CRMDeliveryProcessor
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		log:    log,
	}

	mux.HandleFunc(TaskSequenceStepDue, w.handleSequenceStepDue)
	mux.HandleFunc(TaskCRMDeliveryDue, w.handleCRMDeliveryDue)

	return w, nil
}

func (w *Worker) SetSequenceProcessor(p SequenceStepProcessor) { w.sequences = p }

func (w *Worker) SetCRMProcessor(p CRMDeliveryProcessor) { w.crm = p }

func (w *Worker) handleSequenceStepDue(ctx context.Context, task *asynq.Task) error {
	if w.sequences == nil {
		return nil
	}

	payload, err := ParseSequenceStepPayload(task)
	if err != nil {
		return err
	}

	enrollmentID, err := uuid.Parse(payload.EnrollmentID)
	if err != nil {
		return err
	}

	return w.sequences.ProcessStepDue(ctx, enrollmentID, payload.Step)
}

func (w *Worker) handleCRMDeliveryDue(ctx context.Context, task *asynq.Task) error {
	if w.crm == nil {
		return nil
	}

	payload, err := ParseCRMDeliveryPayload(task)
	if err != nil {
		return err
	}

	deliveryID, err := uuid.Parse(payload.DeliveryID)
	if err != nil {
		return err
	}

	return w.crm.ProcessDelivery(ctx, deliveryID)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
