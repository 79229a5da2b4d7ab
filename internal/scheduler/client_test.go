package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	url string
}

func (c testSchedulerConfig) GetRedisURL() string       { return c.url }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return "default" }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatalf("expected error without a redis url")
	}
}

func TestClientEnqueuesTasks(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{url: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	stepPayload := SequenceStepPayload{EnrollmentID: uuid.NewString(), Step: 1}
	if err := client.ScheduleSequenceStep(ctx, stepPayload, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("schedule sequence step: %v", err)
	}
	if err := client.EnqueueCRMDelivery(ctx, CRMDeliveryPayload{DeliveryID: uuid.NewString()}); err != nil {
		t.Fatalf("enqueue crm delivery: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() { _ = inspector.Close() }()

	scheduled, err := inspector.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(scheduled) != 1 || scheduled[0].Type != TaskSequenceStepDue {
		t.Fatalf("expected one scheduled sequence step task, got %d", len(scheduled))
	}

	pending, err := inspector.ListPendingTasks("default")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Type != TaskCRMDeliveryDue {
		t.Fatalf("expected one pending crm delivery task, got %d", len(pending))
	}

	parsed, err := ParseSequenceStepPayload(asynq.NewTask(scheduled[0].Type, scheduled[0].Payload))
	if err != nil {
		t.Fatalf("parse scheduled payload: %v", err)
	}
	if parsed.EnrollmentID != stepPayload.EnrollmentID || parsed.Step != 1 {
		t.Fatalf("payload round trip mismatch: %+v", parsed)
	}
}
