// Package archive writes completed submission payloads to S3-compatible
// object storage for offline analysis and audit. It is optional and sits
// entirely outside the request path.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"leakcalc_backend/internal/events"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Service struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// New creates the archive service. Returns an error when object storage is
// not configured; callers should skip wiring it in that case.
func New(cfg config.ArchiveConfig, log *logger.Logger) (*Service, error) {
	if !cfg.IsArchiveEnabled() {
		return nil, fmt.Errorf("archive storage is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &Service{
		client: client,
		bucket: cfg.GetArchiveBucket(),
		log:    log,
	}, nil
}

// EnsureBucketExists creates the archive bucket if it doesn't exist.
func (s *Service) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

// RegisterHandlers subscribes to domain events on the event bus.
func (s *Service) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.SubmissionCompleted{}.EventName(), s)
	s.log.Info("archive service registered event handlers")
}

func (s *Service) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.SubmissionCompleted)
	if !ok {
		return nil
	}
	return s.archiveSubmission(ctx, e)
}

func (s *Service) archiveSubmission(ctx context.Context, e events.SubmissionCompleted) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}

	// Keyed by completion date so archives are easy to scan by day.
	key := fmt.Sprintf("submissions/%s/%s.json",
		e.OccurredAt().UTC().Format("2006/01/02"), e.SubmissionID)

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to archive submission %s: %w", e.SubmissionID, err)
	}

	s.log.Info("submission archived", "submission_id", e.SubmissionID, "key", key)
	return nil
}

var _ events.Handler = (*Service)(nil)
