package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/corelearn/backend/internal/models"
	"github.com/corelearn/backend/pkg/queue"
)

// Processor consumes certificate-issued jobs and records notification rows
// for downstream delivery systems.
type Processor struct {
	repo   *Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewProcessor creates a certificate event processor.
func NewProcessor(repo *Repository, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{repo: repo, queue: q, logger: logger}
}

// Process executes one certificate-issued job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeCertificateIssued {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.CertificateIssuedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	n := &models.CertificateNotification{
		CertificationID: payload.CertificationID,
		UserID:          payload.UserID,
		QuizID:          payload.QuizID,
		Status:          "recorded",
	}
	if err := p.repo.Record(ctx, n); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	p.logger.Info("certificate notification recorded",
		zap.String("certification_id", payload.CertificationID.String()),
		zap.String("user_id", payload.UserID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
