// Package processor advances pending jobs in bounded batches. It owns no
// schedule of its own: each run is a single synchronous pass invoked by the
// trigger endpoint or the one-shot CLI, so every touched job must be left in
// a well-defined state before the run returns.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/joshu-sajeev/issueflow/internal/config"
	"github.com/joshu-sajeev/issueflow/internal/executor"
	"github.com/joshu-sajeev/issueflow/internal/generate"
	"github.com/joshu-sajeev/issueflow/internal/job"
	"github.com/joshu-sajeev/issueflow/internal/models"
	"github.com/joshu-sajeev/issueflow/internal/publisher"
	"go.uber.org/zap"
)

type Processor struct {
	repo       job.JobRepoInterface
	publisher  publisher.IssuePublisher
	gen        generate.Generator
	logger     *zap.Logger
	staleAfter time.Duration
	execOpts   executor.Options
}

func New(
	repo job.JobRepoInterface,
	pub publisher.IssuePublisher,
	gen generate.Generator,
	logger *zap.Logger,
	staleAfter time.Duration,
) *Processor {
	return &Processor{
		repo:       repo,
		publisher:  pub,
		gen:        gen,
		logger:     logger,
		staleAfter: staleAfter,
	}
}

// ProcessPendingJobs runs one batch: requeue stale processing jobs, pull up
// to batchSize pending jobs oldest first, and handle them sequentially.
// Sequential, not concurrent, keeps overlapping runs from racing the
// non-idempotent publish call and bounds the tracker's rate-limit exposure
// per batch. Returns the number of jobs claimed by this run.
func (p *Processor) ProcessPendingJobs(ctx context.Context, batchSize int) (int, error) {
	reaped, err := p.repo.ReapStale(ctx, p.staleAfter)
	if err != nil {
		return 0, fmt.Errorf("reap stale jobs: %w", err)
	}
	if reaped > 0 {
		p.logger.Warn("requeued stale processing jobs", zap.Int64("count", reaped))
	}

	jobs, err := p.repo.ListPending(ctx, batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending jobs: %w", err)
	}

	processed := 0
	for i := range jobs {
		j := &jobs[i]

		claimed, err := p.repo.Claim(ctx, j.ID)
		if err != nil {
			return processed, fmt.Errorf("claim job %s: %w", j.ID, err)
		}
		if !claimed {
			// Another run got there first.
			continue
		}
		processed++

		if handlerErr := p.dispatch(ctx, j); handlerErr != nil {
			p.retryOrFail(ctx, j, handlerErr)
		}
	}

	return processed, nil
}

// dispatch routes the job to its type handler. Handlers record terminal
// outcomes themselves; a non-nil return means the handler itself misbehaved
// and the job is eligible for a job-level retry.
func (p *Processor) dispatch(ctx context.Context, j *models.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	switch j.Type {
	case config.JobTypePublishIssue:
		return p.handlePublishIssue(ctx, j)
	default:
		return fmt.Errorf("unknown job type %q", j.Type)
	}
}

// retryOrFail applies the job-level retry policy for unexpected handler
// errors. This sits above the executor's own retry loop: executor failures
// are reported outcomes, not handler misbehavior, and never land here.
func (p *Processor) retryOrFail(ctx context.Context, j *models.Job, handlerErr error) {
	j.RetryCount++

	if j.RetryCount < j.MaxRetries {
		p.logger.Warn("job handler failed, requeueing",
			zap.String("job_id", j.ID),
			zap.Int("retry_count", j.RetryCount),
			zap.Int("max_retries", j.MaxRetries),
			zap.Error(handlerErr),
		)
		if err := p.repo.RequeueForRetry(ctx, j.ID, j.RetryCount); err != nil {
			p.logger.Error("failed to requeue job", zap.String("job_id", j.ID), zap.Error(err))
		}
		return
	}

	p.logger.Error("job exhausted retries",
		zap.String("job_id", j.ID),
		zap.Int("retry_count", j.RetryCount),
		zap.Error(handlerErr),
	)
	patch := map[string]any{
		"status":       string(config.JobStatusFailed),
		"error":        "job failed after maximum retries",
		"retry_count":  j.RetryCount,
		"completed_at": nowPtr(),
	}
	if err := p.repo.Update(ctx, j.ID, patch); err != nil {
		p.logger.Error("failed to mark job failed", zap.String("job_id", j.ID), zap.Error(err))
	}
}

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}
