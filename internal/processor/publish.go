package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joshu-sajeev/issueflow/internal/dto"
	"github.com/joshu-sajeev/issueflow/internal/executor"
	"github.com/joshu-sajeev/issueflow/internal/generate"
	"github.com/joshu-sajeev/issueflow/internal/models"
	"github.com/joshu-sajeev/issueflow/internal/publisher"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// handlePublishIssue resolves the final title and body for the job and
// publishes the issue through the retrying executor. Executor failures, both
// terminal and exhausted, are recorded on the job as its failed outcome; only
// infrastructure errors (decode, store writes) bubble up for job-level retry.
func (p *Processor) handlePublishIssue(ctx context.Context, j *models.Job) error {
	var payload dto.PublishIssuePayload
	if err := json.Unmarshal(j.Payload, &payload); err != nil {
		return fmt.Errorf("decode publish_issue payload: %w", err)
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		derived, err := p.gen.Title(ctx, payload.Prompt)
		if err != nil {
			return fmt.Errorf("derive title: %w", err)
		}
		title = derived
	}

	body := payload.GeneratedContent
	if strings.TrimSpace(body) == "" {
		generated, err := p.gen.Body(ctx, payload.Prompt, title)
		if err != nil {
			// The job should not fail because the model is down; publish
			// the prompt itself instead.
			generated, _ = generate.Heuristic{}.Body(ctx, payload.Prompt, title)
		}
		body = generated
	}

	ref, err := executor.PerformWithRetry(ctx, func(ctx context.Context) (*publisher.IssueRef, error) {
		return p.publisher.Publish(ctx, payload.Repository, title, body)
	}, p.execOpts)
	if err != nil {
		p.logger.Warn("publish failed",
			zap.String("job_id", j.ID),
			zap.String("repository", payload.Repository),
			zap.Error(err),
		)
		if markErr := p.repo.MarkFailed(ctx, j.ID, err.Error()); markErr != nil {
			return fmt.Errorf("mark job failed: %w", markErr)
		}
		return nil
	}

	result, err := json.Marshal(dto.IssueResult{
		Number:     ref.Number,
		URL:        ref.URL,
		Repository: payload.Repository,
		Title:      title,
	})
	if err != nil {
		return fmt.Errorf("encode issue result: %w", err)
	}

	p.logger.Info("issue published",
		zap.String("job_id", j.ID),
		zap.String("repository", payload.Repository),
		zap.Int("issue", ref.Number),
	)

	if err := p.repo.MarkCompleted(ctx, j.ID, datatypes.JSON(result)); err != nil {
		// The issue exists remotely at this point; a job-level retry can
		// publish a duplicate. Accepted at-least-once behavior.
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}
