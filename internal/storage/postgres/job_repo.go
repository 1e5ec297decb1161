package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshu-sajeev/issueflow/internal/config"
	"github.com/joshu-sajeev/issueflow/internal/job"
	"github.com/joshu-sajeev/issueflow/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

var _ job.JobRepoInterface = (*JobRepository)(nil)

// Create inserts a new job record. The caller is responsible for assigning
// the id and initial status before handing the record over.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Get retrieves a single job record by its id.
func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job not found: %w", err)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// ListPending returns up to limit pending jobs, oldest first, which bounds
// starvation when the processor drains them batch by batch.
func (r *JobRepository) ListPending(ctx context.Context, limit int) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(config.JobStatusPending)).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("list pending jobs: %w", err)
	}
	return jobs, nil
}

// Claim moves a job from pending to processing with a single conditional
// update. When two processor runs race for the same job, exactly one sees a
// row affected; the loser skips the job.
func (r *JobRepository) Claim(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, string(config.JobStatusPending)).
		Update("status", string(config.JobStatusProcessing))
	if res.Error != nil {
		return false, fmt.Errorf("claim job: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Update applies an atomic partial update to the stored record. Only the
// processor calls this after creation, so last-writer-wins is acceptable.
func (r *JobRepository) Update(ctx context.Context, id string, patch map[string]any) error {
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(patch).Error; err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// MarkCompleted records the terminal success state together with the
// handler's result payload.
func (r *JobRepository) MarkCompleted(ctx context.Context, id string, result datatypes.JSON) error {
	now := time.Now()
	return r.Update(ctx, id, map[string]any{
		"status":       string(config.JobStatusCompleted),
		"result":       result,
		"completed_at": &now,
	})
}

// MarkFailed records the terminal failure state with a human-readable reason.
func (r *JobRepository) MarkFailed(ctx context.Context, id string, errMsg string) error {
	now := time.Now()
	return r.Update(ctx, id, map[string]any{
		"status":       string(config.JobStatusFailed),
		"error":        errMsg,
		"completed_at": &now,
	})
}

// RequeueForRetry puts a job back in the pending set with its bumped retry
// counter, leaving CompletedAt unset so the next batch picks it up.
func (r *JobRepository) RequeueForRetry(ctx context.Context, id string, retryCount int) error {
	return r.Update(ctx, id, map[string]any{
		"status":      string(config.JobStatusPending),
		"retry_count": retryCount,
	})
}

// ReapStale requeues jobs stuck in processing longer than olderThan. A run
// abandoned by an execution-environment timeout leaves its claimed jobs in
// processing; without this they would never be picked up again.
func (r *JobRepository) ReapStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("status = ? AND updated_at < ?", string(config.JobStatusProcessing), cutoff).
		Update("status", string(config.JobStatusPending))
	if res.Error != nil {
		return 0, fmt.Errorf("reap stale jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
