package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/joshu-sajeev/issueflow/common"
	"github.com/joshu-sajeev/issueflow/internal/config"
	"github.com/joshu-sajeev/issueflow/internal/dto"
	"github.com/joshu-sajeev/issueflow/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type JobService struct {
	repo JobRepoInterface
}

func NewJobService(repo JobRepoInterface) *JobService {
	return &JobService{repo: repo}
}

var _ JobServiceInterface = (*JobService)(nil)

// CreateJob validates job creation input, applies business rules, constructs
// a Job record with status pending, and persists it. Malformed payloads are
// rejected here and never enter the queue. Returns a typed API error for
// validation failures and an internal error for persistence failures.
func (s *JobService) CreateJob(ctx context.Context, userID string, req *dto.JobCreateDTO) (*dto.JobCreatedDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(http.StatusRequestTimeout, "request canceled or timed out")
	}

	if !json.Valid(req.Payload) {
		return nil, common.Errf(http.StatusBadRequest, "payload must be valid JSON")
	}

	if !slices.Contains(config.AllowedJobTypes, req.Type) {
		return nil, common.NewAPIError(
			http.StatusBadRequest,
			"invalid job type",
			map[string]any{
				"provided": req.Type,
				"allowed":  config.AllowedJobTypes,
			},
		)
	}

	switch req.Type {
	case config.JobTypePublishIssue:
		if err := s.validatePublishIssuePayload(req.Payload); err != nil {
			return nil, err
		}
	}

	maxRetries := req.MaxRetries
	if maxRetries == 0 {
		maxRetries = config.DefaultMaxRetries
	}

	job := models.Job{
		ID:         uuid.NewString(),
		UserID:     userID,
		Type:       req.Type,
		Payload:    datatypes.JSON(req.Payload),
		Status:     string(config.JobStatusPending),
		MaxRetries: maxRetries,
	}

	if err := s.repo.Create(ctx, &job); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return nil, common.Errf(http.StatusRequestTimeout, "request was canceled")
		case errors.Is(err, context.DeadlineExceeded):
			return nil, common.Errf(http.StatusRequestTimeout, "request timeout")
		default:
			return nil, common.Errf(http.StatusInternalServerError, "failed to add job to database")
		}
	}

	return &dto.JobCreatedDTO{JobID: job.ID, Status: job.Status}, nil
}

// GetJobByID retrieves a job by its id and enforces ownership: absent jobs
// map to 404, jobs owned by another user to 403.
func (s *JobService) GetJobByID(ctx context.Context, id, userID string) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Errf(
			http.StatusRequestTimeout,
			"request timed out",
		)
	}

	job, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, context.Canceled) {
			return nil, common.Errf(
				http.StatusRequestTimeout,
				"request timed out",
			)
		}

		if errors.Is(err, gorm.ErrRecordNotFound) ||
			strings.Contains(err.Error(), "job not found") {
			return nil, common.Errf(
				http.StatusNotFound,
				"job not found",
			)
		}

		return nil, common.Errf(
			http.StatusInternalServerError,
			"failed to get job",
		)
	}

	if job.UserID != userID {
		return nil, common.Errf(
			http.StatusForbidden,
			"job belongs to another user",
		)
	}

	return &dto.JobResponseDTO{
		ID:          job.ID,
		Type:        job.Type,
		Status:      job.Status,
		RetryCount:  job.RetryCount,
		MaxRetries:  job.MaxRetries,
		Result:      json.RawMessage(job.Result),
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		CompletedAt: job.CompletedAt,
	}, nil
}

func (s *JobService) validatePublishIssuePayload(raw json.RawMessage) error {
	return validatePayload[dto.PublishIssuePayload](raw)
}
