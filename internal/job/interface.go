package job

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/issueflow/internal/dto"
	"github.com/joshu-sajeev/issueflow/internal/models"
	"gorm.io/datatypes"
)

// JobRepoInterface defines the contract for job persistence operations.
type JobRepoInterface interface {
	Create(ctx context.Context, job *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	ListPending(ctx context.Context, limit int) ([]models.Job, error)
	Claim(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, id string, patch map[string]any) error
	MarkCompleted(ctx context.Context, id string, result datatypes.JSON) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	RequeueForRetry(ctx context.Context, id string, retryCount int) error
	ReapStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// JobServiceInterface defines the contract for job business logic operations.
type JobServiceInterface interface {
	CreateJob(ctx context.Context, userID string, req *dto.JobCreateDTO) (*dto.JobCreatedDTO, error)
	GetJobByID(ctx context.Context, id, userID string) (*dto.JobResponseDTO, error)
}

// JobHandlerInterface defines the contract for HTTP request handlers.
type JobHandlerInterface interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
}
