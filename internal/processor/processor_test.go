package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/joshu-sajeev/issueflow/internal/dto"
	"github.com/joshu-sajeev/issueflow/internal/executor"
	"github.com/joshu-sajeev/issueflow/internal/generate"
	"github.com/joshu-sajeev/issueflow/internal/mocks"
	"github.com/joshu-sajeev/issueflow/internal/models"
	"github.com/joshu-sajeev/issueflow/internal/publisher"
	"github.com/joshu-sajeev/issueflow/internal/storage/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepo(t *testing.T) (*postgres.JobRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Job{}))
	return postgres.NewJobRepository(db), db
}

func newTestProcessor(repo *postgres.JobRepository, pub publisher.IssuePublisher, gen generate.Generator) (*Processor, *[]time.Duration) {
	waits := &[]time.Duration{}
	p := New(repo, pub, gen, zap.NewNop(), 10*time.Minute)
	p.execOpts = executor.Options{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			*waits = append(*waits, d)
			return nil
		},
	}
	return p, waits
}

func seedPending(t *testing.T, repo *postgres.JobRepository, id string, payload string, maxRetries int, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &models.Job{
		ID:         id,
		UserID:     "user-1",
		Type:       "publish_issue",
		Payload:    datatypes.JSON([]byte(payload)),
		Status:     "pending",
		MaxRetries: maxRetries,
		CreatedAt:  createdAt,
	}))
}

const titledPayload = `{"title":"A title","prompt":"do the thing","repository":"acme/app"}`

func TestProcessor_DrainsBatchesOldestFirst(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	pubMock := new(mocks.PublisherMock)
	pubMock.On("Publish", mock.Anything, "acme/app", mock.Anything, mock.Anything).
		Return(&publisher.IssueRef{Number: 1, URL: "https://github.com/acme/app/issues/1"}, nil)

	p, _ := newTestProcessor(repo, pubMock, generate.Heuristic{})

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedPending(t, repo, fmt.Sprintf("job-%d", i), titledPayload, 3, base.Add(time.Duration(i)*time.Minute))
	}

	count, err := p.ProcessPendingJobs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	remaining, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	assert.Equal(t, "job-2", remaining[0].ID)

	for _, id := range []string{"job-0", "job-1"} {
		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "completed", got.Status, id)
		require.NotNil(t, got.CompletedAt, id)
	}

	count, err = p.ProcessPendingJobs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	remaining, err = repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "job-4", remaining[0].ID)
}

func TestProcessor_DerivesTitleFromPrompt(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	pubMock := new(mocks.PublisherMock)
	pubMock.On("Publish", mock.Anything, "acme/app", mock.MatchedBy(func(title string) bool {
		return title != ""
	}), mock.Anything).Return(&publisher.IssueRef{Number: 7, URL: "https://github.com/acme/app/issues/7"}, nil)

	p, _ := newTestProcessor(repo, pubMock, generate.Heuristic{})

	seedPending(t, repo, "job-1",
		`{"prompt":"Add dark mode toggle","repository":"acme/app"}`, 3, time.Now())

	count, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	require.Equal(t, "completed", got.Status)

	var result dto.IssueResult
	require.NoError(t, json.Unmarshal(got.Result, &result))
	assert.Equal(t, 7, result.Number)
	assert.Contains(t, result.URL, "/issues/7")
	assert.Equal(t, "Add dark mode toggle", result.Title)

	pubMock.AssertExpectations(t)
}

func TestProcessor_TerminalFailureFailsJobInOnePass(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	pubMock := new(mocks.PublisherMock)
	pubMock.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: token lacks repo scope", executor.ErrAccessDenied))

	p, waits := newTestProcessor(repo, pubMock, generate.Heuristic{})

	seedPending(t, repo, "job-1", titledPayload, 3, time.Now())

	count, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Contains(t, got.Error, "access denied")
	// The executor absorbed the failure; no job-level retry was spent.
	assert.Equal(t, 0, got.RetryCount)
	require.NotNil(t, got.CompletedAt)
	assert.Empty(t, got.Result)

	pubMock.AssertNumberOfCalls(t, "Publish", 1)
	assert.Empty(t, *waits)
}

func TestProcessor_TransientFailuresRetriedInsideExecutor(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	pubMock := new(mocks.PublisherMock)
	pubMock.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("503 service unavailable")).Twice()
	pubMock.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&publisher.IssueRef{Number: 3, URL: "https://github.com/acme/app/issues/3"}, nil).Once()

	p, waits := newTestProcessor(repo, pubMock, generate.Heuristic{})

	seedPending(t, repo, "job-1", titledPayload, 3, time.Now())

	count, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, 0, got.RetryCount)

	pubMock.AssertNumberOfCalls(t, "Publish", 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestProcessor_ExhaustedExecutorFailsJob(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	pubMock := new(mocks.PublisherMock)
	pubMock.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("connection reset"))

	p, _ := newTestProcessor(repo, pubMock, generate.Heuristic{})

	seedPending(t, repo, "job-1", titledPayload, 3, time.Now())

	_, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Contains(t, got.Error, "connection reset")
	assert.Equal(t, 0, got.RetryCount)

	pubMock.AssertNumberOfCalls(t, "Publish", 3)
}

func TestProcessor_UnexpectedHandlerErrorUsesJobLevelRetry(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	pubMock := new(mocks.PublisherMock)
	p, _ := newTestProcessor(repo, pubMock, generate.Heuristic{})

	// Undecodable payload: the handler errors before reaching the publisher.
	seedPending(t, repo, "job-1", `not json at all`, 2, time.Now())

	count, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Nil(t, got.CompletedAt)

	// Second pass exhausts the job-level budget.
	count, err = p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err = repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, "job failed after maximum retries", got.Error)
	assert.Equal(t, 2, got.RetryCount)
	assert.LessOrEqual(t, got.RetryCount, got.MaxRetries)
	require.NotNil(t, got.CompletedAt)

	pubMock.AssertNotCalled(t, "Publish")
}

func TestProcessor_UnknownJobType(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	p, _ := newTestProcessor(repo, new(mocks.PublisherMock), generate.Heuristic{})

	require.NoError(t, repo.Create(ctx, &models.Job{
		ID:         "job-1",
		UserID:     "user-1",
		Type:       "send_email",
		Payload:    datatypes.JSON([]byte(`{}`)),
		Status:     "pending",
		MaxRetries: 1,
	}))

	_, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", got.Status)
	assert.Equal(t, 1, got.RetryCount)
}

type panickyGenerator struct{}

func (panickyGenerator) Title(context.Context, string) (string, error) { panic("generator bug") }
func (panickyGenerator) Body(context.Context, string, string) (string, error) {
	panic("generator bug")
}

func TestProcessor_HandlerPanicIsRecovered(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	p, _ := newTestProcessor(repo, new(mocks.PublisherMock), panickyGenerator{})

	seedPending(t, repo, "job-1",
		`{"prompt":"p","repository":"acme/app"}`, 3, time.Now())

	count, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 1, got.RetryCount)
}

func TestProcessor_SkipsJobsClaimedByConcurrentRun(t *testing.T) {
	repoMock := new(mocks.JobRepoMock)
	repoMock.On("ReapStale", mock.Anything, mock.Anything).Return(int64(0), nil)
	repoMock.On("ListPending", mock.Anything, 10).Return([]models.Job{
		{ID: "job-1", Type: "publish_issue", Status: "pending"},
	}, nil)
	repoMock.On("Claim", mock.Anything, "job-1").Return(false, nil)

	p := New(repoMock, new(mocks.PublisherMock), generate.Heuristic{}, zap.NewNop(), 10*time.Minute)

	count, err := p.ProcessPendingJobs(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	repoMock.AssertExpectations(t)
	repoMock.AssertNotCalled(t, "MarkCompleted")
	repoMock.AssertNotCalled(t, "MarkFailed")
}

func TestProcessor_StaleProcessingJobsRequeuedBeforeBatch(t *testing.T) {
	repo, db := setupRepo(t)
	ctx := context.Background()

	pubMock := new(mocks.PublisherMock)
	pubMock.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&publisher.IssueRef{Number: 1, URL: "u"}, nil)

	p, _ := newTestProcessor(repo, pubMock, generate.Heuristic{})

	require.NoError(t, repo.Create(ctx, &models.Job{
		ID:         "stuck",
		UserID:     "user-1",
		Type:       "publish_issue",
		Payload:    datatypes.JSON([]byte(titledPayload)),
		Status:     "processing",
		MaxRetries: 3,
	}))
	require.NoError(t, db.Model(&models.Job{}).
		Where("id = ?", "stuck").
		UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	count, err := p.ProcessPendingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "stuck")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
}
