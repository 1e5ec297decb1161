package mocks

import (
	"context"

	"github.com/joshu-sajeev/issueflow/internal/dto"
	"github.com/stretchr/testify/mock"
)

type JobServiceMock struct {
	mock.Mock
}

func (m *JobServiceMock) CreateJob(ctx context.Context, userID string, req *dto.JobCreateDTO) (*dto.JobCreatedDTO, error) {
	args := m.Called(ctx, userID, req)

	resp, _ := args.Get(0).(*dto.JobCreatedDTO)
	return resp, args.Error(1)
}

func (m *JobServiceMock) GetJobByID(ctx context.Context, id, userID string) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id, userID)

	resp, _ := args.Get(0).(*dto.JobResponseDTO)
	return resp, args.Error(1)
}
