package mocks

import (
	"context"

	"github.com/joshu-sajeev/issueflow/internal/publisher"
	"github.com/stretchr/testify/mock"
)

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, repo, title, body string) (*publisher.IssueRef, error) {
	args := m.Called(ctx, repo, title, body)

	ref, _ := args.Get(0).(*publisher.IssueRef)
	return ref, args.Error(1)
}
