package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type GeneratorMock struct {
	mock.Mock
}

func (m *GeneratorMock) Title(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *GeneratorMock) Body(ctx context.Context, prompt, title string) (string, error) {
	args := m.Called(ctx, prompt, title)
	return args.String(0), args.Error(1)
}
