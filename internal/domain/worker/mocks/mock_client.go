package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/execution-hub/supervisor/internal/domain/message"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

// MockClient is a mock implementation of worker.Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Send(ctx context.Context, w worker.Descriptor, env *message.TaskEnvelope, timeout time.Duration) (*message.CompletionReport, error) {
	args := m.Called(ctx, w, env, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*message.CompletionReport), args.Error(1)
}

func (m *MockClient) CheckHealth(ctx context.Context, w worker.Descriptor, timeout time.Duration) worker.Health {
	args := m.Called(ctx, w, timeout)
	return args.Get(0).(worker.Health)
}
