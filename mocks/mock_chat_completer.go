package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fisbench/internal/port"
)

// MockChatCompleter is a mock implementation of port.ChatCompleter.
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) Complete(ctx context.Context, req port.ChatRequest) (*port.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ChatResponse), args.Error(1)
}
