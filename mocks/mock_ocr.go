package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fisbench/internal/domain"
	"fisbench/internal/port"
)

// MockOCRProvider is a mock implementation of port.OCRProvider.
type MockOCRProvider struct {
	mock.Mock
	Provider domain.ProviderID
}

func (m *MockOCRProvider) ID() domain.ProviderID {
	return m.Provider
}

func (m *MockOCRProvider) Extract(ctx context.Context, input port.OCRInput) (*port.OCROutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OCROutput), args.Error(1)
}

// MockOCRCache is a mock implementation of port.OCRCache.
type MockOCRCache struct {
	mock.Mock
}

func (m *MockOCRCache) Get(ctx context.Context, imageHash string, provider domain.ProviderID) (*port.OCROutput, bool, error) {
	args := m.Called(ctx, imageHash, provider)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*port.OCROutput), args.Bool(1), args.Error(2)
}

func (m *MockOCRCache) Set(ctx context.Context, imageHash string, provider domain.ProviderID, out *port.OCROutput, ttl time.Duration) error {
	args := m.Called(ctx, imageHash, provider, out, ttl)
	return args.Error(0)
}
