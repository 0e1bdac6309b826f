package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fisbench/internal/domain"
)

// MockPromptRepository is a mock implementation of port.PromptRepository.
type MockPromptRepository struct {
	mock.Mock
}

func (m *MockPromptRepository) Create(ctx context.Context, p *domain.PromptVersion) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPromptRepository) Latest(ctx context.Context, provider domain.ProviderID) (*domain.PromptVersion, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptVersion), args.Error(1)
}

func (m *MockPromptRepository) Get(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error) {
	args := m.Called(ctx, provider, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptVersion), args.Error(1)
}

func (m *MockPromptRepository) History(ctx context.Context, provider domain.ProviderID) ([]domain.PromptVersion, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromptVersion), args.Error(1)
}

func (m *MockPromptRepository) Versions(ctx context.Context, provider domain.ProviderID) ([]int, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockPromptRepository) Delete(ctx context.Context, provider domain.ProviderID, version int) error {
	args := m.Called(ctx, provider, version)
	return args.Error(0)
}

func (m *MockPromptRepository) LatestAll(ctx context.Context) ([]domain.PromptVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromptVersion), args.Error(1)
}

// MockAnalysisRepository is a mock implementation of port.AnalysisRepository.
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, a *domain.Analysis) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) List(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Analysis), args.Int(1), args.Error(2)
}

func (m *MockAnalysisRepository) UpdateCost(ctx context.Context, id uuid.UUID, totalCost float64) error {
	args := m.Called(ctx, id, totalCost)
	return args.Error(0)
}

func (m *MockAnalysisRepository) MarkEvaluated(ctx context.Context, id uuid.UUID, notes *string) error {
	args := m.Called(ctx, id, notes)
	return args.Error(0)
}

// MockOCRResultRepository is a mock implementation of port.OCRResultRepository.
type MockOCRResultRepository struct {
	mock.Mock
}

func (m *MockOCRResultRepository) Create(ctx context.Context, r *domain.OCRResult) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockOCRResultRepository) ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]domain.OCRResult, error) {
	args := m.Called(ctx, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OCRResult), args.Error(1)
}

// MockEvaluationRepository is a mock implementation of port.EvaluationRepository.
type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) Upsert(ctx context.Context, e *domain.ModelEvaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEvaluationRepository) ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]domain.ModelEvaluation, error) {
	args := m.Called(ctx, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModelEvaluation), args.Error(1)
}

// MockPromptTestRepository is a mock implementation of port.PromptTestRepository.
type MockPromptTestRepository struct {
	mock.Mock
}

func (m *MockPromptTestRepository) Upsert(ctx context.Context, t *domain.PromptTest) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockPromptTestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PromptTest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptTest), args.Error(1)
}

func (m *MockPromptTestRepository) List(ctx context.Context, filter domain.PromptTestFilter) ([]domain.PromptTest, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PromptTest), args.Int(1), args.Error(2)
}

func (m *MockPromptTestRepository) UpdateLabel(ctx context.Context, t *domain.PromptTest) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockPromptTestRepository) Statistics(ctx context.Context) ([]domain.PromptTestStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromptTestStat), args.Error(1)
}

func (m *MockPromptTestRepository) ListLabeled(ctx context.Context) ([]domain.PromptTest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromptTest), args.Error(1)
}

// MockReceiptRepository is a mock implementation of port.ReceiptRepository.
type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) Create(ctx context.Context, r *domain.Receipt) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) GetByHash(ctx context.Context, hash string) (*domain.Receipt, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) List(ctx context.Context, category string, offset, limit int) ([]domain.Receipt, int, error) {
	args := m.Called(ctx, category, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Receipt), args.Int(1), args.Error(2)
}

func (m *MockReceiptRepository) Update(ctx context.Context, r *domain.Receipt) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReceiptRepository) RecordTest(ctx context.Context, id uuid.UUID, success bool) error {
	args := m.Called(ctx, id, success)
	return args.Error(0)
}
