package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fisbench/internal/domain"
	"fisbench/internal/service"
)

// MockAccountingService is a mock implementation of service.AccountingService.
type MockAccountingService struct {
	mock.Mock
}

func (m *MockAccountingService) ProcessProviderResults(ctx context.Context, inputs []service.ProviderInput) []service.ProviderOutput {
	args := m.Called(ctx, inputs)
	if fn, ok := args.Get(0).(func([]service.ProviderInput) []service.ProviderOutput); ok {
		return fn(inputs)
	}
	return args.Get(0).([]service.ProviderOutput)
}

func (m *MockAccountingService) Normalize(ctx context.Context, input service.NormalizeInput) (*service.NormalizeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.NormalizeOutput), args.Error(1)
}

// MockPromptService is a mock implementation of service.PromptService.
type MockPromptService struct {
	mock.Mock
}

func (m *MockPromptService) GetCurrent(ctx context.Context, provider domain.ProviderID) (*domain.PromptVersion, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptVersion), args.Error(1)
}

func (m *MockPromptService) Get(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error) {
	args := m.Called(ctx, provider, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptVersion), args.Error(1)
}

func (m *MockPromptService) Save(ctx context.Context, input service.SavePromptInput) (*domain.PromptVersion, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptVersion), args.Error(1)
}

func (m *MockPromptService) Restore(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error) {
	args := m.Called(ctx, provider, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptVersion), args.Error(1)
}

func (m *MockPromptService) History(ctx context.Context, provider domain.ProviderID) ([]domain.PromptVersion, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromptVersion), args.Error(1)
}

func (m *MockPromptService) Versions(ctx context.Context, provider domain.ProviderID) ([]int, error) {
	args := m.Called(ctx, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockPromptService) Delete(ctx context.Context, provider domain.ProviderID, version int) error {
	args := m.Called(ctx, provider, version)
	return args.Error(0)
}

func (m *MockPromptService) All(ctx context.Context) ([]domain.PromptVersion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromptVersion), args.Error(1)
}

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, input service.AnalyzeInput) (*service.AnalyzeResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyzeResult), args.Error(1)
}

func (m *MockAnalysisService) Evaluate(ctx context.Context, input service.EvaluateInput) ([]domain.ModelEvaluation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModelEvaluation), args.Error(1)
}

func (m *MockAnalysisService) Get(ctx context.Context, id uuid.UUID) (*service.AnalysisDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalysisDetail), args.Error(1)
}

func (m *MockAnalysisService) History(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Analysis), args.Int(1), args.Error(2)
}

// MockReceiptService is a mock implementation of service.ReceiptService.
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) Upload(ctx context.Context, input service.UploadReceiptInput) (*domain.Receipt, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) List(ctx context.Context, category string, offset, limit int) ([]domain.Receipt, int, error) {
	args := m.Called(ctx, category, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Receipt), args.Int(1), args.Error(2)
}

func (m *MockReceiptService) Get(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) ImageURL(ctx context.Context, id uuid.UUID, cropped bool) (string, error) {
	args := m.Called(ctx, id, cropped)
	return args.String(0), args.Error(1)
}

func (m *MockReceiptService) Update(ctx context.Context, input service.UpdateReceiptInput) (*domain.Receipt, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) Crop(ctx context.Context, input service.CropInput) (*domain.Receipt, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPromptTestService is a mock implementation of service.PromptTestService.
type MockPromptTestService struct {
	mock.Mock
}

func (m *MockPromptTestService) Create(ctx context.Context, t *domain.PromptTest) (*domain.PromptTest, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptTest), args.Error(1)
}

func (m *MockPromptTestService) Run(ctx context.Context, input service.RunPromptTestInput) (*domain.PromptTest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptTest), args.Error(1)
}

func (m *MockPromptTestService) Label(ctx context.Context, input service.LabelInput) (*domain.PromptTest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptTest), args.Error(1)
}

func (m *MockPromptTestService) List(ctx context.Context, filter domain.PromptTestFilter) ([]domain.PromptTest, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.PromptTest), args.Int(1), args.Error(2)
}

func (m *MockPromptTestService) Get(ctx context.Context, id uuid.UUID) (*domain.PromptTest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PromptTest), args.Error(1)
}

func (m *MockPromptTestService) Statistics(ctx context.Context) ([]domain.PromptTestStat, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PromptTestStat), args.Error(1)
}

func (m *MockPromptTestService) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, format, w)
	if fn, ok := args.Get(0).(func(io.Writer) error); ok {
		return fn(w)
	}
	return args.Error(0)
}
