package port

import (
	"context"

	"github.com/google/uuid"

	"fisbench/internal/domain"
)

// PromptRepository defines the contract for prompt version persistence.
// Versions are append-only per provider.
type PromptRepository interface {
	Create(ctx context.Context, p *domain.PromptVersion) error
	Latest(ctx context.Context, provider domain.ProviderID) (*domain.PromptVersion, error)
	Get(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error)
	// History returns every version of provider, newest first.
	History(ctx context.Context, provider domain.ProviderID) ([]domain.PromptVersion, error)
	Versions(ctx context.Context, provider domain.ProviderID) ([]int, error)
	Delete(ctx context.Context, provider domain.ProviderID, version int) error
	LatestAll(ctx context.Context) ([]domain.PromptVersion, error)
}

// AnalysisRepository defines the contract for analysis persistence.
type AnalysisRepository interface {
	Create(ctx context.Context, a *domain.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)
	List(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error)
	UpdateCost(ctx context.Context, id uuid.UUID, totalCost float64) error
	MarkEvaluated(ctx context.Context, id uuid.UUID, notes *string) error
}

// OCRResultRepository defines the contract for per-provider OCR output persistence.
type OCRResultRepository interface {
	Create(ctx context.Context, r *domain.OCRResult) error
	ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]domain.OCRResult, error)
}

// EvaluationRepository defines the contract for model evaluation persistence.
type EvaluationRepository interface {
	// Upsert inserts or replaces the evaluation for (analysis_id, provider).
	Upsert(ctx context.Context, e *domain.ModelEvaluation) error
	ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]domain.ModelEvaluation, error)
}

// PromptTestRepository defines the contract for prompt test persistence.
type PromptTestRepository interface {
	// Upsert updates the row matching (receipt_id, provider, prompt_version) in place,
	// or inserts a new one. The stored ID is written back to t.
	Upsert(ctx context.Context, t *domain.PromptTest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PromptTest, error)
	List(ctx context.Context, filter domain.PromptTestFilter) ([]domain.PromptTest, int, error)
	UpdateLabel(ctx context.Context, t *domain.PromptTest) error
	Statistics(ctx context.Context) ([]domain.PromptTestStat, error)
	ListLabeled(ctx context.Context) ([]domain.PromptTest, error)
}

// ReceiptRepository defines the contract for benchmark receipt persistence.
type ReceiptRepository interface {
	Create(ctx context.Context, r *domain.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	GetByHash(ctx context.Context, hash string) (*domain.Receipt, error)
	List(ctx context.Context, category string, offset, limit int) ([]domain.Receipt, int, error)
	Update(ctx context.Context, r *domain.Receipt) error
	Delete(ctx context.Context, id uuid.UUID) error
	RecordTest(ctx context.Context, id uuid.UUID, success bool) error
}
