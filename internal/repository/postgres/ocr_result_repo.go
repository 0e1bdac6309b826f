package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fisbench/internal/domain"
	"fisbench/internal/port"
)

type ocrResultRepo struct {
	db *sqlx.DB
}

// NewOCRResultRepo creates a new PostgreSQL-backed OCRResultRepository.
func NewOCRResultRepo(db *sqlx.DB) port.OCRResultRepository {
	return &ocrResultRepo{db: db}
}

func (r *ocrResultRepo) Create(ctx context.Context, res *domain.OCRResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ocr_results
			(id, analysis_id, provider, text_content, structured_data, confidence,
			 processing_time_ms, estimated_cost, accounting_data, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		res.ID, res.AnalysisID, res.Provider, res.TextContent, nullJSON(res.StructuredData),
		res.Confidence, res.ProcessingTimeMs, res.EstimatedCost, nullJSON(res.AccountingData),
		res.Error, res.CreatedAt)
	if err != nil {
		return fmt.Errorf("ocrResultRepo.Create: %w", err)
	}
	return nil
}

func (r *ocrResultRepo) ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]domain.OCRResult, error) {
	var out []domain.OCRResult
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM ocr_results WHERE analysis_id = $1 ORDER BY created_at ASC`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("ocrResultRepo.ListByAnalysis: %w", err)
	}
	return out, nil
}
