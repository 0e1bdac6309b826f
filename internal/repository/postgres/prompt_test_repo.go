package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fisbench/internal/domain"
	"fisbench/internal/port"
)

type promptTestRepo struct {
	db *sqlx.DB
}

// NewPromptTestRepo creates a new PostgreSQL-backed PromptTestRepository.
func NewPromptTestRepo(db *sqlx.DB) port.PromptTestRepository {
	return &promptTestRepo{db: db}
}

// Upsert replaces the run output for an existing (receipt, provider, version)
// row but leaves its label and notes alone.
func (r *promptTestRepo) Upsert(ctx context.Context, t *domain.PromptTest) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now().UTC()

	err := r.db.GetContext(ctx, &t.ID,
		`INSERT INTO prompt_tests
			(id, receipt_id, provider, prompt_version, schema_version, original_image_key,
			 cropped_image_key, ocr_text, ocr_confidence, ocr_processing_time_ms, ocr_cost,
			 llm_model, prompt_used, llm_response_raw, accounting_data,
			 llm_processing_time_ms, llm_cost, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		 ON CONFLICT (receipt_id, provider, prompt_version) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			original_image_key = EXCLUDED.original_image_key,
			cropped_image_key = EXCLUDED.cropped_image_key,
			ocr_text = EXCLUDED.ocr_text,
			ocr_confidence = EXCLUDED.ocr_confidence,
			ocr_processing_time_ms = EXCLUDED.ocr_processing_time_ms,
			ocr_cost = EXCLUDED.ocr_cost,
			llm_model = EXCLUDED.llm_model,
			prompt_used = EXCLUDED.prompt_used,
			llm_response_raw = EXCLUDED.llm_response_raw,
			accounting_data = EXCLUDED.accounting_data,
			llm_processing_time_ms = EXCLUDED.llm_processing_time_ms,
			llm_cost = EXCLUDED.llm_cost,
			created_at = EXCLUDED.created_at
		 RETURNING id`,
		t.ID, t.ReceiptID, t.Provider, t.PromptVersion, t.SchemaVersion, t.OriginalImageKey,
		t.CroppedImageKey, t.OCRText, t.OCRConfidence, t.OCRProcessingTimeMs, t.OCRCost,
		t.LLMModel, t.PromptUsed, t.LLMResponseRaw, nullJSON(t.AccountingData),
		t.LLMProcessingTimeMs, t.LLMCost, nullJSON(t.Tags), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("promptTestRepo.Upsert: %w", err)
	}
	return nil
}

func (r *promptTestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PromptTest, error) {
	var t domain.PromptTest
	err := r.db.GetContext(ctx, &t, "SELECT * FROM prompt_tests WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("promptTestRepo.GetByID: %w", err)
	}
	return &t, nil
}

// buildTestWhere constructs the WHERE clause for prompt test listings.
func buildTestWhere(f domain.PromptTestFilter) (clause string, args []interface{}) {
	clause = "WHERE 1=1"
	argN := 0
	if f.Provider != "" {
		argN++
		clause += fmt.Sprintf(" AND provider = $%d", argN)
		args = append(args, f.Provider)
	}
	if f.PromptVersion > 0 {
		argN++
		clause += fmt.Sprintf(" AND prompt_version = $%d", argN)
		args = append(args, f.PromptVersion)
	}
	if f.Label != "" {
		argN++
		clause += fmt.Sprintf(" AND label = $%d", argN)
		args = append(args, f.Label)
	}
	if f.ReceiptID != nil {
		argN++
		clause += fmt.Sprintf(" AND receipt_id = $%d", argN)
		args = append(args, *f.ReceiptID)
	}
	return clause, args
}

func (r *promptTestRepo) List(ctx context.Context, f domain.PromptTestFilter) ([]domain.PromptTest, int, error) {
	where, args := buildTestWhere(f)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM prompt_tests "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("promptTestRepo.List count: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT * FROM prompt_tests %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, n+1, n+2)
	args = append(args, f.Limit, f.Offset)

	var out []domain.PromptTest
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, fmt.Errorf("promptTestRepo.List: %w", err)
	}
	return out, total, nil
}

func (r *promptTestRepo) UpdateLabel(ctx context.Context, t *domain.PromptTest) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE prompt_tests SET
			label = $1, error_type = $2, error_details = $3, expected_output = $4,
			user_notes = $5, tags = COALESCE($6, tags), labeled_at = $7
		 WHERE id = $8`,
		t.Label, t.ErrorType, nullJSON(t.ErrorDetails), nullJSON(t.ExpectedOutput),
		t.UserNotes, nullJSON(t.Tags), t.LabeledAt, t.ID)
	if err != nil {
		return fmt.Errorf("promptTestRepo.UpdateLabel: %w", err)
	}
	return requireAffected(res, "promptTestRepo.UpdateLabel")
}

func (r *promptTestRepo) Statistics(ctx context.Context) ([]domain.PromptTestStat, error) {
	var out []domain.PromptTestStat
	err := r.db.SelectContext(ctx, &out,
		`SELECT provider, prompt_version,
			COUNT(*) AS total,
			COUNT(label) AS labeled,
			COUNT(*) FILTER (WHERE label = 'correct') AS correct,
			COUNT(*) FILTER (WHERE label = 'incorrect') AS incorrect,
			COUNT(*) FILTER (WHERE label = 'partial') AS partial
		 FROM prompt_tests
		 GROUP BY provider, prompt_version
		 ORDER BY provider, prompt_version DESC`)
	if err != nil {
		return nil, fmt.Errorf("promptTestRepo.Statistics: %w", err)
	}
	return out, nil
}

func (r *promptTestRepo) ListLabeled(ctx context.Context) ([]domain.PromptTest, error) {
	var out []domain.PromptTest
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM prompt_tests WHERE label IS NOT NULL ORDER BY labeled_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("promptTestRepo.ListLabeled: %w", err)
	}
	return out, nil
}
