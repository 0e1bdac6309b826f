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

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) Create(ctx context.Context, a *domain.Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO analyses
			(id, file_name, s3_bucket, s3_key, file_hash, file_size_bytes, prompt,
			 total_cost, evaluated, ground_truth, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.FileName, a.S3Bucket, a.S3Key, a.FileHash, a.FileSizeBytes, a.Prompt,
		a.TotalCost, a.Evaluated, a.GroundTruth, a.Notes, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.Create: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	var a domain.Analysis
	err := r.db.GetContext(ctx, &a, "SELECT * FROM analyses WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetByID: %w", err)
	}
	return &a, nil
}

func (r *analysisRepo) List(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM analyses"); err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List count: %w", err)
	}

	var out []domain.Analysis
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM analyses ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("analysisRepo.List: %w", err)
	}
	return out, total, nil
}

func (r *analysisRepo) UpdateCost(ctx context.Context, id uuid.UUID, totalCost float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE analyses SET total_cost = $1 WHERE id = $2", totalCost, id)
	if err != nil {
		return fmt.Errorf("analysisRepo.UpdateCost: %w", err)
	}
	return requireAffected(res, "analysisRepo.UpdateCost")
}

func (r *analysisRepo) MarkEvaluated(ctx context.Context, id uuid.UUID, notes *string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE analyses SET evaluated = TRUE, notes = COALESCE($1, notes) WHERE id = $2", notes, id)
	if err != nil {
		return fmt.Errorf("analysisRepo.MarkEvaluated: %w", err)
	}
	return requireAffected(res, "analysisRepo.MarkEvaluated")
}

func requireAffected(res sql.Result, op string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
