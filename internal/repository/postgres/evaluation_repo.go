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

type evaluationRepo struct {
	db *sqlx.DB
}

// NewEvaluationRepo creates a new PostgreSQL-backed EvaluationRepository.
func NewEvaluationRepo(db *sqlx.DB) port.EvaluationRepository {
	return &evaluationRepo{db: db}
}

func (r *evaluationRepo) Upsert(ctx context.Context, e *domain.ModelEvaluation) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.EvaluatedAt = time.Now().UTC()

	err := r.db.GetContext(ctx, &e.ID,
		`INSERT INTO model_evaluations
			(id, analysis_id, provider, is_correct, accuracy_score, notes, evaluated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (analysis_id, provider) DO UPDATE SET
			is_correct = EXCLUDED.is_correct,
			accuracy_score = EXCLUDED.accuracy_score,
			notes = EXCLUDED.notes,
			evaluated_at = EXCLUDED.evaluated_at
		 RETURNING id`,
		e.ID, e.AnalysisID, e.Provider, e.IsCorrect, e.AccuracyScore, e.Notes, e.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("evaluationRepo.Upsert: %w", err)
	}
	return nil
}

func (r *evaluationRepo) ListByAnalysis(ctx context.Context, analysisID uuid.UUID) ([]domain.ModelEvaluation, error) {
	var out []domain.ModelEvaluation
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM model_evaluations WHERE analysis_id = $1 ORDER BY provider`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("evaluationRepo.ListByAnalysis: %w", err)
	}
	return out, nil
}
