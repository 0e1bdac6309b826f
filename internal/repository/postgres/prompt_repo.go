package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fisbench/internal/domain"
	"fisbench/internal/port"
)

type promptRepo struct {
	db *sqlx.DB
}

// NewPromptRepo creates a new PostgreSQL-backed PromptRepository.
func NewPromptRepo(db *sqlx.DB) port.PromptRepository {
	return &promptRepo{db: db}
}

func (r *promptRepo) Create(ctx context.Context, p *domain.PromptVersion) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	err := r.db.GetContext(ctx, &p.ID,
		`INSERT INTO prompt_versions
			(provider, version, schema_version, prompt_text, previous_version, restored_from_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		p.Provider, p.Version, p.SchemaVersion, p.PromptText,
		p.PreviousVersion, p.RestoredFromVersion, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("promptRepo.Create: %w", err)
	}
	return nil
}

func (r *promptRepo) Latest(ctx context.Context, provider domain.ProviderID) (*domain.PromptVersion, error) {
	var p domain.PromptVersion
	err := r.db.GetContext(ctx, &p,
		`SELECT * FROM prompt_versions WHERE provider = $1 ORDER BY version DESC LIMIT 1`, provider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("promptRepo.Latest: %w", err)
	}
	return &p, nil
}

func (r *promptRepo) Get(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error) {
	var p domain.PromptVersion
	err := r.db.GetContext(ctx, &p,
		`SELECT * FROM prompt_versions WHERE provider = $1 AND version = $2`, provider, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPromptVersionNotFound
		}
		return nil, fmt.Errorf("promptRepo.Get: %w", err)
	}
	return &p, nil
}

func (r *promptRepo) History(ctx context.Context, provider domain.ProviderID) ([]domain.PromptVersion, error) {
	var out []domain.PromptVersion
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM prompt_versions WHERE provider = $1 ORDER BY version DESC`, provider)
	if err != nil {
		return nil, fmt.Errorf("promptRepo.History: %w", err)
	}
	return out, nil
}

func (r *promptRepo) Versions(ctx context.Context, provider domain.ProviderID) ([]int, error) {
	var out []int
	err := r.db.SelectContext(ctx, &out,
		`SELECT version FROM prompt_versions WHERE provider = $1 ORDER BY version ASC`, provider)
	if err != nil {
		return nil, fmt.Errorf("promptRepo.Versions: %w", err)
	}
	return out, nil
}

func (r *promptRepo) Delete(ctx context.Context, provider domain.ProviderID, version int) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM prompt_versions WHERE provider = $1 AND version = $2`, provider, version)
	if err != nil {
		return fmt.Errorf("promptRepo.Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("promptRepo.Delete rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrPromptVersionNotFound
	}
	return nil
}

func (r *promptRepo) LatestAll(ctx context.Context) ([]domain.PromptVersion, error) {
	var out []domain.PromptVersion
	err := r.db.SelectContext(ctx, &out,
		`SELECT DISTINCT ON (provider) * FROM prompt_versions ORDER BY provider, version DESC`)
	if err != nil {
		return nil, fmt.Errorf("promptRepo.LatestAll: %w", err)
	}
	return out, nil
}
