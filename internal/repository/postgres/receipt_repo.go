package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"fisbench/internal/domain"
	"fisbench/internal/port"
)

const uniqueViolation = "23505"

type receiptRepo struct {
	db *sqlx.DB
}

// NewReceiptRepo creates a new PostgreSQL-backed ReceiptRepository.
func NewReceiptRepo(db *sqlx.DB) port.ReceiptRepository {
	return &receiptRepo{db: db}
}

func (r *receiptRepo) Create(ctx context.Context, rc *domain.Receipt) error {
	if rc.ID == uuid.Nil {
		rc.ID = uuid.New()
	}
	now := time.Now().UTC()
	rc.CreatedAt = now
	rc.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO receipts
			(id, name, description, category, s3_bucket, original_key, cropped_key, is_cropped,
			 content_type, file_hash, file_size_bytes, image_width, image_height,
			 ground_truth_data, has_ground_truth, tags, notes, test_count, success_count,
			 created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		rc.ID, rc.Name, rc.Description, rc.Category, rc.S3Bucket, rc.OriginalKey, rc.CroppedKey, rc.IsCropped,
		rc.ContentType, rc.FileHash, rc.FileSizeBytes, rc.ImageWidth, rc.ImageHeight,
		nullJSON(rc.GroundTruthData), rc.HasGroundTruth, nullJSON(rc.Tags), rc.Notes,
		rc.TestCount, rc.SuccessCount, rc.CreatedAt, rc.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateReceipt
		}
		return fmt.Errorf("receiptRepo.Create: %w", err)
	}
	return nil
}

func (r *receiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	var rc domain.Receipt
	err := r.db.GetContext(ctx, &rc, "SELECT * FROM receipts WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("receiptRepo.GetByID: %w", err)
	}
	return &rc, nil
}

func (r *receiptRepo) GetByHash(ctx context.Context, hash string) (*domain.Receipt, error) {
	var rc domain.Receipt
	err := r.db.GetContext(ctx, &rc, "SELECT * FROM receipts WHERE file_hash = $1", hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("receiptRepo.GetByHash: %w", err)
	}
	return &rc, nil
}

func (r *receiptRepo) List(ctx context.Context, category string, offset, limit int) ([]domain.Receipt, int, error) {
	var (
		total int
		out   []domain.Receipt
		err   error
	)
	if category == "" {
		err = r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM receipts")
	} else {
		err = r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM receipts WHERE category = $1", category)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.List count: %w", err)
	}

	if category == "" {
		err = r.db.SelectContext(ctx, &out,
			`SELECT * FROM receipts ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &out,
			`SELECT * FROM receipts WHERE category = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			category, limit, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.List: %w", err)
	}
	return out, total, nil
}

func (r *receiptRepo) Update(ctx context.Context, rc *domain.Receipt) error {
	rc.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE receipts SET
			name = $1, description = $2, category = $3, cropped_key = $4, is_cropped = $5,
			image_width = $6, image_height = $7, ground_truth_data = $8, has_ground_truth = $9,
			tags = $10, notes = $11, updated_at = $12
		 WHERE id = $13`,
		rc.Name, rc.Description, rc.Category, rc.CroppedKey, rc.IsCropped,
		rc.ImageWidth, rc.ImageHeight, nullJSON(rc.GroundTruthData), rc.HasGroundTruth,
		nullJSON(rc.Tags), rc.Notes, rc.UpdatedAt, rc.ID)
	if err != nil {
		return fmt.Errorf("receiptRepo.Update: %w", err)
	}
	return requireAffected(res, "receiptRepo.Update")
}

func (r *receiptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("receiptRepo.Delete: %w", err)
	}
	return requireAffected(res, "receiptRepo.Delete")
}

func (r *receiptRepo) RecordTest(ctx context.Context, id uuid.UUID, success bool) error {
	inc := 0
	if success {
		inc = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE receipts SET test_count = test_count + 1, success_count = success_count + $1,
			updated_at = NOW()
		 WHERE id = $2`, inc, id)
	if err != nil {
		return fmt.Errorf("receiptRepo.RecordTest: %w", err)
	}
	return requireAffected(res, "receiptRepo.RecordTest")
}
