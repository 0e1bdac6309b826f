package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/ocr"
	"fisbench/internal/port"
	s3storage "fisbench/internal/storage/s3"
)

// UploadReceiptInput is the DTO for adding a benchmark receipt.
type UploadReceiptInput struct {
	FileName    string
	Data        []byte
	Name        string
	Description *string
	Category    *string
	Tags        json.RawMessage
	Notes       *string
}

// UpdateReceiptInput carries a partial receipt update. Nil fields are left
// unchanged.
type UpdateReceiptInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Category    *string
	Tags        json.RawMessage
	Notes       *string
	GroundTruth json.RawMessage
}

// CropInput is a crop rectangle in original image pixels.
type CropInput struct {
	ID     uuid.UUID
	X, Y   int
	Width  int
	Height int
}

// ReceiptService defines the benchmark receipt contract.
type ReceiptService interface {
	Upload(ctx context.Context, input UploadReceiptInput) (*domain.Receipt, error)
	List(ctx context.Context, category string, offset, limit int) ([]domain.Receipt, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	ImageURL(ctx context.Context, id uuid.UUID, cropped bool) (string, error)
	Update(ctx context.Context, input UpdateReceiptInput) (*domain.Receipt, error)
	Crop(ctx context.Context, input CropInput) (*domain.Receipt, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type receiptService struct {
	repo     port.ReceiptRepository
	storage  port.ObjectStorage
	s3Cfg    *config.S3Config
	maxBytes int64
	log      *logger.Logger
}

// NewReceiptService creates a new ReceiptService implementation.
func NewReceiptService(
	repo port.ReceiptRepository,
	storage port.ObjectStorage,
	s3Cfg *config.S3Config,
	uploadCfg *config.UploadConfig,
	log *logger.Logger,
) ReceiptService {
	return &receiptService{
		repo:     repo,
		storage:  storage,
		s3Cfg:    s3Cfg,
		maxBytes: uploadCfg.MaxBytes(),
		log:      log,
	}
}

func (s *receiptService) Upload(ctx context.Context, input UploadReceiptInput) (*domain.Receipt, error) {
	file, err := checkUpload(input.FileName, input.Data, s.maxBytes)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByHash(ctx, file.Hash)
	switch {
	case err == nil:
		s.log.Info("duplicate receipt rejected", "hash", file.Hash, "existing_id", existing.ID)
		return nil, domain.ErrDuplicateReceipt
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("checking duplicate: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = input.FileName
	}
	rc := &domain.Receipt{
		ID:            uuid.New(),
		Name:          name,
		Description:   input.Description,
		Category:      input.Category,
		S3Bucket:      s.s3Cfg.Bucket,
		ContentType:   file.ContentType,
		FileHash:      file.Hash,
		FileSizeBytes: int64(len(input.Data)),
		Tags:          input.Tags,
		Notes:         input.Notes,
	}
	rc.OriginalKey = s3storage.ObjectKey(s3storage.PrefixOriginal, rc.ID.String(), file.Ext)
	if file.Type != domain.FileTypePDF {
		if w, h, err := ocr.Dimensions(input.Data); err == nil {
			rc.ImageWidth, rc.ImageHeight = &w, &h
		} else {
			s.log.Warn("reading receipt dimensions failed", "receipt_id", rc.ID, "error", err)
		}
	}

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      rc.S3Bucket,
		Key:         rc.OriginalKey,
		Body:        bytes.NewReader(input.Data),
		ContentType: rc.ContentType,
		Size:        rc.FileSizeBytes,
	}); err != nil {
		s.log.Error("receipt upload failed", "receipt_id", rc.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	if err := s.repo.Create(ctx, rc); err != nil {
		s.cleanup(ctx, rc.S3Bucket, rc.OriginalKey)
		if errors.Is(err, domain.ErrDuplicateReceipt) {
			return nil, err
		}
		return nil, fmt.Errorf("creating receipt: %w", err)
	}

	s.log.Info("receipt uploaded", "receipt_id", rc.ID, "bytes", rc.FileSizeBytes)
	return rc, nil
}

func (s *receiptService) List(ctx context.Context, category string, offset, limit int) ([]domain.Receipt, int, error) {
	return s.repo.List(ctx, category, offset, limit)
}

func (s *receiptService) Get(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *receiptService) ImageURL(ctx context.Context, id uuid.UUID, cropped bool) (string, error) {
	rc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	key := rc.OriginalKey
	if cropped && rc.CroppedKey != nil {
		key = *rc.CroppedKey
	}
	url, err := s.storage.GetPresignedURL(ctx, rc.S3Bucket, key, s.s3Cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning receipt image: %w", err)
	}
	return url, nil
}

func (s *receiptService) Update(ctx context.Context, input UpdateReceiptInput) (*domain.Receipt, error) {
	rc, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("name is empty: %w", domain.ErrInvalidInput)
		}
		rc.Name = name
	}
	if input.Description != nil {
		rc.Description = input.Description
	}
	if input.Category != nil {
		rc.Category = input.Category
	}
	if input.Tags != nil {
		rc.Tags = input.Tags
	}
	if input.Notes != nil {
		rc.Notes = input.Notes
	}
	if input.GroundTruth != nil {
		if !json.Valid(input.GroundTruth) {
			return nil, fmt.Errorf("ground truth is not valid JSON: %w", domain.ErrInvalidInput)
		}
		rc.GroundTruthData = input.GroundTruth
		rc.HasGroundTruth = string(bytes.TrimSpace(input.GroundTruth)) != "null"
	}

	if err := s.repo.Update(ctx, rc); err != nil {
		return nil, fmt.Errorf("updating receipt: %w", err)
	}
	return rc, nil
}

func (s *receiptService) Crop(ctx context.Context, input CropInput) (*domain.Receipt, error) {
	rc, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if rc.ContentType == domain.AllowedFileTypes[domain.FileTypePDF] {
		return nil, fmt.Errorf("cannot crop a PDF: %w", domain.ErrUnsupportedFileType)
	}

	original, err := s.storage.Download(ctx, rc.S3Bucket, rc.OriginalKey)
	if err != nil {
		return nil, fmt.Errorf("downloading original: %w", err)
	}
	cropped, err := ocr.Crop(original, input.X, input.Y, input.Width, input.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	key := s3storage.ObjectKey(s3storage.PrefixCropped, rc.ID.String(), "png")
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      rc.S3Bucket,
		Key:         key,
		Body:        bytes.NewReader(cropped.PNG),
		ContentType: "image/png",
		Size:        int64(len(cropped.PNG)),
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	rc.CroppedKey = &key
	rc.IsCropped = true
	rc.ImageWidth, rc.ImageHeight = &cropped.Width, &cropped.Height
	if err := s.repo.Update(ctx, rc); err != nil {
		return nil, fmt.Errorf("updating receipt: %w", err)
	}

	s.log.Info("receipt cropped", "receipt_id", rc.ID, "width", cropped.Width, "height", cropped.Height)
	return rc, nil
}

func (s *receiptService) Delete(ctx context.Context, id uuid.UUID) error {
	rc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}
	s.cleanup(ctx, rc.S3Bucket, rc.OriginalKey)
	if rc.CroppedKey != nil {
		s.cleanup(ctx, rc.S3Bucket, *rc.CroppedKey)
	}
	return nil
}

// cleanup removes a stored object, logging rather than returning failures.
func (s *receiptService) cleanup(ctx context.Context, bucket, key string) {
	if err := s.storage.Delete(ctx, bucket, key); err != nil {
		s.log.Warn("deleting stored object failed", "key", key, "error", err)
	}
}
