package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/port"
	s3storage "fisbench/internal/storage/s3"
)

// AnalyzeInput is the DTO for a benchmark analysis request.
type AnalyzeInput struct {
	FileName  string
	Data      []byte
	Providers []domain.ProviderID
	Notes     *string
}

// AnalyzeResult is a stored analysis with its per-provider results.
type AnalyzeResult struct {
	Analysis   *domain.Analysis   `json:"analysis"`
	OCRResults []domain.OCRResult `json:"ocr_results"`
	Accounting []ProviderOutput   `json:"accounting"`
}

// AnalysisDetail is a stored analysis with everything recorded against it.
type AnalysisDetail struct {
	Analysis    *domain.Analysis         `json:"analysis"`
	OCRResults  []domain.OCRResult       `json:"ocr_results"`
	Evaluations []domain.ModelEvaluation `json:"evaluations"`
	ImageURL    string                   `json:"image_url,omitempty"`
}

// EvaluateInput marks which providers got an analysis right.
type EvaluateInput struct {
	AnalysisID       uuid.UUID
	CorrectProviders []domain.ProviderID
	Notes            *string
}

// AnalysisService defines the analysis contract.
type AnalysisService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error)
	Evaluate(ctx context.Context, input EvaluateInput) ([]domain.ModelEvaluation, error)
	Get(ctx context.Context, id uuid.UUID) (*AnalysisDetail, error)
	History(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error)
}

type analysisService struct {
	analysisRepo port.AnalysisRepository
	ocrRepo      port.OCRResultRepository
	evalRepo     port.EvaluationRepository
	storage      port.ObjectStorage
	runner       *ocrRunner
	accounting   AccountingService
	s3Cfg        *config.S3Config
	maxBytes     int64
	log          *logger.Logger
}

// NewAnalysisService creates a new AnalysisService implementation. cache may
// be nil.
func NewAnalysisService(
	analysisRepo port.AnalysisRepository,
	ocrRepo port.OCRResultRepository,
	evalRepo port.EvaluationRepository,
	storage port.ObjectStorage,
	providers OCRProviders,
	cache port.OCRCache,
	accounting AccountingService,
	cfg *config.Config,
	log *logger.Logger,
) AnalysisService {
	return &analysisService{
		analysisRepo: analysisRepo,
		ocrRepo:      ocrRepo,
		evalRepo:     evalRepo,
		storage:      storage,
		runner: newOCRRunner(providers, cache, cfg.OCR.CacheTTL,
			cfg.Accounting.BatchTimeout, cfg.Accounting.MaxConcurrency, log),
		accounting: accounting,
		s3Cfg:      &cfg.S3,
		maxBytes:   cfg.Upload.MaxBytes(),
		log:        log,
	}
}

func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeResult, error) {
	file, err := checkUpload(input.FileName, input.Data, s.maxBytes)
	if err != nil {
		return nil, err
	}
	providers, err := s.runner.resolve(input.Providers)
	if err != nil {
		return nil, err
	}
	ocrInput, err := prepare(input.Data, file)
	if err != nil {
		return nil, err
	}

	analysis := &domain.Analysis{
		ID:            uuid.New(),
		FileName:      input.FileName,
		S3Bucket:      s.s3Cfg.Bucket,
		FileHash:      file.Hash,
		FileSizeBytes: int64(len(input.Data)),
		Notes:         input.Notes,
	}
	analysis.S3Key = s3storage.ObjectKey(s3storage.PrefixAnalyses, analysis.ID.String(), file.Ext)

	s.log.Info("analysis started",
		"analysis_id", analysis.ID, "file", input.FileName, "bytes", len(input.Data), "providers", len(providers))

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      analysis.S3Bucket,
		Key:         analysis.S3Key,
		Body:        bytes.NewReader(input.Data),
		ContentType: file.ContentType,
		Size:        int64(len(input.Data)),
	}); err != nil {
		s.log.Error("analysis upload failed", "analysis_id", analysis.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if err := s.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, fmt.Errorf("creating analysis: %w", err)
	}

	outcomes := s.runner.run(ctx, file.Hash, ocrInput, providers)
	inputs := make([]ProviderInput, len(outcomes))
	for i, o := range outcomes {
		inputs[i] = o.toInput(0)
	}
	accounted := s.accounting.ProcessProviderResults(ctx, inputs)

	total := 0.0
	results := make([]domain.OCRResult, 0, len(outcomes))
	for i, o := range outcomes {
		res := ocrResultFor(analysis.ID, o, accounted[i])
		if err := s.ocrRepo.Create(ctx, &res); err != nil {
			return nil, fmt.Errorf("saving %s result: %w", o.Provider, err)
		}
		total += res.EstimatedCost + accounted[i].CostUSD
		results = append(results, res)
	}

	if err := s.analysisRepo.UpdateCost(ctx, analysis.ID, total); err != nil {
		return nil, fmt.Errorf("updating analysis cost: %w", err)
	}
	analysis.TotalCost = total

	s.log.Info("analysis finished", "analysis_id", analysis.ID, "total_cost", total)
	return &AnalyzeResult{Analysis: analysis, OCRResults: results, Accounting: accounted}, nil
}

func ocrResultFor(analysisID uuid.UUID, o ocrOutcome, acc ProviderOutput) domain.OCRResult {
	res := domain.OCRResult{
		ID:               uuid.New(),
		AnalysisID:       analysisID,
		Provider:         o.Provider,
		ProcessingTimeMs: o.LatencyMs,
	}
	if o.Output != nil {
		text := o.Output.Text
		res.TextContent = &text
		res.StructuredData = o.Output.Hints
		res.Confidence = o.Output.Confidence
		if !o.Cached {
			res.EstimatedCost = o.Output.Cost
		}
	}
	if acc.AccountingData != nil {
		if data, err := json.Marshal(acc.AccountingData); err == nil {
			res.AccountingData = data
		}
	}
	switch {
	case o.Err != nil:
		msg := o.Err.Error()
		res.Error = &msg
	case acc.Error != "":
		msg := acc.Error
		res.Error = &msg
	}
	return res
}

func (s *analysisService) Evaluate(ctx context.Context, input EvaluateInput) ([]domain.ModelEvaluation, error) {
	if _, err := s.analysisRepo.GetByID(ctx, input.AnalysisID); err != nil {
		return nil, err
	}
	results, err := s.ocrRepo.ListByAnalysis(ctx, input.AnalysisID)
	if err != nil {
		return nil, fmt.Errorf("loading ocr results: %w", err)
	}

	correct := make(map[domain.ProviderID]bool, len(input.CorrectProviders))
	for _, p := range input.CorrectProviders {
		correct[p] = true
	}

	evals := make([]domain.ModelEvaluation, 0, len(results))
	for _, r := range results {
		e := domain.ModelEvaluation{
			AnalysisID: input.AnalysisID,
			Provider:   r.Provider,
			IsCorrect:  correct[r.Provider],
			Notes:      input.Notes,
		}
		if err := s.evalRepo.Upsert(ctx, &e); err != nil {
			return nil, fmt.Errorf("saving evaluation for %s: %w", r.Provider, err)
		}
		evals = append(evals, e)
	}

	if err := s.analysisRepo.MarkEvaluated(ctx, input.AnalysisID, input.Notes); err != nil {
		return nil, fmt.Errorf("marking analysis evaluated: %w", err)
	}
	s.log.Info("analysis evaluated", "analysis_id", input.AnalysisID, "correct", len(correct))
	return evals, nil
}

func (s *analysisService) Get(ctx context.Context, id uuid.UUID) (*AnalysisDetail, error) {
	a, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	results, err := s.ocrRepo.ListByAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading ocr results: %w", err)
	}
	evals, err := s.evalRepo.ListByAnalysis(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading evaluations: %w", err)
	}

	detail := &AnalysisDetail{Analysis: a, OCRResults: results, Evaluations: evals}
	url, err := s.storage.GetPresignedURL(ctx, a.S3Bucket, a.S3Key, s.s3Cfg.PresignExpiry)
	if err != nil {
		s.log.Warn("presigning analysis image failed", "analysis_id", id, "error", err)
	} else {
		detail.ImageURL = url
	}
	return detail, nil
}

func (s *analysisService) History(ctx context.Context, offset, limit int) ([]domain.Analysis, int, error) {
	return s.analysisRepo.List(ctx, offset, limit)
}
