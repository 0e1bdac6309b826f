package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"fisbench/internal/accounting"
	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/export"
	"fisbench/internal/logger"
	"fisbench/internal/port"
)

// RunPromptTestInput runs a stored receipt through one provider at one
// prompt version. Zero PromptVersion uses the current prompt.
type RunPromptTestInput struct {
	ReceiptID     uuid.UUID
	Provider      domain.ProviderID
	PromptVersion int
	UseCropped    bool
}

// LabelInput is a human verdict on a prompt test.
type LabelInput struct {
	ID             uuid.UUID
	Label          domain.TestLabel
	ErrorType      *domain.ErrorType
	ErrorDetails   json.RawMessage
	ExpectedOutput json.RawMessage
	Notes          *string
	Tags           json.RawMessage
}

// PromptTestService defines the prompt benchmark contract.
type PromptTestService interface {
	Create(ctx context.Context, t *domain.PromptTest) (*domain.PromptTest, error)
	Run(ctx context.Context, input RunPromptTestInput) (*domain.PromptTest, error)
	Label(ctx context.Context, input LabelInput) (*domain.PromptTest, error)
	List(ctx context.Context, filter domain.PromptTestFilter) ([]domain.PromptTest, int, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.PromptTest, error)
	Statistics(ctx context.Context) ([]domain.PromptTestStat, error)
	Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error
}

type promptTestService struct {
	repo        port.PromptTestRepository
	receiptRepo port.ReceiptRepository
	storage     port.ObjectStorage
	runner      *ocrRunner
	accounting  AccountingService
	registry    *accounting.Registry
	log         *logger.Logger
	now         func() time.Time
}

// NewPromptTestService creates a new PromptTestService implementation.
func NewPromptTestService(
	repo port.PromptTestRepository,
	receiptRepo port.ReceiptRepository,
	storage port.ObjectStorage,
	providers OCRProviders,
	cache port.OCRCache,
	accountingSvc AccountingService,
	registry *accounting.Registry,
	cfg *config.Config,
	log *logger.Logger,
) PromptTestService {
	return &promptTestService{
		repo:        repo,
		receiptRepo: receiptRepo,
		storage:     storage,
		runner: newOCRRunner(providers, cache, cfg.OCR.CacheTTL,
			cfg.Accounting.BatchTimeout, 1, log),
		accounting: accountingSvc,
		registry:   registry,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create stores t, replacing the run output of an existing test for the same
// receipt, provider and prompt version.
func (s *promptTestService) Create(ctx context.Context, t *domain.PromptTest) (*domain.PromptTest, error) {
	if !t.Provider.IsKnown() {
		return nil, fmt.Errorf("%q: %w", t.Provider, domain.ErrUnsupportedProvider)
	}
	if t.PromptVersion < 1 {
		return nil, fmt.Errorf("prompt version must be positive: %w", domain.ErrInvalidInput)
	}
	if t.SchemaVersion == "" {
		t.SchemaVersion = s.registry.SchemaFor(t.PromptVersion)
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return nil, fmt.Errorf("saving prompt test: %w", err)
	}
	s.log.Info("prompt test stored", "id", t.ID, "provider", t.Provider, "prompt_version", t.PromptVersion)
	return t, nil
}

func (s *promptTestService) Run(ctx context.Context, input RunPromptTestInput) (*domain.PromptTest, error) {
	rc, err := s.receiptRepo.GetByID(ctx, input.ReceiptID)
	if err != nil {
		return nil, err
	}
	providers, err := s.runner.resolve([]domain.ProviderID{input.Provider})
	if err != nil {
		return nil, err
	}

	key := rc.OriginalKey
	var croppedKey *string
	if input.UseCropped && rc.CroppedKey != nil {
		key = *rc.CroppedKey
		croppedKey = rc.CroppedKey
	}
	data, err := s.storage.Download(ctx, rc.S3Bucket, key)
	if err != nil {
		return nil, fmt.Errorf("downloading receipt image: %w", err)
	}
	file, err := checkUpload(key, data, 0)
	if err != nil {
		return nil, err
	}
	ocrInput, err := prepare(data, file)
	if err != nil {
		return nil, err
	}

	outcome := s.runner.run(ctx, file.Hash, ocrInput, providers)[0]
	acc := s.accounting.ProcessProviderResults(ctx, []ProviderInput{outcome.toInput(input.PromptVersion)})[0]

	if acc.PromptVersion == 0 {
		// No version to key the test under.
		return nil, fmt.Errorf("resolving %s prompt: %s", input.Provider, acc.Error)
	}

	t := &domain.PromptTest{
		ReceiptID:        &rc.ID,
		Provider:         input.Provider,
		PromptVersion:    acc.PromptVersion,
		SchemaVersion:    acc.SchemaVersion,
		OriginalImageKey: rc.OriginalKey,
		CroppedImageKey:  croppedKey,
		PromptUsed:       acc.PromptUsed,
	}
	if outcome.Output != nil {
		text := outcome.Output.Text
		ms := outcome.LatencyMs
		cost := outcome.Output.Cost
		t.OCRText, t.OCRConfidence, t.OCRProcessingTimeMs, t.OCRCost = &text, outcome.Output.Confidence, &ms, &cost
	}
	if acc.Model != "" {
		t.LLMModel = &acc.Model
	}
	if acc.RawResponse != "" {
		t.LLMResponseRaw = &acc.RawResponse
	}
	llmMs, llmCost := acc.LatencyMs, acc.CostUSD
	t.LLMProcessingTimeMs, t.LLMCost = &llmMs, &llmCost
	if acc.AccountingData != nil {
		if data, err := json.Marshal(acc.AccountingData); err == nil {
			t.AccountingData = data
		}
	}
	if acc.Error != "" {
		details, _ := json.Marshal(map[string]string{"pipeline_error": acc.Error})
		t.ErrorDetails = details
	}

	return s.Create(ctx, t)
}

func (s *promptTestService) Label(ctx context.Context, input LabelInput) (*domain.PromptTest, error) {
	if !input.Label.Valid() {
		return nil, domain.ErrInvalidLabel
	}
	if input.ErrorType != nil && !input.ErrorType.Valid() {
		return nil, domain.ErrInvalidLabel
	}
	for _, raw := range []json.RawMessage{input.ErrorDetails, input.ExpectedOutput, input.Tags} {
		if raw != nil && !json.Valid(raw) {
			return nil, fmt.Errorf("label payload is not valid JSON: %w", domain.ErrInvalidInput)
		}
	}

	t, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	firstLabel := t.Label == nil

	label := input.Label
	now := s.now()
	t.Label = &label
	t.ErrorType = input.ErrorType
	t.ErrorDetails = input.ErrorDetails
	t.ExpectedOutput = input.ExpectedOutput
	t.UserNotes = input.Notes
	t.Tags = input.Tags
	t.LabeledAt = &now

	if err := s.repo.UpdateLabel(ctx, t); err != nil {
		return nil, fmt.Errorf("labeling prompt test: %w", err)
	}

	if firstLabel && t.ReceiptID != nil {
		if err := s.receiptRepo.RecordTest(ctx, *t.ReceiptID, label == domain.LabelCorrect); err != nil {
			s.log.Warn("recording receipt test count failed", "receipt_id", *t.ReceiptID, "error", err)
		}
	}
	s.log.Info("prompt test labeled", "id", t.ID, "label", label)
	return t, nil
}

func (s *promptTestService) List(ctx context.Context, filter domain.PromptTestFilter) ([]domain.PromptTest, int, error) {
	if filter.Label != "" && !filter.Label.Valid() {
		return nil, 0, domain.ErrInvalidLabel
	}
	return s.repo.List(ctx, filter)
}

func (s *promptTestService) Get(ctx context.Context, id uuid.UUID) (*domain.PromptTest, error) {
	return s.repo.GetByID(ctx, id)
}

// Statistics returns per (provider, prompt version) label counts. Accuracy is
// correct over labeled, zero when nothing is labeled.
func (s *promptTestService) Statistics(ctx context.Context) ([]domain.PromptTestStat, error) {
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading statistics: %w", err)
	}
	for i := range stats {
		if stats[i].Labeled > 0 {
			stats[i].Accuracy = float64(stats[i].Correct) / float64(stats[i].Labeled)
		}
	}
	return stats, nil
}

func (s *promptTestService) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		return fmt.Errorf("export format %q: %w", format, domain.ErrInvalidInput)
	}
	tests, err := s.repo.ListLabeled(ctx)
	if err != nil {
		return fmt.Errorf("loading labeled tests: %w", err)
	}
	s.log.Info("exporting prompt tests", "format", format, "count", len(tests))
	return export.Write(w, format, tests)
}
