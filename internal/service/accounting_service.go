package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fisbench/internal/accounting"
	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/port"
	"fisbench/internal/validator"
)

// ProviderInput is one OCR provider's output awaiting normalization.
type ProviderInput struct {
	Provider domain.ProviderID
	Text     string
	Hints    json.RawMessage
	// Error is the upstream OCR failure, if any.
	Error string
	// PromptVersion pins a stored prompt; zero means the current one.
	PromptVersion int
}

// ProviderOutput is the normalized accounting result for one provider.
type ProviderOutput struct {
	Provider       domain.ProviderID          `json:"provider"`
	PromptVersion  int                        `json:"prompt_version"`
	SchemaVersion  domain.SchemaVersion       `json:"schema_version"`
	AccountingData *accounting.LegacyDocument `json:"accounting_data"`
	Canonical      *accounting.Document       `json:"canonical"`
	Validation     *validator.Report          `json:"validation,omitempty"`
	RawResponse    string                     `json:"raw_response,omitempty"`
	PromptUsed     string                     `json:"prompt_used,omitempty"`
	Model          string                     `json:"model,omitempty"`
	InputTokens    int                        `json:"input_tokens"`
	OutputTokens   int                        `json:"output_tokens"`
	CostUSD        float64                    `json:"cost_usd"`
	LatencyMs      float64                    `json:"latency_ms"`
	Error          string                     `json:"error,omitempty"`
}

// NormalizeInput is a raw LLM object submitted for normalization without an
// LLM call. A nil PromptVersion selects the parser by structural detection.
type NormalizeInput struct {
	Provider      domain.ProviderID
	PromptVersion *int
	Raw           map[string]any
}

// NormalizeOutput carries both shapes of a normalized document.
type NormalizeOutput struct {
	Provider      domain.ProviderID          `json:"provider"`
	SchemaVersion domain.SchemaVersion       `json:"schema_version"`
	Canonical     *accounting.Document       `json:"canonical"`
	Legacy        *accounting.LegacyDocument `json:"legacy"`
	Validation    *validator.Report          `json:"validation"`
}

// PromptSource resolves the prompt a provider should be normalized with.
type PromptSource interface {
	GetCurrent(ctx context.Context, provider domain.ProviderID) (*domain.PromptVersion, error)
	Get(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error)
}

// AccountingService turns OCR text into accounting documents via the LLM.
type AccountingService interface {
	ProcessProviderResults(ctx context.Context, inputs []ProviderInput) []ProviderOutput
	Normalize(ctx context.Context, input NormalizeInput) (*NormalizeOutput, error)
}

type accountingService struct {
	llm       port.ChatCompleter
	prompts   PromptSource
	corrector *accounting.Corrector
	converter *accounting.Converter
	rules     *validator.Engine
	cfg       *config.AccountingConfig
	llmCfg    *config.LLMProviderConfig
	log       *logger.Logger
}

// NewAccountingService creates a new AccountingService implementation.
func NewAccountingService(
	llm port.ChatCompleter,
	prompts PromptSource,
	corrector *accounting.Corrector,
	converter *accounting.Converter,
	rules *validator.Engine,
	cfg *config.AccountingConfig,
	llmCfg *config.LLMProviderConfig,
	log *logger.Logger,
) AccountingService {
	return &accountingService{
		llm:       llm,
		prompts:   prompts,
		corrector: corrector,
		converter: converter,
		rules:     rules,
		cfg:       cfg,
		llmCfg:    llmCfg,
		log:       log,
	}
}

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 3000
)

// ProcessProviderResults normalizes every input concurrently under one batch
// deadline. The result has one entry per input, in input order. Failures,
// panics and deadline overruns are reported per entry and never fail the batch.
func (s *accountingService) ProcessProviderResults(ctx context.Context, inputs []ProviderInput) []ProviderOutput {
	if len(inputs) == 0 {
		return []ProviderOutput{}
	}

	timeout := s.cfg.BatchTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	batchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make([]ProviderOutput, len(inputs))
		done    = make([]bool, len(inputs))
	)
	store := func(i int, out ProviderOutput) {
		mu.Lock()
		defer mu.Unlock()
		if !done[i] {
			results[i] = out
			done[i] = true
		}
	}
	// Timed-out slots keep the prompt identity resolved before the deadline.
	idents := make([]ProviderOutput, len(inputs))
	for i := range inputs {
		idents[i] = s.identity(inputs[i])
	}
	identify := func(i int, id ProviderOutput) {
		mu.Lock()
		defer mu.Unlock()
		idents[i] = id
	}

	limit := s.cfg.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i := range inputs {
			i := i
			g.Go(func() error {
				store(i, s.processOne(batchCtx, inputs[i], func(id ProviderOutput) { identify(i, id) }))
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-finished:
	case <-batchCtx.Done():
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]ProviderOutput, len(inputs))
	for i := range inputs {
		if !done[i] {
			done[i] = true
			s.log.Error("provider normalization timed out", "provider", inputs[i].Provider, "timeout", timeout)
			results[i] = s.failed(idents[i],
				fmt.Errorf("timeout: %w after %s", domain.ErrBatchTimeout, timeout))
		}
		out[i] = results[i]
	}
	return out
}

func (s *accountingService) processOne(ctx context.Context, in ProviderInput, identify func(ProviderOutput)) (out ProviderOutput) {
	start := time.Now()
	out = s.identity(in)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("provider normalization panicked", "provider", in.Provider, "panic", r)
			out = s.failed(ProviderOutput{
				Provider:      in.Provider,
				PromptVersion: out.PromptVersion,
				SchemaVersion: out.SchemaVersion,
				PromptUsed:    out.PromptUsed,
			}, fmt.Errorf("panic: %v", r))
		}
		out.LatencyMs = float64(time.Since(start).Microseconds()) / 1000
	}()

	if err := ctx.Err(); err != nil {
		return s.failed(out, fmt.Errorf("timeout: %w", domain.ErrBatchTimeout))
	}

	// The prompt is resolved before any short-circuit so that failed runs
	// still report the version they were keyed under.
	prompt, lookupErr := s.resolvePrompt(ctx, in)
	if lookupErr != nil {
		s.log.Error("resolving prompt failed", "provider", in.Provider, "error", lookupErr)
	} else {
		out.PromptVersion = prompt.Version
		out.SchemaVersion = s.routedSchema(prompt)
		out.PromptUsed = prompt.PromptText
		identify(out)
	}

	if in.Error != "" {
		return s.failed(out, errors.New(in.Error))
	}
	if strings.TrimSpace(in.Text) == "" {
		return s.failed(out, domain.ErrNoOCRText)
	}
	if lookupErr != nil {
		return s.failed(out, lookupErr)
	}

	userPrompt := accounting.BuildUserPrompt(accounting.PromptInput{
		Provider:      in.Provider,
		Instructions:  prompt.PromptText,
		SchemaVersion: out.SchemaVersion,
		Hints:         in.Hints,
		OCRText:       in.Text,
	})
	s.log.Debug("normalizing provider output",
		"provider", in.Provider,
		"prompt_version", prompt.Version,
		"ocr_preview", accounting.Truncate(in.Text, s.cfg.PreviewLength))

	resp, err := s.llm.Complete(ctx, port.ChatRequest{
		SystemPrompt: accounting.SystemPrompt(in.Provider),
		UserPrompt:   userPrompt,
		Temperature:  s.temperature(),
		MaxTokens:    s.maxTokens(),
		JSONMode:     true,
	})
	if err != nil {
		s.log.Error("llm completion failed", "provider", in.Provider, "error", err)
		return s.failed(out, fmt.Errorf("llm completion: %w", err))
	}
	out.RawResponse = resp.Content
	out.Model = resp.Model
	out.InputTokens = resp.InputTokens
	out.OutputTokens = resp.OutputTokens
	out.CostUSD = accounting.EstimateCost(resp.Model, resp.InputTokens, resp.OutputTokens)

	raw, err := accounting.DecodeObject(resp.Content)
	if err != nil {
		s.log.Error("llm output rejected", "provider", in.Provider,
			"preview", accounting.Truncate(resp.Content, s.cfg.PreviewLength))
		return s.failed(out, err)
	}

	doc := s.corrector.Correct(in.Provider, raw, prompt.Version)
	out.Validation = s.rules.Apply(ctx, doc)
	out.Canonical = doc
	out.AccountingData = s.converter.ToLegacy(doc)

	s.log.Info("provider normalized",
		"provider", in.Provider,
		"items", len(doc.Items),
		"model", resp.Model,
		"cost_usd", out.CostUSD)
	return out
}

// identity is what is known about in before its prompt is looked up: a pinned
// version and the schema the registry routes it to.
func (s *accountingService) identity(in ProviderInput) ProviderOutput {
	out := ProviderOutput{Provider: in.Provider}
	if in.PromptVersion > 0 {
		out.PromptVersion = in.PromptVersion
		out.SchemaVersion = s.corrector.Registry().SchemaFor(in.PromptVersion)
	}
	return out
}

// routedSchema is the schema whose parser handles p. A stored schema that
// disagrees with the registry is logged and ignored.
func (s *accountingService) routedSchema(p *domain.PromptVersion) domain.SchemaVersion {
	schema := s.corrector.Registry().SchemaFor(p.Version)
	if p.SchemaVersion != "" && p.SchemaVersion != schema {
		s.log.Warn("stored prompt schema differs from routed parser",
			"provider", p.Provider,
			"prompt_version", p.Version,
			"stored", p.SchemaVersion,
			"routed", schema)
	}
	return schema
}

func (s *accountingService) resolvePrompt(ctx context.Context, in ProviderInput) (*domain.PromptVersion, error) {
	if in.PromptVersion > 0 {
		return s.prompts.Get(ctx, in.Provider, in.PromptVersion)
	}
	return s.prompts.GetCurrent(ctx, in.Provider)
}

// failed fills out with an empty document and err's message, keeping any
// usage already recorded.
func (s *accountingService) failed(out ProviderOutput, err error) ProviderOutput {
	doc := accounting.EmptyDocument()
	out.Canonical = doc
	out.AccountingData = s.converter.ToLegacy(doc)
	out.Validation = nil
	out.Error = err.Error()
	return out
}

func (s *accountingService) temperature() float64 {
	if s.llmCfg != nil && s.llmCfg.Temperature > 0 {
		return s.llmCfg.Temperature
	}
	return defaultTemperature
}

func (s *accountingService) maxTokens() int {
	if s.llmCfg != nil && s.llmCfg.MaxTokens > 0 {
		return s.llmCfg.MaxTokens
	}
	return defaultMaxTokens
}

func (s *accountingService) Normalize(ctx context.Context, input NormalizeInput) (*NormalizeOutput, error) {
	if input.Provider == "" || input.Raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var (
		doc    *accounting.Document
		schema domain.SchemaVersion
	)
	if input.PromptVersion == nil {
		doc, schema = s.corrector.CorrectDetected(input.Provider, input.Raw)
	} else {
		doc = s.corrector.Correct(input.Provider, input.Raw, *input.PromptVersion)
		schema = s.corrector.Registry().SchemaFor(*input.PromptVersion)
	}

	report := s.rules.Apply(ctx, doc)
	return &NormalizeOutput{
		Provider:      input.Provider,
		SchemaVersion: schema,
		Canonical:     doc,
		Legacy:        s.converter.ToLegacy(doc),
		Validation:    report,
	}, nil
}
