package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"fisbench/internal/accounting"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/port"
)

// DefaultPromptVersion is the version number of the built-in prompts.
const DefaultPromptVersion = 1

// SavePromptInput is the DTO for storing a new prompt revision. An empty
// SchemaVersion is derived from the schema cutoff.
type SavePromptInput struct {
	Provider      domain.ProviderID
	Text          string
	SchemaVersion domain.SchemaVersion
}

// PromptService defines the prompt store contract.
type PromptService interface {
	GetCurrent(ctx context.Context, provider domain.ProviderID) (*domain.PromptVersion, error)
	Get(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error)
	Save(ctx context.Context, input SavePromptInput) (*domain.PromptVersion, error)
	Restore(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error)
	History(ctx context.Context, provider domain.ProviderID) ([]domain.PromptVersion, error)
	Versions(ctx context.Context, provider domain.ProviderID) ([]int, error)
	Delete(ctx context.Context, provider domain.ProviderID, version int) error
	All(ctx context.Context) ([]domain.PromptVersion, error)
}

type promptService struct {
	repo     port.PromptRepository
	registry *accounting.Registry
	log      *logger.Logger
}

// NewPromptService creates a new PromptService implementation.
func NewPromptService(repo port.PromptRepository, registry *accounting.Registry, log *logger.Logger) PromptService {
	return &promptService{repo: repo, registry: registry, log: log}
}

// DefaultPrompt returns the built-in prompt for provider.
func DefaultPrompt(provider domain.ProviderID) *domain.PromptVersion {
	return &domain.PromptVersion{
		Provider:      provider,
		Version:       DefaultPromptVersion,
		SchemaVersion: domain.SchemaV1,
		PromptText:    accounting.InstructionsFor(provider),
	}
}

// EstimateTokens approximates the token count of text as words × 1.3.
func EstimateTokens(text string) int {
	return int(math.Round(float64(len(strings.Fields(text))) * 1.3))
}

func checkProvider(provider domain.ProviderID) error {
	if !provider.IsKnown() {
		return fmt.Errorf("%q: %w", provider, domain.ErrUnsupportedProvider)
	}
	return nil
}

func (s *promptService) GetCurrent(ctx context.Context, provider domain.ProviderID) (*domain.PromptVersion, error) {
	if err := checkProvider(provider); err != nil {
		return nil, err
	}
	p, err := s.repo.Latest(ctx, provider)
	if errors.Is(err, domain.ErrNotFound) {
		return DefaultPrompt(provider), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading current prompt: %w", err)
	}
	return p, nil
}

func (s *promptService) Get(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error) {
	if err := checkProvider(provider); err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, provider, version)
	if errors.Is(err, domain.ErrPromptVersionNotFound) && version == DefaultPromptVersion {
		return DefaultPrompt(provider), nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *promptService) Save(ctx context.Context, input SavePromptInput) (*domain.PromptVersion, error) {
	return s.save(ctx, input, nil)
}

func (s *promptService) save(ctx context.Context, input SavePromptInput, restoredFrom *int) (*domain.PromptVersion, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("prompt text is empty: %w", domain.ErrInvalidInput)
	}
	if input.SchemaVersion != "" && !input.SchemaVersion.Valid() {
		return nil, fmt.Errorf("schema version %q: %w", input.SchemaVersion, domain.ErrInvalidInput)
	}

	current, err := s.GetCurrent(ctx, input.Provider)
	if err != nil {
		return nil, err
	}

	prev := current.Version
	next := prev + 1
	schema := input.SchemaVersion
	if schema == "" {
		schema = s.registry.SchemaFor(next)
	}

	p := &domain.PromptVersion{
		Provider:            input.Provider,
		Version:             next,
		SchemaVersion:       schema,
		PromptText:          input.Text,
		PreviousVersion:     &prev,
		RestoredFromVersion: restoredFrom,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("saving prompt: %w", err)
	}

	s.log.Info("prompt saved",
		"provider", p.Provider, "version", p.Version, "schema_version", p.SchemaVersion,
		"tokens", EstimateTokens(p.PromptText))
	return p, nil
}

func (s *promptService) Restore(ctx context.Context, provider domain.ProviderID, version int) (*domain.PromptVersion, error) {
	src, err := s.Get(ctx, provider, version)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, SavePromptInput{
		Provider:      provider,
		Text:          src.PromptText,
		SchemaVersion: src.SchemaVersion,
	}, &version)
}

func (s *promptService) History(ctx context.Context, provider domain.ProviderID) ([]domain.PromptVersion, error) {
	if err := checkProvider(provider); err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("loading prompt history: %w", err)
	}
	if len(history) == 0 {
		return []domain.PromptVersion{*DefaultPrompt(provider)}, nil
	}
	return history, nil
}

// Versions lists stored versions ascending. The built-in version is listed
// while it has not been superseded by a stored one.
func (s *promptService) Versions(ctx context.Context, provider domain.ProviderID) ([]int, error) {
	if err := checkProvider(provider); err != nil {
		return nil, err
	}
	versions, err := s.repo.Versions(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("loading prompt versions: %w", err)
	}
	if len(versions) == 0 || versions[0] > DefaultPromptVersion {
		versions = append([]int{DefaultPromptVersion}, versions...)
	}
	return versions, nil
}

func (s *promptService) Delete(ctx context.Context, provider domain.ProviderID, version int) error {
	current, err := s.GetCurrent(ctx, provider)
	if err != nil {
		return err
	}
	if current.Version == version {
		return domain.ErrCannotDeleteCurrentVersion
	}
	if err := s.repo.Delete(ctx, provider, version); err != nil {
		return err
	}
	s.log.Info("prompt deleted", "provider", provider, "version", version)
	return nil
}

func (s *promptService) All(ctx context.Context) ([]domain.PromptVersion, error) {
	stored, err := s.repo.LatestAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}
	byProvider := make(map[domain.ProviderID]domain.PromptVersion, len(stored))
	for _, p := range stored {
		byProvider[p.Provider] = p
	}

	out := make([]domain.PromptVersion, 0, len(domain.KnownProviders))
	for _, provider := range domain.KnownProviders {
		if p, ok := byProvider[provider]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, *DefaultPrompt(provider))
	}
	return out, nil
}
