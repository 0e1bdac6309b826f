package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/port"
)

// Set holds the constructed OCR providers keyed by id.
type Set struct {
	providers map[domain.ProviderID]port.OCRProvider
	closers   []func() error
}

// NewSet builds a Set from explicit providers.
func NewSet(providers ...port.OCRProvider) *Set {
	s := &Set{providers: make(map[domain.ProviderID]port.OCRProvider, len(providers))}
	for _, p := range providers {
		s.providers[p.ID()] = p
	}
	return s
}

// NewFromConfig constructs every provider listed in cfg.Enabled. An unknown
// id wraps domain.ErrUnsupportedProvider.
func NewFromConfig(ctx context.Context, cfg *config.OCRConfig, log *logger.Logger) (*Set, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	s := NewSet()
	for _, name := range cfg.Enabled {
		id := domain.ParseProviderID(name)
		switch id {
		case domain.ProviderOpenAIVision:
			s.providers[id] = NewOpenAIVision(cfg.OpenAIAPIKey, cfg.OpenAIModel, timeout)
		case domain.ProviderPaddleOCR:
			s.providers[id] = NewPaddle(cfg.PaddleEndpoint, timeout)
		case domain.ProviderAmazonTextract:
			p, err := NewTextract(ctx, cfg)
			if err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("amazon textract: %w", err)
			}
			s.providers[id] = p
		case domain.ProviderGoogleDocAI:
			p, closer, err := NewDocumentAI(ctx, cfg)
			if err != nil {
				_ = s.Close()
				return nil, fmt.Errorf("google document ai: %w", err)
			}
			s.providers[id] = p
			s.closers = append(s.closers, closer)
		default:
			_ = s.Close()
			return nil, fmt.Errorf("ocr provider %q: %w", name, domain.ErrUnsupportedProvider)
		}
		log.Info("ocr provider enabled", "provider", id)
	}
	return s, nil
}

// Get returns the provider for id.
func (s *Set) Get(id domain.ProviderID) (port.OCRProvider, error) {
	p, ok := s.providers[id]
	if !ok {
		return nil, fmt.Errorf("ocr provider %q not enabled: %w", id, domain.ErrUnsupportedProvider)
	}
	return p, nil
}

// IDs lists enabled providers in canonical order.
func (s *Set) IDs() []domain.ProviderID {
	var ids []domain.ProviderID
	for _, id := range domain.KnownProviders {
		if _, ok := s.providers[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Close releases provider clients that hold connections.
func (s *Set) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
