package llm

import (
	"fmt"
	"sync"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/port"
)

// ProviderFactory creates a ChatCompleter from a provider config.
type ProviderFactory func(cfg *config.LLMProviderConfig) (port.ChatCompleter, error)

var (
	providersMu sync.RWMutex
	providers   = map[string]ProviderFactory{}
)

// RegisterProvider registers a chat provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// NewClient creates a ChatCompleter from a provider config using the registered factory.
// An unknown provider name wraps domain.ErrUnsupportedProvider.
func NewClient(cfg *config.LLMProviderConfig) (port.ChatCompleter, error) {
	providersMu.RLock()
	factory, ok := providers[cfg.Provider]
	providersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown llm provider %q: %w", cfg.Provider, domain.ErrUnsupportedProvider)
	}
	return factory(cfg)
}

// NewFromConfig builds the primary client, wrapped in a FallbackClient when a
// fallback provider is configured.
func NewFromConfig(cfg *config.LLMConfig, log *logger.Logger) (port.ChatCompleter, error) {
	primary, err := NewClient(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("primary: %w", err)
	}
	fb := cfg.FallbackConfig()
	if fb == nil {
		return primary, nil
	}
	secondary, err := NewClient(fb)
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	return NewFallbackClient(
		[]port.ChatCompleter{primary, secondary},
		[]string{cfg.Primary.Provider, fb.Provider},
		log,
	), nil
}
