package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"voyager.app/generator/core/config"
)

// Provider constants for LLM provider selection.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// ErrEmptyPrompt is returned before any network call when the composed prompt is blank.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Provider is one text-generation backend. Implementations perform exactly one
// network call per Generate and never retry; retry policy lives in Router.
type Provider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is the provider-neutral shape of a generation call.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// ProviderError classifies a failed generation call.
// StatusCode is 0 when the failure happened before an HTTP response.
type ProviderError struct {
	Err        error
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Provider, e.Err)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	if e.Forbidden() {
		msg += " (check API key permissions)"
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Forbidden reports the one classification that triggers fallback.
func (e *ProviderError) Forbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// New builds the provider for cfg, or returns a ConfigurationError when the
// key is absent.
func New(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, config.Missing("", "ANTHROPIC_API_KEY")
		}
		return NewAnthropic(cfg), nil
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, config.Missing("", "OPENAI_API_KEY")
		}
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewConfigured returns the providers whose credentials are present,
// keyed by provider name.
func NewConfigured(cfgs ...config.LLMConfig) map[string]Provider {
	providers := make(map[string]Provider, len(cfgs))
	for _, cfg := range cfgs {
		if !cfg.Enabled() {
			continue
		}
		p, err := New(cfg)
		if err != nil {
			continue
		}
		providers[p.Name()] = p
	}
	return providers
}
