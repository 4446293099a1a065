package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"voyager.app/generator/common/logger"
	"voyager.app/generator/core/config"
)

// Policy selects which provider is tried first and whether a fallback is allowed.
type Policy string

const (
	// PolicyAvailability prefers Anthropic when its key exists, else OpenAI. No fallback.
	PolicyAvailability Policy = "availability"
	// PolicyPriority always tries OpenAI first and falls back once to Anthropic on HTTP 403.
	PolicyPriority Policy = "priority"
)

// FallbackError is returned when both the primary and the fallback attempt failed.
type FallbackError struct {
	Primary   error
	Secondary error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("all providers failed: %v; fallback: %v", e.Primary, e.Secondary)
}

func (e *FallbackError) Unwrap() []error {
	return []error{e.Primary, e.Secondary}
}

// Result carries the generated text and which provider produced it.
type Result struct {
	Text     string
	Provider string
	FellBack bool
}

// Router applies the selection and fallback policy over the configured providers.
// It holds no per-call state and is safe for concurrent use.
type Router struct {
	providers map[string]Provider
	policy    Policy
}

func NewRouter(policy Policy, providers map[string]Provider) *Router {
	if policy == "" {
		policy = PolicyPriority
	}
	return &Router{policy: policy, providers: providers}
}

// Plan returns the ordered provider attempts for one operation: at most two,
// where the second is only used after a 403 under PolicyPriority.
func (r *Router) Plan() (first, fallback Provider) {
	anthropic := r.providers[ProviderAnthropic]
	openai := r.providers[ProviderOpenAI]

	switch r.policy {
	case PolicyAvailability:
		if anthropic != nil {
			return anthropic, nil
		}
		return openai, nil
	default:
		if openai != nil {
			return openai, anthropic
		}
		return anthropic, nil
	}
}

// First is the provider an operation will try first, or nil when none is configured.
func (r *Router) First() Provider {
	first, _ := r.Plan()
	return first
}

// Generate runs task with the given prompts under the router's policy.
func (r *Router) Generate(ctx context.Context, task Task, systemPrompt, userPrompt string) (*Result, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return nil, ErrEmptyPrompt
	}

	first, fallback := r.Plan()
	if first == nil {
		return nil, config.Missing(
			"Please add either ANTHROPIC_API_KEY or OPENAI_API_KEY environment variable.",
			"ANTHROPIC_API_KEY", "OPENAI_API_KEY")
	}

	text, err := r.attempt(ctx, first, task, systemPrompt, userPrompt)
	if err == nil {
		return &Result{Text: text, Provider: first.Name()}, nil
	}

	var perr *ProviderError
	if fallback == nil || !errors.As(err, &perr) || !perr.Forbidden() {
		return nil, err
	}

	slog.WarnContext(ctx, "primary provider forbidden, falling back",
		"task", task,
		"primary", first.Name(),
		"fallback", fallback.Name())

	text, ferr := r.attempt(ctx, fallback, task, systemPrompt, userPrompt)
	if ferr != nil {
		return nil, &FallbackError{Primary: err, Secondary: ferr}
	}

	return &Result{Text: text, Provider: fallback.Name(), FellBack: true}, nil
}

func (r *Router) attempt(ctx context.Context, p Provider, task Task, systemPrompt, userPrompt string) (string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Provider: logger.Ptr(p.Name())})

	sp := logger.StartSpan(ctx, "llm.generate",
		logger.AttrProvider.String(p.Name()),
		logger.AttrModel.String(p.Model()),
		logger.AttrTask.String(string(task)))
	defer sp.End()
	ctx = sp.Context()

	slog.InfoContext(ctx, "calling provider", "task", task, "model", p.Model())

	text, err := p.Generate(ctx, Compose(task, p.Name(), systemPrompt, userPrompt))
	if err != nil {
		sp.Fail(err)
		slog.ErrorContext(ctx, "provider call failed", "task", task, "error", err)
		return "", err
	}
	return text, nil
}
