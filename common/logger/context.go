package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Handlers and services enrich the context once; every log line below picks
// the fields up through TraceHandler.
type LogFields struct {
	SessionID *int64  // Generation session ID
	JobID     *string // Remote code-generation job ID
	JobType   *string // "backend" or "frontend"
	Provider  *string // Text-generation provider ("anthropic", "openai")
	RequestID *string // Inbound HTTP request ID
	Component string  // Component name (e.g. "voyager.codegen.poller")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.SessionID != nil {
		result.SessionID = new.SessionID
	}
	if new.JobID != nil {
		result.JobID = new.JobID
	}
	if new.JobType != nil {
		result.JobType = new.JobType
	}
	if new.Provider != nil {
		result.Provider = new.Provider
	}
	if new.RequestID != nil {
		result.RequestID = new.RequestID
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Attrs lists the fields that are set, in a stable order.
func (f LogFields) Attrs() []slog.Attr {
	var attrs []slog.Attr
	if f.SessionID != nil {
		attrs = append(attrs, slog.Int64("session_id", *f.SessionID))
	}
	if f.JobID != nil {
		attrs = append(attrs, slog.String("job_id", *f.JobID))
	}
	if f.JobType != nil {
		attrs = append(attrs, slog.String("job_type", *f.JobType))
	}
	if f.Provider != nil {
		attrs = append(attrs, slog.String("provider", *f.Provider))
	}
	if f.RequestID != nil {
		attrs = append(attrs, slog.String("request_id", *f.RequestID))
	}
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	return attrs
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{JobID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
