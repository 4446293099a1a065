package codegen

import (
	"strings"

	"voyager.app/generator/internal/model"
)

// statusAliases maps the remote service's free-form vocabulary onto JobStatus.
var statusAliases = map[string]model.JobStatus{
	"pending":     model.JobStatusPending,
	"queued":      model.JobStatusPending,
	"waiting":     model.JobStatusPending,
	"running":     model.JobStatusRunning,
	"in_progress": model.JobStatusRunning,
	"processing":  model.JobStatusRunning,
	"completed":   model.JobStatusCompleted,
	"success":     model.JobStatusCompleted,
	"finished":    model.JobStatusCompleted,
	"done":        model.JobStatusCompleted,
	"failed":      model.JobStatusFailed,
	"error":       model.JobStatusFailed,
	"cancelled":   model.JobStatusFailed,
}

// NormalizeStatus maps a remote status case-insensitively. Unknown or empty
// values are pending.
func NormalizeStatus(remote string) model.JobStatus {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(remote))]; ok {
		return s
	}
	return model.JobStatusPending
}

// DeriveProgress prefers a positive explicit value from the remote payload,
// clamped to 100. Otherwise completed is 100, running is 50 and anything else 0.
func DeriveProgress(status model.JobStatus, explicit *int) int {
	if explicit != nil && *explicit > 0 {
		return min(*explicit, 100)
	}
	switch status {
	case model.JobStatusCompleted:
		return 100
	case model.JobStatusRunning:
		return 50
	default:
		return 0
	}
}
