package queue

import (
	"fmt"
	"strconv"
	"time"

	"voyager.app/generator/internal/model"
)

type EventType string

const (
	EventJobSubmitted EventType = "job_submitted"
	EventJobStatus    EventType = "job_status"
	EventJobsSettled  EventType = "jobs_settled"
)

// StatusEvent is one code-generation lifecycle event for a session.
type StatusEvent struct {
	At             time.Time       `json:"at"`
	PullRequestURL string          `json:"pull_request_url,omitempty"`
	Error          string          `json:"error,omitempty"`
	Type           EventType       `json:"type"`
	JobID          string          `json:"job_id,omitempty"`
	JobType        model.JobType   `json:"job_type,omitempty"`
	Status         model.JobStatus `json:"status,omitempty"`
	ID             string          `json:"id,omitempty"`
	SessionID      int64           `json:"session_id"`
	Progress       int             `json:"progress"`
}

// JobEvent describes job as an event of type t.
func JobEvent(t EventType, sessionID int64, job *model.CodeGenJob, at time.Time) StatusEvent {
	ev := StatusEvent{
		Type:      t,
		SessionID: sessionID,
		JobID:     job.ID,
		JobType:   job.Type,
		Status:    job.Status,
		Progress:  job.Progress,
		At:        at,
	}
	if job.PullRequestURL != nil {
		ev.PullRequestURL = *job.PullRequestURL
	}
	if job.Error != nil {
		ev.Error = *job.Error
	}
	return ev
}

func StreamName(prefix string, sessionID int64) string {
	return fmt.Sprintf("%s:session-%d", prefix, sessionID)
}

func (e StatusEvent) fields() map[string]any {
	f := map[string]any{
		"type":       string(e.Type),
		"session_id": e.SessionID,
		"progress":   e.Progress,
		"at":         e.At.UTC().Format(time.RFC3339Nano),
	}
	if e.JobID != "" {
		f["job_id"] = e.JobID
	}
	if e.JobType != "" {
		f["job_type"] = string(e.JobType)
	}
	if e.Status != "" {
		f["status"] = string(e.Status)
	}
	if e.PullRequestURL != "" {
		f["pull_request_url"] = e.PullRequestURL
	}
	if e.Error != "" {
		f["error"] = e.Error
	}
	return f
}

// decodeEvent reads stream entry values back into an event. Redis returns
// every value as a string.
func decodeEvent(id string, values map[string]any) (StatusEvent, error) {
	str := func(key string) string {
		if v, ok := values[key].(string); ok {
			return v
		}
		return ""
	}

	ev := StatusEvent{
		ID:             id,
		Type:           EventType(str("type")),
		JobID:          str("job_id"),
		JobType:        model.JobType(str("job_type")),
		Status:         model.JobStatus(str("status")),
		PullRequestURL: str("pull_request_url"),
		Error:          str("error"),
	}
	if ev.Type == "" {
		return StatusEvent{}, fmt.Errorf("stream entry %s has no type", id)
	}

	sessionID, err := strconv.ParseInt(str("session_id"), 10, 64)
	if err != nil {
		return StatusEvent{}, fmt.Errorf("stream entry %s: invalid session_id: %w", id, err)
	}
	ev.SessionID = sessionID

	if p := str("progress"); p != "" {
		if ev.Progress, err = strconv.Atoi(p); err != nil {
			return StatusEvent{}, fmt.Errorf("stream entry %s: invalid progress: %w", id, err)
		}
	}
	if at := str("at"); at != "" {
		if ev.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return StatusEvent{}, fmt.Errorf("stream entry %s: invalid at: %w", id, err)
		}
	}
	return ev, nil
}
