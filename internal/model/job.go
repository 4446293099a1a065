package model

import (
	"fmt"
	"time"
)

// JobStatus is the normalized state of a remote code-generation job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transition can occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// JobType scopes a job to one half of the generated application.
type JobType string

const (
	JobTypeBackend  JobType = "backend"
	JobTypeFrontend JobType = "frontend"
)

func (t JobType) IsValid() bool {
	return t == JobTypeBackend || t == JobTypeFrontend
}

// CodeGenJob is the client-side record of one remote generation run.
// Identity is the opaque ID assigned by the remote service.
type CodeGenJob struct {
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	PullRequestURL *string    `json:"pull_request_url,omitempty"`
	RepositoryURL  *string    `json:"repository_url,omitempty"`
	Error          *string    `json:"error,omitempty"`
	Database       *string    `json:"database,omitempty"`
	ID             string     `json:"id"`
	Status         JobStatus  `json:"status"`
	Type           JobType    `json:"type"`
	Framework      string     `json:"framework"`
	Progress       int        `json:"progress"`
}

// NewPendingJob is the placeholder created the moment a submission returns an ID.
func NewPendingJob(id string, jobType JobType, framework string, database *string, now time.Time) *CodeGenJob {
	return &CodeGenJob{
		ID:        id,
		Status:    JobStatusPending,
		Type:      jobType,
		Framework: framework,
		Database:  database,
		CreatedAt: now,
	}
}

// Merge copies remote observations onto the tracked job, keeping the
// locally known type, framework and database.
func (j *CodeGenJob) Merge(observed *CodeGenJob) {
	if observed == nil {
		return
	}
	j.Status = observed.Status
	j.Progress = observed.Progress
	if !observed.CreatedAt.IsZero() {
		j.CreatedAt = observed.CreatedAt
	}
	j.CompletedAt = observed.CompletedAt
	j.PullRequestURL = observed.PullRequestURL
	j.RepositoryURL = observed.RepositoryURL
	j.Error = observed.Error
}

// Duration is the elapsed run time, up to now for unfinished jobs.
func (j *CodeGenJob) Duration(now time.Time) time.Duration {
	end := now
	if j.CompletedAt != nil {
		end = *j.CompletedAt
	}
	if end.Before(j.CreatedAt) {
		return 0
	}
	return end.Sub(j.CreatedAt)
}

// FormatDuration renders d as "Ns", "Nm Ns" or "Nh Nm".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
