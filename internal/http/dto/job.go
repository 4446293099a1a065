package dto

import (
	"time"

	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
)

type TargetRequest struct {
	Framework  string `json:"framework" binding:"required"`
	Database   string `json:"database"`
	Repository string `json:"repository"`
}

func (t *TargetRequest) options() *codegen.TargetOptions {
	if t == nil {
		return nil
	}
	return &codegen.TargetOptions{
		Framework:  t.Framework,
		Database:   prompt.Database(t.Database),
		Repository: t.Repository,
	}
}

type SubmitJobsRequest struct {
	Backend    *TargetRequest `json:"backend"`
	Frontend   *TargetRequest `json:"frontend"`
	Deployment string         `json:"deployment" binding:"omitempty,oneof=docker local"`
}

func (r SubmitJobsRequest) Options() codegen.SubmitOptions {
	return codegen.SubmitOptions{
		Backend:    r.Backend.options(),
		Frontend:   r.Frontend.options(),
		Deployment: prompt.DeploymentMode(r.Deployment),
	}
}

type JobResponse struct {
	CreatedAt      time.Time       `json:"created_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	PullRequestURL *string         `json:"pull_request_url,omitempty"`
	RepositoryURL  *string         `json:"repository_url,omitempty"`
	Error          *string         `json:"error,omitempty"`
	Database       *string         `json:"database,omitempty"`
	ID             string          `json:"id"`
	Type           model.JobType   `json:"type"`
	Status         model.JobStatus `json:"status"`
	Framework      string          `json:"framework"`
	Duration       string          `json:"duration"`
	Progress       int             `json:"progress"`
}

func ToJobResponse(j *model.CodeGenJob, now time.Time) *JobResponse {
	if j == nil {
		return nil
	}
	return &JobResponse{
		ID:             j.ID,
		Type:           j.Type,
		Status:         j.Status,
		Framework:      j.Framework,
		Database:       j.Database,
		Progress:       j.Progress,
		PullRequestURL: j.PullRequestURL,
		RepositoryURL:  j.RepositoryURL,
		Error:          j.Error,
		CreatedAt:      j.CreatedAt,
		CompletedAt:    j.CompletedAt,
		Duration:       model.FormatDuration(j.Duration(now)),
	}
}

type JobsResponse struct {
	Backend  *JobResponse `json:"backend,omitempty"`
	Frontend *JobResponse `json:"frontend,omitempty"`
}

func ToJobsResponse(t model.TrackedJobs, now time.Time) JobsResponse {
	return JobsResponse{
		Backend:  ToJobResponse(t.Backend, now),
		Frontend: ToJobResponse(t.Frontend, now),
	}
}

type SubmitJobsResponse struct {
	Errors  map[model.JobType]string `json:"errors,omitempty"`
	Session SessionResponse          `json:"session"`
}

// JobStatusResponse is one polling round, also the payload of each SSE "status" event.
type JobStatusResponse struct {
	Errors map[model.JobType]string `json:"errors,omitempty"`
	Jobs   JobsResponse             `json:"jobs"`
	Done   bool                     `json:"done"`
}

// ErrorMessages flattens per-target errors for the wire, or nil when there are none.
func ErrorMessages(errs map[model.JobType]error) map[model.JobType]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[model.JobType]string, len(errs))
	for t, err := range errs {
		out[t] = err.Error()
	}
	return out
}
