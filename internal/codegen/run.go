package codegen

import (
	"encoding/json"
	"math"
	"time"

	"voyager.app/generator/internal/model"
)

// remoteRun is the job detail payload. The service has used both camelCase
// and snake_case names, so every field accepts its aliases.
type remoteRun struct {
	Status            string `json:"status"`
	Type              string `json:"type"`
	CreatedAt         string `json:"createdAt"`
	CreatedAtAlt      string `json:"created_at"`
	CompletedAt       string `json:"completedAt"`
	CompletedAtAlt    string `json:"completed_at"`
	PullRequestURL    string `json:"pullRequestUrl"`
	PullRequestURLAlt string `json:"pull_request_url"`
	PRURL             string `json:"pr_url"`
	RepositoryURL     string `json:"repositoryUrl"`
	RepositoryURLAlt  string `json:"repository_url"`
	RepoURL           string `json:"repo_url"`
	Error             any    `json:"error"`
	ErrorMessage      string `json:"errorMessage"`
	Progress          any    `json:"progress"`
}

func (r remoteRun) toJob(id string, now time.Time) *model.CodeGenJob {
	status := NormalizeStatus(r.Status)

	jobType := model.JobType(r.Type)
	if !jobType.IsValid() {
		jobType = model.JobTypeBackend
	}

	created := parseTime(first(r.CreatedAt, r.CreatedAtAlt))
	if created == nil {
		created = &now
	}

	return &model.CodeGenJob{
		ID:             id,
		Status:         status,
		Type:           jobType,
		CreatedAt:      *created,
		CompletedAt:    parseTime(first(r.CompletedAt, r.CompletedAtAlt)),
		PullRequestURL: optional(first(r.PullRequestURL, r.PullRequestURLAlt, r.PRURL)),
		RepositoryURL:  optional(first(r.RepositoryURL, r.RepositoryURLAlt, r.RepoURL)),
		Error:          optional(first(errorText(r.Error), r.ErrorMessage)),
		Progress:       DeriveProgress(status, progressValue(r.Progress)),
	}
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func errorText(v any) string {
	switch e := v.(type) {
	case nil, bool:
		return ""
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func progressValue(v any) *int {
	switch p := v.(type) {
	case float64:
		n := int(math.Round(p))
		return &n
	case string:
		var f float64
		if err := json.Unmarshal([]byte(p), &f); err == nil {
			n := int(math.Round(f))
			return &n
		}
	}
	return nil
}
