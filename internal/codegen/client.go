// Package codegen talks to the remote code-generation service: it submits
// one agent run per requested target and reads run status back.
package codegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"voyager.app/generator/common/logger"
	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
)

const (
	defaultTimeout = 30 * time.Second
	// maxErrorBody bounds how much of a failed response is kept for diagnostics.
	maxErrorBody = 4096
	unknownJobID = "unknown"
)

// TargetOptions selects what to generate for one target.
type TargetOptions struct {
	Framework  string          `json:"framework"`
	Database   prompt.Database `json:"database,omitempty"`
	Repository string          `json:"repository,omitempty"`
}

// SubmitOptions requests a backend job, a frontend job, or both.
type SubmitOptions struct {
	Backend    *TargetOptions
	Frontend   *TargetOptions
	Deployment prompt.DeploymentMode
}

// SubmitResult reports per-target outcomes. A target that failed has an
// entry in Errors and no job.
type SubmitResult struct {
	Jobs    model.TrackedJobs
	Prompts map[model.JobType]string
	Errors  map[model.JobType]error
}

// JobID returns the submitted job id for jobType, or "".
func (r *SubmitResult) JobID(jobType model.JobType) string {
	if j := r.Jobs.Get(jobType); j != nil {
		return j.ID
	}
	return ""
}

type Client struct {
	httpClient *http.Client
	now        func() time.Time
	cfg        config.CodeGenConfig
}

func NewClient(cfg config.CodeGenConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient, now: time.Now}
}

// Submit builds each requested target's prompt and starts one agent run per
// target. Configuration is checked before any request is made. A target that
// cannot be built or submitted does not stop the other one; the returned error
// is non-nil only when every requested target failed.
func (c *Client) Submit(ctx context.Context, spec string, opts SubmitOptions) (*SubmitResult, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Backend == nil && opts.Frontend == nil {
		return nil, ErrNoTargets
	}

	result := &SubmitResult{
		Prompts: make(map[model.JobType]string, 2),
		Errors:  make(map[model.JobType]error),
	}

	targets := []struct {
		jobType model.JobType
		opts    *TargetOptions
	}{
		{model.JobTypeBackend, opts.Backend},
		{model.JobTypeFrontend, opts.Frontend},
	}

	var failures []error
	for _, t := range targets {
		if t.opts == nil {
			continue
		}
		job, text, err := c.submitTarget(ctx, t.jobType, spec, *t.opts, opts.Deployment)
		if err != nil {
			result.Errors[t.jobType] = err
			failures = append(failures, fmt.Errorf("%s: %w", t.jobType, err))
			continue
		}
		result.Prompts[t.jobType] = text
		switch t.jobType {
		case model.JobTypeBackend:
			result.Jobs.Backend = job
		case model.JobTypeFrontend:
			result.Jobs.Frontend = job
		}
	}

	if result.Jobs.Empty() {
		return result, errors.Join(failures...)
	}
	return result, nil
}

func (c *Client) submitTarget(ctx context.Context, jobType model.JobType, spec string, opts TargetOptions, mode prompt.DeploymentMode) (*model.CodeGenJob, string, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{JobType: logger.Ptr(string(jobType))})

	params := prompt.CodeGenParams{
		Target:     prompt.Target(jobType),
		Framework:  opts.Framework,
		Spec:       spec,
		Repository: opts.Repository,
		Deployment: mode,
	}
	if jobType == model.JobTypeBackend {
		params.Database = opts.Database
	}
	text, err := prompt.BuildCodeGenPrompt(params)
	if err != nil {
		return nil, "", err
	}

	sp := logger.StartSpan(ctx, "codegen.submit",
		logger.AttrJobType.String(string(jobType)),
		logger.AttrFramework.String(opts.Framework))
	defer sp.End()
	ctx = sp.Context()

	id, err := c.run(ctx, text)
	if err != nil {
		sp.Fail(err)
		slog.ErrorContext(ctx, "code generation submission failed", "framework", opts.Framework, "error", err)
		return nil, "", err
	}
	sp.Annotate(logger.AttrJobID.String(id))

	var db *string
	if params.Database != "" {
		db = logger.Ptr(string(params.Database))
	}
	slog.InfoContext(ctx, "code generation job submitted", "job_id", id, "framework", opts.Framework)
	return model.NewPendingJob(id, jobType, opts.Framework, db, c.now()), text, nil
}

func (c *Client) run(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(map[string]string{"prompt": text})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	data, status, err := c.do(ctx, http.MethodPost, c.orgURL("agent", "run"), body)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", &RemoteServiceError{Op: "submit", StatusCode: status, Body: truncate(data)}
	}
	return extractJobID(data), nil
}

// CheckStatus fetches one run. A run the service does not know returns (nil, nil).
func (c *Client) CheckStatus(ctx context.Context, jobID string) (*model.CodeGenJob, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	data, status, err := c.do(ctx, http.MethodGet, c.orgURL("agent", "runs", jobID), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status < 200 || status >= 300 {
		return nil, &RemoteServiceError{Op: "check status", StatusCode: status, Body: truncate(data)}
	}

	var run remoteRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing job status: %w", err)
	}
	return run.toJob(jobID, c.now()), nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) orgURL(parts ...string) string {
	escaped := make([]string, 0, len(parts)+3)
	escaped = append(escaped, "v1", "organizations", url.PathEscape(c.cfg.OrgID))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.Join(escaped, "/")
}

// extractJobID reads the first usable id among jobId, id and runId.
// Ids may be strings or numbers.
func extractJobID(data []byte) string {
	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return unknownJobID
	}
	for _, key := range []string{"jobId", "id", "runId"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			if v.String() != "0" {
				return v.String()
			}
		}
	}
	return unknownJobID
}

func truncate(data []byte) string {
	if len(data) > maxErrorBody {
		return string(data[:maxErrorBody]) + "..."
	}
	return string(data)
}
