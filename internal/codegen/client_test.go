package codegen_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
)

const testSpec = "openapi: 3.0.0\ninfo:\n  title: Todo\n  version: 1.0.0\npaths: {}\n"

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Prompt string
}

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		mu       sync.Mutex
		requests []recordedRequest
		handler  func(w http.ResponseWriter, r *http.Request)
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests = nil
		handler = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"jobId":"job-1"}`))
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
			if r.Method == http.MethodPost {
				var body map[string]string
				_ = json.NewDecoder(r.Body).Decode(&body)
				rec.Prompt = body["prompt"]
			}
			mu.Lock()
			requests = append(requests, rec)
			mu.Unlock()
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(cfg config.CodeGenConfig) *codegen.Client {
		if cfg.BaseURL == "" {
			cfg.BaseURL = server.URL
		}
		return codegen.NewClient(cfg, server.Client())
	}
	configured := config.CodeGenConfig{APIKey: "cg-key", OrgID: "42"}

	recorded := func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}

	Describe("Submit", func() {
		It("posts one prompt per target to the organization's run endpoint", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				if len(recorded()) == 1 {
					_, _ = w.Write([]byte(`{"id":"backend-run"}`))
					return
				}
				_, _ = w.Write([]byte(`{"runId": 987}`))
			}

			result, err := newClient(configured).Submit(ctx, testSpec, codegen.SubmitOptions{
				Backend:  &codegen.TargetOptions{Framework: "Ruby on Rails", Database: prompt.DatabasePostgreSQL, Repository: "acme/todo-api"},
				Frontend: &codegen.TargetOptions{Framework: "Next.js"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.JobID(model.JobTypeBackend)).To(Equal("backend-run"))
			Expect(result.JobID(model.JobTypeFrontend)).To(Equal("987"))
			Expect(result.Errors).To(BeEmpty())

			Expect(result.Jobs.Backend.Status).To(Equal(model.JobStatusPending))
			Expect(result.Jobs.Backend.Framework).To(Equal("Ruby on Rails"))
			Expect(*result.Jobs.Backend.Database).To(Equal("postgresql"))
			Expect(result.Jobs.Frontend.Database).To(BeNil())

			reqs := recorded()
			Expect(reqs).To(HaveLen(2))
			for _, r := range reqs {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.Path).To(Equal("/v1/organizations/42/agent/run"))
				Expect(r.Auth).To(Equal("Bearer cg-key"))
				Expect(r.Prompt).To(HaveSuffix(testSpec))
			}
			Expect(reqs[0].Prompt).To(ContainSubstring("PostgreSQL"))
			Expect(reqs[0].Prompt).To(ContainSubstring("acme/todo-api"))
			Expect(result.Prompts[model.JobTypeBackend]).To(Equal(reqs[0].Prompt))
		})

		DescribeTable("extracts the job id",
			func(body, want string) {
				handler = func(w http.ResponseWriter, r *http.Request) {
					_, _ = w.Write([]byte(body))
				}
				result, err := newClient(configured).Submit(ctx, testSpec, codegen.SubmitOptions{
					Backend: &codegen.TargetOptions{Framework: "Go Gin"},
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(result.JobID(model.JobTypeBackend)).To(Equal(want))
			},
			Entry("jobId wins", `{"jobId":"a","id":"b","runId":"c"}`, "a"),
			Entry("id next", `{"id":"b","runId":"c"}`, "b"),
			Entry("runId last", `{"runId":"c"}`, "c"),
			Entry("numeric id", `{"id":12345678901}`, "12345678901"),
			Entry("empty strings skipped", `{"jobId":"","id":"b"}`, "b"),
			Entry("none present", `{"status":"queued"}`, "unknown"),
			Entry("not json", `accepted`, "unknown"),
		)

		It("fails with a configuration error before any request when the API key is missing", func() {
			_, err := newClient(config.CodeGenConfig{OrgID: "42"}).Submit(ctx, testSpec, codegen.SubmitOptions{
				Backend: &codegen.TargetOptions{Framework: "Go Gin"},
			})
			Expect(errors.Is(err, config.ErrMissingConfig)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("CODEGEN_API_KEY"))
			Expect(recorded()).To(BeEmpty())
		})

		It("fails with a configuration error when the org id is missing", func() {
			_, err := newClient(config.CodeGenConfig{APIKey: "k"}).Submit(ctx, testSpec, codegen.SubmitOptions{
				Backend: &codegen.TargetOptions{Framework: "Go Gin"},
			})
			Expect(errors.Is(err, config.ErrMissingConfig)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("CODEGEN_ORG_ID"))
			Expect(recorded()).To(BeEmpty())
		})

		It("rejects a request with no targets", func() {
			_, err := newClient(configured).Submit(ctx, testSpec, codegen.SubmitOptions{})
			Expect(err).To(MatchError(codegen.ErrNoTargets))
		})

		It("fails an unsupported framework without any network call", func() {
			result, err := newClient(configured).Submit(ctx, testSpec, codegen.SubmitOptions{
				Backend: &codegen.TargetOptions{Framework: "NoSuchFramework"},
			})
			Expect(errors.Is(err, prompt.ErrUnsupportedFramework)).To(BeTrue())
			Expect(result.Errors).To(HaveKey(model.JobTypeBackend))
			Expect(recorded()).To(BeEmpty())
		})

		It("still submits the other target when one framework is unsupported", func() {
			result, err := newClient(configured).Submit(ctx, testSpec, codegen.SubmitOptions{
				Backend:  &codegen.TargetOptions{Framework: "NoSuchFramework"},
				Frontend: &codegen.TargetOptions{Framework: "Vue.js"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.JobID(model.JobTypeFrontend)).To(Equal("job-1"))
			Expect(result.JobID(model.JobTypeBackend)).To(BeEmpty())
			Expect(errors.Is(result.Errors[model.JobTypeBackend], prompt.ErrUnsupportedFramework)).To(BeTrue())
			Expect(recorded()).To(HaveLen(1))
		})

		It("surfaces a remote failure with its status and body", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(`prompt too long`))
			}
			_, err := newClient(configured).Submit(ctx, testSpec, codegen.SubmitOptions{
				Backend: &codegen.TargetOptions{Framework: "Go Gin"},
			})
			var remote *codegen.RemoteServiceError
			Expect(errors.As(err, &remote)).To(BeTrue())
			Expect(remote.StatusCode).To(Equal(http.StatusUnprocessableEntity))
			Expect(remote.Body).To(Equal("prompt too long"))
			Expect(err.Error()).To(ContainSubstring("422"))
		})
	})

	Describe("CheckStatus", func() {
		It("maps the run detail onto a job", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{
					"status": "SUCCESS",
					"type": "frontend",
					"created_at": "2025-01-02T03:04:05Z",
					"completed_at": "2025-01-02T03:09:05Z",
					"pr_url": "https://github.com/acme/todo-api/pull/7",
					"repo_url": "https://github.com/acme/todo-api"
				}`))
			}

			job, err := newClient(configured).CheckStatus(ctx, "run-7")
			Expect(err).NotTo(HaveOccurred())
			Expect(job.ID).To(Equal("run-7"))
			Expect(job.Status).To(Equal(model.JobStatusCompleted))
			Expect(job.Type).To(Equal(model.JobTypeFrontend))
			Expect(job.Progress).To(Equal(100))
			Expect(*job.PullRequestURL).To(Equal("https://github.com/acme/todo-api/pull/7"))
			Expect(*job.RepositoryURL).To(Equal("https://github.com/acme/todo-api"))
			Expect(job.Duration(time.Now())).To(Equal(5 * time.Minute))

			reqs := recorded()
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].Method).To(Equal(http.MethodGet))
			Expect(reqs[0].Path).To(Equal("/v1/organizations/42/agent/runs/run-7"))
		})

		It("derives running progress and defaults the creation time", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"in_progress"}`))
			}
			before := time.Now()
			job, err := newClient(configured).CheckStatus(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Status).To(Equal(model.JobStatusRunning))
			Expect(job.Progress).To(Equal(50))
			Expect(job.CreatedAt).To(BeTemporally(">=", before))
			Expect(job.CompletedAt).To(BeNil())
		})

		It("honors an explicit progress value", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"running","progress":72}`))
			}
			job, err := newClient(configured).CheckStatus(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Progress).To(Equal(72))
		})

		It("reads the error message aliases", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"error","errorMessage":"tests failed"}`))
			}
			job, err := newClient(configured).CheckStatus(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(job.Status).To(Equal(model.JobStatusFailed))
			Expect(*job.Error).To(Equal("tests failed"))
			Expect(job.Progress).To(Equal(0))
		})

		It("returns nil without error for an unknown run", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}
			job, err := newClient(configured).CheckStatus(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(job).To(BeNil())
		})

		It("returns a RemoteServiceError for other failures", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(`upstream down`))
			}
			_, err := newClient(configured).CheckStatus(ctx, "run-1")
			var remote *codegen.RemoteServiceError
			Expect(errors.As(err, &remote)).To(BeTrue())
			Expect(remote.StatusCode).To(Equal(http.StatusBadGateway))
			Expect(remote.Body).To(Equal("upstream down"))
		})

		It("requires configuration", func() {
			_, err := newClient(config.CodeGenConfig{}).CheckStatus(ctx, "run-1")
			Expect(errors.Is(err, config.ErrMissingConfig)).To(BeTrue())
			Expect(recorded()).To(BeEmpty())
		})
	})
})
