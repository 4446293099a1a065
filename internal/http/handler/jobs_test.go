package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/http/handler"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
	"voyager.app/generator/internal/service"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

func sessionWith(jobs ...*model.CodeGenJob) *model.Session {
	sess := &model.Session{ID: 42}
	for _, j := range jobs {
		switch j.Type {
		case model.JobTypeBackend:
			sess.Jobs.Backend = j
		case model.JobTypeFrontend:
			sess.Jobs.Frontend = j
		}
	}
	return sess
}

var _ = Describe("JobHandler", func() {
	var (
		router     *gin.Engine
		codegenSvc *mockCodeGenService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		codegenSvc = &mockCodeGenService{}
		h := handler.NewJobHandler(codegenSvc)

		router.POST("/sessions/:id/jobs", h.Submit)
		router.GET("/sessions/:id/jobs", h.Status)
		router.GET("/sessions/:id/jobs/stream", h.Stream)
	})

	Describe("Submit", func() {
		It("maps the request onto submit options", func() {
			var got codegen.SubmitOptions
			codegenSvc.submitFn = func(_ context.Context, _ int64, opts codegen.SubmitOptions) (*service.SubmitOutcome, error) {
				got = opts
				return &service.SubmitOutcome{Session: sessionWith(
					model.NewPendingJob("run-1", model.JobTypeBackend, "Ruby on Rails", nil, time.Now()),
				)}, nil
			}

			w := doJSON(router, http.MethodPost, "/sessions/42/jobs", map[string]any{
				"backend":    map[string]string{"framework": "Ruby on Rails", "database": "postgresql", "repository": "acme/api"},
				"deployment": "local",
			})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(got.Backend).To(Equal(&codegen.TargetOptions{
				Framework: "Ruby on Rails", Database: prompt.DatabasePostgreSQL, Repository: "acme/api",
			}))
			Expect(got.Frontend).To(BeNil())
			Expect(got.Deployment).To(Equal(prompt.DeploymentLocal))

			session := decode(w)["session"].(map[string]any)
			backend := session["jobs"].(map[string]any)["backend"].(map[string]any)
			Expect(backend["id"]).To(Equal("run-1"))
			Expect(backend["status"]).To(Equal("pending"))
		})

		It("reports a failed target next to a successful one", func() {
			codegenSvc.submitFn = func(context.Context, int64, codegen.SubmitOptions) (*service.SubmitOutcome, error) {
				return &service.SubmitOutcome{
					Session: sessionWith(model.NewPendingJob("run-1", model.JobTypeBackend, "Django", nil, time.Now())),
					Errors:  map[model.JobType]error{model.JobTypeFrontend: errors.New("boom")},
				}, nil
			}

			w := doJSON(router, http.MethodPost, "/sessions/42/jobs", map[string]any{
				"backend":  map[string]string{"framework": "Django"},
				"frontend": map[string]string{"framework": "Astro"},
			})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(decode(w)["errors"]).To(Equal(map[string]any{"frontend": "boom"}))
		})

		It("rejects an unknown deployment mode", func() {
			w := doJSON(router, http.MethodPost, "/sessions/42/jobs", map[string]any{
				"backend":    map[string]string{"framework": "Django"},
				"deployment": "kubernetes",
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 for an unsupported framework", func() {
			codegenSvc.submitFn = func(context.Context, int64, codegen.SubmitOptions) (*service.SubmitOutcome, error) {
				return nil, &prompt.UnsupportedFrameworkError{Target: prompt.TargetBackend, Framework: "Cobol"}
			}
			w := doJSON(router, http.MethodPost, "/sessions/42/jobs", map[string]any{
				"backend": map[string]string{"framework": "Cobol"},
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 502 with upstream details when the service rejects the run", func() {
			codegenSvc.submitFn = func(context.Context, int64, codegen.SubmitOptions) (*service.SubmitOutcome, error) {
				return nil, fmt.Errorf("backend: %w", &codegen.RemoteServiceError{Op: "run agent", StatusCode: 422, Body: "bad prompt"})
			}

			w := doJSON(router, http.MethodPost, "/sessions/42/jobs", map[string]any{
				"backend": map[string]string{"framework": "Django"},
			})

			Expect(w.Code).To(Equal(http.StatusBadGateway))
			resp := decode(w)
			Expect(resp["upstream_status"]).To(Equal(float64(422)))
			Expect(resp["details"]).To(Equal("bad prompt"))
		})

		It("returns 502 when an upstream failure is joined with a bad framework", func() {
			codegenSvc.submitFn = func(context.Context, int64, codegen.SubmitOptions) (*service.SubmitOutcome, error) {
				return nil, errors.Join(
					fmt.Errorf("backend: %w", &codegen.RemoteServiceError{Op: "run agent", StatusCode: 500, Body: "internal"}),
					fmt.Errorf("frontend: %w", &prompt.UnsupportedFrameworkError{Target: prompt.TargetFrontend, Framework: "Cobol"}),
				)
			}

			w := doJSON(router, http.MethodPost, "/sessions/42/jobs", map[string]any{
				"backend":  map[string]string{"framework": "Django"},
				"frontend": map[string]string{"framework": "Cobol"},
			})

			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(decode(w)["upstream_status"]).To(Equal(float64(500)))
		})
	})

	It("returns 409 when polling a session without jobs", func() {
		codegenSvc.refreshFn = func(context.Context, int64) (*service.StatusOutcome, error) {
			return nil, service.ErrNoJobs
		}
		w := doJSON(router, http.MethodGet, "/sessions/42/jobs", nil)
		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("returns one status round", func() {
		codegenSvc.refreshFn = func(context.Context, int64) (*service.StatusOutcome, error) {
			job := model.NewPendingJob("run-1", model.JobTypeBackend, "Django", nil, time.Now())
			job.Status = model.JobStatusRunning
			job.Progress = 50
			return &service.StatusOutcome{Session: sessionWith(job)}, nil
		}

		w := doJSON(router, http.MethodGet, "/sessions/42/jobs", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp["done"]).To(BeFalse())
		backend := resp["jobs"].(map[string]any)["backend"].(map[string]any)
		Expect(backend["progress"]).To(Equal(float64(50)))
	})

	Describe("Stream", func() {
		It("streams every round and closes after the jobs settle", func() {
			codegenSvc.watchFn = func(ctx context.Context, _ int64, onRound func(context.Context, service.StatusOutcome)) error {
				job := model.NewPendingJob("run-1", model.JobTypeBackend, "Django", nil, time.Now())
				job.Status = model.JobStatusRunning
				onRound(ctx, service.StatusOutcome{Session: sessionWith(job)})

				done := *job
				done.Status = model.JobStatusCompleted
				onRound(ctx, service.StatusOutcome{Session: sessionWith(&done), Done: true})
				return nil
			}

			w := doJSON(router, http.MethodGet, "/sessions/42/jobs/stream", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/event-stream"))
			body := w.Body.String()
			Expect(strings.Count(body, "event: status\n")).To(Equal(2))
			Expect(body).To(ContainSubstring(`"status":"running"`))
			Expect(body).To(ContainSubstring(`"status":"completed"`))
			Expect(body).To(HaveSuffix("event: done\ndata: settled\n\n"))
		})

		It("answers with JSON when nothing was streamed yet", func() {
			codegenSvc.watchFn = func(context.Context, int64, func(context.Context, service.StatusOutcome)) error {
				return service.ErrSessionNotFound
			}

			w := doJSON(router, http.MethodGet, "/sessions/42/jobs/stream", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)["error"]).To(Equal(service.ErrSessionNotFound.Error()))
		})

		It("sends an error event when the session is reset mid-stream", func() {
			codegenSvc.watchFn = func(ctx context.Context, _ int64, onRound func(context.Context, service.StatusOutcome)) error {
				onRound(ctx, service.StatusOutcome{Session: sessionWith(
					model.NewPendingJob("run-1", model.JobTypeBackend, "Django", nil, time.Now()),
				)})
				return service.ErrSessionNotFound
			}

			w := doJSON(router, http.MethodGet, "/sessions/42/jobs/stream", nil)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("event: error\n"))
		})
	})
})
