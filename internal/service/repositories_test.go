package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/service"
)

var _ = Describe("RepositoryService", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("reports token presence per host", func() {
		svc := service.NewRepositoryService(config.GitHubConfig{Token: "gh"}, config.GitLabConfig{}, nil)
		Expect(svc.HasToken(model.RepoHostGitHub)).To(BeTrue())
		Expect(svc.HasToken(model.RepoHostGitLab)).To(BeFalse())
		Expect(svc.HasToken("bitbucket")).To(BeFalse())
	})

	Describe("GitHub", func() {
		It("lists the user's repositories most recently updated first", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/user/repos"))
				Expect(r.URL.Query().Get("sort")).To(Equal("updated"))
				Expect(r.URL.Query().Get("per_page")).To(Equal("100"))
				Expect(r.Header.Get("Authorization")).To(Equal("token gh-token"))
				Expect(r.Header.Get("Accept")).To(Equal("application/vnd.github.v3+json"))
				_, _ = w.Write([]byte(`[
					{"id": 1, "name": "todo-api", "full_name": "acme/todo-api", "private": true, "html_url": "https://github.com/acme/todo-api"},
					{"id": 2, "name": "site", "full_name": "acme/site", "private": false}
				]`))
			}))
			defer server.Close()

			svc := service.NewRepositoryService(config.GitHubConfig{Token: "gh-token", APIURL: server.URL}, config.GitLabConfig{}, server.Client())
			repos, err := svc.List(ctx, model.RepoHostGitHub)
			Expect(err).NotTo(HaveOccurred())
			Expect(repos).To(HaveLen(2))
			Expect(repos[0]).To(Equal(model.Repository{
				ID: 1, Name: "todo-api", FullName: "acme/todo-api", Private: true,
				URL: "https://github.com/acme/todo-api", Host: model.RepoHostGitHub,
			}))
		})

		It("surfaces an upstream failure with status and body", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			}))
			defer server.Close()

			svc := service.NewRepositoryService(config.GitHubConfig{Token: "bad", APIURL: server.URL}, config.GitLabConfig{}, server.Client())
			_, err := svc.List(ctx, model.RepoHostGitHub)
			var remote *codegen.RemoteServiceError
			Expect(errors.As(err, &remote)).To(BeTrue())
			Expect(remote.StatusCode).To(Equal(http.StatusUnauthorized))
			Expect(remote.Body).To(ContainSubstring("Bad credentials"))
		})

		It("needs a token", func() {
			svc := service.NewRepositoryService(config.GitHubConfig{}, config.GitLabConfig{}, nil)
			_, err := svc.List(ctx, model.RepoHostGitHub)
			Expect(errors.Is(err, config.ErrMissingConfig)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("GITHUB_ACCESS_TOKEN"))
		})
	})

	Describe("GitLab", func() {
		It("pages through the member projects", func() {
			type project struct {
				ID                int64  `json:"id"`
				Name              string `json:"name"`
				PathWithNamespace string `json:"path_with_namespace"`
				WebURL            string `json:"web_url"`
				Visibility        string `json:"visibility"`
			}
			all := []project{
				{ID: 1, Name: "api", PathWithNamespace: "acme/api", WebURL: "https://gitlab.example/acme/api", Visibility: "private"},
				{ID: 2, Name: "web", PathWithNamespace: "acme/web", WebURL: "https://gitlab.example/acme/web", Visibility: "public"},
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/v4/projects"))
				Expect(r.Header.Get("Private-Token")).To(Equal("gl-token"))
				Expect(r.URL.Query().Get("membership")).To(Equal("true"))

				page, _ := strconv.Atoi(r.URL.Query().Get("page"))
				if page <= 1 {
					w.Header().Set("X-Next-Page", "2")
					_ = json.NewEncoder(w).Encode(all[:1])
					return
				}
				_ = json.NewEncoder(w).Encode(all[1:])
			}))
			defer server.Close()

			svc := service.NewRepositoryService(config.GitHubConfig{}, config.GitLabConfig{Token: "gl-token", URL: server.URL}, server.Client())
			repos, err := svc.List(ctx, model.RepoHostGitLab)
			Expect(err).NotTo(HaveOccurred())
			Expect(repos).To(HaveLen(2))
			Expect(repos[0].FullName).To(Equal("acme/api"))
			Expect(repos[0].Private).To(BeTrue())
			Expect(repos[1].Private).To(BeFalse())
			Expect(repos[1].Host).To(Equal(model.RepoHostGitLab))
		})
	})

	It("rejects unknown hosts", func() {
		svc := service.NewRepositoryService(config.GitHubConfig{}, config.GitLabConfig{}, nil)
		_, err := svc.List(ctx, "bitbucket")
		Expect(err).To(MatchError(service.ErrUnsupportedHost))
	})
})
