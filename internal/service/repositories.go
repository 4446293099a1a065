package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/model"
)

// RepositoryService lists destination repositories for the selector.
type RepositoryService interface {
	HasToken(host model.RepoHost) bool
	List(ctx context.Context, host model.RepoHost) ([]model.Repository, error)
}

type repositoryService struct {
	httpClient *http.Client
	github     config.GitHubConfig
	gitlab     config.GitLabConfig
}

func NewRepositoryService(github config.GitHubConfig, gitlab config.GitLabConfig, httpClient *http.Client) RepositoryService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &repositoryService{github: github, gitlab: gitlab, httpClient: httpClient}
}

func (s *repositoryService) HasToken(host model.RepoHost) bool {
	switch host {
	case model.RepoHostGitHub:
		return s.github.Enabled()
	case model.RepoHostGitLab:
		return s.gitlab.Enabled()
	}
	return false
}

func (s *repositoryService) List(ctx context.Context, host model.RepoHost) ([]model.Repository, error) {
	switch host {
	case model.RepoHostGitHub:
		return s.listGitHub(ctx)
	case model.RepoHostGitLab:
		return s.listGitLab(ctx)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedHost, host)
}

type githubRepo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
	ID       int64  `json:"id"`
	Private  bool   `json:"private"`
}

func (s *repositoryService) listGitHub(ctx context.Context) ([]model.Repository, error) {
	if !s.github.Enabled() {
		return nil, config.Missing("Please add the GITHUB_ACCESS_TOKEN environment variable.", "GITHUB_ACCESS_TOKEN")
	}

	endpoint := strings.TrimRight(s.github.APIURL, "/") + "/user/repos?sort=updated&per_page=100"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "token "+s.github.Token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing github repositories: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &codegen.RemoteServiceError{
			Service:    "GitHub API",
			Op:         "list repositories",
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	var raw []githubRepo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing github repositories: %w", err)
	}

	repos := make([]model.Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, model.Repository{
			ID:       r.ID,
			Name:     r.Name,
			FullName: r.FullName,
			Private:  r.Private,
			URL:      r.HTMLURL,
			Host:     model.RepoHostGitHub,
		})
	}

	slog.InfoContext(ctx, "github repositories listed", "count", len(repos))
	return repos, nil
}

func (s *repositoryService) listGitLab(ctx context.Context) ([]model.Repository, error) {
	if !s.gitlab.Enabled() {
		return nil, config.Missing("Please add the GITLAB_ACCESS_TOKEN environment variable.", "GITLAB_ACCESS_TOKEN")
	}

	client, err := gitlab.NewClient(
		s.gitlab.Token,
		gitlab.WithBaseURL(strings.TrimSuffix(s.gitlab.URL, "/")+"/api/v4"),
		gitlab.WithHTTPClient(s.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	opts := &gitlab.ListProjectsOptions{
		Membership: gitlab.Ptr(true),
		OrderBy:    gitlab.Ptr("last_activity_at"),
		ListOptions: gitlab.ListOptions{
			Page:    1,
			PerPage: 100,
		},
	}

	var repos []model.Repository
	for {
		projects, resp, err := client.Projects.ListProjects(opts, gitlab.WithContext(ctx))
		if err != nil {
			if resp != nil && resp.StatusCode >= 400 {
				return nil, &codegen.RemoteServiceError{
					Service:    "GitLab API",
					Op:         "list repositories",
					StatusCode: resp.StatusCode,
					Body:       err.Error(),
				}
			}
			return nil, fmt.Errorf("listing gitlab projects: %w", err)
		}

		for _, p := range projects {
			repos = append(repos, model.Repository{
				ID:       p.ID,
				Name:     p.Name,
				FullName: p.PathWithNamespace,
				Private:  p.Visibility != gitlab.PublicVisibility,
				URL:      p.WebURL,
				Host:     model.RepoHostGitLab,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	slog.InfoContext(ctx, "gitlab repositories listed", "count", len(repos))
	return repos, nil
}
