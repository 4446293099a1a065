package dto

import (
	"sort"

	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
)

type FrameworkResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Features  []string          `json:"features"`
	Databases []prompt.Database `json:"databases"`
	Override  bool              `json:"override"`
}

func ToFrameworkResponse(f prompt.Framework) FrameworkResponse {
	dbs := make([]prompt.Database, 0, len(f.Databases))
	for db := range f.Databases {
		dbs = append(dbs, db)
	}
	sort.Slice(dbs, func(i, j int) bool { return dbs[i] < dbs[j] })

	return FrameworkResponse{
		ID:        f.ID,
		Name:      f.Name,
		Features:  f.Features,
		Databases: dbs,
		Override:  prompt.HasOverride(f.ID),
	}
}

type CodeGenPromptQuery struct {
	Target     string `form:"target" binding:"required,oneof=backend frontend"`
	Framework  string `form:"framework" binding:"required"`
	Database   string `form:"database"`
	Repository string `form:"repository"`
	Deployment string `form:"deployment" binding:"omitempty,oneof=docker local"`
	SessionID  int64  `form:"session_id"`
}

type CodeGenPromptResponse struct {
	Prompt string `json:"prompt"`
}

type RepositoryQuery struct {
	Host string `form:"host" binding:"required"`
}

type RepositoryResponse struct {
	Name     string         `json:"name"`
	FullName string         `json:"full_name"`
	URL      string         `json:"url"`
	Host     model.RepoHost `json:"host"`
	ID       int64          `json:"id,string"`
	Private  bool           `json:"private"`
}

func ToRepositoryResponses(repos []model.Repository) []RepositoryResponse {
	out := make([]RepositoryResponse, 0, len(repos))
	for _, r := range repos {
		out = append(out, RepositoryResponse{
			ID:       r.ID,
			Name:     r.Name,
			FullName: r.FullName,
			URL:      r.URL,
			Host:     r.Host,
			Private:  r.Private,
		})
	}
	return out
}

type TokenResponse struct {
	HasToken bool `json:"has_token"`
}
