package model

// RepoHost names the source-control host a repository was listed from.
type RepoHost string

const (
	RepoHostGitHub RepoHost = "github"
	RepoHostGitLab RepoHost = "gitlab"
)

// Repository is an entry in the destination-repository selection list.
type Repository struct {
	Name     string   `json:"name"`
	FullName string   `json:"full_name"` // "owner/name"
	URL      string   `json:"url"`
	Host     RepoHost `json:"host"`
	ID       int64    `json:"id"`
	Private  bool     `json:"private"`
}
