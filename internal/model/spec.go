package model

import "time"

// SpecRef identifies one archived version of a session's specification.
type SpecRef struct {
	UpdatedAt time.Time `json:"updated_at"`
	Backend   string    `json:"backend"` // "local"
	Path      string    `json:"path"`    // relative to the archive root
	SHA256    string    `json:"sha256"`
	Format    string    `json:"format"` // "yaml"
	Version   int       `json:"version"`
}
