package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voyager.app/generator/common"
	"voyager.app/generator/internal/model"
)

const (
	// MaxSpecSize is the maximum spec size accepted by the archive.
	MaxSpecSize = 512 * 1024

	maxSlugLen = 50
)

var (
	ErrSpecNotFound      = errors.New("spec not found")
	ErrSpecTooLarge      = errors.New("spec exceeds maximum size")
	ErrInvalidSpecPath   = errors.New("invalid spec path")
	ErrSpecPathTraversal = errors.New("path traversal not allowed")
)

// SpecArchive keeps every specification version a session produced, so a
// reset session's specs stay recoverable.
type SpecArchive interface {
	Write(ctx context.Context, sessionID int64, title, content string) (model.SpecRef, error)
	Read(ctx context.Context, ref model.SpecRef) (string, error)
}

// LocalSpecArchive stores specs as session_<id>_<slug>/vNNN.yaml under rootDir.
type LocalSpecArchive struct {
	rootDir string
}

func NewLocalSpecArchive(rootDir string) (*LocalSpecArchive, error) {
	if rootDir == "" {
		return nil, fmt.Errorf("spec archive directory is required")
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating spec archive directory: %w", err)
	}
	return &LocalSpecArchive{rootDir: rootDir}, nil
}

func (a *LocalSpecArchive) Write(_ context.Context, sessionID int64, title, content string) (model.SpecRef, error) {
	if len(content) > MaxSpecSize {
		return model.SpecRef{}, ErrSpecTooLarge
	}
	if strings.TrimSpace(content) == "" {
		return model.SpecRef{}, fmt.Errorf("spec content cannot be empty")
	}

	dir, err := a.sessionDir(sessionID, title)
	if err != nil {
		return model.SpecRef{}, err
	}
	if err := os.MkdirAll(filepath.Join(a.rootDir, dir), 0o755); err != nil {
		return model.SpecRef{}, fmt.Errorf("creating spec directory: %w", err)
	}

	version, err := a.nextVersion(dir)
	if err != nil {
		return model.SpecRef{}, err
	}

	relPath := filepath.Join(dir, fmt.Sprintf("v%03d.yaml", version))
	if err := validatePath(relPath); err != nil {
		return model.SpecRef{}, err
	}
	fullPath := filepath.Join(a.rootDir, relPath)

	// Write to a temp file, then rename into place.
	tmpPath := fullPath + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return model.SpecRef{}, fmt.Errorf("writing temp spec: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		_ = os.Remove(tmpPath)
		return model.SpecRef{}, fmt.Errorf("renaming spec: %w", err)
	}

	return model.SpecRef{
		Version:   version,
		Backend:   "local",
		Path:      relPath,
		UpdatedAt: time.Now().UTC(),
		SHA256:    sha256Hash([]byte(content)),
		Format:    "yaml",
	}, nil
}

func (a *LocalSpecArchive) Read(_ context.Context, ref model.SpecRef) (string, error) {
	if err := validatePath(ref.Path); err != nil {
		return "", err
	}

	content, err := os.ReadFile(filepath.Join(a.rootDir, ref.Path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSpecNotFound
		}
		return "", fmt.Errorf("reading spec: %w", err)
	}

	if ref.SHA256 != "" {
		if actual := sha256Hash(content); actual != ref.SHA256 {
			return "", fmt.Errorf("spec hash mismatch: expected %s, got %s", ref.SHA256, actual)
		}
	}
	return string(content), nil
}

// sessionDir reuses an existing directory for the session so a renamed API
// keeps one version history.
func (a *LocalSpecArchive) sessionDir(sessionID int64, title string) (string, error) {
	prefix := fmt.Sprintf("session_%d_", sessionID)
	matches, err := filepath.Glob(filepath.Join(a.rootDir, prefix+"*"))
	if err != nil {
		return "", fmt.Errorf("listing spec archive: %w", err)
	}
	if len(matches) > 0 {
		return filepath.Base(matches[0]), nil
	}

	slug, err := common.Slugify(title, "spec", maxSlugLen)
	if err != nil {
		return "", err
	}
	return prefix + slug, nil
}

func (a *LocalSpecArchive) nextVersion(dir string) (int, error) {
	existing, err := filepath.Glob(filepath.Join(a.rootDir, dir, "v*.yaml"))
	if err != nil {
		return 0, fmt.Errorf("listing spec versions: %w", err)
	}
	return len(existing) + 1, nil
}

// validatePath ensures the path is relative and stays under the root.
func validatePath(path string) error {
	if path == "" {
		return ErrInvalidSpecPath
	}
	if filepath.IsAbs(path) || strings.Contains(path, "..") {
		return ErrSpecPathTraversal
	}
	return nil
}

func sha256Hash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
