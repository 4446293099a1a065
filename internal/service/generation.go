package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voyager.app/generator/common/id"
	"voyager.app/generator/common/logger"
	"voyager.app/generator/internal/llm"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
	"voyager.app/generator/internal/spec"
	"voyager.app/generator/internal/store"
)

// TextGenerator runs one pipeline task under the provider policy.
type TextGenerator interface {
	Generate(ctx context.Context, task llm.Task, systemPrompt, userPrompt string) (*llm.Result, error)
}

// GenerationService owns the enhance and specify stages of a session.
// Only one stage runs per session at a time.
type GenerationService interface {
	// Start creates a session from raw user text and enhances it.
	Start(ctx context.Context, text string) (*model.Session, error)
	Get(ctx context.Context, sessionID int64) (*model.Session, error)
	// Reset discards the session and cancels anything bound to it.
	Reset(ctx context.Context, sessionID int64) error
	// SaveEnhancedPrompt stores an edited prompt and regenerates the spec from it.
	SaveEnhancedPrompt(ctx context.Context, sessionID int64, text string) (*model.Session, error)
	GenerateSpec(ctx context.Context, sessionID int64) (*model.Session, error)
	// UploadSpec replaces the spec with user-provided text. A validation
	// problem is recorded as a warning, never rejected.
	UploadSpec(ctx context.Context, sessionID int64, text string) (*model.Session, error)
}

type generationService struct {
	generator TextGenerator
	sessions  store.SessionStore
	archive   store.SpecArchive
}

type GenerationOption func(*generationService)

// WithSpecArchive keeps a copy of every spec the session produces.
func WithSpecArchive(archive store.SpecArchive) GenerationOption {
	return func(s *generationService) {
		s.archive = archive
	}
}

func NewGenerationService(generator TextGenerator, sessions store.SessionStore, opts ...GenerationOption) GenerationService {
	s := &generationService{generator: generator, sessions: sessions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *generationService) Start(ctx context.Context, text string) (*model.Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyRequest
	}

	session := &model.Session{ID: id.New(), Request: model.GenerationRequest{Text: text}}
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &session.ID})

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	release, err := s.sessions.Acquire(ctx, session.ID)
	if err != nil {
		return nil, sessionErr(err)
	}
	defer release()

	enhanced, err := s.enhance(ctx, text)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, err
	}

	updated, err := s.sessions.Update(ctx, session.ID, func(sess *model.Session) error {
		sess.EnhancedPrompt = enhanced
		return nil
	})
	if err != nil {
		return nil, sessionErr(err)
	}

	slog.InfoContext(ctx, "session started", "enhanced_length", len(enhanced))
	return updated, nil
}

func (s *generationService) Get(ctx context.Context, sessionID int64) (*model.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	return sess, nil
}

func (s *generationService) Reset(ctx context.Context, sessionID int64) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return sessionErr(err)
	}
	slog.InfoContext(logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID}), "session reset")
	return nil
}

func (s *generationService) SaveEnhancedPrompt(ctx context.Context, sessionID int64, text string) (*model.Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyRequest
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID})

	release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	defer release()

	if _, err := s.sessions.Update(ctx, sessionID, func(sess *model.Session) error {
		sess.EnhancedPrompt = text
		return nil
	}); err != nil {
		return nil, sessionErr(err)
	}

	return s.specify(ctx, sessionID, text)
}

func (s *generationService) GenerateSpec(ctx context.Context, sessionID int64) (*model.Session, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID})

	release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	defer release()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	if strings.TrimSpace(sess.EnhancedPrompt) == "" {
		return nil, ErrNoEnhancedPrompt
	}

	return s.specify(ctx, sessionID, sess.EnhancedPrompt)
}

func (s *generationService) UploadSpec(ctx context.Context, sessionID int64, text string) (*model.Session, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyRequest
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID})

	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, sessionErr(err)
	}

	cleaned := spec.Clean(text)
	ref := s.archiveSpec(ctx, sessionID, cleaned)
	updated, err := s.sessions.Update(ctx, sessionID, func(sess *model.Session) error {
		sess.Spec = cleaned
		sess.SpecWarning = warningText(spec.Validate(cleaned))
		if ref != nil {
			sess.SpecRef = ref
		}
		return nil
	})
	if err != nil {
		return nil, sessionErr(err)
	}

	slog.InfoContext(ctx, "specification uploaded", "length", len(cleaned), "warning", updated.SpecWarning != nil)
	return updated, nil
}

func (s *generationService) enhance(ctx context.Context, text string) (string, error) {
	res, err := s.generator.Generate(ctx, llm.TaskEnhance,
		prompt.EnhancementSystemPrompt, prompt.BuildEnhancementPrompt(text))
	if err != nil {
		return "", fmt.Errorf("failed to enhance prompt: %w", err)
	}
	return res.Text, nil
}

// specify expects the session to be acquired by the caller.
func (s *generationService) specify(ctx context.Context, sessionID int64, enhanced string) (*model.Session, error) {
	res, err := s.generator.Generate(ctx, llm.TaskSpecify,
		prompt.SpecificationSystemPrompt, prompt.BuildSpecificationPrompt(enhanced))
	if err != nil {
		return nil, fmt.Errorf("failed to generate specification: %w", err)
	}

	cleaned := spec.Clean(res.Text)
	warning := spec.Validate(cleaned)
	if warning != nil {
		slog.WarnContext(ctx, "generated specification failed validation", "reason", warning.Reason)
	}

	ref := s.archiveSpec(ctx, sessionID, cleaned)
	updated, err := s.sessions.Update(ctx, sessionID, func(sess *model.Session) error {
		sess.Spec = cleaned
		sess.SpecWarning = warningText(warning)
		if ref != nil {
			sess.SpecRef = ref
		}
		return nil
	})
	if err != nil {
		return nil, sessionErr(err)
	}

	slog.InfoContext(ctx, "specification generated", "provider", res.Provider, "fell_back", res.FellBack, "length", len(cleaned))
	return updated, nil
}

// archiveSpec never fails the stage; an archive error only costs history.
func (s *generationService) archiveSpec(ctx context.Context, sessionID int64, text string) *model.SpecRef {
	if s.archive == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	ref, err := s.archive.Write(ctx, sessionID, spec.Title(text), text)
	if err != nil {
		slog.WarnContext(ctx, "failed to archive specification", "error", err)
		return nil
	}
	return &ref
}

func warningText(w *spec.ValidationWarning) *string {
	if w == nil {
		return nil
	}
	return &w.Reason
}
