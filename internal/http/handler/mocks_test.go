package handler_test

import (
	"context"

	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/prompt"
	"voyager.app/generator/internal/queue"
	"voyager.app/generator/internal/service"
)

type mockGenerationService struct {
	startFn        func(ctx context.Context, text string) (*model.Session, error)
	getFn          func(ctx context.Context, sessionID int64) (*model.Session, error)
	resetFn        func(ctx context.Context, sessionID int64) error
	savePromptFn   func(ctx context.Context, sessionID int64, text string) (*model.Session, error)
	generateSpecFn func(ctx context.Context, sessionID int64) (*model.Session, error)
	uploadSpecFn   func(ctx context.Context, sessionID int64, text string) (*model.Session, error)
}

func (m *mockGenerationService) Start(ctx context.Context, text string) (*model.Session, error) {
	if m.startFn != nil {
		return m.startFn(ctx, text)
	}
	return &model.Session{Request: model.GenerationRequest{Text: text}}, nil
}

func (m *mockGenerationService) Get(ctx context.Context, sessionID int64) (*model.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, sessionID)
	}
	return &model.Session{ID: sessionID}, nil
}

func (m *mockGenerationService) Reset(ctx context.Context, sessionID int64) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, sessionID)
	}
	return nil
}

func (m *mockGenerationService) SaveEnhancedPrompt(ctx context.Context, sessionID int64, text string) (*model.Session, error) {
	if m.savePromptFn != nil {
		return m.savePromptFn(ctx, sessionID, text)
	}
	return &model.Session{ID: sessionID, EnhancedPrompt: text}, nil
}

func (m *mockGenerationService) GenerateSpec(ctx context.Context, sessionID int64) (*model.Session, error) {
	if m.generateSpecFn != nil {
		return m.generateSpecFn(ctx, sessionID)
	}
	return &model.Session{ID: sessionID}, nil
}

func (m *mockGenerationService) UploadSpec(ctx context.Context, sessionID int64, text string) (*model.Session, error) {
	if m.uploadSpecFn != nil {
		return m.uploadSpecFn(ctx, sessionID, text)
	}
	return &model.Session{ID: sessionID, Spec: text}, nil
}

type mockCodeGenService struct {
	submitFn  func(ctx context.Context, sessionID int64, opts codegen.SubmitOptions) (*service.SubmitOutcome, error)
	refreshFn func(ctx context.Context, sessionID int64) (*service.StatusOutcome, error)
	watchFn   func(ctx context.Context, sessionID int64, onRound func(ctx context.Context, out service.StatusOutcome)) error
}

func (m *mockCodeGenService) Submit(ctx context.Context, sessionID int64, opts codegen.SubmitOptions) (*service.SubmitOutcome, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, sessionID, opts)
	}
	return &service.SubmitOutcome{Session: &model.Session{ID: sessionID}}, nil
}

func (m *mockCodeGenService) Refresh(ctx context.Context, sessionID int64) (*service.StatusOutcome, error) {
	if m.refreshFn != nil {
		return m.refreshFn(ctx, sessionID)
	}
	return &service.StatusOutcome{Session: &model.Session{ID: sessionID}}, nil
}

func (m *mockCodeGenService) Watch(ctx context.Context, sessionID int64, onRound func(ctx context.Context, out service.StatusOutcome)) error {
	if m.watchFn != nil {
		return m.watchFn(ctx, sessionID, onRound)
	}
	return nil
}

func (m *mockCodeGenService) PreviewPrompt(params prompt.CodeGenParams) (string, error) {
	return prompt.BuildCodeGenPrompt(params)
}

type mockWebhookService struct {
	forwardFn func(ctx context.Context, sessionID int64) (*service.WebhookResult, error)
}

func (m *mockWebhookService) Forward(ctx context.Context, sessionID int64) (*service.WebhookResult, error) {
	if m.forwardFn != nil {
		return m.forwardFn(ctx, sessionID)
	}
	return &service.WebhookResult{Success: true}, nil
}

type mockRepositoryService struct {
	tokens map[model.RepoHost]bool
	listFn func(ctx context.Context, host model.RepoHost) ([]model.Repository, error)
}

func (m *mockRepositoryService) HasToken(host model.RepoHost) bool {
	return m.tokens[host]
}

func (m *mockRepositoryService) List(ctx context.Context, host model.RepoHost) ([]model.Repository, error) {
	if m.listFn != nil {
		return m.listFn(ctx, host)
	}
	return []model.Repository{}, nil
}

type mockProviderService struct {
	info service.ProviderInfo
}

func (m *mockProviderService) Info() service.ProviderInfo {
	return m.info
}

// scriptedTailer replays events and then behaves like a settled stream.
type scriptedTailer struct {
	events []queue.StatusEvent
	lastID string
}

func (t *scriptedTailer) Tail(ctx context.Context, _ int64, lastID string, onEvent queue.EventHandler, onIdle queue.IdleHandler) error {
	t.lastID = lastID
	if err := onIdle(ctx); err != nil {
		return err
	}
	for _, ev := range t.events {
		if err := onEvent(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
