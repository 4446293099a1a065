package service_test

import (
	"context"
	"sync"

	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/llm"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/queue"
)

type mockGenerator struct {
	generateFn func(ctx context.Context, task llm.Task, systemPrompt, userPrompt string) (*llm.Result, error)

	mu    sync.Mutex
	tasks []llm.Task
}

func (m *mockGenerator) Generate(ctx context.Context, task llm.Task, systemPrompt, userPrompt string) (*llm.Result, error) {
	m.mu.Lock()
	m.tasks = append(m.tasks, task)
	m.mu.Unlock()
	if m.generateFn != nil {
		return m.generateFn(ctx, task, systemPrompt, userPrompt)
	}
	return &llm.Result{Text: "generated", Provider: llm.ProviderOpenAI}, nil
}

func (m *mockGenerator) calls() []llm.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Task(nil), m.tasks...)
}

type mockSubmitter struct {
	submitFn      func(ctx context.Context, spec string, opts codegen.SubmitOptions) (*codegen.SubmitResult, error)
	checkStatusFn func(ctx context.Context, jobID string) (*model.CodeGenJob, error)
}

func (m *mockSubmitter) Submit(ctx context.Context, spec string, opts codegen.SubmitOptions) (*codegen.SubmitResult, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, spec, opts)
	}
	return &codegen.SubmitResult{}, nil
}

func (m *mockSubmitter) CheckStatus(ctx context.Context, jobID string) (*model.CodeGenJob, error) {
	if m.checkStatusFn != nil {
		return m.checkStatusFn(ctx, jobID)
	}
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.StatusEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.StatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}
