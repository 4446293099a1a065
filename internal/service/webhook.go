package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"voyager.app/generator/common/logger"
	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/store"
)

// WebhookResult reduces a forward attempt to success and a message.
type WebhookResult struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// WebhookService forwards a session's spec to the automation webhook.
type WebhookService interface {
	Forward(ctx context.Context, sessionID int64) (*WebhookResult, error)
}

type webhookService struct {
	httpClient *http.Client
	sessions   store.SessionStore
	cfg        config.WebhookConfig
}

func NewWebhookService(cfg config.WebhookConfig, sessions store.SessionStore, httpClient *http.Client) WebhookService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &webhookService{cfg: cfg, sessions: sessions, httpClient: httpClient}
}

// Forward returns an error only for a missing URL, an unknown session or a
// session without a spec. Delivery failures are reported in the result.
func (s *webhookService) Forward(ctx context.Context, sessionID int64) (*WebhookResult, error) {
	if !s.cfg.Enabled() {
		return nil, config.Missing("Please add N8N_WEBHOOK_URL environment variable.", "N8N_WEBHOOK_URL")
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: &sessionID, Component: "voyager.webhook"})

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionErr(err)
	}
	if strings.TrimSpace(sess.Spec) == "" {
		return nil, ErrNoSpec
	}

	if err := s.post(ctx, sess.Spec); err != nil {
		slog.ErrorContext(ctx, "webhook delivery failed", "error", err)
		return &WebhookResult{Message: "Failed to send Swagger to n8n: " + err.Error()}, nil
	}

	slog.InfoContext(ctx, "specification forwarded to webhook")
	return &WebhookResult{Success: true, Message: "Swagger specification successfully sent to n8n"}, nil
}

func (s *webhookService) post(ctx context.Context, swagger string) error {
	body, err := json.Marshal(map[string]string{"swaggerSpec": swagger})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		details, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("webhook responded with status: %d. Details: %s", resp.StatusCode, details)
	}
	return nil
}
