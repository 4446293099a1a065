package dto

import (
	"time"

	"voyager.app/generator/internal/model"
)

type CreateSessionRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type UpdatePromptRequest struct {
	EnhancedPrompt string `json:"enhanced_prompt" binding:"required"`
}

type UploadSpecRequest struct {
	Spec string `json:"spec" binding:"required"`
}

type SessionResponse struct {
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	SpecWarning    *string        `json:"spec_warning,omitempty"`
	SpecRef        *model.SpecRef `json:"spec_ref,omitempty"`
	Prompt         string         `json:"prompt"`
	EnhancedPrompt string         `json:"enhanced_prompt"`
	Spec           string         `json:"spec"`
	Jobs           JobsResponse   `json:"jobs"`
	ID             int64          `json:"id,string"`
}

func ToSessionResponse(s *model.Session, now time.Time) SessionResponse {
	return SessionResponse{
		ID:             s.ID,
		Prompt:         s.Request.Text,
		EnhancedPrompt: s.EnhancedPrompt,
		Spec:           s.Spec,
		SpecWarning:    s.SpecWarning,
		SpecRef:        s.SpecRef,
		Jobs:           ToJobsResponse(s.Jobs, now),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type WebhookResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}
