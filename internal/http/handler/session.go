package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/dto"
	"voyager.app/generator/internal/service"
)

const specFilename = "swagger-api-spec.yaml"

type SessionHandler struct {
	generation service.GenerationService
	webhook    service.WebhookService
	now        func() time.Time
}

func NewSessionHandler(generation service.GenerationService, webhook service.WebhookService) *SessionHandler {
	return &SessionHandler{generation: generation, webhook: webhook, now: time.Now}
}

// Create starts a session and enhances the user's prompt.
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.generation.Start(c.Request.Context(), req.Prompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSessionResponse(sess, h.now()))
}

func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	sess, err := h.generation.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess, h.now()))
}

func (h *SessionHandler) Reset(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	if err := h.generation.Reset(c.Request.Context(), sessionID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePrompt saves an edited enhanced prompt and regenerates the spec from it.
func (h *SessionHandler) UpdatePrompt(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req dto.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.generation.SaveEnhancedPrompt(c.Request.Context(), sessionID, req.EnhancedPrompt)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess, h.now()))
}

func (h *SessionHandler) GenerateSpec(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	sess, err := h.generation.GenerateSpec(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess, h.now()))
}

// UploadSpec stores a pasted or uploaded spec. Validation problems come back
// as spec_warning, never as an error.
func (h *SessionHandler) UploadSpec(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req dto.UploadSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.generation.UploadSpec(c.Request.Context(), sessionID, req.Spec)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSessionResponse(sess, h.now()))
}

func (h *SessionHandler) DownloadSpec(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	sess, err := h.generation.Get(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.Spec == "" {
		writeError(c, service.ErrNoSpec)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+specFilename+`"`)
	c.Data(http.StatusOK, "text/yaml; charset=utf-8", []byte(sess.Spec))
}

// Forward sends the spec to the automation webhook. Delivery failures are a
// 200 with success=false.
func (h *SessionHandler) Forward(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	res, err := h.webhook.Forward(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.WebhookResponse{Success: res.Success, Message: res.Message})
}
