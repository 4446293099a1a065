package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"voyager.app/generator/common/id"
	"voyager.app/generator/core/config"
	"voyager.app/generator/internal/codegen"
	"voyager.app/generator/internal/llm"
	"voyager.app/generator/internal/prompt"
	"voyager.app/generator/internal/service"
)

const forbiddenHint = "The provider rejected the API key. Check that the key is valid and allowed to use the configured model."

// writeError maps a service error onto a status code and JSON body.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		body["provider"] = perr.Provider
		if perr.Forbidden() {
			body["hint"] = forbiddenHint
		}
	}

	var remote *codegen.RemoteServiceError
	if errors.As(err, &remote) {
		body["upstream_status"] = remote.StatusCode
		body["details"] = remote.Body
	}

	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		slog.WarnContext(ctx, "request rejected", "status", status, "error", err)
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	var (
		perr     *llm.ProviderError
		fallback *llm.FallbackError
		remote   *codegen.RemoteServiceError
	)

	switch {
	case errors.Is(err, config.ErrMissingConfig):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSessionBusy),
		errors.Is(err, service.ErrNoEnhancedPrompt),
		errors.Is(err, service.ErrNoSpec),
		errors.Is(err, service.ErrNoJobs),
		errors.Is(err, service.ErrJobsSuperseded):
		return http.StatusConflict
	// Upstream failures win over input errors joined with them.
	case errors.As(err, &fallback), errors.As(err, &perr), errors.As(err, &remote):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrEmptyRequest),
		errors.Is(err, service.ErrUnsupportedHost),
		errors.Is(err, llm.ErrEmptyPrompt),
		errors.Is(err, prompt.ErrUnsupportedFramework),
		errors.Is(err, prompt.ErrInvalidTarget),
		errors.Is(err, prompt.ErrUnsupportedDatabase),
		errors.Is(err, prompt.ErrInvalidDeployment),
		errors.Is(err, codegen.ErrNoTargets):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func sessionParam(c *gin.Context) (int64, bool) {
	sessionID, err := id.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return sessionID, true
}
