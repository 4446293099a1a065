package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/dto"
	"voyager.app/generator/internal/service"
)

type JobHandler struct {
	codegen service.CodeGenService
	now     func() time.Time
}

func NewJobHandler(codegen service.CodeGenService) *JobHandler {
	return &JobHandler{codegen: codegen, now: time.Now}
}

// Submit starts backend and/or frontend jobs. A target that failed while the
// other succeeded is reported under errors with a 200.
func (h *JobHandler) Submit(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	var req dto.SubmitJobsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.codegen.Submit(c.Request.Context(), sessionID, req.Options())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.SubmitJobsResponse{
		Session: dto.ToSessionResponse(out.Session, h.now()),
		Errors:  dto.ErrorMessages(out.Errors),
	})
}

// Status runs one polling round.
func (h *JobHandler) Status(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	out, err := h.codegen.Refresh(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.statusResponse(*out))
}

// Stream polls until every tracked job is terminal and sends each round as a
// "status" event, then "done". Errors before the first round are plain JSON.
func (h *JobHandler) Stream(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	started := false
	err := h.codegen.Watch(c.Request.Context(), sessionID, func(_ context.Context, out service.StatusOutcome) {
		if !started {
			setSSEHeaders(c.Writer)
			c.Status(http.StatusOK)
			started = true
		}
		sseWrite(c.Writer, "status", h.statusResponse(out))
		if out.Done {
			sseWrite(c.Writer, "done", "settled")
		}
		flusher.Flush()
	})

	if err == nil || c.Request.Context().Err() != nil {
		return
	}
	if !started {
		writeError(c, err)
		return
	}
	sseWrite(c.Writer, "error", map[string]string{"error": err.Error()})
	flusher.Flush()
}

func (h *JobHandler) statusResponse(out service.StatusOutcome) dto.JobStatusResponse {
	return dto.JobStatusResponse{
		Jobs:   dto.ToJobsResponse(out.Session.Jobs, h.now()),
		Errors: dto.ErrorMessages(out.Errors),
		Done:   out.Done,
	}
}
