package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/queue"
)

var errStreamSettled = errors.New("stream settled")

// EventTailer follows a session's published status events.
type EventTailer interface {
	Tail(ctx context.Context, sessionID int64, lastID string, onEvent queue.EventHandler, onIdle queue.IdleHandler) error
}

type EventHandler struct {
	tailer EventTailer
}

// NewEventHandler accepts a nil tailer when Redis is not configured.
func NewEventHandler(tailer EventTailer) *EventHandler {
	return &EventHandler{tailer: tailer}
}

// Stream replays a session's status events from the start (or from
// Last-Event-ID) and follows new ones until jobs_settled.
func (h *EventHandler) Stream(c *gin.Context) {
	if h.tailer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "redis not configured"})
		return
	}

	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	lastID := c.GetHeader("Last-Event-ID")
	if lastID == "" {
		lastID = c.DefaultQuery("last_id", "0")
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	setSSEHeaders(c.Writer)
	c.Status(http.StatusOK)
	sseWrite(c.Writer, "ping", "ready")
	flusher.Flush()

	err := h.tailer.Tail(c.Request.Context(), sessionID, lastID,
		func(_ context.Context, ev queue.StatusEvent) error {
			sseWriteID(c.Writer, ev.ID, "status", ev)
			flusher.Flush()
			if ev.Type == queue.EventJobsSettled {
				return errStreamSettled
			}
			return nil
		},
		func(context.Context) error {
			sseWrite(c.Writer, "ping", time.Now().UTC().Format(time.RFC3339Nano))
			flusher.Flush()
			return nil
		},
	)

	switch {
	case errors.Is(err, errStreamSettled):
		sseWrite(c.Writer, "done", "settled")
	case err == nil, c.Request.Context().Err() != nil:
		return
	default:
		sseWrite(c.Writer, "error", map[string]string{"error": err.Error()})
	}
	flusher.Flush()
}
