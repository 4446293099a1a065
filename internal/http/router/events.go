package router

import (
	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/handler"
)

func EventRouter(rg *gin.RouterGroup, h *handler.EventHandler) {
	rg.GET("/:id/events", h.Stream)
}
