package router

import (
	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/handler"
)

func SessionRouter(rg *gin.RouterGroup, h *handler.SessionHandler, paid gin.HandlerFunc) {
	rg.POST("", paid, h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Reset)
	rg.PUT("/:id/prompt", paid, h.UpdatePrompt)
	rg.POST("/:id/spec", paid, h.GenerateSpec)
	rg.PUT("/:id/spec", h.UploadSpec)
	rg.GET("/:id/spec/download", h.DownloadSpec)
	rg.POST("/:id/webhook", h.Forward)
}
