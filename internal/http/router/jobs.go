package router

import (
	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/handler"
)

func JobRouter(rg *gin.RouterGroup, h *handler.JobHandler, paid gin.HandlerFunc) {
	rg.POST("", paid, h.Submit)
	rg.GET("", h.Status)
	rg.GET("/stream", h.Stream)
}
