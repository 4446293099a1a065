package router

import (
	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/handler"
)

func RepositoryRouter(rg *gin.RouterGroup, h *handler.RepositoryHandler) {
	rg.GET("", h.List)
	rg.GET("/token", h.Token)
}
