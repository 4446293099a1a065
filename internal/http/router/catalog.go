package router

import (
	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/handler"
)

func CatalogRouter(rg *gin.RouterGroup, h *handler.CatalogHandler) {
	rg.GET("/provider", h.Provider)
	rg.GET("/frameworks", h.Frameworks)
	rg.GET("/databases", h.Databases)
	rg.GET("/prompts/codegen", h.CodeGenPrompt)
}
