package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"voyager.app/generator/internal/http/handler"
	"voyager.app/generator/internal/http/middleware"
	"voyager.app/generator/internal/service"
)

type RouterConfig struct {
	// Limiter guards the endpoints that call a provider or the code-generation
	// service. Nil disables limiting.
	Limiter *rate.Limiter
	// Events follows published status events. Nil when Redis is not configured.
	Events handler.EventTailer
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	paid := middleware.RateLimit(cfg.Limiter)

	v1 := router.Group("/api/v1")
	{
		catalogHandler := handler.NewCatalogHandler(services.Provider(), services.Generation(), services.CodeGen())
		CatalogRouter(v1, catalogHandler)

		sessions := v1.Group("/sessions")

		sessionHandler := handler.NewSessionHandler(services.Generation(), services.Webhook())
		SessionRouter(sessions, sessionHandler, paid)

		jobHandler := handler.NewJobHandler(services.CodeGen())
		JobRouter(sessions.Group("/:id/jobs"), jobHandler, paid)

		eventHandler := handler.NewEventHandler(cfg.Events)
		EventRouter(sessions, eventHandler)

		repositoryHandler := handler.NewRepositoryHandler(services.Repositories())
		RepositoryRouter(v1.Group("/repositories"), repositoryHandler)
	}
}
