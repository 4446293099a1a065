package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/dto"
	"voyager.app/generator/internal/model"
	"voyager.app/generator/internal/service"
)

type RepositoryHandler struct {
	repositories service.RepositoryService
}

func NewRepositoryHandler(repositories service.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{repositories: repositories}
}

func (h *RepositoryHandler) List(c *gin.Context) {
	var q dto.RepositoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repos, err := h.repositories.List(c.Request.Context(), model.RepoHost(q.Host))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRepositoryResponses(repos))
}

// Token reports whether a token is configured for ?host (default github).
func (h *RepositoryHandler) Token(c *gin.Context) {
	host := model.RepoHost(c.DefaultQuery("host", string(model.RepoHostGitHub)))
	c.JSON(http.StatusOK, dto.TokenResponse{HasToken: h.repositories.HasToken(host)})
}
