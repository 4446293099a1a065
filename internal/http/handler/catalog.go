package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voyager.app/generator/internal/http/dto"
	"voyager.app/generator/internal/prompt"
	"voyager.app/generator/internal/service"
)

// CatalogHandler serves the static selector data, the active provider and
// prompt previews.
type CatalogHandler struct {
	provider   service.ProviderService
	generation service.GenerationService
	codegen    service.CodeGenService
}

func NewCatalogHandler(provider service.ProviderService, generation service.GenerationService, codegen service.CodeGenService) *CatalogHandler {
	return &CatalogHandler{provider: provider, generation: generation, codegen: codegen}
}

func (h *CatalogHandler) Provider(c *gin.Context) {
	c.JSON(http.StatusOK, h.provider.Info())
}

func (h *CatalogHandler) Frameworks(c *gin.Context) {
	target := prompt.Target(c.DefaultQuery("target", string(prompt.TargetBackend)))
	if !target.IsValid() {
		writeError(c, prompt.ErrInvalidTarget)
		return
	}

	frameworks := prompt.Frameworks(target)
	resp := make([]dto.FrameworkResponse, 0, len(frameworks))
	for _, f := range frameworks {
		resp = append(resp, dto.ToFrameworkResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) Databases(c *gin.Context) {
	c.JSON(http.StatusOK, prompt.Databases())
}

// CodeGenPrompt previews the exact prompt a submission would send. With a
// session_id the session's spec is embedded; without one the spec is empty.
func (h *CatalogHandler) CodeGenPrompt(c *gin.Context) {
	var q dto.CodeGenPromptQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := prompt.CodeGenParams{
		Target:     prompt.Target(q.Target),
		Framework:  q.Framework,
		Database:   prompt.Database(q.Database),
		Repository: q.Repository,
		Deployment: prompt.DeploymentMode(q.Deployment),
	}
	if q.SessionID != 0 {
		sess, err := h.generation.Get(c.Request.Context(), q.SessionID)
		if err != nil {
			writeError(c, err)
			return
		}
		params.Spec = sess.Spec
	}

	text, err := h.codegen.PreviewPrompt(params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CodeGenPromptResponse{Prompt: text})
}
