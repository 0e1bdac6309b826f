package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/service"
)

// PromptHandler handles the versioned prompt store endpoints.
type PromptHandler struct {
	promptService service.PromptService
	log           *logger.Logger
}

// NewPromptHandler creates a new PromptHandler.
func NewPromptHandler(promptService service.PromptService, log *logger.Logger) *PromptHandler {
	return &PromptHandler{promptService: promptService, log: log}
}

// promptView is a prompt version plus its approximate token count.
type promptView struct {
	domain.PromptVersion
	EstimatedTokens int `json:"estimated_tokens"`
}

func viewOf(p *domain.PromptVersion) promptView {
	return promptView{PromptVersion: *p, EstimatedTokens: service.EstimateTokens(p.PromptText)}
}

// List handles GET /api/v1/prompts
// @Summary Current prompt of every provider
// @Tags prompts
// @Produce json
// @Success 200 {object} Response{data=[]domain.PromptVersion}
// @Router /prompts [get]
func (h *PromptHandler) List(c *gin.Context) {
	prompts, err := h.promptService.All(c.Request.Context())
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	out := make([]promptView, 0, len(prompts))
	for i := range prompts {
		out = append(out, viewOf(&prompts[i]))
	}
	RespondOK(c, out)
}

// GetCurrent handles GET /api/v1/prompts/:provider
// @Summary Current prompt of a provider
// @Tags prompts
// @Produce json
// @Param provider path string true "Provider id"
// @Success 200 {object} Response{data=domain.PromptVersion}
// @Failure 400 {object} ErrorResponseBody "Unknown provider"
// @Router /prompts/{provider} [get]
func (h *PromptHandler) GetCurrent(c *gin.Context) {
	provider, ok := parseProvider(c)
	if !ok {
		return
	}
	p, err := h.promptService.GetCurrent(c.Request.Context(), provider)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, viewOf(p))
}

// Save handles POST /api/v1/prompts/:provider
// @Summary Save a new prompt version
// @Description Stores the text as the next version. The schema version follows the configured cutoff when omitted.
// @Tags prompts
// @Accept json
// @Produce json
// @Param provider path string true "Provider id"
// @Param body body SavePromptRequest true "Prompt text"
// @Success 201 {object} Response{data=domain.PromptVersion}
// @Failure 400 {object} ErrorResponseBody "Invalid body or provider"
// @Router /prompts/{provider} [post]
func (h *PromptHandler) Save(c *gin.Context) {
	provider, ok := parseProvider(c)
	if !ok {
		return
	}
	var req SavePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	p, err := h.promptService.Save(c.Request.Context(), service.SavePromptInput{
		Provider:      provider,
		Text:          req.PromptText,
		SchemaVersion: domain.SchemaVersion(req.SchemaVersion),
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondCreated(c, viewOf(p))
}

// History handles GET /api/v1/prompts/:provider/history
// @Summary Prompt history of a provider, newest first
// @Tags prompts
// @Produce json
// @Param provider path string true "Provider id"
// @Success 200 {object} Response{data=[]domain.PromptVersion}
// @Router /prompts/{provider}/history [get]
func (h *PromptHandler) History(c *gin.Context) {
	provider, ok := parseProvider(c)
	if !ok {
		return
	}
	history, err := h.promptService.History(c.Request.Context(), provider)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, history)
}

// Versions handles GET /api/v1/prompts/:provider/versions
// @Summary Version numbers of a provider's prompts, ascending
// @Tags prompts
// @Produce json
// @Param provider path string true "Provider id"
// @Success 200 {object} Response{data=[]int}
// @Router /prompts/{provider}/versions [get]
func (h *PromptHandler) Versions(c *gin.Context) {
	provider, ok := parseProvider(c)
	if !ok {
		return
	}
	versions, err := h.promptService.Versions(c.Request.Context(), provider)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, versions)
}

// GetVersion handles GET /api/v1/prompts/:provider/versions/:version
// @Summary One prompt version
// @Tags prompts
// @Produce json
// @Param provider path string true "Provider id"
// @Param version path int true "Prompt version"
// @Success 200 {object} Response{data=domain.PromptVersion}
// @Failure 404 {object} ErrorResponseBody "Version not found"
// @Router /prompts/{provider}/versions/{version} [get]
func (h *PromptHandler) GetVersion(c *gin.Context) {
	provider, ok := parseProvider(c)
	if !ok {
		return
	}
	version, ok := parseVersion(c)
	if !ok {
		return
	}
	p, err := h.promptService.Get(c.Request.Context(), provider, version)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, viewOf(p))
}

// Restore handles POST /api/v1/prompts/:provider/restore/:version
// @Summary Restore an old prompt version
// @Description Copies the text of the given version into a new current version
// @Tags prompts
// @Produce json
// @Param provider path string true "Provider id"
// @Param version path int true "Version to restore"
// @Success 201 {object} Response{data=domain.PromptVersion}
// @Failure 404 {object} ErrorResponseBody "Version not found"
// @Router /prompts/{provider}/restore/{version} [post]
func (h *PromptHandler) Restore(c *gin.Context) {
	provider, ok := parseProvider(c)
	if !ok {
		return
	}
	version, ok := parseVersion(c)
	if !ok {
		return
	}
	p, err := h.promptService.Restore(c.Request.Context(), provider, version)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondCreated(c, viewOf(p))
}

// DeleteVersion handles DELETE /api/v1/prompts/:provider/versions/:version
// @Summary Delete a prompt version
// @Tags prompts
// @Produce json
// @Param provider path string true "Provider id"
// @Param version path int true "Prompt version"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Version not found"
// @Failure 409 {object} ErrorResponseBody "Current version"
// @Router /prompts/{provider}/versions/{version} [delete]
func (h *PromptHandler) DeleteVersion(c *gin.Context) {
	provider, ok := parseProvider(c)
	if !ok {
		return
	}
	version, ok := parseVersion(c)
	if !ok {
		return
	}
	if err := h.promptService.Delete(c.Request.Context(), provider, version); err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "prompt version deleted"})
}
