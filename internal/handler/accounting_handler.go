package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/service"
)

// AccountingHandler exposes normalization of raw LLM output.
type AccountingHandler struct {
	accountingService service.AccountingService
	log               *logger.Logger
}

// NewAccountingHandler creates a new AccountingHandler.
func NewAccountingHandler(accountingService service.AccountingService, log *logger.Logger) *AccountingHandler {
	return &AccountingHandler{accountingService: accountingService, log: log}
}

// Normalize handles POST /api/v1/accounting/normalize
// @Summary Normalize a raw accounting object
// @Description Parses, corrects, validates and converts a raw LLM object without calling the LLM. The parser is selected by structure when promptVersion is omitted.
// @Tags accounting
// @Accept json
// @Produce json
// @Param body body NormalizeRequest true "Raw object"
// @Success 200 {object} Response{data=service.NormalizeOutput}
// @Failure 400 {object} ErrorResponseBody "Invalid body or provider"
// @Router /accounting/normalize [post]
func (h *AccountingHandler) Normalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	provider := domain.ParseProviderID(req.Provider)
	if !provider.IsKnown() {
		HandleError(c, h.log, domain.ErrUnsupportedProvider)
		return
	}
	if req.PromptVersion != nil && *req.PromptVersion < 1 {
		RespondError(c, http.StatusBadRequest, "INVALID_VERSION", "promptVersion must be a positive integer")
		return
	}

	out, err := h.accountingService.Normalize(c.Request.Context(), service.NormalizeInput{
		Provider:      provider,
		PromptVersion: req.PromptVersion,
		Raw:           req.Raw,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, out)
}
