package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/service"
)

// AnalysisHandler handles benchmark analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	maxBytes        int64
	log             *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService, maxBytes int64, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService, maxBytes: maxBytes, log: log}
}

// Analyze handles POST /api/v1/analyze
// @Summary Analyze a receipt
// @Description Runs the receipt through the selected OCR providers and normalizes every result into accounting data
// @Tags analyses
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image (JPG, PNG, WEBP or PDF)"
// @Param providers formData string false "Comma-separated provider ids; all enabled providers when empty"
// @Param notes formData string false "Free-form notes"
// @Success 201 {object} Response{data=service.AnalyzeResult}
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type or provider"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 500 {object} ErrorResponseBody "Upload failed"
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	name, data, ok := readUpload(c, h.maxBytes)
	if !ok {
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), service.AnalyzeInput{
		FileName:  name,
		Data:      data,
		Providers: parseProviders(c.PostFormArray("providers")),
		Notes:     optionalString(c.PostForm("notes")),
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, result)
}

// Evaluate handles POST /api/v1/analyses/:id/evaluate
// @Summary Evaluate an analysis
// @Description Records which providers produced a correct result
// @Tags analyses
// @Accept json
// @Produce json
// @Param id path string true "Analysis ID (UUID)"
// @Param body body EvaluateRequest true "Correct providers"
// @Success 200 {object} Response{data=[]domain.ModelEvaluation}
// @Failure 400 {object} ErrorResponseBody "Invalid ID or body"
// @Failure 404 {object} ErrorResponseBody "Analysis not found"
// @Router /analyses/{id}/evaluate [post]
func (h *AnalysisHandler) Evaluate(c *gin.Context) {
	id, ok := parseID(c, "id", "analysis")
	if !ok {
		return
	}

	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	correct := make([]domain.ProviderID, 0, len(req.CorrectProviders))
	for _, p := range req.CorrectProviders {
		correct = append(correct, domain.ParseProviderID(p))
	}

	evals, err := h.analysisService.Evaluate(c.Request.Context(), service.EvaluateInput{
		AnalysisID:       id,
		CorrectProviders: correct,
		Notes:            optionalString(req.Notes),
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, evals)
}

// List handles GET /api/v1/analyses
// @Summary List analyses
// @Tags analyses
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Analysis,meta=PagMeta}
// @Router /analyses [get]
func (h *AnalysisHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	analyses, total, err := h.analysisService.History(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondPaginated(c, analyses, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/analyses/:id
// @Summary Get an analysis
// @Description Returns the analysis with its OCR results, evaluations and a presigned image URL
// @Tags analyses
// @Produce json
// @Param id path string true "Analysis ID (UUID)"
// @Success 200 {object} Response{data=service.AnalysisDetail}
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Analysis not found"
// @Router /analyses/{id} [get]
func (h *AnalysisHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "analysis")
	if !ok {
		return
	}

	detail, err := h.analysisService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, detail)
}
