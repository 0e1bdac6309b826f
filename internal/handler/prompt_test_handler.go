package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fisbench/internal/domain"
	"fisbench/internal/export"
	"fisbench/internal/logger"
	"fisbench/internal/service"
)

// PromptTestHandler handles prompt benchmark endpoints.
type PromptTestHandler struct {
	promptTestService service.PromptTestService
	log               *logger.Logger
}

// NewPromptTestHandler creates a new PromptTestHandler.
func NewPromptTestHandler(promptTestService service.PromptTestService, log *logger.Logger) *PromptTestHandler {
	return &PromptTestHandler{promptTestService: promptTestService, log: log}
}

// Create handles POST /api/v1/prompt-tests
// @Summary Store a prompt test result
// @Description Upserts by receipt, provider and prompt version. Labels are set through the label endpoint.
// @Tags prompt-tests
// @Accept json
// @Produce json
// @Param body body domain.PromptTest true "Prompt test"
// @Success 201 {object} Response{data=domain.PromptTest}
// @Failure 400 {object} ErrorResponseBody "Invalid body or provider"
// @Router /prompt-tests [post]
func (h *PromptTestHandler) Create(c *gin.Context) {
	var t domain.PromptTest
	if err := c.ShouldBindJSON(&t); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	t.ID = uuid.Nil
	t.Provider = domain.ParseProviderID(string(t.Provider))
	t.Label, t.ErrorType, t.LabeledAt = nil, nil, nil

	created, err := h.promptTestService.Create(c.Request.Context(), &t)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondCreated(c, created)
}

// Run handles POST /api/v1/prompt-tests/run
// @Summary Run a stored receipt through one provider
// @Description Runs OCR and normalization for a receipt at a prompt version and stores the result as a prompt test
// @Tags prompt-tests
// @Accept json
// @Produce json
// @Param body body RunPromptTestRequest true "Run parameters"
// @Success 201 {object} Response{data=domain.PromptTest}
// @Failure 400 {object} ErrorResponseBody "Invalid body or provider"
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Router /prompt-tests/run [post]
func (h *PromptTestHandler) Run(c *gin.Context) {
	var req RunPromptTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	receiptID, err := uuid.Parse(req.ReceiptID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid receipt ID")
		return
	}

	t, err := h.promptTestService.Run(c.Request.Context(), service.RunPromptTestInput{
		ReceiptID:     receiptID,
		Provider:      domain.ParseProviderID(req.Provider),
		PromptVersion: req.PromptVersion,
		UseCropped:    req.UseCropped,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondCreated(c, t)
}

// Label handles PATCH /api/v1/prompt-tests/:id/label
// @Summary Label a prompt test
// @Tags prompt-tests
// @Accept json
// @Produce json
// @Param id path string true "Prompt test ID (UUID)"
// @Param body body LabelRequest true "Label"
// @Success 200 {object} Response{data=domain.PromptTest}
// @Failure 400 {object} ErrorResponseBody "Invalid label"
// @Failure 404 {object} ErrorResponseBody "Prompt test not found"
// @Router /prompt-tests/{id}/label [patch]
func (h *PromptTestHandler) Label(c *gin.Context) {
	id, ok := parseID(c, "id", "prompt test")
	if !ok {
		return
	}
	var req LabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	input := service.LabelInput{
		ID:             id,
		Label:          domain.TestLabel(strings.ToLower(req.Label)),
		ErrorDetails:   req.ErrorDetails,
		ExpectedOutput: req.ExpectedOutput,
		Notes:          optionalString(req.Notes),
		Tags:           req.Tags,
	}
	if req.ErrorType != "" {
		et := domain.ErrorType(strings.ToLower(req.ErrorType))
		input.ErrorType = &et
	}

	t, err := h.promptTestService.Label(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, t)
}

// List handles GET /api/v1/prompt-tests
// @Summary List prompt tests
// @Tags prompt-tests
// @Produce json
// @Param provider query string false "Provider id"
// @Param prompt_version query int false "Prompt version"
// @Param label query string false "Label"
// @Param receipt_id query string false "Receipt ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.PromptTest,meta=PagMeta}
// @Failure 400 {object} ErrorResponseBody "Invalid filter"
// @Router /prompt-tests [get]
func (h *PromptTestHandler) List(c *gin.Context) {
	filter, err := parsePromptTestFilter(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}

	tests, total, err := h.promptTestService.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondPaginated(c, tests, PagMeta{Total: total, Offset: filter.Offset, Limit: filter.Limit})
}

func parsePromptTestFilter(c *gin.Context) (domain.PromptTestFilter, error) {
	var f domain.PromptTestFilter
	f.Offset, f.Limit = parsePagination(c)
	if p := c.Query("provider"); p != "" {
		f.Provider = domain.ParseProviderID(p)
	}
	if v := c.Query("prompt_version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, fmt.Errorf("prompt_version must be a positive integer")
		}
		f.PromptVersion = n
	}
	f.Label = domain.TestLabel(strings.ToLower(c.Query("label")))
	if r := c.Query("receipt_id"); r != "" {
		id, err := uuid.Parse(r)
		if err != nil {
			return f, fmt.Errorf("receipt_id must be a UUID")
		}
		f.ReceiptID = &id
	}
	return f, nil
}

// GetByID handles GET /api/v1/prompt-tests/:id
// @Summary Get a prompt test
// @Tags prompt-tests
// @Produce json
// @Param id path string true "Prompt test ID (UUID)"
// @Success 200 {object} Response{data=domain.PromptTest}
// @Failure 404 {object} ErrorResponseBody "Prompt test not found"
// @Router /prompt-tests/{id} [get]
func (h *PromptTestHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "prompt test")
	if !ok {
		return
	}
	t, err := h.promptTestService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, t)
}

// Statistics handles GET /api/v1/prompt-tests/statistics
// @Summary Label statistics per provider and prompt version
// @Tags prompt-tests
// @Produce json
// @Success 200 {object} Response{data=[]domain.PromptTestStat}
// @Router /prompt-tests/statistics [get]
func (h *PromptTestHandler) Statistics(c *gin.Context) {
	stats, err := h.promptTestService.Statistics(c.Request.Context())
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, stats)
}

// Export handles GET /api/v1/prompt-tests/export
// @Summary Export labeled prompt tests
// @Description Streams every labeled prompt test as CSV (UTF-8 with BOM) or XLSX
// @Tags prompt-tests
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponseBody "Unknown format"
// @Router /prompt-tests/export [get]
func (h *PromptTestHandler) Export(c *gin.Context) {
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportCSV))))
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}

	filename := export.BuildFilename("prompt_tests", format)
	c.Header("Content-Type", export.ContentType(format))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := h.promptTestService.Export(c.Request.Context(), format, c.Writer); err != nil {
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Disposition")
			c.Writer.Header().Del("Content-Type")
			HandleError(c, h.log, err)
			return
		}
		h.log.Error("prompt test export aborted mid-stream", "format", format, "error", err)
	}
}
