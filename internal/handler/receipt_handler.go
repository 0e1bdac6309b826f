package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fisbench/internal/logger"
	"fisbench/internal/service"
)

// ReceiptHandler handles benchmark receipt endpoints.
type ReceiptHandler struct {
	receiptService service.ReceiptService
	maxBytes       int64
	log            *logger.Logger
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(receiptService service.ReceiptService, maxBytes int64, log *logger.Logger) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, maxBytes: maxBytes, log: log}
}

// Upload handles POST /api/v1/receipts
// @Summary Upload a benchmark receipt
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image (JPG, PNG, WEBP or PDF)"
// @Param name formData string false "Display name; defaults to the file name"
// @Param description formData string false "Description"
// @Param category formData string false "Category, e.g. akaryakit"
// @Param tags formData string false "JSON array of tags"
// @Param notes formData string false "Notes"
// @Success 201 {object} Response{data=domain.Receipt}
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 409 {object} ErrorResponseBody "Duplicate receipt"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Router /receipts [post]
func (h *ReceiptHandler) Upload(c *gin.Context) {
	name, data, ok := readUpload(c, h.maxBytes)
	if !ok {
		return
	}

	var tags json.RawMessage
	if raw := c.PostForm("tags"); raw != "" {
		if !json.Valid([]byte(raw)) {
			RespondError(c, http.StatusBadRequest, "INVALID_TAGS", "tags must be valid JSON")
			return
		}
		tags = json.RawMessage(raw)
	}

	rc, err := h.receiptService.Upload(c.Request.Context(), service.UploadReceiptInput{
		FileName:    name,
		Data:        data,
		Name:        c.PostForm("name"),
		Description: optionalString(c.PostForm("description")),
		Category:    optionalString(c.PostForm("category")),
		Tags:        tags,
		Notes:       optionalString(c.PostForm("notes")),
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondCreated(c, rc)
}

// List handles GET /api/v1/receipts
// @Summary List receipts
// @Tags receipts
// @Produce json
// @Param category query string false "Category filter"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Receipt,meta=PagMeta}
// @Router /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	receipts, total, err := h.receiptService.List(c.Request.Context(), c.Query("category"), offset, limit)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondPaginated(c, receipts, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/receipts/:id
// @Summary Get a receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Success 200 {object} Response{data=domain.Receipt}
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id", "receipt")
	if !ok {
		return
	}
	rc, err := h.receiptService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, rc)
}

// ImageURL handles GET /api/v1/receipts/:id/image
// @Summary Presigned receipt image URL
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Param cropped query bool false "Prefer the cropped image when present"
// @Success 200 {object} Response{data=ImageURLResponse}
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Router /receipts/{id}/image [get]
func (h *ReceiptHandler) ImageURL(c *gin.Context) {
	id, ok := parseID(c, "id", "receipt")
	if !ok {
		return
	}
	cropped, _ := strconv.ParseBool(c.DefaultQuery("cropped", "false"))

	url, err := h.receiptService.ImageURL(c.Request.Context(), id, cropped)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, ImageURLResponse{URL: url})
}

// Update handles PATCH /api/v1/receipts/:id
// @Summary Update receipt metadata or ground truth
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Param body body UpdateReceiptRequest true "Fields to change"
// @Success 200 {object} Response{data=domain.Receipt}
// @Failure 400 {object} ErrorResponseBody "Invalid body"
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Router /receipts/{id} [patch]
func (h *ReceiptHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "receipt")
	if !ok {
		return
	}
	var req UpdateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	rc, err := h.receiptService.Update(c.Request.Context(), service.UpdateReceiptInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		Notes:       req.Notes,
		GroundTruth: req.GroundTruth,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, rc)
}

// Crop handles POST /api/v1/receipts/:id/crop
// @Summary Crop a receipt image
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Param body body CropRequest true "Crop rectangle in original pixels"
// @Success 200 {object} Response{data=domain.Receipt}
// @Failure 400 {object} ErrorResponseBody "Invalid rectangle or PDF receipt"
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Router /receipts/{id}/crop [post]
func (h *ReceiptHandler) Crop(c *gin.Context) {
	id, ok := parseID(c, "id", "receipt")
	if !ok {
		return
	}
	var req CropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	rc, err := h.receiptService.Crop(c.Request.Context(), service.CropInput{
		ID: id, X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, rc)
}

// Delete handles DELETE /api/v1/receipts/:id
// @Summary Delete a receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse}
// @Failure 404 {object} ErrorResponseBody "Receipt not found"
// @Router /receipts/{id} [delete]
func (h *ReceiptHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "receipt")
	if !ok {
		return
	}
	if err := h.receiptService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"message": "receipt deleted"})
}
