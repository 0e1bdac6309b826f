package handler_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fisbench/internal/domain"
	"fisbench/internal/handler"
	"fisbench/internal/logger"
	"fisbench/internal/service"
	"fisbench/mocks"
)

func TestReceiptHandler_Upload(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 1024, logger.Nop())
	svc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadReceiptInput) bool {
		return in.FileName == "shell.jpg" &&
			in.Name == "Shell Kadıköy" &&
			in.Category != nil && *in.Category == "akaryakit" &&
			string(in.Tags) == `["iki-kdv"]` &&
			in.Description == nil
	})).Return(&domain.Receipt{ID: uuid.New(), Name: "Shell Kadıköy"}, nil)

	body, ct := multipartBody(t, "shell.jpg", []byte("jpeg"), map[string]string{
		"name":     "Shell Kadıköy",
		"category": "akaryakit",
		"tags":     `["iki-kdv"]`,
	})
	c, w := newContext(http.MethodPost, "/api/v1/receipts", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestReceiptHandler_Upload_InvalidTags(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 1024, logger.Nop())

	body, ct := multipartBody(t, "shell.jpg", []byte("jpeg"), map[string]string{"tags": "[unclosed"})
	c, w := newContext(http.MethodPost, "/api/v1/receipts", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_TAGS", decode(t, w).Error.Code)
	svc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestReceiptHandler_Upload_Duplicate(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 1024, logger.Nop())
	svc.On("Upload", mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicateReceipt)

	body, ct := multipartBody(t, "shell.jpg", []byte("jpeg"), nil)
	c, w := newContext(http.MethodPost, "/api/v1/receipts", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Upload(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_RECEIPT", decode(t, w).Error.Code)
}

func TestReceiptHandler_List(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 0, logger.Nop())
	svc.On("List", mock.Anything, "market", 40, 10).Return([]domain.Receipt{{ID: uuid.New()}}, 41, nil)

	c, w := newContext(http.MethodGet, "/?category=market&offset=40&limit=10", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 41, resp.Meta.Total)
	assert.Equal(t, 40, resp.Meta.Offset)
}

func TestReceiptHandler_ImageURL(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 0, logger.Nop())
	id := uuid.New()
	svc.On("ImageURL", mock.Anything, id, true).Return("https://example.com/cropped.png", nil)

	c, w := newContext(http.MethodGet, "/?cropped=true", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.ImageURL(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := decode(t, w).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "https://example.com/cropped.png", data["url"])
}

func TestReceiptHandler_Update(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 0, logger.Nop())
	id := uuid.New()
	svc.On("Update", mock.Anything, mock.MatchedBy(func(in service.UpdateReceiptInput) bool {
		return in.ID == id &&
			in.Name == nil &&
			in.Notes != nil && *in.Notes == "kontrol edildi" &&
			string(in.GroundTruth) == `{"grand_total":"150.00"}`
	})).Return(&domain.Receipt{ID: id}, nil)

	c, w := newContext(http.MethodPatch, "/", strings.NewReader(`{"notes":"kontrol edildi","ground_truth":{"grand_total":"150.00"}}`))
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestReceiptHandler_Crop(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 0, logger.Nop())
	id := uuid.New()
	svc.On("Crop", mock.Anything, service.CropInput{ID: id, X: 10, Y: 20, Width: 300, Height: 900}).
		Return(&domain.Receipt{ID: id, IsCropped: true}, nil)

	c, w := newContext(http.MethodPost, "/", strings.NewReader(`{"x":10,"y":20,"width":300,"height":900}`))
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Crop(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestReceiptHandler_Crop_MissingSize(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 0, logger.Nop())

	c, w := newContext(http.MethodPost, "/", strings.NewReader(`{"x":10,"y":20}`))
	c.Params = gin.Params{{Key: "id", Value: uuid.NewString()}}

	h.Crop(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Crop", mock.Anything, mock.Anything)
}

func TestReceiptHandler_Delete_NotFound(t *testing.T) {
	svc := new(mocks.MockReceiptService)
	h := handler.NewReceiptHandler(svc, 0, logger.Nop())
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(domain.ErrNotFound)

	c, w := newContext(http.MethodDelete, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)
}

type stubPinger struct{ err error }

func (s stubPinger) PingContext(context.Context) error { return s.err }

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		deps   map[string]handler.Pinger
		status int
	}{
		{"all up", map[string]handler.Pinger{"database": stubPinger{}}, http.StatusOK},
		{"cache not configured", map[string]handler.Pinger{"database": stubPinger{}, "cache": nil}, http.StatusOK},
		{"database down", map[string]handler.Pinger{"database": stubPinger{err: errors.New("refused")}}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(tt.deps)
			c, w := newContext(http.MethodGet, "/readyz", nil)

			h.Readiness(c)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(nil)
	c, w := newContext(http.MethodGet, "/healthz", nil)

	h.Liveness(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
