package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
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

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext(method, target string, body io.Reader) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, body)
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("promptRepo.Get: %w", domain.ErrPromptVersionNotFound), http.StatusNotFound, "PROMPT_VERSION_NOT_FOUND"},
		{domain.ErrCannotDeleteCurrentVersion, http.StatusConflict, "CANNOT_DELETE_CURRENT_VERSION"},
		{domain.ErrUnsupportedProvider, http.StatusBadRequest, "UNSUPPORTED_PROVIDER"},
		{domain.ErrDuplicateReceipt, http.StatusConflict, "DUPLICATE_RECEIPT"},
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrInvalidLabel, http.StatusBadRequest, "INVALID_LABEL"},
		{fmt.Errorf("empty file: %w", domain.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{domain.ErrUploadFailed, http.StatusInternalServerError, "UPLOAD_FAILED"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestAnalysisHandler_Analyze(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(svc, 1024, logger.Nop())

	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(in service.AnalyzeInput) bool {
		return in.FileName == "fis.png" &&
			string(in.Data) == "png-bytes" &&
			assert.ObjectsAreEqual([]domain.ProviderID{domain.ProviderPaddleOCR, domain.ProviderOpenAIVision}, in.Providers) &&
			in.Notes == nil
	})).Return(&service.AnalyzeResult{Analysis: &domain.Analysis{ID: uuid.New()}}, nil)

	body, ct := multipartBody(t, "fis.png", []byte("png-bytes"), map[string]string{"providers": "paddle_ocr, OpenAI_Vision"})
	c, w := newContext(http.MethodPost, "/api/v1/analyze", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Analyze(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
	svc.AssertExpectations(t)
}

func TestAnalysisHandler_Analyze_NoFile(t *testing.T) {
	h := handler.NewAnalysisHandler(new(mocks.MockAnalysisService), 1024, logger.Nop())
	c, w := newContext(http.MethodPost, "/api/v1/analyze", nil)

	h.Analyze(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decode(t, w).Error.Code)
}

func TestAnalysisHandler_Analyze_TooLarge(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(svc, 4, logger.Nop())
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(in service.AnalyzeInput) bool {
		return len(in.Data) == 5
	})).Return(nil, domain.ErrFileTooLarge)

	body, ct := multipartBody(t, "fis.png", []byte("0123456789"), nil)
	c, w := newContext(http.MethodPost, "/api/v1/analyze", body)
	c.Request.Header.Set("Content-Type", ct)

	h.Analyze(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAnalysisHandler_Evaluate(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(svc, 0, logger.Nop())
	id := uuid.New()
	svc.On("Evaluate", mock.Anything, mock.MatchedBy(func(in service.EvaluateInput) bool {
		return in.AnalysisID == id && len(in.CorrectProviders) == 1 && in.CorrectProviders[0] == domain.ProviderGoogleDocAI
	})).Return([]domain.ModelEvaluation{{Provider: domain.ProviderGoogleDocAI, IsCorrect: true}}, nil)

	c, w := newContext(http.MethodPost, "/", strings.NewReader(`{"correct_providers":["google_docai"]}`))
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.Evaluate(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAnalysisHandler_GetByID_InvalidID(t *testing.T) {
	h := handler.NewAnalysisHandler(new(mocks.MockAnalysisService), 0, logger.Nop())
	c, w := newContext(http.MethodGet, "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode(t, w).Error.Code)
}

func TestAnalysisHandler_List(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(svc, 0, logger.Nop())
	svc.On("History", mock.Anything, 0, 20).Return([]domain.Analysis{{ID: uuid.New()}}, 1, nil)

	c, w := newContext(http.MethodGet, "/api/v1/analyses?limit=500", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
}

func TestAccountingHandler_Normalize(t *testing.T) {
	svc := new(mocks.MockAccountingService)
	h := handler.NewAccountingHandler(svc, logger.Nop())
	svc.On("Normalize", mock.Anything, mock.MatchedBy(func(in service.NormalizeInput) bool {
		return in.Provider == domain.ProviderPaddleOCR && in.PromptVersion == nil && in.Raw["company_name"] == "Fırın"
	})).Return(&service.NormalizeOutput{Provider: domain.ProviderPaddleOCR, SchemaVersion: domain.SchemaV1}, nil)

	c, w := newContext(http.MethodPost, "/", strings.NewReader(`{"provider":"paddle_ocr","raw":{"company_name":"Fırın"}}`))

	h.Normalize(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAccountingHandler_Normalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing raw", `{"provider":"paddle_ocr"}`, "INVALID_REQUEST"},
		{"unknown provider", `{"provider":"tesseract","raw":{}}`, "UNSUPPORTED_PROVIDER"},
		{"bad version", `{"provider":"paddle_ocr","promptVersion":0,"raw":{}}`, "INVALID_VERSION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mocks.MockAccountingService)
			h := handler.NewAccountingHandler(svc, logger.Nop())
			c, w := newContext(http.MethodPost, "/", strings.NewReader(tt.body))

			h.Normalize(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
			svc.AssertNotCalled(t, "Normalize", mock.Anything, mock.Anything)
		})
	}
}
