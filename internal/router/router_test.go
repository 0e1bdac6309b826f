package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/handler"
	"fisbench/internal/logger"
	"fisbench/internal/router"
	"fisbench/mocks"
)

type services struct {
	analysis   *mocks.MockAnalysisService
	accounting *mocks.MockAccountingService
	prompts    *mocks.MockPromptService
	tests      *mocks.MockPromptTestService
	receipts   *mocks.MockReceiptService
}

func setup(t *testing.T, origins []string) (*gin.Engine, services) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := services{
		analysis:   new(mocks.MockAnalysisService),
		accounting: new(mocks.MockAccountingService),
		prompts:    new(mocks.MockPromptService),
		tests:      new(mocks.MockPromptTestService),
		receipts:   new(mocks.MockReceiptService),
	}
	log := logger.Nop()
	cfg := &config.Config{
		Upload: config.UploadConfig{MaxSizeMB: 1},
		CORS:   config.CORSConfig{AllowedOrigins: origins},
	}
	r := router.Setup(cfg, router.Handlers{
		Health:     handler.NewHealthHandler(nil),
		Analysis:   handler.NewAnalysisHandler(s.analysis, cfg.Upload.MaxBytes(), log),
		Accounting: handler.NewAccountingHandler(s.accounting, log),
		Prompt:     handler.NewPromptHandler(s.prompts, log),
		PromptTest: handler.NewPromptTestHandler(s.tests, log),
		Receipt:    handler.NewReceiptHandler(s.receipts, cfg.Upload.MaxBytes(), log),
	}, log)
	return r, s
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	r, _ := setup(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequestIDPropagated(t *testing.T) {
	r, _ := setup(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-123")

	w := serve(r, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
}

func TestRouter_StatisticsNotShadowedByID(t *testing.T) {
	r, s := setup(t, nil)
	s.tests.On("Statistics", mock.Anything).Return([]domain.PromptTestStat{}, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/prompt-tests/statistics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	s.tests.AssertExpectations(t)
	s.tests.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRouter_PromptVersionRoutes(t *testing.T) {
	r, s := setup(t, nil)
	s.prompts.On("Versions", mock.Anything, domain.ProviderPaddleOCR).Return([]int{1, 2}, nil)
	s.prompts.On("Get", mock.Anything, domain.ProviderPaddleOCR, 2).
		Return(&domain.PromptVersion{Provider: domain.ProviderPaddleOCR, Version: 2}, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/prompts/paddle_ocr/versions", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/prompts/paddle_ocr/versions/2", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	s.prompts.AssertExpectations(t)
}

func TestRouter_ReceiptImage(t *testing.T) {
	r, s := setup(t, nil)
	id := uuid.New()
	s.receipts.On("ImageURL", mock.Anything, id, false).Return("https://example.com/a.jpg", nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/receipts/"+id.String()+"/image", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	s.receipts.AssertExpectations(t)
}

func TestRouter_PanicRecovered(t *testing.T) {
	r, s := setup(t, nil)
	s.analysis.On("History", mock.Anything, 0, 20).Run(func(mock.Arguments) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`, w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	r, _ := setup(t, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/receipts", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := serve(r, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/receipts", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = serve(r, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
