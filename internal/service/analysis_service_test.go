package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fisbench/internal/accounting"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/ocr"
	"fisbench/internal/port"
	"fisbench/internal/service"
	"fisbench/mocks"
)

type analysisDeps struct {
	analyses *mocks.MockAnalysisRepository
	results  *mocks.MockOCRResultRepository
	evals    *mocks.MockEvaluationRepository
	storage  *mocks.MockObjectStorage
	acc      *mocks.MockAccountingService
}

func newAnalysisDeps() *analysisDeps {
	return &analysisDeps{
		analyses: new(mocks.MockAnalysisRepository),
		results:  new(mocks.MockOCRResultRepository),
		evals:    new(mocks.MockEvaluationRepository),
		storage:  new(mocks.MockObjectStorage),
		acc:      new(mocks.MockAccountingService),
	}
}

func (d *analysisDeps) service(cache port.OCRCache, providers ...port.OCRProvider) service.AnalysisService {
	return service.NewAnalysisService(d.analyses, d.results, d.evals, d.storage,
		ocr.NewSet(providers...), cache, d.acc, testConfig(), logger.Nop())
}

// echoAccounting normalizes every input into a one-item document, costing
// 0.002 per successful provider.
func echoAccounting(inputs []service.ProviderInput) []service.ProviderOutput {
	out := make([]service.ProviderOutput, len(inputs))
	for i, in := range inputs {
		out[i] = service.ProviderOutput{
			Provider:       in.Provider,
			AccountingData: &accounting.LegacyDocument{LineItems: []accounting.LegacyLineItem{}},
			Error:          in.Error,
		}
		if in.Error == "" {
			out[i].CostUSD = 0.002
		}
	}
	return out
}

func TestAnalysisService_Analyze(t *testing.T) {
	d := newAnalysisDeps()
	paddle := &mocks.MockOCRProvider{Provider: domain.ProviderPaddleOCR}
	textract := &mocks.MockOCRProvider{Provider: domain.ProviderAmazonTextract}
	paddle.On("Extract", mock.Anything, mock.MatchedBy(func(in port.OCRInput) bool {
		return in.ContentType == "image/png" && len(in.Image) > 0
	})).Return(&port.OCROutput{Text: "FIRIN\nTOPLAM 15,00", Cost: 0.001}, nil)
	textract.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	d.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return strings.HasPrefix(in.Key, "analyses/") && strings.HasSuffix(in.Key, ".png")
	})).Return(&port.UploadOutput{}, nil)
	d.analyses.On("Create", mock.Anything, mock.AnythingOfType("*domain.Analysis")).Return(nil)
	d.acc.On("ProcessProviderResults", mock.Anything, mock.MatchedBy(func(in []service.ProviderInput) bool {
		return len(in) == 2 &&
			in[0].Provider == domain.ProviderPaddleOCR && in[0].Text != "" &&
			in[1].Provider == domain.ProviderAmazonTextract && in[1].Error == "throttled"
	})).Return(echoAccounting)
	d.results.On("Create", mock.Anything, mock.AnythingOfType("*domain.OCRResult")).Return(nil)
	d.analyses.On("UpdateCost", mock.Anything, mock.AnythingOfType("uuid.UUID"), mock.MatchedBy(func(c float64) bool {
		return c > 0.00299 && c < 0.00301
	})).Return(nil)

	svc := d.service(nil, paddle, textract)
	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{
		FileName:  "fis.png",
		Data:      receiptPNG(t, 30, 90),
		Providers: []domain.ProviderID{domain.ProviderPaddleOCR, domain.ProviderAmazonTextract, domain.ProviderPaddleOCR},
	})

	require.NoError(t, err)
	require.Len(t, res.OCRResults, 2)
	assert.Nil(t, res.OCRResults[0].Error)
	assert.Equal(t, 0.001, res.OCRResults[0].EstimatedCost)
	assert.NotEmpty(t, res.OCRResults[0].AccountingData)
	require.NotNil(t, res.OCRResults[1].Error)
	assert.Equal(t, "throttled", *res.OCRResults[1].Error)
	assert.InDelta(t, 0.003, res.Analysis.TotalCost, 1e-9)
	assert.Equal(t, "fisbench-test", res.Analysis.S3Bucket)
	d.results.AssertNumberOfCalls(t, "Create", 2)
	d.analyses.AssertExpectations(t)
}

func TestAnalysisService_Analyze_CacheHit(t *testing.T) {
	d := newAnalysisDeps()
	paddle := &mocks.MockOCRProvider{Provider: domain.ProviderPaddleOCR}
	cache := new(mocks.MockOCRCache)
	cache.On("Get", mock.Anything, mock.AnythingOfType("string"), domain.ProviderPaddleOCR).
		Return(&port.OCROutput{Text: "önbellek", Cost: 0.5}, true, nil)

	d.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	d.analyses.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.acc.On("ProcessProviderResults", mock.Anything, mock.Anything).Return(echoAccounting)
	d.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.analyses.On("UpdateCost", mock.Anything, mock.Anything, 0.002).Return(nil)

	svc := d.service(cache, paddle)
	res, err := svc.Analyze(context.Background(), service.AnalyzeInput{FileName: "fis.png", Data: receiptPNG(t, 10, 10)})

	require.NoError(t, err)
	require.Len(t, res.OCRResults, 1)
	assert.Equal(t, "önbellek", *res.OCRResults[0].TextContent)
	assert.Zero(t, res.OCRResults[0].EstimatedCost)
	paddle.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalysisService_Analyze_CacheMissStoresOutput(t *testing.T) {
	d := newAnalysisDeps()
	paddle := &mocks.MockOCRProvider{Provider: domain.ProviderPaddleOCR}
	out := &port.OCROutput{Text: "metin"}
	paddle.On("Extract", mock.Anything, mock.Anything).Return(out, nil)
	cache := new(mocks.MockOCRCache)
	cache.On("Get", mock.Anything, mock.Anything, domain.ProviderPaddleOCR).Return(nil, false, nil)
	cache.On("Set", mock.Anything, mock.Anything, domain.ProviderPaddleOCR, out, testConfig().OCR.CacheTTL).Return(nil)

	d.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	d.analyses.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.acc.On("ProcessProviderResults", mock.Anything, mock.Anything).Return(echoAccounting)
	d.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	d.analyses.On("UpdateCost", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := d.service(cache, paddle).Analyze(context.Background(), service.AnalyzeInput{FileName: "fis.png", Data: receiptPNG(t, 10, 10)})

	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestAnalysisService_Analyze_Rejects(t *testing.T) {
	paddle := &mocks.MockOCRProvider{Provider: domain.ProviderPaddleOCR}

	t.Run("disabled provider", func(t *testing.T) {
		d := newAnalysisDeps()
		_, err := d.service(nil, paddle).Analyze(context.Background(), service.AnalyzeInput{
			FileName: "fis.png", Data: receiptPNG(t, 10, 10), Providers: []domain.ProviderID{domain.ProviderGoogleDocAI},
		})
		assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
		d.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})

	t.Run("upload failure", func(t *testing.T) {
		d := newAnalysisDeps()
		d.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("denied"))
		_, err := d.service(nil, paddle).Analyze(context.Background(), service.AnalyzeInput{
			FileName: "fis.png", Data: receiptPNG(t, 10, 10),
		})
		assert.ErrorIs(t, err, domain.ErrUploadFailed)
		d.analyses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("not an image", func(t *testing.T) {
		d := newAnalysisDeps()
		_, err := d.service(nil, paddle).Analyze(context.Background(), service.AnalyzeInput{
			FileName: "fis.png", Data: []byte("plain text"),
		})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	})
}

func TestAnalysisService_Evaluate(t *testing.T) {
	d := newAnalysisDeps()
	id := uuid.New()
	notes := "textract kaçırdı"
	d.analyses.On("GetByID", mock.Anything, id).Return(&domain.Analysis{ID: id}, nil)
	d.results.On("ListByAnalysis", mock.Anything, id).Return([]domain.OCRResult{
		{Provider: domain.ProviderPaddleOCR},
		{Provider: domain.ProviderAmazonTextract},
	}, nil)
	d.evals.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.ModelEvaluation) bool {
		return e.Provider == domain.ProviderPaddleOCR && e.IsCorrect
	})).Return(nil).Once()
	d.evals.On("Upsert", mock.Anything, mock.MatchedBy(func(e *domain.ModelEvaluation) bool {
		return e.Provider == domain.ProviderAmazonTextract && !e.IsCorrect
	})).Return(nil).Once()
	d.analyses.On("MarkEvaluated", mock.Anything, id, &notes).Return(nil)

	evals, err := d.service(nil).Evaluate(context.Background(), service.EvaluateInput{
		AnalysisID:       id,
		CorrectProviders: []domain.ProviderID{domain.ProviderPaddleOCR},
		Notes:            &notes,
	})

	require.NoError(t, err)
	assert.Len(t, evals, 2)
	d.evals.AssertExpectations(t)
	d.analyses.AssertExpectations(t)
}

func TestAnalysisService_Evaluate_NotFound(t *testing.T) {
	d := newAnalysisDeps()
	id := uuid.New()
	d.analyses.On("GetByID", mock.Anything, id).Return(nil, domain.ErrNotFound)

	_, err := d.service(nil).Evaluate(context.Background(), service.EvaluateInput{AnalysisID: id})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisService_Get(t *testing.T) {
	d := newAnalysisDeps()
	id := uuid.New()
	d.analyses.On("GetByID", mock.Anything, id).Return(&domain.Analysis{ID: id, S3Bucket: "b", S3Key: "analyses/x.png"}, nil)
	d.results.On("ListByAnalysis", mock.Anything, id).Return([]domain.OCRResult{{Provider: domain.ProviderPaddleOCR}}, nil)
	d.evals.On("ListByAnalysis", mock.Anything, id).Return([]domain.ModelEvaluation{}, nil)
	d.storage.On("GetPresignedURL", mock.Anything, "b", "analyses/x.png", int64(900)).Return("", errors.New("no creds"))

	detail, err := d.service(nil).Get(context.Background(), id)

	require.NoError(t, err)
	assert.Len(t, detail.OCRResults, 1)
	assert.Empty(t, detail.ImageURL)
}
