package ocr_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/logger"
	"fisbench/internal/ocr"
	"fisbench/internal/port"
)

type fakeTextract struct {
	out *textract.DetectDocumentTextOutput
	err error
	got []byte
}

func (f *fakeTextract) DetectDocumentText(_ context.Context, in *textract.DetectDocumentTextInput, _ ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error) {
	f.got = in.Document.Bytes
	return f.out, f.err
}

func TestTextract_JoinsLineBlocks(t *testing.T) {
	api := &fakeTextract{out: &textract.DetectDocumentTextOutput{Blocks: []types.Block{
		{BlockType: types.BlockTypePage},
		{BlockType: types.BlockTypeLine, Text: aws.String("ABC MARKET"), Confidence: aws.Float32(90)},
		{BlockType: types.BlockTypeWord, Text: aws.String("ABC")},
		{BlockType: types.BlockTypeLine, Text: aws.String("TOPLAM *30,00"), Confidence: aws.Float32(80)},
	}}}
	p := ocr.NewTextractWithAPI(api)

	out, err := p.Extract(context.Background(), port.OCRInput{Image: []byte("img")})

	require.NoError(t, err)
	assert.Equal(t, domain.ProviderAmazonTextract, p.ID())
	assert.Equal(t, "ABC MARKET\nTOPLAM *30,00", out.Text)
	require.NotNil(t, out.Confidence)
	assert.InDelta(t, 0.85, *out.Confidence, 1e-6)
	assert.Equal(t, []byte("img"), api.got)
	assert.Greater(t, out.Cost, 0.0)
}

func TestTextract_Error(t *testing.T) {
	p := ocr.NewTextractWithAPI(&fakeTextract{err: errors.New("AccessDenied")})

	_, err := p.Extract(context.Background(), port.OCRInput{})

	assert.ErrorContains(t, err, "AccessDenied")
}

func TestDocumentAI_ReadsTextAndConfidence(t *testing.T) {
	var gotReq *documentaipb.ProcessRequest
	p := ocr.NewDocumentAIWithFunc(func(_ context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
		gotReq = req
		return &documentaipb.ProcessResponse{Document: &documentaipb.Document{
			Text: "FIRIN\nSIMIT 15,00",
			Pages: []*documentaipb.Document_Page{{
				Lines: []*documentaipb.Document_Page_Line{
					{Layout: &documentaipb.Document_Page_Layout{Confidence: 0.9}},
					{Layout: &documentaipb.Document_Page_Layout{Confidence: 0.7}},
				},
			}},
		}}, nil
	}, "projects/p/locations/eu/processors/x")

	out, err := p.Extract(context.Background(), port.OCRInput{Image: []byte("png")})

	require.NoError(t, err)
	assert.Equal(t, "projects/p/locations/eu/processors/x", gotReq.GetName())
	assert.Equal(t, "image/png", gotReq.GetRawDocument().GetMimeType())
	assert.Equal(t, "FIRIN\nSIMIT 15,00", out.Text)
	assert.InDelta(t, 0.8, *out.Confidence, 1e-6)
}

func TestOpenAIVision_SplitsRawTextAndHints(t *testing.T) {
	content := "```json\n{\"raw_text\": \"ABC MARKET\\nTOPLAM 30,00\", \"structured\": {\"grand_total\": 30.0}}\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer vk", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]interface{}{"content": content}}},
			"usage":   map[string]interface{}{"prompt_tokens": 1000, "completion_tokens": 1000},
		})
	}))
	defer server.Close()

	p := ocr.NewOpenAIVisionWithEndpoint("vk", "gpt-4o-mini", time.Second*5, server.URL)
	out, err := p.Extract(context.Background(), port.OCRInput{Image: []byte("png"), ContentType: "image/png"})

	require.NoError(t, err)
	assert.Equal(t, "ABC MARKET\nTOPLAM 30,00", out.Text)
	assert.JSONEq(t, `{"grand_total": 30.0}`, string(out.Hints))
	assert.InDelta(t, 0.00075, out.Cost, 1e-12)
	assert.Equal(t, 0.95, *out.Confidence)
}

func TestOpenAIVision_NonJSONKeptAsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"sadece düz metin"}}]}`))
	}))
	defer server.Close()

	p := ocr.NewOpenAIVisionWithEndpoint("vk", "", time.Second*5, server.URL)
	out, err := p.Extract(context.Background(), port.OCRInput{Image: []byte("png")})

	require.NoError(t, err)
	assert.Equal(t, "sadece düz metin", out.Text)
	assert.Empty(t, out.Hints)
}

func TestPaddle_PostsMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ocr/process", r.URL.Path)
		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, []byte("png-bytes"), data)
		_, _ = w.Write([]byte(`{"success": true, "text": "SATIR 1\nSATIR 2", "line_count": 2, "confidence": 0.912}`))
	}))
	defer server.Close()

	p := ocr.NewPaddle(server.URL+"/", time.Second*5)
	out, err := p.Extract(context.Background(), port.OCRInput{Image: []byte("png-bytes")})

	require.NoError(t, err)
	assert.Equal(t, "SATIR 1\nSATIR 2", out.Text)
	assert.Equal(t, 0.912, *out.Confidence)
	assert.Zero(t, out.Cost)
}

func TestPaddle_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"OCR işlemi başarısız"}`))
	}))
	defer server.Close()

	_, err := ocr.NewPaddle(server.URL, time.Second).Extract(context.Background(), port.OCRInput{})

	assert.ErrorContains(t, err, "status 500")
}

func TestNewFromConfig(t *testing.T) {
	set, err := ocr.NewFromConfig(context.Background(), &config.OCRConfig{
		Enabled:        []string{"openai_vision", "PADDLE_OCR"},
		PaddleEndpoint: "http://localhost:8001",
	}, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, []domain.ProviderID{domain.ProviderPaddleOCR, domain.ProviderOpenAIVision}, set.IDs())
	_, err = set.Get(domain.ProviderAmazonTextract)
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)

	_, err = ocr.NewFromConfig(context.Background(), &config.OCRConfig{Enabled: []string{"tesseract"}}, logger.Nop())
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}
