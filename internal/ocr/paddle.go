package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"fisbench/internal/accounting"
	"fisbench/internal/domain"
	"fisbench/internal/port"
)

type paddleProvider struct {
	baseURL string
	client  *http.Client
}

// NewPaddle creates a provider for the PaddleOCR sidecar service.
func NewPaddle(baseURL string, timeout time.Duration) port.OCRProvider {
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &paddleProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *paddleProvider) ID() domain.ProviderID { return domain.ProviderPaddleOCR }

// paddleResponse models the sidecar's /ocr/process reply.
type paddleResponse struct {
	Success    bool     `json:"success"`
	Text       string   `json:"text"`
	LineCount  int      `json:"line_count"`
	Confidence *float64 `json:"confidence"`
}

func (p *paddleProvider) Extract(ctx context.Context, input port.OCRInput) (*port.OCROutput, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "receipt.png")
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(input.Image); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/ocr/process", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling paddle service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paddle service error (status %d): %s", resp.StatusCode, accounting.Truncate(string(respBody), 500))
	}

	var parsed paddleResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	return &port.OCROutput{Text: parsed.Text, Confidence: parsed.Confidence}, nil
}
