package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fisbench/internal/accounting"
	"fisbench/internal/domain"
	"fisbench/internal/llm"
	"fisbench/internal/port"
)

const openAIURL = "https://api.openai.com/v1/chat/completions"

// visionConfidence is reported for OpenAI Vision, which returns no score.
const visionConfidence = 0.95

const visionPrompt = `Sen bir Türk muhasebe ve OCR uzmanısın. Bu fiş/fatura görselinden eksiksiz ve doğru bilgi çıkar.

KURALLAR:
- Türkçe karakterleri doğru oku (ş, ğ, ı, ü, ö, ç, İ)
- 0/O, 1/I, 5/S karakterlerini karıştırma
- Ondalık ayırıcıyı doğru ayırt et (123,45 ≠ 12345)
- Görünen her bilgiyi çıkar, emin olmadığın değeri tahmin etme

ÇIKTI (yalnızca JSON):
{
  "raw_text": "fişteki tüm metin, satır satır",
  "structured": {
    "company_name": "...", "vkn": "...", "address": "...", "date": "DD/MM/YYYY",
    "receipt_number": "...", "plate": "...",
    "items": [{"name": "...", "quantity": 0.0, "unit_price": 0.0, "total_price": 0.0, "vat_rate": 10}],
    "vat_breakdown": [{"rate": 10, "amount": 0.0}],
    "total_vat": 0.0, "grand_total": 0.0, "payment_method": "..."
  }
}`

type visionProvider struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewOpenAIVision creates an OpenAI Vision OCR provider.
func NewOpenAIVision(apiKey, model string, timeout time.Duration) port.OCRProvider {
	return NewOpenAIVisionWithEndpoint(apiKey, model, timeout, openAIURL)
}

// NewOpenAIVisionWithEndpoint creates a provider pointing at a custom API endpoint (for testing).
func NewOpenAIVisionWithEndpoint(apiKey, model string, timeout time.Duration, endpoint string) port.OCRProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &visionProvider{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *visionProvider) ID() domain.ProviderID { return domain.ProviderOpenAIVision }

func (p *visionProvider) Extract(ctx context.Context, input port.OCRInput) (*port.OCROutput, error) {
	mime := input.ContentType
	if mime == "" {
		mime = "image/png"
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(input.Image))

	reqBody := map[string]interface{}{
		"model":       p.model,
		"max_tokens":  3000,
		"temperature": 0.0,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": visionPrompt},
					{"type": "image_url", "image_url": map[string]interface{}{"url": dataURI, "detail": "high"}},
				},
			},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai vision API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai vision API error (status %d): %s", resp.StatusCode, accounting.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, llm.NewRateLimitError("openai_vision", baseErr, llm.RetryDelay(resp.Header, respBody, time.Now()))
		}
		return nil, baseErr
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}

	content := parsed.Choices[0].Message.Content
	conf := visionConfidence
	out := &port.OCROutput{
		Text:       content,
		Confidence: &conf,
		Cost:       accounting.EstimateCost(p.model, parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens),
	}

	// Non-JSON replies are kept verbatim as the OCR text.
	obj, err := accounting.DecodeObject(content)
	if err != nil {
		return out, nil
	}
	if text, ok := obj["raw_text"].(string); ok {
		out.Text = text
	}
	if structured, ok := obj["structured"]; ok {
		if hints, err := json.Marshal(structured); err == nil {
			out.Hints = hints
		}
	} else if _, hasText := obj["text"]; !hasText {
		if hints, err := json.Marshal(obj); err == nil {
			out.Hints = hints
		}
	}
	return out, nil
}
