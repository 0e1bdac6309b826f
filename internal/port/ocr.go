package port

import (
	"context"
	"encoding/json"
	"time"

	"fisbench/internal/domain"
)

// OCRInput is a preprocessed receipt image.
type OCRInput struct {
	Image       []byte
	ContentType string
}

// OCROutput is the text one provider extracted, with optional structural hints.
type OCROutput struct {
	Text       string          `json:"text"`
	Hints      json.RawMessage `json:"hints,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	Cost       float64         `json:"cost"`
}

// OCRProvider abstracts a text-extraction backend.
type OCRProvider interface {
	ID() domain.ProviderID
	Extract(ctx context.Context, input OCRInput) (*OCROutput, error)
}

// OCRCache stores OCR output keyed by image hash and provider.
type OCRCache interface {
	Get(ctx context.Context, imageHash string, provider domain.ProviderID) (*OCROutput, bool, error)
	Set(ctx context.Context, imageHash string, provider domain.ProviderID, out *OCROutput, ttl time.Duration) error
}
