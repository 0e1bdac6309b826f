package handler

import "encoding/json"

// Swagger type definitions for API documentation.
// Request types are also bound directly by the handlers.

// --- Request Types ---

// EvaluateRequest marks which providers got an analysis right.
type EvaluateRequest struct {
	CorrectProviders []string `json:"correct_providers" example:"paddle_ocr,openai_vision"`
	Notes            string   `json:"notes" example:"Textract missed the VAT line"`
}

// NormalizeRequest is a raw LLM object to normalize.
type NormalizeRequest struct {
	Provider      string         `json:"provider" binding:"required" example:"paddle_ocr"`
	PromptVersion *int           `json:"promptVersion,omitempty" example:"24"`
	Raw           map[string]any `json:"raw" binding:"required" swaggertype:"object"`
}

// SavePromptRequest stores a new prompt version.
type SavePromptRequest struct {
	PromptText    string `json:"prompt_text" binding:"required" example:"OCR metnindeki KDV satırlarına dikkat et."`
	SchemaVersion string `json:"schema_version,omitempty" example:"v2"`
}

// RunPromptTestRequest runs a stored receipt through one provider.
type RunPromptTestRequest struct {
	ReceiptID     string `json:"receipt_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Provider      string `json:"provider" binding:"required" example:"openai_vision"`
	PromptVersion int    `json:"prompt_version,omitempty" example:"24"`
	UseCropped    bool   `json:"use_cropped" example:"true"`
}

// LabelRequest is a human verdict on a prompt test.
type LabelRequest struct {
	Label          string          `json:"label" binding:"required" example:"partial"`
	ErrorType      string          `json:"error_type,omitempty" example:"gpt_error"`
	ErrorDetails   json.RawMessage `json:"error_details,omitempty" swaggertype:"object"`
	ExpectedOutput json.RawMessage `json:"expected_output,omitempty" swaggertype:"object"`
	Notes          string          `json:"notes,omitempty" example:"KDV %10 yerine %20 okunmuş"`
	Tags           json.RawMessage `json:"tags,omitempty" swaggertype:"array,string"`
}

// UpdateReceiptRequest changes receipt metadata. Omitted fields are kept.
type UpdateReceiptRequest struct {
	Name        *string         `json:"name,omitempty" example:"Shell Kadıköy"`
	Description *string         `json:"description,omitempty" example:"Akaryakıt fişi, iki KDV oranı"`
	Category    *string         `json:"category,omitempty" example:"akaryakit"`
	Tags        json.RawMessage `json:"tags,omitempty" swaggertype:"array,string"`
	Notes       *string         `json:"notes,omitempty"`
	GroundTruth json.RawMessage `json:"ground_truth,omitempty" swaggertype:"object"`
}

// CropRequest is a crop rectangle in original image pixels.
type CropRequest struct {
	X      int `json:"x" example:"40"`
	Y      int `json:"y" example:"120"`
	Width  int `json:"width" binding:"required" example:"800"`
	Height int `json:"height" binding:"required" example:"1900"`
}

// --- Response Types ---

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"database not reachable"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message" example:"operation completed successfully"`
}

// ImageURLResponse carries a presigned image URL.
type ImageURLResponse struct {
	URL string `json:"url" example:"https://fisbench-receipts.s3.eu-central-1.amazonaws.com/receipts/original/...?X-Amz-Signature=..."`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
