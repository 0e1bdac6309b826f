package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PromptVersion is one revision of the provider-specific LLM instructions.
// Records are append-only; the highest version per provider is current.
type PromptVersion struct {
	ID                  uuid.UUID     `db:"id" json:"id"`
	Provider            ProviderID    `db:"provider" json:"provider"`
	Version             int           `db:"version" json:"version"`
	SchemaVersion       SchemaVersion `db:"schema_version" json:"schema_version"`
	PromptText          string        `db:"prompt_text" json:"prompt"`
	PreviousVersion     *int          `db:"previous_version" json:"previous_version,omitempty"`
	RestoredFromVersion *int          `db:"restored_from_version" json:"restored_from_version,omitempty"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
}

// Analysis is one uploaded receipt run through a set of OCR providers.
type Analysis struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FileName      string    `db:"file_name" json:"file_name"`
	S3Bucket      string    `db:"s3_bucket" json:"-"`
	S3Key         string    `db:"s3_key" json:"s3_key"`
	FileHash      string    `db:"file_hash" json:"file_hash"`
	FileSizeBytes int64     `db:"file_size_bytes" json:"file_size_bytes"`
	Prompt        *string   `db:"prompt" json:"prompt,omitempty"`
	TotalCost     float64   `db:"total_cost" json:"total_cost"`
	Evaluated     bool      `db:"evaluated" json:"evaluated"`
	GroundTruth   *string   `db:"ground_truth" json:"ground_truth,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// OCRResult is the raw output of one provider for one analysis.
type OCRResult struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	AnalysisID       uuid.UUID       `db:"analysis_id" json:"analysis_id"`
	Provider         ProviderID      `db:"provider" json:"provider"`
	TextContent      *string         `db:"text_content" json:"text_content,omitempty"`
	StructuredData   json.RawMessage `db:"structured_data" json:"structured_data,omitempty"`
	Confidence       *float64        `db:"confidence" json:"confidence,omitempty"`
	ProcessingTimeMs float64         `db:"processing_time_ms" json:"processing_time_ms"`
	EstimatedCost    float64         `db:"estimated_cost" json:"estimated_cost"`
	AccountingData   json.RawMessage `db:"accounting_data" json:"accounting_data,omitempty"`
	Error            *string         `db:"error" json:"error,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// ModelEvaluation records whether a provider got an analysis right.
// Unique per (analysis_id, provider).
type ModelEvaluation struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	AnalysisID    uuid.UUID  `db:"analysis_id" json:"analysis_id"`
	Provider      ProviderID `db:"provider" json:"provider"`
	IsCorrect     bool       `db:"is_correct" json:"is_correct"`
	AccuracyScore *float64   `db:"accuracy_score" json:"accuracy_score,omitempty"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
	EvaluatedAt   time.Time  `db:"evaluated_at" json:"evaluated_at"`
}

// PromptTest is a labeled benchmark run of one receipt through one
// provider at one prompt version. Unique per (receipt_id, provider, prompt_version).
type PromptTest struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	ReceiptID           *uuid.UUID      `db:"receipt_id" json:"receipt_id,omitempty"`
	Provider            ProviderID      `db:"provider" json:"provider"`
	PromptVersion       int             `db:"prompt_version" json:"prompt_version"`
	SchemaVersion       SchemaVersion   `db:"schema_version" json:"schema_version"`
	OriginalImageKey    string          `db:"original_image_key" json:"original_image_key"`
	CroppedImageKey     *string         `db:"cropped_image_key" json:"cropped_image_key,omitempty"`
	OCRText             *string         `db:"ocr_text" json:"ocr_text,omitempty"`
	OCRConfidence       *float64        `db:"ocr_confidence" json:"ocr_confidence,omitempty"`
	OCRProcessingTimeMs *float64        `db:"ocr_processing_time_ms" json:"ocr_processing_time_ms,omitempty"`
	OCRCost             *float64        `db:"ocr_cost" json:"ocr_cost,omitempty"`
	LLMModel            *string         `db:"llm_model" json:"llm_model,omitempty"`
	PromptUsed          string          `db:"prompt_used" json:"prompt_used"`
	LLMResponseRaw      *string         `db:"llm_response_raw" json:"llm_response_raw,omitempty"`
	AccountingData      json.RawMessage `db:"accounting_data" json:"accounting_data,omitempty"`
	LLMProcessingTimeMs *float64        `db:"llm_processing_time_ms" json:"llm_processing_time_ms,omitempty"`
	LLMCost             *float64        `db:"llm_cost" json:"llm_cost,omitempty"`
	Label               *TestLabel      `db:"label" json:"label,omitempty"`
	ErrorType           *ErrorType      `db:"error_type" json:"error_type,omitempty"`
	ErrorDetails        json.RawMessage `db:"error_details" json:"error_details,omitempty"`
	ExpectedOutput      json.RawMessage `db:"expected_output" json:"expected_output,omitempty"`
	UserNotes           *string         `db:"user_notes" json:"user_notes,omitempty"`
	Tags                json.RawMessage `db:"tags" json:"tags,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	LabeledAt           *time.Time      `db:"labeled_at" json:"labeled_at,omitempty"`
}

// PromptTestFilter narrows prompt test listings. Zero values mean "any".
type PromptTestFilter struct {
	Provider      ProviderID
	PromptVersion int
	Label         TestLabel
	ReceiptID     *uuid.UUID
	Offset        int
	Limit         int
}

// PromptTestStat aggregates labels for one (provider, prompt version).
type PromptTestStat struct {
	Provider      ProviderID `db:"provider" json:"provider"`
	PromptVersion int        `db:"prompt_version" json:"prompt_version"`
	Total         int        `db:"total" json:"total"`
	Labeled       int        `db:"labeled" json:"labeled"`
	Correct       int        `db:"correct" json:"correct"`
	Incorrect     int        `db:"incorrect" json:"incorrect"`
	Partial       int        `db:"partial" json:"partial"`
	Accuracy      float64    `db:"-" json:"accuracy"`
}

// Receipt is a stored benchmark receipt image with optional ground truth.
type Receipt struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Description     *string         `db:"description" json:"description,omitempty"`
	Category        *string         `db:"category" json:"category,omitempty"`
	S3Bucket        string          `db:"s3_bucket" json:"-"`
	OriginalKey     string          `db:"original_key" json:"original_key"`
	CroppedKey      *string         `db:"cropped_key" json:"cropped_key,omitempty"`
	IsCropped       bool            `db:"is_cropped" json:"is_cropped"`
	ContentType     string          `db:"content_type" json:"content_type"`
	FileHash        string          `db:"file_hash" json:"file_hash"`
	FileSizeBytes   int64           `db:"file_size_bytes" json:"file_size_bytes"`
	ImageWidth      *int            `db:"image_width" json:"image_width,omitempty"`
	ImageHeight     *int            `db:"image_height" json:"image_height,omitempty"`
	GroundTruthData json.RawMessage `db:"ground_truth_data" json:"ground_truth_data,omitempty"`
	HasGroundTruth  bool            `db:"has_ground_truth" json:"has_ground_truth"`
	Tags            json.RawMessage `db:"tags" json:"tags,omitempty"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
	TestCount       int             `db:"test_count" json:"test_count"`
	SuccessCount    int             `db:"success_count" json:"success_count"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
