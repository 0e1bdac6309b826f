package domain

import "strings"

// FileType represents the allowed receipt image types for upload.
type FileType string

const (
	FileTypeJPG  FileType = "jpg"
	FileTypePNG  FileType = "png"
	FileTypeWEBP FileType = "webp"
	FileTypePDF  FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeJPG:  "image/jpeg",
	FileTypePNG:  "image/png",
	FileTypeWEBP: "image/webp",
	FileTypePDF:  "application/pdf",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
	"image/webp":      FileTypeWEBP,
	"application/pdf": FileTypePDF,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
	"webp": FileTypeWEBP,
	"pdf":  FileTypePDF,
}

// ProviderID identifies an OCR provider. It also keys prompts and correctors.
type ProviderID string

const (
	ProviderPaddleOCR      ProviderID = "paddle_ocr"
	ProviderOpenAIVision   ProviderID = "openai_vision"
	ProviderGoogleDocAI    ProviderID = "google_docai"
	ProviderAmazonTextract ProviderID = "amazon_textract"
)

// KnownProviders lists the OCR providers in their canonical display order.
var KnownProviders = []ProviderID{
	ProviderPaddleOCR,
	ProviderOpenAIVision,
	ProviderGoogleDocAI,
	ProviderAmazonTextract,
}

// IsKnown reports whether p is one of the built-in OCR providers.
func (p ProviderID) IsKnown() bool {
	for _, k := range KnownProviders {
		if k == p {
			return true
		}
	}
	return false
}

// ParseProviderID normalizes a provider identifier from user input.
func ParseProviderID(s string) ProviderID {
	return ProviderID(strings.ToLower(strings.TrimSpace(s)))
}

// SchemaVersion identifies the JSON shape an LLM is instructed to emit.
type SchemaVersion string

const (
	SchemaV1 SchemaVersion = "v1"
	SchemaV2 SchemaVersion = "v2"
)

// Valid reports whether the schema version is one the pipeline understands.
func (s SchemaVersion) Valid() bool {
	return s == SchemaV1 || s == SchemaV2
}

// TestLabel is the human verdict on a prompt test.
type TestLabel string

const (
	LabelCorrect   TestLabel = "correct"
	LabelIncorrect TestLabel = "incorrect"
	LabelPartial   TestLabel = "partial"
)

// Valid reports whether l is an accepted label.
func (l TestLabel) Valid() bool {
	switch l {
	case LabelCorrect, LabelIncorrect, LabelPartial:
		return true
	}
	return false
}

// ErrorType attributes a failed prompt test to a pipeline stage.
type ErrorType string

const (
	ErrorTypeOCR  ErrorType = "ocr_error"
	ErrorTypeGPT  ErrorType = "gpt_error"
	ErrorTypeBoth ErrorType = "both"
	ErrorTypeNone ErrorType = "none"
)

// Valid reports whether e is an accepted error type.
func (e ErrorType) Valid() bool {
	switch e {
	case ErrorTypeOCR, ErrorTypeGPT, ErrorTypeBoth, ErrorTypeNone:
		return true
	}
	return false
}

// ExportFormat selects the prompt test export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
