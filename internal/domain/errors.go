package domain

import "errors"

var (
	ErrNotFound                   = errors.New("resource not found")
	ErrPromptVersionNotFound      = errors.New("prompt version not found")
	ErrCannotDeleteCurrentVersion = errors.New("cannot delete the current prompt version")
	ErrUnsupportedProvider        = errors.New("unsupported provider")
	ErrDuplicateReceipt           = errors.New("receipt with identical content already exists")
	ErrUnsupportedFileType        = errors.New("unsupported file type")
	ErrFileTooLarge               = errors.New("file exceeds maximum allowed size")
	ErrInvalidLabel               = errors.New("invalid label or error type")
	ErrInvalidInput               = errors.New("invalid input")
	ErrNoOCRText                  = errors.New("OCR metni bulunamadı")
	ErrMalformedLLMOutput         = errors.New("LLM returned malformed JSON")
	ErrBatchTimeout               = errors.New("batch deadline exceeded")
	ErrUploadFailed               = errors.New("file upload to storage failed")
)
