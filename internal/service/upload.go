package service

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"fisbench/internal/domain"
)

// checkedFile is an upload that passed type and size validation.
type checkedFile struct {
	Type        domain.FileType
	Ext         string
	ContentType string
	Hash        string
}

// checkUpload validates the extension, the size and the sniffed content type
// of an uploaded receipt, then hashes it.
func checkUpload(filename string, data []byte, maxBytes int64) (*checkedFile, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file: %w", domain.ErrInvalidInput)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Content type comes from magic bytes, not the extension.
	detected := http.DetectContentType(data)
	fileType, ok := domain.AllowedContentTypes[detected]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	return &checkedFile{
		Type:        fileType,
		Ext:         string(fileType),
		ContentType: detected,
		Hash:        contentHash(data),
	}, nil
}

// contentHash is the hex BLAKE2b-256 digest of data.
func contentHash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
