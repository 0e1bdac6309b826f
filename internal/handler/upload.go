package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fisbench/internal/domain"
)

// readUpload reads the multipart "file" field. At most maxBytes+1 bytes are
// read so oversized uploads still fail size validation downstream.
func readUpload(c *gin.Context, maxBytes int64) (name string, data []byte, ok bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return "", nil, false
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if maxBytes > 0 {
		r = io.LimitReader(file, maxBytes+1)
	}
	data, err = io.ReadAll(r)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not read uploaded file")
		return "", nil, false
	}
	return header.Filename, data, true
}

// parseProviders accepts repeated or comma-separated provider form values.
func parseProviders(values []string) []domain.ProviderID {
	var out []domain.ProviderID
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := domain.ParseProviderID(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
