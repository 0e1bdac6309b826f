package service_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fisbench/internal/config"
)

// receiptPNG renders a plain w×h receipt-like image.
func receiptPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 250, G: 250, B: 245, A: 255}
			if y%10 == 0 {
				c = color.RGBA{A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func testConfig() *config.Config {
	return &config.Config{
		S3:         config.S3Config{Bucket: "fisbench-test", PresignExpiry: 900},
		Upload:     config.UploadConfig{MaxSizeMB: 1},
		Accounting: config.AccountingConfig{BatchTimeout: 2 * time.Second, MaxConcurrency: 4},
		OCR:        config.OCRConfig{CacheTTL: time.Hour},
	}
}
