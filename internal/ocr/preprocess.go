package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	// imaging registers jpeg and png; webp uploads need this decoder.
	_ "golang.org/x/image/webp"
)

// MaxEdge bounds the longest side of an image sent to OCR providers.
const MaxEdge = 4096

// Prepared is a normalized PNG plus its final dimensions.
type Prepared struct {
	PNG    []byte
	Width  int
	Height int
}

// Preprocess decodes an image, flattens it onto white RGB, scales it so the
// longest edge is at most MaxEdge and re-encodes it as PNG.
func Preprocess(data []byte) (*Prepared, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > MaxEdge || b.Dy() > MaxEdge {
		img = imaging.Fit(img, MaxEdge, MaxEdge, imaging.Lanczos)
	}

	rgb := flatten(img)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return &Prepared{PNG: buf.Bytes(), Width: rgb.Bounds().Dx(), Height: rgb.Bounds().Dy()}, nil
}

// Crop cuts the rectangle (x, y, w, h) out of an image and returns it as PNG.
// The rectangle is clamped to the image bounds.
func Crop(data []byte, x, y, w, h int) (*Prepared, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("crop size must be positive, got %dx%d", w, h)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	rect := image.Rect(x, y, x+w, y+h).Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("crop rectangle (%d,%d %dx%d) is outside the image", x, y, w, h)
	}
	cropped := imaging.Crop(img, rect)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return &Prepared{PNG: buf.Bytes(), Width: cropped.Bounds().Dx(), Height: cropped.Bounds().Dy()}, nil
}

// Dimensions returns the pixel size of an encoded image.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("reading image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), color.White)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
