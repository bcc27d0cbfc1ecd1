package artwork

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

const (
	// maxCoverDim bounds embedded cover dimensions; larger images are
	// scaled down, preserving aspect ratio.
	maxCoverDim = 1000

	jpegQuality = 90
)

// NormalizeJPEG decodes an image, scales it to fit maxCoverDim, and
// re-encodes it as JPEG so every embedded cover uses one format
// players agree on.
func NormalizeJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cover image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > maxCoverDim || height > maxCoverDim {
		ratio := float64(width) / float64(height)
		if ratio > 1 {
			width = maxCoverDim
			height = int(float64(maxCoverDim) / ratio)
		} else {
			height = maxCoverDim
			width = int(float64(maxCoverDim) * ratio)
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)
		img = scaled
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode cover image: %w", err)
	}
	return buf.Bytes(), nil
}
