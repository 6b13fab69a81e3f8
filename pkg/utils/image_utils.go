package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// MaxImageEdge bounds uploaded originals: anything larger is scaled down to
// fit a MaxImageEdge x MaxImageEdge envelope, preserving aspect ratio.
const MaxImageEdge = 1000

type ImageProcessor struct {
	log *zap.Logger
}

func NewImageProcessor(log *zap.Logger) *ImageProcessor {
	return &ImageProcessor{log: log}
}

// Bound decodes data and scales it down to fit the upload envelope. Images
// already inside the envelope keep their dimensions. GIFs pass through
// untouched so animations survive.
func (p *ImageProcessor) Bound(data []byte, contentType string) ([]byte, error) {
	if contentType == "image/gif" {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() <= MaxImageEdge && b.Dy() <= MaxImageEdge {
		return data, nil
	}

	img = imaging.Fit(img, MaxImageEdge, MaxImageEdge, imaging.Lanczos)
	p.log.Info("Image bounded",
		zap.Int("original_width", b.Dx()),
		zap.Int("original_height", b.Dy()),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
