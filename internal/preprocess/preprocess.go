// Package preprocess turns uploaded scan images into the fixed-shape float32
// tensor the model adapters consume.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// Pipeline decodes, verifies, resizes and normalizes images. The
// normalization mode is instance configuration and must match what the
// paired adapter's weights were trained with; a mismatch produces wrong but
// plausible-looking predictions, which the post-load sanity check exists to
// catch.
type Pipeline struct {
	mode domain.NormalizationMode
	log  *logrus.Logger
}

// New builds a pipeline producing tensors in the given normalization range.
func New(mode domain.NormalizationMode, logger *logrus.Logger) *Pipeline {
	return &Pipeline{mode: mode, log: logger}
}

// Mode returns the configured normalization range.
func (p *Pipeline) Mode() domain.NormalizationMode {
	return p.mode
}

// Preprocess converts raw bytes into a [1,224,224,3] float32 tensor.
// Any decode failure, including truncated-but-headered files, is reported
// as an invalid image before any resize happens.
func (p *Pipeline) Preprocess(raw []byte) (*domain.ImageTensor, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty upload: %w", domain.ErrInvalidImage)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %v: %w", err, domain.ErrInvalidImage)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("degenerate image bounds %v: %w", bounds, domain.ErrInvalidImage)
	}

	p.log.WithFields(logrus.Fields{
		"format": format,
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
	}).Debug("Image decoded")

	// Collapse every source to 3-channel color before resizing. Grayscale
	// sources replicate the single channel; alpha is dropped over an opaque
	// white background via the straight copy below.
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	resized := resize.Resize(domain.InputWidth, domain.InputHeight, rgba, resize.Lanczos3)

	t := domain.NewImageTensor()
	for y := 0; y < domain.InputHeight; y++ {
		for x := 0; x < domain.InputWidth; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			t.Set(y, x, 0, p.normalize(r))
			t.Set(y, x, 1, p.normalize(g))
			t.Set(y, x, 2, p.normalize(b))
		}
	}
	return t, nil
}

// normalize maps a 16-bit color sample into the configured range.
func (p *Pipeline) normalize(v uint32) float32 {
	// 16-bit sample to the 0..255 scale the training pipelines used.
	raw := float32(v >> 8)
	if p.mode == domain.NormSymmetric {
		return (raw - 127.5) / 127.5
	}
	return raw / 255.0
}
