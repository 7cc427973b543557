package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func grayImage(w, h int, v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func rgbImage(w, h int, v uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestPreprocess_ShapeAndRange(t *testing.T) {
	raw := encodePNG(t, rgbImage(640, 480, 200))

	t.Run("unit", func(t *testing.T) {
		tensor, err := New(domain.NormUnit, testLogger()).Preprocess(raw)
		require.NoError(t, err)
		require.Len(t, tensor.Data, domain.InputHeight*domain.InputWidth*domain.InputChannels)
		for _, v := range tensor.Data {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		tensor, err := New(domain.NormSymmetric, testLogger()).Preprocess(raw)
		require.NoError(t, err)
		for _, v := range tensor.Data {
			assert.GreaterOrEqual(t, v, float32(-1))
			assert.LessOrEqual(t, v, float32(1))
		}
	})
}

func TestPreprocess_UniformValue(t *testing.T) {
	// A flat mid-gray image lands on the exact normalized value everywhere.
	raw := encodePNG(t, rgbImage(100, 100, 102))

	tensor, err := New(domain.NormUnit, testLogger()).Preprocess(raw)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, float64(tensor.At(112, 112, 0)), 0.01)
}

func TestPreprocess_GrayscaleMatchesRGB(t *testing.T) {
	grayRaw := encodePNG(t, grayImage(300, 200, 77))
	rgbRaw := encodePNG(t, rgbImage(300, 200, 77))

	p := New(domain.NormUnit, testLogger())
	fromGray, err := p.Preprocess(grayRaw)
	require.NoError(t, err)
	fromRGB, err := p.Preprocess(rgbRaw)
	require.NoError(t, err)

	assert.Equal(t, fromRGB.Data, fromGray.Data)
}

func TestPreprocess_InvalidInputs(t *testing.T) {
	p := New(domain.NormUnit, testLogger())

	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", nil},
		{"not an image", []byte("definitely not pixels")},
		{"truncated png", encodePNG(t, rgbImage(64, 64, 10))[:20]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Preprocess(tt.raw)
			assert.ErrorIs(t, err, domain.ErrInvalidImage)
		})
	}
}

func TestPreprocess_TinyImageUpscales(t *testing.T) {
	raw := encodePNG(t, rgbImage(2, 2, 50))

	tensor, err := New(domain.NormUnit, testLogger()).Preprocess(raw)
	require.NoError(t, err)
	assert.Len(t, tensor.Data, domain.InputHeight*domain.InputWidth*domain.InputChannels)
}
