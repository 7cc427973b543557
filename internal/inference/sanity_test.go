package inference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// stubAdapter returns a canned probability vector.
type stubAdapter struct {
	probs []float32
	mode  domain.NormalizationMode
	err   error
	seen  *domain.ImageTensor
}

func (a *stubAdapter) Infer(t *domain.ImageTensor) ([]float32, error) {
	a.seen = t
	return a.probs, a.err
}

func (a *stubAdapter) Labels() []string { return []string{"Normal", "Benign", "Malignant"} }

func (a *stubAdapter) Normalization() domain.NormalizationMode {
	if a.mode == "" {
		return domain.NormUnit
	}
	return a.mode
}

func (a *stubAdapter) Close() error { return nil }

func TestSanityCheck_UniformOutputIsDegenerate(t *testing.T) {
	third := float32(1.0 / 3.0)
	degenerate, err := SanityCheck(&stubAdapter{probs: []float32{third, third, third}})
	require.NoError(t, err)
	assert.True(t, degenerate)
}

func TestSanityCheck_NearUniformWithinToleranceIsDegenerate(t *testing.T) {
	degenerate, err := SanityCheck(&stubAdapter{probs: []float32{0.3333333, 0.3333334, 0.3333333}})
	require.NoError(t, err)
	assert.True(t, degenerate)
}

func TestSanityCheck_DistinctOutputIsHealthy(t *testing.T) {
	degenerate, err := SanityCheck(&stubAdapter{probs: []float32{0.7, 0.2, 0.1}})
	require.NoError(t, err)
	assert.False(t, degenerate)
}

func TestSanityCheck_InferenceErrorPropagates(t *testing.T) {
	_, err := SanityCheck(&stubAdapter{err: errors.New("native crash")})
	assert.Error(t, err)
}

func TestSanityCheck_InputRespectsNormalizationRange(t *testing.T) {
	t.Run("unit", func(t *testing.T) {
		a := &stubAdapter{probs: []float32{0.9, 0.1, 0}, mode: domain.NormUnit}
		_, err := SanityCheck(a)
		require.NoError(t, err)
		for _, v := range a.seen.Data {
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		a := &stubAdapter{probs: []float32{0.9, 0.1, 0}, mode: domain.NormSymmetric}
		_, err := SanityCheck(a)
		require.NoError(t, err)
		var sawNegative bool
		for _, v := range a.seen.Data {
			assert.GreaterOrEqual(t, v, float32(-1))
			assert.LessOrEqual(t, v, float32(1))
			if v < 0 {
				sawNegative = true
			}
		}
		assert.True(t, sawNegative)
	})
}

func TestSanityCheck_IsReproducible(t *testing.T) {
	a1 := &stubAdapter{probs: []float32{0.9, 0.1, 0}}
	a2 := &stubAdapter{probs: []float32{0.9, 0.1, 0}}

	_, err := SanityCheck(a1)
	require.NoError(t, err)
	_, err = SanityCheck(a2)
	require.NoError(t, err)

	assert.Equal(t, a1.seen.Data, a2.seen.Data)
}
