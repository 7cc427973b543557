package inference

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// sanitySeed keeps the self-test input reproducible across restarts.
const sanitySeed = 20240224

// degenerateTolerance is the relative spread under which an output vector
// counts as uniform.
const degenerateTolerance = 1e-5

// SanityCheck feeds one pseudo-random tensor through the adapter and reports
// whether the output looks degenerate: all class probabilities within
// relative tolerance of the first. That shape of output is what a model
// whose weights never actually loaded produces (for example a
// partial restore that matched zero variables), and it must be surfaced
// before the process serves wrong predictions silently.
func SanityCheck(a domain.Adapter) (degenerate bool, err error) {
	rng := rand.New(rand.NewSource(sanitySeed))

	t := domain.NewImageTensor()
	lo, hi := float32(0), float32(1)
	if a.Normalization() == domain.NormSymmetric {
		lo, hi = -1, 1
	}
	for i := range t.Data {
		t.Data[i] = lo + rng.Float32()*(hi-lo)
	}

	probs, err := a.Infer(t)
	if err != nil {
		return false, fmt.Errorf("sanity inference: %w", err)
	}
	if len(probs) == 0 {
		return true, nil
	}
	return isNearUniform(probs, degenerateTolerance), nil
}

// isNearUniform reports whether every value is within rel tolerance of the
// first.
func isNearUniform(probs []float32, rel float64) bool {
	first := float64(probs[0])
	for _, p := range probs[1:] {
		diff := math.Abs(float64(p) - first)
		scale := math.Max(math.Abs(first), math.Abs(float64(p)))
		if scale == 0 {
			continue
		}
		if diff/scale > rel {
			return false
		}
	}
	return true
}
