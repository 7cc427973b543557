package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConv2D_Identity(t *testing.T) {
	// A 1x1 identity kernel passes the input through unchanged.
	input := New(3, 3, 1)
	for i := range input.Data {
		input.Data[i] = float32(i)
	}
	kernel := New(1, 1, 1, 1)
	kernel.Data[0] = 1

	out, err := Conv2D(input, kernel, []float32{0})
	require.NoError(t, err)
	require.Equal(t, []int{3, 3, 1}, out.Shape)
	assert.Equal(t, input.Data, out.Data)
}

func TestConv2D_SamePaddingSum(t *testing.T) {
	// An all-ones 3x3 kernel over an all-ones image counts the in-bounds
	// neighborhood: 4 at corners, 6 at edges, 9 in the interior.
	input := New(3, 3, 1)
	for i := range input.Data {
		input.Data[i] = 1
	}
	kernel := New(3, 3, 1, 1)
	for i := range kernel.Data {
		kernel.Data[i] = 1
	}

	out, err := Conv2D(input, kernel, []float32{0})
	require.NoError(t, err)
	assert.Equal(t, float32(4), out.Data[0*3+0])
	assert.Equal(t, float32(6), out.Data[0*3+1])
	assert.Equal(t, float32(9), out.Data[1*3+1])
}

func TestConv2D_Bias(t *testing.T) {
	input := New(2, 2, 1)
	kernel := New(1, 1, 1, 1)

	out, err := Conv2D(input, kernel, []float32{2.5})
	require.NoError(t, err)
	for _, v := range out.Data {
		assert.Equal(t, float32(2.5), v)
	}
}

func TestConv2D_ShapeMismatch(t *testing.T) {
	input := New(3, 3, 2)
	kernel := New(3, 3, 1, 4)

	_, err := Conv2D(input, kernel, make([]float32, 4))
	assert.Error(t, err)

	_, err = Conv2D(New(3, 3, 1), New(3, 3, 1, 4), make([]float32, 3))
	assert.Error(t, err)
}

func TestReLU(t *testing.T) {
	tr := New(4)
	copy(tr.Data, []float32{-1, 0, 0.5, -0.001})
	ReLU(tr)
	assert.Equal(t, []float32{0, 0, 0.5, 0}, tr.Data)
}

func TestMaxPool2(t *testing.T) {
	input := New(4, 4, 1)
	copy(input.Data, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})

	out, err := MaxPool2(input)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 1}, out.Shape)
	assert.Equal(t, []float32{6, 8, 14, 16}, out.Data)
}

func TestMaxPool2_OddDimensionTruncates(t *testing.T) {
	input := New(3, 3, 1)
	for i := range input.Data {
		input.Data[i] = float32(i)
	}

	out, err := MaxPool2(input)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1}, out.Shape)
	assert.Equal(t, []float32{4}, out.Data)
}

func TestGlobalAvgPool(t *testing.T) {
	input := New(2, 2, 2)
	copy(input.Data, []float32{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	out, err := GlobalAvgPool(input)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 2.5, float64(out[0]), 1e-6)
	assert.InDelta(t, 25, float64(out[1]), 1e-6)
}

func TestDense(t *testing.T) {
	weights := New(2, 3)
	copy(weights.Data, []float32{
		1, 2, 3,
		4, 5, 6,
	})

	out, err := Dense([]float32{1, 2}, weights, []float32{0.5, 0, -0.5})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.InDelta(t, 9.5, float64(out[0]), 1e-6)
	assert.InDelta(t, 12, float64(out[1]), 1e-6)
	assert.InDelta(t, 14.5, float64(out[2]), 1e-6)
}

func TestDense_LengthMismatch(t *testing.T) {
	_, err := Dense([]float32{1}, New(2, 3), make([]float32, 3))
	assert.Error(t, err)

	_, err = Dense([]float32{1, 2}, New(2, 3), make([]float32, 2))
	assert.Error(t, err)
}

func TestSoftmax(t *testing.T) {
	out := Softmax([]float32{1, 2, 3})

	var sum float32
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-5)
	assert.Greater(t, out[2], out[1])
	assert.Greater(t, out[1], out[0])
}

func TestSoftmax_LargeLogitsStable(t *testing.T) {
	out := Softmax([]float32{1000, 1001})

	assert.False(t, out[0] != out[0], "produced NaN")
	var sum float32
	for _, v := range out {
		sum += v
	}
	assert.InDelta(t, 1.0, float64(sum), 1e-5)
}

func TestShapeEquals(t *testing.T) {
	assert.True(t, New(3, 3, 1).ShapeEquals(3, 3, 1))
	assert.False(t, New(3, 3).ShapeEquals(3, 3, 1))
	assert.False(t, New(3, 4, 1).ShapeEquals(3, 3, 1))
}
