package tensor

import (
	"fmt"
	"math"
)

// Conv2D applies a stride-1, same-padding convolution to an HWC input.
// Kernel shape is [kh, kw, inC, outC]; bias length must equal outC.
func Conv2D(in, kernel *Tensor, bias []float32) (*Tensor, error) {
	if len(in.Shape) != 3 || len(kernel.Shape) != 4 {
		return nil, fmt.Errorf("conv2d: want HWC input and 4-D kernel, got %v and %v", in.Shape, kernel.Shape)
	}
	h, w, inC := in.Shape[0], in.Shape[1], in.Shape[2]
	kh, kw, kin, outC := kernel.Shape[0], kernel.Shape[1], kernel.Shape[2], kernel.Shape[3]
	if kin != inC {
		return nil, fmt.Errorf("conv2d: kernel expects %d input channels, input has %d", kin, inC)
	}
	if len(bias) != outC {
		return nil, fmt.Errorf("conv2d: bias length %d != %d output channels", len(bias), outC)
	}

	out := New(h, w, outC)
	padY, padX := kh/2, kw/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for oc := 0; oc < outC; oc++ {
				sum := bias[oc]
				for ky := 0; ky < kh; ky++ {
					sy := y + ky - padY
					if sy < 0 || sy >= h {
						continue
					}
					for kx := 0; kx < kw; kx++ {
						sx := x + kx - padX
						if sx < 0 || sx >= w {
							continue
						}
						inBase := (sy*w + sx) * inC
						kBase := ((ky*kw + kx) * inC) * outC
						for ic := 0; ic < inC; ic++ {
							sum += in.Data[inBase+ic] * kernel.Data[kBase+ic*outC+oc]
						}
					}
				}
				out.Data[(y*w+x)*outC+oc] = sum
			}
		}
	}
	return out, nil
}

// ReLU clamps negatives to zero in place and returns the tensor.
func ReLU(t *Tensor) *Tensor {
	for i, v := range t.Data {
		if v < 0 {
			t.Data[i] = 0
		}
	}
	return t
}

// MaxPool2 applies 2x2 max pooling with stride 2 to an HWC input. Odd
// trailing rows or columns are dropped, matching valid pooling.
func MaxPool2(in *Tensor) (*Tensor, error) {
	if len(in.Shape) != 3 {
		return nil, fmt.Errorf("maxpool2: want HWC input, got %v", in.Shape)
	}
	h, w, c := in.Shape[0], in.Shape[1], in.Shape[2]
	oh, ow := h/2, w/2
	out := New(oh, ow, c)
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			for ch := 0; ch < c; ch++ {
				m := in.Data[((2*y)*w+2*x)*c+ch]
				for dy := 0; dy < 2; dy++ {
					for dx := 0; dx < 2; dx++ {
						v := in.Data[((2*y+dy)*w+2*x+dx)*c+ch]
						if v > m {
							m = v
						}
					}
				}
				out.Data[(y*ow+x)*c+ch] = m
			}
		}
	}
	return out, nil
}

// GlobalAvgPool averages each channel over the spatial grid of an HWC input.
func GlobalAvgPool(in *Tensor) ([]float32, error) {
	if len(in.Shape) != 3 {
		return nil, fmt.Errorf("global avg pool: want HWC input, got %v", in.Shape)
	}
	h, w, c := in.Shape[0], in.Shape[1], in.Shape[2]
	out := make([]float32, c)
	for i := 0; i < h*w; i++ {
		for ch := 0; ch < c; ch++ {
			out[ch] += in.Data[i*c+ch]
		}
	}
	n := float32(h * w)
	for ch := range out {
		out[ch] /= n
	}
	return out, nil
}

// Dense computes in·kernel + bias for a [in, out] kernel.
func Dense(in []float32, kernel *Tensor, bias []float32) ([]float32, error) {
	if len(kernel.Shape) != 2 {
		return nil, fmt.Errorf("dense: want 2-D kernel, got %v", kernel.Shape)
	}
	ni, no := kernel.Shape[0], kernel.Shape[1]
	if len(in) != ni {
		return nil, fmt.Errorf("dense: input length %d != kernel rows %d", len(in), ni)
	}
	if len(bias) != no {
		return nil, fmt.Errorf("dense: bias length %d != kernel cols %d", len(bias), no)
	}
	out := make([]float32, no)
	copy(out, bias)
	for i, v := range in {
		if v == 0 {
			continue
		}
		row := kernel.Data[i*no : (i+1)*no]
		for j, k := range row {
			out[j] += v * k
		}
	}
	return out, nil
}

// Softmax converts logits to probabilities, numerically stabilized by the
// max-subtraction trick.
func Softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
