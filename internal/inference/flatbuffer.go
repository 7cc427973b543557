package inference

import (
	"fmt"
	"sync"

	"github.com/mattn/go-tflite"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// FlatBufferAdapter wraps a TFLite interpreter. The interpreter's internal
// tensor buffers are not safe for concurrent invocation, so Infer is
// serialized with a mutex; tensors are allocated once at load and the
// input/output indices are fixed from then on.
type FlatBufferAdapter struct {
	mu     sync.Mutex
	model  *tflite.Model
	interp *tflite.Interpreter
	meta   Metadata
	log    *logrus.Logger
}

func newFlatBufferAdapter(path string, meta Metadata, logger *logrus.Logger) (*FlatBufferAdapter, error) {
	model := tflite.NewModelFromFile(path)
	if model == nil {
		return nil, fmt.Errorf("loading flat-buffer model %s failed", path)
	}

	options := tflite.NewInterpreterOptions()
	defer options.Delete()
	options.SetNumThread(1)

	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		model.Delete()
		return nil, fmt.Errorf("creating flat-buffer interpreter for %s failed", path)
	}

	if status := interp.AllocateTensors(); status != tflite.OK {
		interp.Delete()
		model.Delete()
		return nil, fmt.Errorf("allocating interpreter tensors for %s failed", path)
	}

	input := interp.GetInputTensor(0)
	if got := len(input.Float32s()); got != domain.InputHeight*domain.InputWidth*domain.InputChannels {
		interp.Delete()
		model.Delete()
		return nil, fmt.Errorf("flat-buffer input holds %d values, want %d",
			got, domain.InputHeight*domain.InputWidth*domain.InputChannels)
	}

	logger.WithFields(logrus.Fields{
		"inputs":  interp.GetInputTensorCount(),
		"outputs": interp.GetOutputTensorCount(),
	}).Info("Flat-buffer interpreter ready")

	return &FlatBufferAdapter{
		model:  model,
		interp: interp,
		meta:   meta,
		log:    logger,
	}, nil
}

// Infer invokes the interpreter. Calls are serialized per-interpreter.
func (f *FlatBufferAdapter) Infer(t *domain.ImageTensor) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.interp == nil {
		return nil, fmt.Errorf("interpreter closed")
	}

	copy(f.interp.GetInputTensor(0).Float32s(), t.Data)

	if status := f.interp.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("interpreter invoke failed with status %v", status)
	}

	raw := f.interp.GetOutputTensor(0).Float32s()
	if len(raw) < len(f.meta.Classes) {
		return nil, fmt.Errorf("interpreter produced %d values for %d classes", len(raw), len(f.meta.Classes))
	}
	probs := make([]float32, len(f.meta.Classes))
	copy(probs, raw)
	return probs, nil
}

// Labels returns the class labels in output order.
func (f *FlatBufferAdapter) Labels() []string {
	return f.meta.Classes
}

// Normalization reports the input range the weights expect.
func (f *FlatBufferAdapter) Normalization() domain.NormalizationMode {
	return f.meta.Normalization
}

// Close releases the interpreter and model.
func (f *FlatBufferAdapter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.interp != nil {
		f.interp.Delete()
		f.interp = nil
	}
	if f.model != nil {
		f.model.Delete()
		f.model = nil
	}
	return nil
}
