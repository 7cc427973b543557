package inference

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

var ortInitOnce sync.Once

// GraphAdapter wraps a serving-graph export behind an onnxruntime session.
// Input and output tensor names are discovered once at load time and cached;
// each Infer call builds its own tensors, so concurrent calls are safe.
type GraphAdapter struct {
	session    *ort.DynamicAdvancedSession
	meta       Metadata
	inputName  string
	outputName string
	log        *logrus.Logger
}

func newGraphAdapter(path string, meta Metadata, logger *logrus.Logger) (*GraphAdapter, error) {
	var initErr error
	ortInitOnce.Do(func() {
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, fmt.Errorf("initializing onnxruntime environment: %w", initErr)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("inspecting serving graph %s: %w", path, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("serving graph %s exposes no serving signature", path)
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating graph session: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"input":  inputs[0].Name,
		"output": outputs[0].Name,
	}).Info("Serving signature discovered")

	return &GraphAdapter{
		session:    session,
		meta:       meta,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		log:        logger,
	}, nil
}

// Infer runs the tensor through the cached serving signature.
func (g *GraphAdapter) Infer(t *domain.ImageTensor) ([]float32, error) {
	shape := ort.NewShape(1, domain.InputHeight, domain.InputWidth, domain.InputChannels)
	input, err := ort.NewTensor(shape, t.Data)
	if err != nil {
		return nil, fmt.Errorf("building input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := g.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("running serving graph: %w", err)
	}
	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		if outputs[0] != nil {
			outputs[0].Destroy()
		}
		return nil, fmt.Errorf("serving graph returned non-float32 output")
	}
	defer out.Destroy()

	probs := make([]float32, len(g.meta.Classes))
	copy(probs, out.GetData())
	return probs, nil
}

// Labels returns the class labels in output order.
func (g *GraphAdapter) Labels() []string {
	return g.meta.Classes
}

// Normalization reports the input range the weights expect.
func (g *GraphAdapter) Normalization() domain.NormalizationMode {
	return g.meta.Normalization
}

// Close destroys the session. The process-wide runtime environment stays up
// for any other live sessions.
func (g *GraphAdapter) Close() error {
	if g.session != nil {
		g.session.Destroy()
		g.session = nil
	}
	return nil
}
