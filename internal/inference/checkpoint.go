package inference

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/tensor"
)

// CheckpointAdapter reconstructs the known classifier architecture from its
// specification and restores matching weight tensors from a raw checkpoint.
// Restoration is expect-partial: a checkpoint normally carries optimizer
// slots that no declared variable matches, and may omit variables; unmatched
// declared variables keep their zero initialization, which the post-load
// sanity check then exposes as a degenerate model.
//
// The architecture is a small convolutional feature extractor followed by
// global average pooling and a dense softmax head:
//
//	conv1 3x3x16 / relu / maxpool2 ->
//	conv2 3x3x32 / relu / maxpool2 ->
//	conv3 3x3x64 / relu / maxpool2 ->
//	global average pool -> dense 64xC -> softmax
type CheckpointAdapter struct {
	vars    map[string]*tensor.Tensor
	meta    Metadata
	matched int
	log     *logrus.Logger
}

// convBlock declares one feature-extractor stage.
type convBlock struct {
	name    string
	in, out int
}

var featureBlocks = []convBlock{
	{name: "conv1", in: domain.InputChannels, out: 16},
	{name: "conv2", in: 16, out: 32},
	{name: "conv3", in: 32, out: 64},
}

const denseInputs = 64

// bundleIndex is the manifest written next to the checkpoint data blob.
type bundleIndex struct {
	Version int           `json:"version"`
	Tensors []bundleEntry `json:"tensors"`
}

type bundleEntry struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // byte offset into the data file
}

func newCheckpointAdapter(indexPath string, meta Metadata, logger *logrus.Logger) (*CheckpointAdapter, error) {
	a := &CheckpointAdapter{
		vars: declareVariables(len(meta.Classes)),
		meta: meta,
		log:  logger,
	}

	if err := a.restore(indexPath); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"declared": len(a.vars),
		"matched":  a.matched,
	}).Info("Checkpoint restore finished")
	return a, nil
}

// declareVariables builds the zero-initialized variable set of the fixed
// architecture.
func declareVariables(classes int) map[string]*tensor.Tensor {
	vars := make(map[string]*tensor.Tensor)
	for _, b := range featureBlocks {
		vars[b.name+"/kernel"] = tensor.New(3, 3, b.in, b.out)
		vars[b.name+"/bias"] = tensor.New(b.out)
	}
	vars["dense/kernel"] = tensor.New(denseInputs, classes)
	vars["dense/bias"] = tensor.New(classes)
	return vars
}

// restore loads every manifest entry whose name and shape match a declared
// variable. Extra entries (optimizer state) are skipped, missing ones
// tolerated.
func (a *CheckpointAdapter) restore(indexPath string) error {
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("reading checkpoint index: %w", err)
	}
	var idx bundleIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return fmt.Errorf("parsing checkpoint index: %w", err)
	}

	dataPath := strings.TrimSuffix(indexPath, ".index") + ".data"
	data, err := os.ReadFile(dataPath)
	if err != nil {
		return fmt.Errorf("reading checkpoint data: %w", err)
	}

	for _, entry := range idx.Tensors {
		dst, ok := a.vars[entry.Name]
		if !ok {
			a.log.WithField("variable", entry.Name).Debug("Skipping undeclared checkpoint entry")
			continue
		}
		if !dst.ShapeEquals(entry.Shape...) {
			a.log.WithFields(logrus.Fields{
				"variable": entry.Name,
				"declared": dst.Shape,
				"stored":   entry.Shape,
			}).Warn("Shape mismatch, variable left unrestored")
			continue
		}

		n := dst.NumElems()
		end := entry.Offset + int64(n)*4
		if entry.Offset < 0 || end > int64(len(data)) {
			return fmt.Errorf("checkpoint entry %s spans [%d,%d) outside %d-byte data file",
				entry.Name, entry.Offset, end, len(data))
		}
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(data[entry.Offset+int64(i)*4:])
			dst.Data[i] = math.Float32frombits(bits)
		}
		a.matched++
	}
	return nil
}

// MatchedVariables reports how many declared variables the checkpoint
// actually covered.
func (a *CheckpointAdapter) MatchedVariables() int {
	return a.matched
}

// Infer runs the forward pass. The restored variables are read-only after
// load, so concurrent calls are safe.
func (a *CheckpointAdapter) Infer(t *domain.ImageTensor) ([]float32, error) {
	act := &tensor.Tensor{
		Shape: []int{domain.InputHeight, domain.InputWidth, domain.InputChannels},
		Data:  t.Data,
	}

	var err error
	for _, b := range featureBlocks {
		act, err = tensor.Conv2D(act, a.vars[b.name+"/kernel"], a.vars[b.name+"/bias"].Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.name, err)
		}
		tensor.ReLU(act)
		act, err = tensor.MaxPool2(act)
		if err != nil {
			return nil, fmt.Errorf("%s pool: %w", b.name, err)
		}
	}

	pooled, err := tensor.GlobalAvgPool(act)
	if err != nil {
		return nil, err
	}
	logits, err := tensor.Dense(pooled, a.vars["dense/kernel"], a.vars["dense/bias"].Data)
	if err != nil {
		return nil, fmt.Errorf("dense head: %w", err)
	}
	return tensor.Softmax(logits), nil
}

// Labels returns the class labels in output order.
func (a *CheckpointAdapter) Labels() []string {
	return a.meta.Classes
}

// Normalization reports the input range the weights expect.
func (a *CheckpointAdapter) Normalization() domain.NormalizationMode {
	return a.meta.Normalization
}

// Close is a no-op; the adapter holds no native resources.
func (a *CheckpointAdapter) Close() error {
	return nil
}
