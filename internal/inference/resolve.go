package inference

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// ArtifactKind identifies which serialized format an adapter wraps.
type ArtifactKind string

const (
	ArtifactGraph      ArtifactKind = "graph"
	ArtifactFlatBuffer ArtifactKind = "flatbuffer"
	ArtifactCheckpoint ArtifactKind = "checkpoint"
)

// resolvedArtifact is the outcome of scanning a model directory.
type resolvedArtifact struct {
	kind ArtifactKind
	path string // primary file: .onnx, .tflite, or the checkpoint .index
}

// ResolveArtifact scans dir for a usable model artifact. The same exported
// model directory can legitimately hold more than one format across export
// runs, so selection follows a fixed priority: serving graph, then
// flat-buffer, then checkpoint.
func ResolveArtifact(dir string) (ArtifactKind, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("reading model directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, ext := range []string{".onnx", ".tflite", ".index"} {
		for _, name := range names {
			if strings.EqualFold(filepath.Ext(name), ext) {
				kind := ArtifactGraph
				switch ext {
				case ".tflite":
					kind = ArtifactFlatBuffer
				case ".index":
					kind = ArtifactCheckpoint
				}
				return kind, filepath.Join(dir, name), nil
			}
		}
	}
	return "", "", fmt.Errorf("directory %s: %w", dir, domain.ErrNoUsableArtifact)
}

// OpenAdapter resolves the artifact in dir and constructs the matching
// adapter variant. The variant is fixed here, once; all subsequent calls go
// through the Adapter contract without re-inspection.
func OpenAdapter(dir string, logger *logrus.Logger) (domain.Adapter, error) {
	kind, path, err := ResolveArtifact(dir)
	if err != nil {
		return nil, err
	}

	meta, err := loadMetadata(dir)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"artifact": path,
		"kind":     kind,
		"classes":  meta.Classes,
		"norm":     meta.Normalization,
	}).Info("Model artifact resolved")

	switch kind {
	case ArtifactGraph:
		return newGraphAdapter(path, meta, logger)
	case ArtifactFlatBuffer:
		return newFlatBufferAdapter(path, meta, logger)
	default:
		return newCheckpointAdapter(path, meta, logger)
	}
}
