package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestResolveArtifact_Priority(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected ArtifactKind
		chosen   string
	}{
		{"graph only", []string{"model.onnx"}, ArtifactGraph, "model.onnx"},
		{"flatbuffer only", []string{"model.tflite"}, ArtifactFlatBuffer, "model.tflite"},
		{"checkpoint only", []string{"model.index"}, ArtifactCheckpoint, "model.index"},
		{"graph beats flatbuffer", []string{"model.tflite", "model.onnx"}, ArtifactGraph, "model.onnx"},
		{"flatbuffer beats checkpoint", []string{"model.index", "model.tflite"}, ArtifactFlatBuffer, "model.tflite"},
		{"all three", []string{"model.index", "model.tflite", "model.onnx"}, ArtifactGraph, "model.onnx"},
		{"uppercase extension", []string{"MODEL.ONNX"}, ArtifactGraph, "MODEL.ONNX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}

			kind, path, err := ResolveArtifact(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
			assert.Equal(t, filepath.Join(dir, tt.chosen), path)
		})
	}
}

func TestResolveArtifact_NoUsableArtifact(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "weights.bin")
	touch(t, dir, "notes.txt")

	_, _, err := ResolveArtifact(dir)
	assert.ErrorIs(t, err, domain.ErrNoUsableArtifact)
}

func TestResolveArtifact_EmptyDir(t *testing.T) {
	_, _, err := ResolveArtifact(t.TempDir())
	assert.ErrorIs(t, err, domain.ErrNoUsableArtifact)
}

func TestResolveArtifact_MissingDir(t *testing.T) {
	_, _, err := ResolveArtifact(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestResolveArtifact_IgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive.onnx"), 0o755))
	touch(t, dir, "model.index")

	kind, _, err := ResolveArtifact(dir)
	require.NoError(t, err)
	assert.Equal(t, ArtifactCheckpoint, kind)
}
