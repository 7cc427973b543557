package inference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

func writeMetadata(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, metadataFile), []byte(content), 0o644))
}

func TestLoadMetadata_AbsentFileUsesDefaults(t *testing.T) {
	meta, err := loadMetadata(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultClasses, meta.Classes)
	assert.Equal(t, domain.NormUnit, meta.Normalization)
}

func TestLoadMetadata_FullFile(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, `{"classes":["Malignant","Normal"],"normalization":"symmetric"}`)

	meta, err := loadMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Malignant", "Normal"}, meta.Classes)
	assert.Equal(t, domain.NormSymmetric, meta.Normalization)
}

func TestLoadMetadata_PartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, `{"classes":[]}`)

	meta, err := loadMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultClasses, meta.Classes)
	assert.Equal(t, domain.NormUnit, meta.Normalization)
}

func TestLoadMetadata_UnknownNormalizationRejected(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, `{"normalization":"zscore"}`)

	_, err := loadMetadata(dir)
	assert.Error(t, err)
}

func TestLoadMetadata_MalformedJSONRejected(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, `{"classes": [`)

	_, err := loadMetadata(dir)
	assert.Error(t, err)
}
