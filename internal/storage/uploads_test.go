package storage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestUploadStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewUploadStore(dir, testLogger())
	require.NoError(t, err)

	ref, err := store.Save("patient-1", pngBytes(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "patient-1_"))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	saved, err := os.ReadFile(store.Path(ref))
	require.NoError(t, err)
	assert.Equal(t, pngBytes(t), saved)

	require.NoError(t, store.Remove(ref))
	_, err = os.Stat(store.Path(ref))
	assert.True(t, os.IsNotExist(err))
}

func TestUploadStore_RemoveMissingIsNotAnError(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	assert.NoError(t, store.Remove("never-existed.png"))
}

func TestUploadStore_SanitizesPatientID(t *testing.T) {
	dir := t.TempDir()
	store, err := NewUploadStore(dir, testLogger())
	require.NoError(t, err)

	ref, err := store.Save("../../etc/passwd", pngBytes(t))
	require.NoError(t, err)

	assert.NotContains(t, ref, "/")
	assert.NotContains(t, ref, "..")
	// The file lands inside the store, nowhere else.
	assert.Equal(t, dir, filepath.Dir(store.Path(ref)))
}

func TestUploadStore_UnknownContentDefaultsToJPG(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	ref, err := store.Save("p1", []byte("opaque bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".jpg"))
}

func TestUploadStore_CreatesBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "uploads")
	_, err := NewUploadStore(base, testLogger())
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
