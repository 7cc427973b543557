// Package storage keeps accepted scan images on disk. The database row and
// the image file are written as a unit by the caller; Remove exists so a
// failed row insert can take its already-written image back out.
package storage

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadStore writes scan images under a base directory.
type UploadStore struct {
	dir string
	log *logrus.Logger
}

// NewUploadStore creates the base directory if needed.
func NewUploadStore(dir string, logger *logrus.Logger) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &UploadStore{dir: dir, log: logger}, nil
}

// Save writes the image and returns its reference (the relative file name).
func (s *UploadStore) Save(patientID string, raw []byte) (string, error) {
	name := fmt.Sprintf("%s_%s_%s%s",
		sanitize(patientID),
		time.Now().UTC().Format("20060102_150405"),
		uuid.NewString()[:8],
		extension(raw),
	)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("writing upload %s: %w", path, err)
	}

	s.log.WithFields(logrus.Fields{
		"file": name,
		"size": len(raw),
	}).Debug("Scan image stored")
	return name, nil
}

// Remove deletes a previously saved image. Used for compensating cleanup;
// an already-missing file is not an error.
func (s *UploadStore) Remove(ref string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload %s: %w", ref, err)
	}
	return nil
}

// Path resolves a reference to its absolute location.
func (s *UploadStore) Path(ref string) string {
	return filepath.Join(s.dir, filepath.Base(ref))
}

// extension sniffs the content type, defaulting to .jpg.
func extension(raw []byte) string {
	switch http.DetectContentType(raw) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// sanitize strips path-relevant characters out of an id used in a filename.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, id)
}
