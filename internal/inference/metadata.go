package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// Metadata describes a trained artifact. Class ordering differs between
// export runs of the same model, so it travels with the artifact instead of
// being hard-coded.
type Metadata struct {
	Classes       []string                 `json:"classes"`
	Normalization domain.NormalizationMode `json:"normalization"`
}

const metadataFile = "metadata.json"

// loadMetadata reads metadata.json from the artifact directory, falling back
// to the default taxonomy and unit normalization when the file is absent.
func loadMetadata(dir string) (Metadata, error) {
	meta := Metadata{
		Classes:       append([]string(nil), domain.DefaultClasses...),
		Normalization: domain.NormUnit,
	}

	raw, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if os.IsNotExist(err) {
		return meta, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("reading artifact metadata: %w", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parsing artifact metadata: %w", err)
	}

	if len(meta.Classes) == 0 {
		meta.Classes = append([]string(nil), domain.DefaultClasses...)
	}
	switch meta.Normalization {
	case domain.NormUnit, domain.NormSymmetric:
	case "":
		meta.Normalization = domain.NormUnit
	default:
		return Metadata{}, fmt.Errorf("unknown normalization mode %q", meta.Normalization)
	}
	return meta, nil
}
