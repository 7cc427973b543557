package domain

import (
	"context"
	"time"
)

// Preprocessor turns raw upload bytes into a model-ready tensor.
type Preprocessor interface {
	Preprocess(raw []byte) (*ImageTensor, error)
}

// Adapter is the single calling convention every artifact format is
// normalized behind. The concrete variant is resolved once at load time;
// Infer is never re-dispatched per request.
type Adapter interface {
	// Infer runs the tensor through the model and returns the raw class
	// probability vector in the adapter's label order.
	Infer(t *ImageTensor) ([]float32, error)
	// Labels returns the class labels in output-vector order.
	Labels() []string
	// Normalization reports the input range the weights were trained with.
	Normalization() NormalizationMode
	Close() error
}

// ModelEngine owns the adapter lifecycle: load once at startup, health
// observable, reloadable, injectable for tests.
type ModelEngine interface {
	Load(dir string) error
	Adapter() (Adapter, error)
	Healthy() bool
	Degenerate() bool
	// Normalization reports the loaded artifact's expected input range so
	// the preprocessor stays consistent with the weights.
	Normalization() NormalizationMode
	Close() error
}

// Classifier composes preprocessing and inference into labeled results.
type Classifier interface {
	Classify(ctx context.Context, raw []byte) (*ClassificationResult, error)
}

// ScanRepository persists and queries doctor-scoped scan records.
type ScanRepository interface {
	Insert(ctx context.Context, rec *ScanRecord) (string, error)
	ListByDoctor(ctx context.Context, doctorID string, newestFirst bool) ([]ScanRecord, error)
	ListByPatient(ctx context.Context, doctorID, patientID string) ([]ScanRecord, error)
	CountMatching(ctx context.Context, f ScanFilter) (int64, error)
	DistinctPatients(ctx context.Context, f ScanFilter) ([]string, error)
}

// ScanFilter is the predicate primitive the trend engine builds on. Zero
// fields are omitted from the query; DoctorID is always required.
type ScanFilter struct {
	DoctorID      string
	Diagnosis     string
	From          time.Time
	To            time.Time
	MinConfidence float64
}

// PatientRepository persists and queries doctor-scoped patients.
type PatientRepository interface {
	Insert(ctx context.Context, p *Patient) (string, error)
	GetByID(ctx context.Context, doctorID, patientID string) (*Patient, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]Patient, error)
}

// DoctorRepository manages clinician accounts.
type DoctorRepository interface {
	Insert(ctx context.Context, d *Doctor) (string, error)
	GetByEmail(ctx context.Context, email string) (*Doctor, error)
	GetByID(ctx context.Context, id string) (*Doctor, error)
}

// ReportRepository persists doctor-scoped diagnostic reports.
type ReportRepository interface {
	Insert(ctx context.Context, r *Report) (string, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]Report, error)
	GetByID(ctx context.Context, doctorID, reportID string) (*Report, error)
}

// UploadStore keeps accepted scan images on disk. Remove exists for
// compensating cleanup when the paired database write fails.
type UploadStore interface {
	Save(patientID string, raw []byte) (string, error)
	Remove(ref string) error
}

// IdentityResolver validates bearer credentials and resolves the acting
// clinician.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}
