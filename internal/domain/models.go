package domain

import (
	"time"
)

// Tensor geometry expected by every supported model artifact.
const (
	InputHeight   = 224
	InputWidth    = 224
	InputChannels = 3
)

// NormalizationMode selects the numeric range the preprocessor produces.
// It is fixed per adapter instance and must match the range the loaded
// weights were trained with.
type NormalizationMode string

const (
	// NormUnit divides raw channel values by 255 into [0,1].
	NormUnit NormalizationMode = "unit"
	// NormSymmetric maps raw channel values into [-1,1].
	NormSymmetric NormalizationMode = "symmetric"
)

// ImageTensor is a single preprocessed image in NHWC layout,
// shape [1, InputHeight, InputWidth, InputChannels], float32.
type ImageTensor struct {
	Data []float32
}

// NewImageTensor allocates a zeroed tensor of the fixed input shape.
func NewImageTensor() *ImageTensor {
	return &ImageTensor{Data: make([]float32, InputHeight*InputWidth*InputChannels)}
}

// At returns the value at (row, col, channel) of the single batch element.
func (t *ImageTensor) At(y, x, c int) float32 {
	return t.Data[(y*InputWidth+x)*InputChannels+c]
}

// Set writes the value at (row, col, channel).
func (t *ImageTensor) Set(y, x, c int, v float32) {
	t.Data[(y*InputWidth+x)*InputChannels+c] = v
}

// ClassificationResult is the immutable outcome of one inference call.
type ClassificationResult struct {
	PredictedClass    string             `json:"predicted_class"`
	Confidence        float32            `json:"confidence"`
	Probabilities     map[string]float32 `json:"probabilities"`
	CancerProbability float32            `json:"cancer_probability"`
	RiskLevel         string             `json:"risk_level"`
}

// Risk levels derived from the aggregate cancer probability.
const (
	RiskLow      = "Low Risk"
	RiskModerate = "Moderate Risk"
	RiskHigh     = "High Risk"
)

// ClassNormal is the only non-cancerous class in the taxonomy. The full
// label ordering is a versioned property of each trained artifact, carried
// in the artifact's metadata, never hard-coded.
const ClassNormal = "Normal"

// ClassMalignant is the diagnosis counted by the detected-cases statistic.
const ClassMalignant = "Malignant"

// DefaultClasses is the label order assumed when an artifact ships without
// metadata.
var DefaultClasses = []string{"Normal", "Benign", "Malignant"}

// Identity is the resolved acting clinician. The core trusts it verbatim;
// token mechanics live behind the auth gate.
type Identity struct {
	DoctorID string `json:"doctor_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// Doctor is a registered clinician account.
type Doctor struct {
	ID             string    `bson:"_id" json:"id"`
	Email          string    `bson:"email" json:"email"`
	Name           string    `bson:"name" json:"name"`
	CredentialHash string    `bson:"credential_hash" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// Patient belongs to exactly one doctor; every read must filter by the
// owning doctor_id.
type Patient struct {
	ID             string    `bson:"_id" json:"id"`
	DoctorID       string    `bson:"doctor_id" json:"doctor_id"`
	Name           string    `bson:"name" json:"name"`
	Age            int       `bson:"age" json:"age"`
	Gender         string    `bson:"gender" json:"gender"`
	MedicalHistory string    `bson:"medical_history" json:"medical_history"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// ScanRecord is one persisted classification outcome. Never mutated after
// creation.
type ScanRecord struct {
	ID             string             `bson:"_id" json:"id"`
	PatientID      string             `bson:"patient_id" json:"patient_id"`
	DoctorID       string             `bson:"doctor_id" json:"doctor_id"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
	ImageReference string             `bson:"image_reference" json:"image_reference"`
	Diagnosis      string             `bson:"diagnosis" json:"diagnosis"`
	Confidence     float32            `bson:"confidence" json:"confidence"`
	Probabilities  map[string]float32 `bson:"probabilities" json:"probabilities"`
}

// Report is the persisted narrative generated for a scan outcome.
type Report struct {
	ID              string    `bson:"_id" json:"id"`
	DoctorID        string    `bson:"doctor_id" json:"doctor_id"`
	PatientName     string    `bson:"patient_name" json:"patient_name"`
	Age             int       `bson:"age" json:"age"`
	Gender          string    `bson:"gender" json:"gender"`
	ScanDate        time.Time `bson:"scan_date" json:"scan_date"`
	Prediction      string    `bson:"prediction" json:"prediction"`
	Probability     float32   `bson:"probability" json:"probability"`
	RiskLevel       string    `bson:"risk_level" json:"risk_level"`
	ReportDate      time.Time `bson:"report_date" json:"report_date"`
	DoctorNotes     []string  `bson:"doctor_notes" json:"doctor_notes"`
	Recommendations []string  `bson:"recommendations" json:"recommendations"`
}

// Trend is a period-over-period delta between two adjacent windows.
type Trend struct {
	DeltaPct   float64 `json:"delta_pct"`
	IsPositive bool    `json:"is_positive"`
}

// TrendStat pairs a current-window value with its trend.
type TrendStat struct {
	Value int64 `json:"value"`
	Trend Trend `json:"trend"`
}

// DashboardStats is the aggregate usage view computed at request time.
type DashboardStats struct {
	TotalScans     TrendStat `json:"total_scans"`
	DetectedCases  TrendStat `json:"detected_cases"`
	ActivePatients TrendStat `json:"active_patients"`
	SuccessRate    float64   `json:"success_rate"`
}
