// Package service composes the preprocessor, the model engine and the
// record store into the classification and reporting workflows.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// PreprocessorFactory builds a preprocessor for the given normalization
// range. Injected so tests can substitute deterministic pipelines.
type PreprocessorFactory func(mode domain.NormalizationMode) domain.Preprocessor

// ClassifierService runs the classify and predict-and-save flows.
type ClassifierService struct {
	engine       domain.ModelEngine
	preprocessor PreprocessorFactory
	scans        domain.ScanRepository
	patients     domain.PatientRepository
	uploads      domain.UploadStore
	log          *logrus.Logger
}

// NewClassifierService wires the classification workflow.
func NewClassifierService(
	engine domain.ModelEngine,
	preprocessor PreprocessorFactory,
	scans domain.ScanRepository,
	patients domain.PatientRepository,
	uploads domain.UploadStore,
	logger *logrus.Logger,
) *ClassifierService {
	return &ClassifierService{
		engine:       engine,
		preprocessor: preprocessor,
		scans:        scans,
		patients:     patients,
		uploads:      uploads,
		log:          logger,
	}
}

// Classify runs raw image bytes through preprocessing and inference and maps
// the probability vector to a labeled result. Every failure is translated
// into exactly one taxonomy kind before it leaves this boundary.
func (s *ClassifierService) Classify(ctx context.Context, raw []byte) (*domain.ClassificationResult, error) {
	start := time.Now()

	adapter, err := s.engine.Adapter()
	if err != nil {
		return nil, err
	}

	pre := s.preprocessor(adapter.Normalization())
	t, err := pre.Preprocess(raw)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImage) {
			return nil, err
		}
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidImage)
	}

	probs, err := adapter.Infer(t)
	if err != nil {
		s.log.WithError(err).Error("Adapter call failed")
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInferenceFailure)
	}
	labels := adapter.Labels()
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("adapter produced %d probabilities for %d labels: %w",
			len(probs), len(labels), domain.ErrInferenceFailure)
	}

	result := buildResult(labels, probs)

	s.log.WithFields(logrus.Fields{
		"predicted_class": result.PredictedClass,
		"confidence":      result.Confidence,
		"risk_level":      result.RiskLevel,
		"elapsed":         time.Since(start),
	}).Info("Classification completed")

	return result, nil
}

// buildResult applies the tie-break policy (argmax, ties to the lowest class
// index) and derives the aggregate cancer probability and risk level.
func buildResult(labels []string, probs []float32) *domain.ClassificationResult {
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	probabilities := make(map[string]float32, len(labels))
	var cancer float32
	for i, label := range labels {
		probabilities[label] = probs[i]
		if label != domain.ClassNormal {
			cancer += probs[i]
		}
	}

	return &domain.ClassificationResult{
		PredictedClass:    labels[best],
		Confidence:        probs[best],
		Probabilities:     probabilities,
		CancerProbability: cancer,
		RiskLevel:         riskLevel(cancer),
	}
}

// riskLevel buckets the aggregate cancer probability.
func riskLevel(p float32) string {
	switch {
	case p < 0.3:
		return domain.RiskLow
	case p < 0.7:
		return domain.RiskModerate
	default:
		return domain.RiskHigh
	}
}

// ClassifyAndSave runs the predict-and-save flow: classify, store the image
// artifact, insert the scan record. The image and its record are written as
// a unit; if the insert fails the stored image is removed again so at most
// one persisted copy exists per accepted prediction.
func (s *ClassifierService) ClassifyAndSave(ctx context.Context, identity *domain.Identity, patientID string, raw []byte) (*domain.ScanRecord, *domain.ClassificationResult, error) {
	if _, err := s.patients.GetByID(ctx, identity.DoctorID, patientID); err != nil {
		return nil, nil, err
	}

	result, err := s.Classify(ctx, raw)
	if err != nil {
		return nil, nil, err
	}

	ref, err := s.uploads.Save(patientID, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("storing scan image: %v: %w", err, domain.ErrPersistenceFailure)
	}

	rec := &domain.ScanRecord{
		ID:             uuid.NewString(),
		PatientID:      patientID,
		DoctorID:       identity.DoctorID,
		Timestamp:      time.Now().UTC(),
		ImageReference: ref,
		Diagnosis:      result.PredictedClass,
		Confidence:     result.Confidence,
		Probabilities:  result.Probabilities,
	}

	if _, err := s.scans.Insert(ctx, rec); err != nil {
		if rmErr := s.uploads.Remove(ref); rmErr != nil {
			s.log.WithError(rmErr).WithField("ref", ref).Warn("Compensating image cleanup failed")
		}
		return nil, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"record_id":  rec.ID,
		"patient_id": patientID,
		"doctor_id":  identity.DoctorID,
		"diagnosis":  rec.Diagnosis,
	}).Info("Scan record saved")

	return rec, result, nil
}
