package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// RecordsService owns the patient roster and scan history reads. Every
// operation is scoped to the acting doctor before it reaches the store.
type RecordsService struct {
	patients domain.PatientRepository
	scans    domain.ScanRepository
	log      *logrus.Logger
}

// NewRecordsService wires the record workflows.
func NewRecordsService(patients domain.PatientRepository, scans domain.ScanRepository, logger *logrus.Logger) *RecordsService {
	return &RecordsService{patients: patients, scans: scans, log: logger}
}

// PatientRequest carries the clinician-entered patient fields.
type PatientRequest struct {
	Name           string `json:"name" binding:"required"`
	Age            int    `json:"age" binding:"required"`
	Gender         string `json:"gender" binding:"required"`
	MedicalHistory string `json:"medical_history"`
}

// AddPatient registers a patient under the acting doctor.
func (s *RecordsService) AddPatient(ctx context.Context, identity *domain.Identity, req *PatientRequest) (*domain.Patient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("patient name is required: %w", domain.ErrInvalidInput)
	}
	if req.Age < 0 || req.Age > 150 {
		return nil, fmt.Errorf("implausible patient age %d: %w", req.Age, domain.ErrInvalidInput)
	}

	patient := &domain.Patient{
		ID:             uuid.NewString(),
		DoctorID:       identity.DoctorID,
		Name:           name,
		Age:            req.Age,
		Gender:         req.Gender,
		MedicalHistory: req.MedicalHistory,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.patients.Insert(ctx, patient); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"patient_id": patient.ID,
		"doctor_id":  identity.DoctorID,
	}).Info("Patient registered")
	return patient, nil
}

// ListPatients returns the acting doctor's roster.
func (s *RecordsService) ListPatients(ctx context.Context, identity *domain.Identity) ([]domain.Patient, error) {
	return s.patients.ListByDoctor(ctx, identity.DoctorID)
}

// GetPatient returns one patient scoped to the acting doctor. Another
// doctor's patient is indistinguishable from a missing one.
func (s *RecordsService) GetPatient(ctx context.Context, identity *domain.Identity, patientID string) (*domain.Patient, error) {
	return s.patients.GetByID(ctx, identity.DoctorID, patientID)
}

// ListScans returns the acting doctor's scan history.
func (s *RecordsService) ListScans(ctx context.Context, identity *domain.Identity, newestFirst bool) ([]domain.ScanRecord, error) {
	return s.scans.ListByDoctor(ctx, identity.DoctorID, newestFirst)
}

// PatientScans returns one patient's scan history, newest first, after
// confirming the patient belongs to the acting doctor.
func (s *RecordsService) PatientScans(ctx context.Context, identity *domain.Identity, patientID string) ([]domain.ScanRecord, error) {
	if _, err := s.patients.GetByID(ctx, identity.DoctorID, patientID); err != nil {
		return nil, err
	}
	return s.scans.ListByPatient(ctx, identity.DoctorID, patientID)
}
