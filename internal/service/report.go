package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// ReportService generates and persists diagnostic report content. PDF
// rendering happens in a downstream collaborator; this service owns the
// narrative only.
type ReportService struct {
	reports domain.ReportRepository
	log     *logrus.Logger
}

// NewReportService wires the report workflow.
func NewReportService(reports domain.ReportRepository, logger *logrus.Logger) *ReportService {
	return &ReportService{reports: reports, log: logger}
}

// ReportRequest carries the clinician-entered fields of a report.
type ReportRequest struct {
	PatientName string  `json:"patient_name" binding:"required"`
	Age         int     `json:"age" binding:"required"`
	Gender      string  `json:"gender" binding:"required"`
	Prediction  string  `json:"prediction" binding:"required"`
	Probability float32 `json:"probability"`
	RiskLevel   string  `json:"risk_level" binding:"required"`
}

// Generate builds the notes and recommendations for the request's risk
// level and persists the report under the acting doctor.
func (s *ReportService) Generate(ctx context.Context, identity *domain.Identity, req *ReportRequest) (*domain.Report, error) {
	now := time.Now().UTC()
	report := &domain.Report{
		ID:              uuid.NewString(),
		DoctorID:        identity.DoctorID,
		PatientName:     req.PatientName,
		Age:             req.Age,
		Gender:          req.Gender,
		ScanDate:        now,
		Prediction:      req.Prediction,
		Probability:     req.Probability,
		RiskLevel:       req.RiskLevel,
		ReportDate:      now,
		DoctorNotes:     doctorNotes(req.RiskLevel),
		Recommendations: recommendations(req.RiskLevel),
	}

	if _, err := s.reports.Insert(ctx, report); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"report_id": report.ID,
		"doctor_id": identity.DoctorID,
		"risk":      report.RiskLevel,
	}).Info("Report generated")

	return report, nil
}

// List returns the acting doctor's reports.
func (s *ReportService) List(ctx context.Context, identity *domain.Identity) ([]domain.Report, error) {
	return s.reports.ListByDoctor(ctx, identity.DoctorID)
}

// Get returns one report scoped to the acting doctor.
func (s *ReportService) Get(ctx context.Context, identity *domain.Identity, reportID string) (*domain.Report, error) {
	return s.reports.GetByID(ctx, identity.DoctorID, reportID)
}

func doctorNotes(riskLevel string) []string {
	switch riskLevel {
	case domain.RiskHigh:
		return []string{
			"High probability of lung cancer detected.",
			"Immediate consultation with an oncologist is recommended.",
			"Further diagnostic tests may be required.",
		}
	case domain.RiskModerate:
		return []string{
			"Moderate probability of lung cancer detected.",
			"Regular follow-up and monitoring recommended.",
			"Consider lifestyle changes and regular check-ups.",
		}
	default:
		return []string{
			"Low probability of lung cancer detected.",
			"Regular screening recommended for early detection.",
			"Maintain healthy lifestyle habits.",
		}
	}
}

func recommendations(riskLevel string) []string {
	switch riskLevel {
	case domain.RiskHigh:
		return []string{
			"Schedule an appointment with an oncologist immediately.",
			"Consider getting a biopsy for confirmation.",
			"Avoid smoking and exposure to secondhand smoke.",
			"Maintain a healthy diet and exercise routine.",
		}
	case domain.RiskModerate:
		return []string{
			"Schedule a follow-up scan in 3-6 months.",
			"Consult with a pulmonologist for further evaluation.",
			"Quit smoking if applicable.",
			"Monitor for any respiratory symptoms.",
		}
	default:
		return []string{
			"Regular annual screening recommended.",
			"Maintain a healthy lifestyle.",
			"Avoid exposure to environmental pollutants.",
			"Stay vigilant for any respiratory symptoms.",
		}
	}
}
