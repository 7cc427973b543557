package service

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// statsWindow is the trailing period each trend compares against its
// predecessor.
const statsWindow = 30 * 24 * time.Hour

// highConfidenceThreshold feeds the success-rate figure: the share of scans
// the model called with confidence above this bound.
const highConfidenceThreshold = 0.9

// StatsService computes the dashboard aggregates. Windows are anchored to
// the moment of the request, never cached; a concurrently in-flight write
// may be missed, which is an accepted eventually-consistent read.
type StatsService struct {
	scans domain.ScanRepository
	now   func() time.Time
	log   *logrus.Logger
}

// NewStatsService builds the stats service. nowFunc defaults to time.Now
// and exists for deterministic tests.
func NewStatsService(scans domain.ScanRepository, nowFunc func() time.Time, logger *logrus.Logger) *StatsService {
	if nowFunc == nil {
		nowFunc = time.Now
	}
	return &StatsService{scans: scans, now: nowFunc, log: logger}
}

// Trend computes the period-over-period delta between two adjacent window
// counts. A zero baseline returns {0, true}: a boundary policy avoiding
// division by zero, positive by convention rather than a true trend.
func Trend(prev, current int64) domain.Trend {
	if prev == 0 {
		return domain.Trend{DeltaPct: 0, IsPositive: true}
	}
	delta := float64(current-prev) / float64(prev) * 100
	return domain.Trend{
		DeltaPct:   math.Round(math.Abs(delta)*10) / 10,
		IsPositive: current-prev >= 0,
	}
}

// Dashboard computes total scan volume, malignant-diagnosis count and
// distinct active-patient count for the acting doctor, each with its trend
// over the trailing 30-day window versus the preceding one, plus the
// all-time success rate.
func (s *StatsService) Dashboard(ctx context.Context, doctorID string) (*domain.DashboardStats, error) {
	now := s.now().UTC()
	currentStart := now.Add(-statsWindow)
	prevStart := currentStart.Add(-statsWindow)

	current := domain.ScanFilter{DoctorID: doctorID, From: currentStart}
	previous := domain.ScanFilter{DoctorID: doctorID, From: prevStart, To: currentStart}

	totalAll, err := s.scans.CountMatching(ctx, domain.ScanFilter{DoctorID: doctorID})
	if err != nil {
		return nil, err
	}
	curScans, err := s.scans.CountMatching(ctx, current)
	if err != nil {
		return nil, err
	}
	prevScans, err := s.scans.CountMatching(ctx, previous)
	if err != nil {
		return nil, err
	}

	malignantAll := domain.ScanFilter{DoctorID: doctorID, Diagnosis: domain.ClassMalignant}
	detected, err := s.scans.CountMatching(ctx, malignantAll)
	if err != nil {
		return nil, err
	}
	curMalignant := current
	curMalignant.Diagnosis = domain.ClassMalignant
	prevMalignant := previous
	prevMalignant.Diagnosis = domain.ClassMalignant
	curCases, err := s.scans.CountMatching(ctx, curMalignant)
	if err != nil {
		return nil, err
	}
	prevCases, err := s.scans.CountMatching(ctx, prevMalignant)
	if err != nil {
		return nil, err
	}

	curActive, err := s.scans.DistinctPatients(ctx, current)
	if err != nil {
		return nil, err
	}
	prevActive, err := s.scans.DistinctPatients(ctx, previous)
	if err != nil {
		return nil, err
	}

	highConfidence, err := s.scans.CountMatching(ctx, domain.ScanFilter{
		DoctorID:      doctorID,
		MinConfidence: highConfidenceThreshold,
	})
	if err != nil {
		return nil, err
	}
	successRate := 0.0
	if totalAll > 0 {
		successRate = math.Round(float64(highConfidence)/float64(totalAll)*1000) / 10
	}

	stats := &domain.DashboardStats{
		TotalScans:     domain.TrendStat{Value: totalAll, Trend: Trend(prevScans, curScans)},
		DetectedCases:  domain.TrendStat{Value: detected, Trend: Trend(prevCases, curCases)},
		ActivePatients: domain.TrendStat{Value: int64(len(curActive)), Trend: Trend(int64(len(prevActive)), int64(len(curActive)))},
		SuccessRate:    successRate,
	}

	s.log.WithFields(logrus.Fields{
		"doctor_id":       doctorID,
		"total_scans":     stats.TotalScans.Value,
		"detected_cases":  stats.DetectedCases.Value,
		"active_patients": stats.ActivePatients.Value,
	}).Debug("Dashboard stats computed")

	return stats, nil
}
