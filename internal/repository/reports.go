package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/database"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// ReportRepository persists diagnostic reports in the reports collection.
type ReportRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewReportRepository creates the report repository.
func NewReportRepository(db *database.DB, logger *logrus.Logger) *ReportRepository {
	return &ReportRepository{db: db, log: logger}
}

// Insert writes one report and returns its id.
func (r *ReportRepository) Insert(ctx context.Context, report *domain.Report) (string, error) {
	if report.DoctorID == "" {
		return "", fmt.Errorf("report without owner: %w", domain.ErrTenancyViolation)
	}

	_, err := r.db.Guard(func() (interface{}, error) {
		return r.db.Collection(database.CollectionReports).InsertOne(ctx, report)
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id": report.ID,
			"doctor_id": report.DoctorID,
			"error":     err,
		}).Error("Failed to insert report")
		return "", fmt.Errorf("inserting report: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return report.ID, nil
}

// ListByDoctor returns the doctor's reports, newest first.
func (r *ReportRepository) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Report, error) {
	if doctorID == "" {
		return nil, fmt.Errorf("report list without doctor scope: %w", domain.ErrTenancyViolation)
	}

	result, err := r.db.Guard(func() (interface{}, error) {
		cursor, err := r.db.Collection(database.CollectionReports).Find(ctx,
			bson.M{"doctor_id": doctorID},
			options.Find().SetSort(bson.D{{Key: "report_date", Value: -1}}))
		if err != nil {
			return nil, err
		}
		var reports []domain.Report
		if err := cursor.All(ctx, &reports); err != nil {
			return nil, err
		}
		return reports, nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to list reports")
		return nil, fmt.Errorf("listing reports: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return result.([]domain.Report), nil
}

// GetByID returns one report scoped to its owning doctor.
func (r *ReportRepository) GetByID(ctx context.Context, doctorID, reportID string) (*domain.Report, error) {
	result, err := r.db.Guard(func() (interface{}, error) {
		var report domain.Report
		err := r.db.Collection(database.CollectionReports).
			FindOne(ctx, bson.M{"_id": reportID, "doctor_id": doctorID}).
			Decode(&report)
		if err != nil {
			return nil, err
		}
		return &report, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("report %s: %w", reportID, domain.ErrNotFound)
		}
		r.log.WithError(err).Error("Failed to get report")
		return nil, fmt.Errorf("getting report: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return result.(*domain.Report), nil
}
