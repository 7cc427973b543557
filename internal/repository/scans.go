// Package repository implements the doctor-scoped record store over the
// document store. Every query carries the owning doctor_id; an unscoped
// patient lookup is a tenancy violation and is never exposed.
package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/database"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// ScanRepository persists scan records in the scans collection.
type ScanRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewScanRepository creates the scan repository.
func NewScanRepository(db *database.DB, logger *logrus.Logger) *ScanRepository {
	return &ScanRepository{db: db, log: logger}
}

// filterQuery translates a ScanFilter into a document-store predicate. The
// doctor filter is unconditional: a missing doctor id never widens a query,
// it fails it.
func filterQuery(f domain.ScanFilter) (bson.M, error) {
	if f.DoctorID == "" {
		return nil, fmt.Errorf("scan filter without doctor scope: %w", domain.ErrTenancyViolation)
	}
	q := bson.M{"doctor_id": f.DoctorID}
	if f.Diagnosis != "" {
		q["diagnosis"] = f.Diagnosis
	}
	if !f.From.IsZero() || !f.To.IsZero() {
		window := bson.M{}
		if !f.From.IsZero() {
			window["$gte"] = f.From
		}
		if !f.To.IsZero() {
			window["$lt"] = f.To
		}
		q["timestamp"] = window
	}
	if f.MinConfidence > 0 {
		q["confidence"] = bson.M{"$gt": f.MinConfidence}
	}
	return q, nil
}

// Insert writes one scan record and returns its id.
func (r *ScanRepository) Insert(ctx context.Context, rec *domain.ScanRecord) (string, error) {
	if rec.DoctorID == "" {
		return "", fmt.Errorf("scan record without owner: %w", domain.ErrTenancyViolation)
	}

	_, err := r.db.Guard(func() (interface{}, error) {
		return r.db.Collection(database.CollectionScans).InsertOne(ctx, rec)
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"record_id": rec.ID,
			"doctor_id": rec.DoctorID,
			"error":     err,
		}).Error("Failed to insert scan record")
		return "", fmt.Errorf("inserting scan record: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return rec.ID, nil
}

// ListByDoctor returns every scan owned by the doctor, newest first when
// requested.
func (r *ScanRepository) ListByDoctor(ctx context.Context, doctorID string, newestFirst bool) ([]domain.ScanRecord, error) {
	query, err := filterQuery(domain.ScanFilter{DoctorID: doctorID})
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if newestFirst {
		opts.SetSort(bson.D{{Key: "timestamp", Value: -1}})
	}

	return r.findScans(ctx, query, opts)
}

// ListByPatient returns the patient's scans filtered to both identifiers.
func (r *ScanRepository) ListByPatient(ctx context.Context, doctorID, patientID string) ([]domain.ScanRecord, error) {
	query, err := filterQuery(domain.ScanFilter{DoctorID: doctorID})
	if err != nil {
		return nil, err
	}
	if patientID == "" {
		return nil, fmt.Errorf("empty patient id: %w", domain.ErrNotFound)
	}
	query["patient_id"] = patientID

	return r.findScans(ctx, query, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
}

func (r *ScanRepository) findScans(ctx context.Context, query bson.M, opts *options.FindOptions) ([]domain.ScanRecord, error) {
	result, err := r.db.Guard(func() (interface{}, error) {
		cursor, err := r.db.Collection(database.CollectionScans).Find(ctx, query, opts)
		if err != nil {
			return nil, err
		}
		var records []domain.ScanRecord
		if err := cursor.All(ctx, &records); err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to query scan records")
		return nil, fmt.Errorf("querying scan records: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return result.([]domain.ScanRecord), nil
}

// CountMatching is the aggregate primitive the trend engine builds on.
func (r *ScanRepository) CountMatching(ctx context.Context, f domain.ScanFilter) (int64, error) {
	query, err := filterQuery(f)
	if err != nil {
		return 0, err
	}

	result, err := r.db.Guard(func() (interface{}, error) {
		return r.db.Collection(database.CollectionScans).CountDocuments(ctx, query)
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to count scan records")
		return 0, fmt.Errorf("counting scan records: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return result.(int64), nil
}

// DistinctPatients returns the distinct patient ids with scans matching the
// filter.
func (r *ScanRepository) DistinctPatients(ctx context.Context, f domain.ScanFilter) ([]string, error) {
	query, err := filterQuery(f)
	if err != nil {
		return nil, err
	}

	result, err := r.db.Guard(func() (interface{}, error) {
		return r.db.Collection(database.CollectionScans).Distinct(ctx, "patient_id", query)
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to list distinct patients")
		return nil, fmt.Errorf("listing distinct patients: %v: %w", err, domain.ErrPersistenceFailure)
	}

	raw := result.([]interface{})
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}
