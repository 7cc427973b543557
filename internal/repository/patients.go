package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/database"
	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

// PatientRepository persists patients in the patients collection.
type PatientRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewPatientRepository creates the patient repository.
func NewPatientRepository(db *database.DB, logger *logrus.Logger) *PatientRepository {
	return &PatientRepository{db: db, log: logger}
}

// Insert writes one patient and returns its id.
func (r *PatientRepository) Insert(ctx context.Context, p *domain.Patient) (string, error) {
	if p.DoctorID == "" {
		return "", fmt.Errorf("patient without owner: %w", domain.ErrTenancyViolation)
	}

	_, err := r.db.Guard(func() (interface{}, error) {
		return r.db.Collection(database.CollectionPatients).InsertOne(ctx, p)
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": p.ID,
			"doctor_id":  p.DoctorID,
			"error":      err,
		}).Error("Failed to insert patient")
		return "", fmt.Errorf("inserting patient: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return p.ID, nil
}

// GetByID returns the patient only when owned by the given doctor; a
// foreign patient is indistinguishable from a missing one.
func (r *PatientRepository) GetByID(ctx context.Context, doctorID, patientID string) (*domain.Patient, error) {
	result, err := r.db.Guard(func() (interface{}, error) {
		var p domain.Patient
		err := r.db.Collection(database.CollectionPatients).
			FindOne(ctx, bson.M{"_id": patientID, "doctor_id": doctorID}).
			Decode(&p)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("patient %s: %w", patientID, domain.ErrNotFound)
		}
		r.log.WithError(err).Error("Failed to get patient")
		return nil, fmt.Errorf("getting patient: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return result.(*domain.Patient), nil
}

// ListByDoctor returns the doctor's patients.
func (r *PatientRepository) ListByDoctor(ctx context.Context, doctorID string) ([]domain.Patient, error) {
	if doctorID == "" {
		return nil, fmt.Errorf("patient list without doctor scope: %w", domain.ErrTenancyViolation)
	}

	result, err := r.db.Guard(func() (interface{}, error) {
		cursor, err := r.db.Collection(database.CollectionPatients).Find(ctx, bson.M{"doctor_id": doctorID})
		if err != nil {
			return nil, err
		}
		var patients []domain.Patient
		if err := cursor.All(ctx, &patients); err != nil {
			return nil, err
		}
		return patients, nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to list patients")
		return nil, fmt.Errorf("listing patients: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return result.([]domain.Patient), nil
}
