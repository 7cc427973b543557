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

// DoctorRepository manages clinician accounts in the doctors collection.
type DoctorRepository struct {
	db  *database.DB
	log *logrus.Logger
}

// NewDoctorRepository creates the doctor repository.
func NewDoctorRepository(db *database.DB, logger *logrus.Logger) *DoctorRepository {
	return &DoctorRepository{db: db, log: logger}
}

// Insert writes one doctor; a colliding email maps to ErrDuplicateEmail via
// the unique index.
func (r *DoctorRepository) Insert(ctx context.Context, d *domain.Doctor) (string, error) {
	_, err := r.db.Guard(func() (interface{}, error) {
		return r.db.Collection(database.CollectionDoctors).InsertOne(ctx, d)
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("doctor %s: %w", d.Email, domain.ErrDuplicateEmail)
		}
		r.log.WithFields(logrus.Fields{
			"email": d.Email,
			"error": err,
		}).Error("Failed to insert doctor")
		return "", fmt.Errorf("inserting doctor: %v: %w", err, domain.ErrPersistenceFailure)
	}

	r.log.WithFields(logrus.Fields{
		"doctor_id": d.ID,
		"email":     d.Email,
	}).Info("Doctor account created")
	return d.ID, nil
}

// GetByEmail looks an account up at login time.
func (r *DoctorRepository) GetByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID resolves the acting clinician for an authenticated request.
func (r *DoctorRepository) GetByID(ctx context.Context, id string) (*domain.Doctor, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *DoctorRepository) findOne(ctx context.Context, query bson.M) (*domain.Doctor, error) {
	result, err := r.db.Guard(func() (interface{}, error) {
		var d domain.Doctor
		if err := r.db.Collection(database.CollectionDoctors).FindOne(ctx, query).Decode(&d); err != nil {
			return nil, err
		}
		return &d, nil
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.log.WithError(err).Error("Failed to look up doctor")
		return nil, fmt.Errorf("looking up doctor: %v: %w", err, domain.ErrPersistenceFailure)
	}
	return result.(*domain.Doctor), nil
}
