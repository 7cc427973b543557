package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

func TestRecordsService_AddPatient(t *testing.T) {
	patients := &fakePatients{}
	svc := NewRecordsService(patients, &statsFakeScans{}, testLogger())
	identity := &domain.Identity{DoctorID: "doc1"}

	patient, err := svc.AddPatient(context.Background(), identity, &PatientRequest{
		Name: "  Jane Roe ", Age: 54, Gender: "F", MedicalHistory: "smoker",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, patient.ID)
	assert.Equal(t, "doc1", patient.DoctorID)
	assert.Equal(t, "Jane Roe", patient.Name)
	assert.False(t, patient.CreatedAt.IsZero())
}

func TestRecordsService_AddPatient_Validation(t *testing.T) {
	svc := NewRecordsService(&fakePatients{}, &statsFakeScans{}, testLogger())
	identity := &domain.Identity{DoctorID: "doc1"}

	_, err := svc.AddPatient(context.Background(), identity, &PatientRequest{Name: "   ", Age: 30})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddPatient(context.Background(), identity, &PatientRequest{Name: "Jane", Age: 400})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordsService_PatientScans_ScopedToOwner(t *testing.T) {
	patients := &fakePatients{patients: map[string]domain.Patient{
		"p1": {ID: "p1", DoctorID: "doc1"},
	}}
	scans := &statsFakeScans{records: []domain.ScanRecord{
		{ID: "s1", DoctorID: "doc1", PatientID: "p1"},
		{ID: "s2", DoctorID: "doc2", PatientID: "p1"},
	}}
	svc := NewRecordsService(patients, scans, testLogger())

	got, err := svc.PatientScans(context.Background(), &domain.Identity{DoctorID: "doc1"}, "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID)

	// Another doctor sees the patient as missing, not forbidden.
	_, err = svc.PatientScans(context.Background(), &domain.Identity{DoctorID: "doc2"}, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
