package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/yashankkothari/Lung-Cancer-Detection-Using-ML/internal/domain"
)

func TestFilterQuery_RequiresDoctorScope(t *testing.T) {
	_, err := filterQuery(domain.ScanFilter{})
	assert.ErrorIs(t, err, domain.ErrTenancyViolation)

	_, err = filterQuery(domain.ScanFilter{Diagnosis: "Malignant"})
	assert.ErrorIs(t, err, domain.ErrTenancyViolation)
}

func TestFilterQuery_DoctorOnly(t *testing.T) {
	q, err := filterQuery(domain.ScanFilter{DoctorID: "doc1"})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"doctor_id": "doc1"}, q)
}

func TestFilterQuery_Diagnosis(t *testing.T) {
	q, err := filterQuery(domain.ScanFilter{DoctorID: "doc1", Diagnosis: "Malignant"})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"doctor_id": "doc1", "diagnosis": "Malignant"}, q)
}

func TestFilterQuery_TimeWindow(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("half open window", func(t *testing.T) {
		q, err := filterQuery(domain.ScanFilter{DoctorID: "doc1", From: from, To: to})
		require.NoError(t, err)
		assert.Equal(t, bson.M{
			"doctor_id": "doc1",
			"timestamp": bson.M{"$gte": from, "$lt": to},
		}, q)
	})

	t.Run("open ended", func(t *testing.T) {
		q, err := filterQuery(domain.ScanFilter{DoctorID: "doc1", From: from})
		require.NoError(t, err)
		assert.Equal(t, bson.M{
			"doctor_id": "doc1",
			"timestamp": bson.M{"$gte": from},
		}, q)
	})
}

func TestFilterQuery_MinConfidenceIsStrict(t *testing.T) {
	q, err := filterQuery(domain.ScanFilter{DoctorID: "doc1", MinConfidence: 0.9})
	require.NoError(t, err)
	assert.Equal(t, bson.M{
		"doctor_id":  "doc1",
		"confidence": bson.M{"$gt": 0.9},
	}, q)
}

func TestFilterQuery_Combined(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	q, err := filterQuery(domain.ScanFilter{
		DoctorID:      "doc1",
		Diagnosis:     "Malignant",
		From:          from,
		MinConfidence: 0.5,
	})
	require.NoError(t, err)
	assert.Len(t, q, 4)
	assert.Equal(t, "doc1", q["doctor_id"])
}
