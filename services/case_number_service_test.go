package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/HodeX7/KDJeevraksha/internal/error/code"
	"github.com/HodeX7/KDJeevraksha/models"
)

func newCaseNumberService(db *gorm.DB, now time.Time) *CaseNumberService {
	return &CaseNumberService{DB: db, Now: fixedClock(now)}
}

func createDogWithNumber(t *testing.T, db *gorm.DB, caseNumber string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Dog{
		CaseNumber: caseNumber,
		Status:     models.StatusAdopted,
	}).Error)
}

func TestCaseNumberFormat(t *testing.T) {
	db := newTestDB(t)
	svc := newCaseNumberService(db, time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))

	number, err := svc.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "24-MAR-05-01", number)
}

func TestCaseNumberSequenceAdvances(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	svc := newCaseNumberService(db, now)

	first, err := svc.Generate(nil)
	require.NoError(t, err)
	createDogWithNumber(t, db, first)

	second, err := svc.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "24-MAR-05-02", second)
}

func TestCaseNumberSequenceResetsPerDay(t *testing.T) {
	db := newTestDB(t)
	createDogWithNumber(t, db, "24-MAR-05-01")
	createDogWithNumber(t, db, "24-MAR-05-02")

	svc := newCaseNumberService(db, time.Date(2024, time.March, 6, 0, 0, 1, 0, time.UTC))
	number, err := svc.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "24-MAR-06-01", number)
}

func TestCaseNumberSkipsCollisions(t *testing.T) {
	db := newTestDB(t)
	// One case counted for today, but the next slot is already taken.
	createDogWithNumber(t, db, "24-MAR-05-02")

	svc := newCaseNumberService(db, time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))
	number, err := svc.Generate(nil)
	require.NoError(t, err)
	assert.Equal(t, "24-MAR-05-03", number)
}

func TestCaseNumberExhausted(t *testing.T) {
	db := newTestDB(t)
	svc := newCaseNumberService(db, time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC))

	for seq := 1; seq <= 99; seq++ {
		number, err := svc.Generate(nil)
		require.NoError(t, err)
		createDogWithNumber(t, db, number)
	}

	_, err := svc.Generate(nil)
	require.Error(t, err)
	assert.True(t, code.Is(err, code.ErrCaseNumberExhausted))
}
