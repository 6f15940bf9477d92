package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HodeX7/KDJeevraksha/models"
)

func TestBuildCaseReport(t *testing.T) {
	svc := NewReportService(testConfig())

	userID := uint(1)
	surgery := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	dogs := []models.Dog{
		{
			CaseNumber:  "24-MAR-05-01",
			Status:      models.StatusOperated,
			MainColor:   "brown",
			Gender:      "male",
			Description: "limping on hind leg",
			DogImage:    "uploads/dog_image-abc.jpg",
			CatcherDetails: &models.Catcher{
				User:             &models.User{Name: "Ramesh", ContactNumber: "9876543210"},
				CatchingLocation: "Shivaji Nagar",
			},
			VetDetails: &models.Doctor{
				UserID:      &userID,
				User:        &models.User{Name: "Dr. Joshi", ContactNumber: "9876543211"},
				DogWeight:   14.5,
				SurgeryDate: &surgery,
				Procedure:   "spay",
			},
		},
		{
			CaseNumber: "24-MAR-05-02",
			Status:     models.StatusAdopted,
			MainColor:  "black",
		},
	}

	file, err := svc.BuildCaseReport(dogs)
	require.NoError(t, err)

	// Shared columns come first and hold the row values.
	caseHeader, err := file.GetCellValue("Dogs Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Case Number", caseHeader)

	firstCase, err := file.GetCellValue("Dogs Report", "A2")
	require.NoError(t, err)
	assert.Equal(t, "24-MAR-05-01", firstCase)

	secondCase, err := file.GetCellValue("Dogs Report", "A3")
	require.NoError(t, err)
	assert.Equal(t, "24-MAR-05-02", secondCase)

	rows, err := file.GetRows("Dogs Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Contains(t, rows[0], "Catcher's Name")
	assert.Contains(t, rows[0], "Procedure")
}

func TestBuildCaseReportEmpty(t *testing.T) {
	svc := NewReportService(testConfig())

	file, err := svc.BuildCaseReport(nil)
	require.NoError(t, err)

	rows, err := file.GetRows("Dogs Report")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
