package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/models"
)

// newTestDB opens an isolated in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Kennel{},
		&models.Catcher{},
		&models.Doctor{},
		&models.CareTaker{},
		&models.DailyMonitoring{},
		&models.Dog{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:    "3500",
		JWTSecretKey:  "test-secret",
		UploadDir:     "uploads",
		PublicBaseURL: "http://localhost:3500/",
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Name:          name,
		ContactNumber: name + "-" + string(role),
		Role:          role,
		IsActive:      true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func actorFor(user *models.User) *JWTClaims {
	return &JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
