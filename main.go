// @title           JeevRaksha Rescue Case API
// @version         1.0
// @description     Stray dog rescue case management: capture, treatment, monitoring and release

// @contact.name   API Support

// @host      localhost:3500
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/HodeX7/KDJeevraksha/config"
	"github.com/HodeX7/KDJeevraksha/models"
	"github.com/HodeX7/KDJeevraksha/routes"
	"github.com/HodeX7/KDJeevraksha/utils"
)

func main() {
	if err := config.SetupLogger(); err != nil {
		fmt.Printf("failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		config.Warning("no .env file loaded: %v", err)
	} else {
		config.Info(".env file loaded")
	}

	cfg := config.GetConfig()

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := autoMigrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	ensureAdminExists(db, cfg)

	r := routes.SetupRouter(db, cfg)

	config.Info("server listening on http://localhost:%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		config.Error("failed to start server: %v", err)
		os.Exit(1)
	}
}

// initDB initializes the database connection
func initDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// Duplicate-key violations must surface as gorm.ErrDuplicatedKey so
		// intake can retry a colliding case number.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// autoMigrate migrates all models, adding new columns and tables only
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Kennel{},
		&models.Catcher{},
		&models.Doctor{},
		&models.CareTaker{},
		&models.DailyMonitoring{},
		&models.Dog{},
	)
}

// ensureAdminExists seeds a default admin account when none exists yet
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}

	hashed, err := utils.HashPassword(cfg.DefaultAdminPIN)
	if err != nil {
		log.Printf("failed to hash default admin PIN: %v", err)
		return
	}

	admin := models.User{
		Name:          "Admin",
		ContactNumber: cfg.DefaultAdminContact,
		Password:      hashed,
		IsActive:      true,
		Role:          models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("failed to create default admin account: %v", err)
		return
	}

	log.Printf("created default admin account (contact: %s)", cfg.DefaultAdminContact)
}
