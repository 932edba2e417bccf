package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/saferoads-vn/report-service/internal/config"
	"github.com/saferoads-vn/report-service/internal/models"
)

// InitDatabase opens the Postgres connection and migrates the schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(
		&models.User{},
		&models.ReportType{},
		&models.Report{},
		&models.PointRewardVersion{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// At most one reward version may be open. The partial unique index makes
	// the database enforce it even if two close-then-insert transactions race.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_point_reward_versions_open
		 ON point_reward_versions ((end_date IS NULL)) WHERE end_date IS NULL`,
	).Error; err != nil {
		return nil, fmt.Errorf("failed to create reward version index: %w", err)
	}

	return db, nil
}
