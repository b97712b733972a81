package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studio-booking-backend/config"
	"studio-booking-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
//
// Foreign key constraints are intentionally not created: bookings keep a
// weak reference to their slot, which may be deleted independently.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate creates or updates the schema, including the
// (studio_id, start_at, end_at) uniqueness constraint on slots that the
// conflict-ignoring materializer insert relies on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Studio{},
		&model.AvailabilityRule{},
		&model.Slot{},
		&model.Booking{},
		&model.PushSubscription{},
	)
}
