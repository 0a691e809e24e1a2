package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/bugtracker-api/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens the gorm handle described by cfg and configures its pool.
// The handle is owned by the caller and shared by every repository.
func NewConnection(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL cannot be empty")
	}

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DatabaseDriver, err)
	}

	// Get and configure the underlying SQL DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	if cfg.DatabaseDriver == "sqlite" {
		// sqlite serialises writers; a single connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.WithField("driver", cfg.DatabaseDriver).Info("Connected to database")
	return db, nil
}

// OpenInMemory opens a private in-memory sqlite database with the schema migrated.
// Every call gets a fresh database.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(nil))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func gormConfig(log *logrus.Logger) *gorm.Config {
	gormLogger := logger.Discard
	if log != nil {
		gormLogger = logger.New(log, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		})
	}

	return &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		// Referential integrity is enforced by the cascade manager, not the schema
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}
