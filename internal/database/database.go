package database

import (
	"fmt"
	"log/slog"

	"github.com/yukikurage/task-tracker-api/internal/config"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a GORM handle for the configured driver.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// Connections are opened lazily so the API can start while the store
	// is unreachable.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logLevel(cfg.LogLevel)),
		TranslateError:       true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	slog.Info("Database handle opened", "driver", cfg.Driver)
	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.Open(cfg.URL), nil
	case "mysql":
		return mysql.New(mysql.Config{DSN: cfg.URL, SkipInitializeWithVersion: true}), nil
	case "postgres":
		return postgres.Open(cfg.URL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Migrate creates or updates the schema and the query indexes.
func Migrate(db *gorm.DB) error {
	slog.Info("Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return err
	}

	slog.Info("Database migrations completed")
	return nil
}
