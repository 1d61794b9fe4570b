// Package database owns the lifecycle of the GORM connection: it is opened
// once at startup, migrated, handed to the repositories and closed at
// shutdown.
package database

import (
	"embed"
	"fmt"
	"time"

	"taskapp/internal/models"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Config selects the driver and data source.
type Config struct {
	Driver string
	DSN    string
	// Silent disables GORM's statement logger.
	Silent bool
}

// Open connects to the configured database.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	gl := log.With().Str("component", "gorm").Logger()
	level := gormlogger.Warn
	if cfg.Silent {
		level = gormlogger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(&gl, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate brings the schema up to date. Postgres is managed by the embedded
// goose migrations; sqlite is auto-migrated from the models.
func Migrate(db *gorm.DB, driver string) error {
	if driver != DriverPostgres {
		if err := db.AutoMigrate(&models.User{}, &models.UserToken{}, &models.Task{}); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
