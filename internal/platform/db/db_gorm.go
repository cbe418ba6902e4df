// Package db opens the gorm connection and runs schema migrations.
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	orgadapters "competitor_backend/internal/feature/organizations/adapters"
	updadapters "competitor_backend/internal/feature/updates/adapters"
	"competitor_backend/internal/platform/config"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultSQLiteDSN      = "competitor.db"
	defaultConnectTimeout = 60 * time.Second
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN returns the configured DSN, or assembles a postgres keyword/value DSN from the parts.
// InstanceName selects the Cloud SQL unix socket and takes precedence over Host/Port.
func BuildDSN(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.Driver == DriverSQLite {
		return defaultSQLiteDSN
	}
	parts := []string{}
	if cfg.InstanceName != "" {
		parts = append(parts, "host=/cloudsql/"+cfg.InstanceName)
	} else {
		parts = append(parts, "host="+cfg.Host)
		if cfg.Port != "" {
			parts = append(parts, "port="+cfg.Port)
		}
	}
	parts = append(parts,
		"user="+cfg.User,
		"password="+cfg.Password,
		"dbname="+cfg.Name,
		"sslmode=disable",
	)
	return strings.Join(parts, " ")
}

// NewOpener returns the Opener for the configured driver.
func NewOpener(driver string) (Opener, error) {
	gcfg := &gorm.Config{TranslateError: true}
	switch driver {
	case "", DriverPostgres:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), gcfg) }, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), gcfg) }, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "component", "db", "error", err)
		time.Sleep(retryInterval)
	}
}

// Open connects with retry and runs migrations when enabled. SQLite is always migrated.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	open, err := NewOpener(cfg.Driver)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, open)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// sqlite allows one writer at a time
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if cfg.RunMigrations || cfg.Driver == DriverSQLite {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates the organizations, updates and tracking_runs tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&orgadapters.OrganizationModel{},
		&updadapters.UpdateModel{},
		&updadapters.TrackingRunModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
