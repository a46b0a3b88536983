// Package database provides database connection management and utilities.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// pingTimeout bounds the initial connectivity check.
const pingTimeout = 5 * time.Second

// ErrUnsupportedDriver is returned for any driver other than DriverPostgres and DriverMySQL.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config holds database configuration settings.
type Config struct {
	Driver             string
	ConnectionString   string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// UnsupportedDriver wraps ErrUnsupportedDriver with the offending driver name.
func UnsupportedDriver(driver string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
}

// CheckDriver returns an ErrUnsupportedDriver error unless driver is supported.
func CheckDriver(driver string) error {
	switch driver {
	case DriverPostgres, DriverMySQL:
		return nil
	default:
		return UnsupportedDriver(driver)
	}
}

// MigrationsDir names the directory under migrations/ holding driver's schema.
func MigrationsDir(driver string) string {
	if driver == DriverMySQL {
		return "mysql"
	}
	return "postgresql"
}

// Connect opens a pooled connection and verifies it with a ping.
func Connect(cfg Config) (*sql.DB, error) {
	if err := CheckDriver(cfg.Driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
