// Package database manages the service's SQL connection and cross-driver
// query compatibility. MySQL and PostgreSQL are supported in production;
// SQLite backs the repository test suites.
package database

import (
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tommy01-cpu/aspac-ithelpdesk-sub001/internal/config"
)

var (
	mu     sync.RWMutex
	db     *sqlx.DB
	driver = "mysql"
)

// Open connects to the configured database and installs it as the shared
// connection. The pool limits mirror the config values.
func Open(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	conn, err := sqlx.Connect(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Driver, err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	Set(conn, cfg.Driver)
	return conn, nil
}

// Set installs a connection and driver name, replacing any previous one.
// Tests use this to point the package at an in-memory SQLite database.
func Set(conn *sqlx.DB, driverName string) {
	mu.Lock()
	defer mu.Unlock()
	db = conn
	if driverName != "" {
		driver = driverName
	}
}

// Get returns the shared connection.
func Get() (*sqlx.DB, error) {
	mu.RLock()
	defer mu.RUnlock()
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return db, nil
}

// Driver returns the active driver name.
func Driver() string {
	mu.RLock()
	defer mu.RUnlock()
	return driver
}

// IsPostgreSQL reports whether the active driver is postgres.
func IsPostgreSQL() bool {
	return Driver() == "postgres"
}

// ConvertPlaceholders rewrites ? placeholders to the form the active driver
// expects. Queries must be written with ? only; MySQL and SQLite take them
// as-is, PostgreSQL gets $1, $2, ...
func ConvertPlaceholders(query string) string {
	if !IsPostgreSQL() {
		return query
	}
	return sqlx.Rebind(sqlx.DOLLAR, query)
}
