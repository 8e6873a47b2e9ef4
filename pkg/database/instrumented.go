package database

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	_ "modernc.org/sqlite" // Register sqlite driver

	"timesheets.service/internal/config"
)

// Open returns an instrumented connection pool for the configured driver.
// SQLite databases get schema applied on open.
func Open(cfg config.Config, sqliteSchema string) (*sql.DB, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return NewSQLiteConnection(cfg.SQLitePath, sqliteSchema)
	case config.DriverPostgres:
		return NewInstrumentedConnection(cfg)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
}

// NewInstrumentedConnection creates a Postgres connection with OpenTelemetry instrumentation.
func NewInstrumentedConnection(cfg config.Config) (*sql.DB, error) {
	// otelsql.Open wraps the driver to intercept queries and create spans
	db, err := otelsql.Open("pgx", cfg.PostgresDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
