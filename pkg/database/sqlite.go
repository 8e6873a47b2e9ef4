package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

const memoryPath = ":memory:"

// NewSQLiteConnection opens (creating if needed) the SQLite database at path
// and applies schema. Use ":memory:" for a private in-memory database.
//
// The pool is limited to one connection: an in-memory database only exists
// on the connection that created it, and SQLite serializes writers anyway.
func NewSQLiteConnection(path, schema string) (*sql.DB, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := otelsql.Open("sqlite", sqliteDSN(path),
		otelsql.WithAttributes(semconv.DBSystemKey.String("sqlite")),
	)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if path != memoryPath {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if strings.TrimSpace(schema) != "" {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}
	return db, nil
}

func sqliteDSN(path string) string {
	// _time_format=sqlite stores timestamps as sortable text
	return path + "?_time_format=sqlite&_pragma=busy_timeout(5000)"
}
