// Package db holds the embedded database schema.
package db

import "embed"

// MigrationFS holds the versioned Postgres migrations applied by cmd/migrate.
//
//go:embed migrations/postgres/*.sql
var MigrationFS embed.FS

// MigrationDir is the directory inside MigrationFS.
const MigrationDir = "migrations/postgres"

// SQLiteSchema is applied on open for local and test databases.
//
//go:embed migrations/sqlite.sql
var SQLiteSchema string
