// Package dbpkg provides helpers to make db initialization and testing easier.
package dbpkg

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Setup sets up connection with database.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// A single writer keeps SQLite away from "database is locked".
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS clients (
    tax_id     TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    birth_date DATE NOT NULL,
    address    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS accounts (
    number     INTEGER PRIMARY KEY,
    owner      TEXT NOT NULL REFERENCES clients (tax_id),
    branch     TEXT NOT NULL,
    kind       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS transactions (
    id             BIGSERIAL PRIMARY KEY,
    owner          TEXT NOT NULL REFERENCES clients (tax_id),
    account_number INTEGER NOT NULL REFERENCES accounts (number),
    amount         TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS transactions_account_idx ON transactions (owner, account_number);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS clients (
    tax_id     TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    birth_date DATE NOT NULL,
    address    TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS accounts (
    number     INTEGER PRIMARY KEY,
    owner      TEXT NOT NULL REFERENCES clients (tax_id),
    branch     TEXT NOT NULL,
    kind       TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS transactions (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    owner          TEXT NOT NULL REFERENCES clients (tax_id),
    account_number INTEGER NOT NULL REFERENCES accounts (number),
    amount         TEXT NOT NULL,
    created_at     TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS transactions_account_idx ON transactions (owner, account_number);
`

// Migrate creates the ledger tables when they do not exist yet.
func Migrate(ctx context.Context, db SQLInterface, driver string) error {
	var schema string

	switch driver {
	case DriverPostgres:
		schema = postgresSchema
	case DriverSQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("cannot create schema: %w", err)
	}

	return nil
}

// SetupTX sets up a migrated database transaction to be used in tests.
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := Setup(driver, source)
	if err != nil {
		t.Fatalf("Setup(%v, %v) failed: %v", driver, source, err)
	}

	if err := Migrate(context.Background(), db, driver); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}
