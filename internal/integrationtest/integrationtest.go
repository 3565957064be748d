// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/bankservice"
	"github.com/go-petr/pet-ledger/internal/clientrepo"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// SQLiteSource returns a data source name for a fresh SQLite file that is
// removed after the test.
func SQLiteSource(t *testing.T) string {
	t.Helper()

	return fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(t.TempDir(), "ledger.db"))
}

// Flush deletes all ledger rows without dropping the tables.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	for _, table := range []string{"transactions", "accounts", "clients"} {
		if _, err := db.Exec(`DELETE FROM ` + table); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	}
}

// SetupDB sets up a migrated database for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	if err := dbpkg.Migrate(context.Background(), db, driver); err != nil {
		t.Fatalf("db migration failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}

// Repos returns the bank service repositories backed by db.
func Repos(db dbpkg.SQLInterface) bankservice.Repos {
	return bankservice.Repos{
		Clients:      clientrepo.NewRepo(db),
		Accounts:     accountrepo.NewRepo(db),
		Transactions: transactionrepo.NewRepo(db),
	}
}
