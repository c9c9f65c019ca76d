package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB returns a migrated database in a per-test temporary directory.
// It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "armoury.sqlite3"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := Migrate(database); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return database
}
