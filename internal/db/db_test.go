package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMigrateIsIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range []string{"settings", "view_filters", "activity"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestOpenCreatesDirectoryAndAppliesPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "armoury.sqlite3")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	// Hold one connection so the query below needs a second one.
	conn, err := database.Conn(context.Background())
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer conn.Close()

	var fk int
	if err := database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("reading pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys on every connection, got %d", fk)
	}
}
