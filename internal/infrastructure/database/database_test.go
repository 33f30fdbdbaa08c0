package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// openTestDB opens a throwaway SQLite file under t.TempDir.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "journal.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}

func TestOpenCreatesFileAndDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history", "journal.db")

	db, err := Open(Config{Path: path, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil handle error = %v", err)
	}
}

func TestExecAndQueryRow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		CREATE TABLE device_log (
			id INTEGER PRIMARY KEY,
			device_id TEXT NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("ExecContext() CREATE error = %v", err)
	}

	result, err := db.ExecContext(ctx, "INSERT INTO device_log (device_id) VALUES (?)", "thermostat-1")
	if err != nil {
		t.Fatalf("ExecContext() INSERT error = %v", err)
	}
	if id, err := result.LastInsertId(); err != nil || id != 1 {
		t.Errorf("LastInsertId() = %v, %v", id, err)
	}

	var deviceID string
	err = db.QueryRowContext(ctx, "SELECT device_id FROM device_log WHERE id = 1").Scan(&deviceID)
	if err != nil || deviceID != "thermostat-1" {
		t.Errorf("QueryRowContext() = %q, %v", deviceID, err)
	}
}

func TestTransactions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE state_log (id INTEGER PRIMARY KEY, state TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}

	insert := func(state string) (commit bool, err error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return false, err
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO state_log (state) VALUES (?)", state); err != nil {
			return false, err
		}
		if state == "ready" {
			return true, tx.Commit()
		}
		return false, tx.Rollback()
	}

	if _, err := insert("ready"); err != nil {
		t.Fatalf("committed insert error = %v", err)
	}
	if _, err := insert("lost"); err != nil {
		t.Fatalf("rolled back insert error = %v", err)
	}

	var states []string
	rows, err := db.QueryContext(ctx, "SELECT state FROM state_log ORDER BY id")
	if err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("Scan error = %v", err)
		}
		states = append(states, s)
	}
	if len(states) != 1 || states[0] != "ready" {
		t.Errorf("state_log = %v, want only the committed row", states)
	}
}

func TestPoolIsSingleWriter(t *testing.T) {
	db := openTestDB(t)
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
}
