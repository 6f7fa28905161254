package sqlite

import (
	"path/filepath"
	"testing"
)

func TestDriverTypeConsistency(t *testing.T) {
	info := GetInfo()
	if info.DriverName != DriverName() || info.DriverType != DriverType() {
		t.Errorf("GetInfo() = %+v, inconsistent with DriverName/DriverType", info)
	}

	switch DriverType() {
	case "purego":
		if IsCGO() {
			t.Error("IsCGO() should be false for purego driver")
		}
		if DriverName() != "sqlite" {
			t.Errorf("purego driver should use 'sqlite' name, got '%s'", DriverName())
		}
	case "cgo":
		if !IsCGO() {
			t.Error("IsCGO() should be true for cgo driver")
		}
		if DriverName() != "sqlite3" {
			t.Errorf("cgo driver should use 'sqlite3' name, got '%s'", DriverName())
		}
	default:
		t.Errorf("unknown driver type: %s", DriverType())
	}
}

func TestOpenAndReadBack(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE chapters (book TEXT PRIMARY KEY, verses INTEGER)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO chapters VALUES (?, ?)`, "gen", 31); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	var timeout int
	if err := db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("failed to read busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %d, want 1", got)
	}
	db.Close()

	rodb, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatalf("failed to open read-only: %v", err)
	}
	defer rodb.Close()

	var verses int
	if err := rodb.QueryRow(`SELECT verses FROM chapters WHERE book = ?`, "gen").Scan(&verses); err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if verses != 31 {
		t.Errorf("verses = %d, want 31", verses)
	}
	if _, err := rodb.Exec(`INSERT INTO chapters VALUES ('exo', 22)`); err == nil {
		t.Error("write through read-only handle should fail")
	}
}
