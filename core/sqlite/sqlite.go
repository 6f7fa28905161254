// Package sqlite selects the SQLite driver for the fetch ledger.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite, driver name "sqlite"
//   - -tags cgo_sqlite (CGO_ENABLED=1): mattn/go-sqlite3, driver name "sqlite3"
//
// Use Open() instead of sql.Open() so the right driver name is used.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// DriverName returns the database/sql driver name for this build.
func DriverName() string {
	return driverName
}

// DriverType returns "cgo" for mattn/go-sqlite3 and "purego" for modernc.org/sqlite.
func DriverType() string {
	return driverType
}

// IsCGO returns true if the CGO implementation is being used.
func IsCGO() bool {
	return driverType == "cgo"
}

// Open opens a read-write database limited to a single connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	return db, nil
}

// OpenReadOnly opens a database in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return sql.Open(driverName, "file:"+path+"?mode=ro")
}

// Info describes the SQLite driver compiled into this binary.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	Package    string `json:"package"`
}

// GetInfo returns information about the current SQLite configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		Package:    driverPackage,
	}
}
