// Package sqlite opens the lookup database with either the pure Go
// (modernc.org/sqlite) or the CGO (mattn/go-sqlite3) driver.
//
// Build modes:
//   - Default: pure Go modernc.org/sqlite, registered as "sqlite"
//   - CGO_ENABLED=1 -tags cgo_sqlite: mattn/go-sqlite3, registered as "sqlite3"
//
// Use Open() instead of sql.Open() so the driver matching the build is used.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// BusyTimeoutMillis is applied to every connection opened by Open.
const BusyTimeoutMillis = 5000

// DriverName returns the SQL driver name registered by the active build.
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

// Open opens a SQLite database using the build's driver. The pool is limited
// to one connection so per-connection pragmas hold for every query.
func Open(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(context.Background(), fmt.Sprintf("PRAGMA busy_timeout = %d", BusyTimeoutMillis)); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: configure %s: %w", dataSourceName, err)
	}
	return db, nil
}

// OpenReadOnly opens an existing SQLite database in read-only mode.
func OpenReadOnly(path string) (*sql.DB, error) {
	return Open(readOnlyDSN(path))
}

// readOnlyDSN builds a URI filename; both drivers only honor mode=ro on
// "file:" names.
func readOnlyDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		if strings.Contains(path, "?") {
			return path + "&mode=ro"
		}
		return path + "?mode=ro"
	}
	return "file:" + path + "?mode=ro"
}

// MustOpen opens a SQLite database and panics on error.
// Intended for tests and initialization where failure is unrecoverable.
func MustOpen(dataSourceName string) *sql.DB {
	db, err := Open(dataSourceName)
	if err != nil {
		panic(fmt.Sprintf("sqlite: failed to open %s: %v", dataSourceName, err))
	}
	return db
}

// Info contains information about the SQLite driver configuration.
type Info struct {
	DriverName string `json:"driver_name"`
	DriverType string `json:"driver_type"`
	IsCGO      bool   `json:"is_cgo"`
	Package    string `json:"package"`
}

// GetInfo returns information about the current SQLite configuration.
func GetInfo() Info {
	return Info{
		DriverName: driverName,
		DriverType: driverType,
		IsCGO:      IsCGO(),
		Package:    driverPackage,
	}
}
