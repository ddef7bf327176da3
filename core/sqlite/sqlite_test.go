package sqlite

import (
	"path/filepath"
	"testing"
)

func TestDriverInfo(t *testing.T) {
	info := GetInfo()

	if info.DriverName == "" || info.DriverType == "" || info.Package == "" {
		t.Errorf("incomplete driver info: %+v", info)
	}
	if info.DriverName != DriverName() {
		t.Errorf("DriverName mismatch: info=%s, func=%s", info.DriverName, DriverName())
	}
	if info.IsCGO != IsCGO() {
		t.Errorf("IsCGO mismatch: info=%v, func=%v", info.IsCGO, IsCGO())
	}

	t.Logf("SQLite driver: %s (%s) from %s", info.DriverName, info.DriverType, info.Package)
}

func TestDriverTypeConsistency(t *testing.T) {
	switch DriverType() {
	case "purego":
		if IsCGO() || DriverName() != "sqlite" {
			t.Errorf("purego driver: IsCGO=%v name=%q", IsCGO(), DriverName())
		}
	case "cgo":
		if !IsCGO() || DriverName() != "sqlite3" {
			t.Errorf("cgo driver: IsCGO=%v name=%q", IsCGO(), DriverName())
		}
	default:
		t.Errorf("unknown driver type: %s", DriverType())
	}
}

func TestOpen(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "lookup.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE glosses (key TEXT PRIMARY KEY, gloss TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO glosses VALUES (?, ?)`, "lugal", "king"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var gloss string
	if err := db.QueryRow(`SELECT gloss FROM glosses WHERE key = ?`, "lugal").Scan(&gloss); err != nil {
		t.Fatalf("query: %v", err)
	}
	if gloss != "king" {
		t.Errorf("gloss = %q, want king", gloss)
	}

	var timeout int
	if err := db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if timeout != BusyTimeoutMillis {
		t.Errorf("busy_timeout = %d, want %d", timeout, BusyTimeoutMillis)
	}
}

func TestOpenReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE glosses (key TEXT PRIMARY KEY, gloss TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO glosses VALUES ('e2', 'house')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	ro, err := OpenReadOnly(path)
	if err != nil {
		t.Fatalf("OpenReadOnly() error = %v", err)
	}
	defer ro.Close()

	var gloss string
	if err := ro.QueryRow(`SELECT gloss FROM glosses WHERE key = 'e2'`).Scan(&gloss); err != nil {
		t.Fatalf("query: %v", err)
	}
	if gloss != "house" {
		t.Errorf("gloss = %q, want house", gloss)
	}

	if _, err := ro.Exec(`INSERT INTO glosses VALUES ('gal', 'big')`); err == nil {
		t.Error("insert on read-only database succeeded")
	}
}

func TestReadOnlyDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"/tmp/a.db", "file:/tmp/a.db?mode=ro"},
		{"file:/tmp/a.db", "file:/tmp/a.db?mode=ro"},
		{"file:/tmp/a.db?cache=shared", "file:/tmp/a.db?cache=shared&mode=ro"},
	}
	for _, tt := range tests {
		if got := readOnlyDSN(tt.in); got != tt.want {
			t.Errorf("readOnlyDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMustOpen(t *testing.T) {
	db := MustOpen(filepath.Join(t.TempDir(), "must.db"))
	db.Close()
}
