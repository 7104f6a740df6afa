package db

import (
	"path/filepath"
	"testing"
)

func TestOpenSqliteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.db")

	db, err := OpenSqlite(path)
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE t (x INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
}

func TestOpenSqliteMemory(t *testing.T) {
	db, err := OpenSqlite(":memory:")
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	defer db.Close()

	var one int
	if err := db.QueryRow(`SELECT 1`).Scan(&one); err != nil || one != 1 {
		t.Fatalf("select: %v %d", err, one)
	}
}
