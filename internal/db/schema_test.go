package db

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestTriggersRejectEmptyAndDuplicateInserts(t *testing.T) {
	db, err := sql.Open("sqlite", "file:test_triggers?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if _, err := db.Exec("INSERT INTO presets (name, description, created_at) VALUES (?, ?, datetime('now'))", "   ", "x"); err == nil {
		t.Fatalf("expected insert with empty name to be rejected by trigger")
	}

	if _, err := db.Exec("INSERT INTO presets (name, description, created_at) VALUES (?, ?, datetime('now'))", "valid", "x"); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	if _, err := db.Exec("INSERT INTO presets (name, description, created_at) VALUES (?, ?, datetime('now'))", " valid ", "x"); err == nil {
		t.Fatalf("expected duplicate trimmed insert to be rejected by trigger")
	}
}

func TestRejectBlobNameInsert(t *testing.T) {
	db, err := sql.Open("sqlite", "file:test_blob?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := db.Exec("INSERT INTO presets (name, description, created_at) VALUES (?, ?, datetime('now'))", []byte{0xff, 0xfe}, "x"); err == nil {
		t.Fatalf("expected blob insert to be rejected by trigger")
	}
}

func TestRejectEmptyRunner(t *testing.T) {
	db, err := sql.Open("sqlite", "file:test_runner?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := ApplyMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	res, err := db.Exec("INSERT INTO presets (name, created_at) VALUES ('r', datetime('now'))")
	if err != nil {
		t.Fatalf("insert preset: %v", err)
	}
	id, _ := res.LastInsertId()
	if _, err := db.Exec("INSERT INTO preset_commands (preset_id, position, runner) VALUES (?, 1, ' ')", id); err == nil {
		t.Fatalf("expected empty runner to be rejected by trigger")
	}
}
