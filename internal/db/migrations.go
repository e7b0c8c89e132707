package db

import (
	"database/sql"
	_ "embed"
	"fmt"

	// _ import for sqlite driver registration
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// ApplyMigrations applies the embedded schema SQL to the database and
// performs lightweight post-creation migrations (adding new columns when needed).
func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if err := ensurePresetCommandColumns(db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// ensurePresetCommandColumns adds columns introduced after the first schema
// to databases created by older builds.
func ensurePresetCommandColumns(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(preset_commands)")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name string
		var ctype string
		var notnull int
		var dflt interface{}
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_ = rows.Close()

	added := []struct{ name, ddl string }{
		{"timeout_ms", "ALTER TABLE preset_commands ADD COLUMN timeout_ms INTEGER NOT NULL DEFAULT 0"},
		{"info_color", "ALTER TABLE preset_commands ADD COLUMN info_color TEXT"},
		{"error_color", "ALTER TABLE preset_commands ADD COLUMN error_color TEXT"},
		{"warning_color", "ALTER TABLE preset_commands ADD COLUMN warning_color TEXT"},
	}
	for _, c := range added {
		if cols[c.name] {
			continue
		}
		if _, err := db.Exec(c.ddl); err != nil {
			return err
		}
	}
	return nil
}
