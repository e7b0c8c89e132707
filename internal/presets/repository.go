package presets

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/VoxDroid/waex/internal/command"
)

// Repository provides CRUD operations for presets and their commands.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository using db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Close closes the underlying DB connection used by the Repository.
func (r *Repository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create inserts a new preset with its commands and returns its ID.
func (r *Repository) Create(name string, description *string, specs []command.Spec) (int64, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	for i, s := range specs {
		if strings.TrimSpace(s.Runner) == "" {
			return 0, &command.ConfigError{Position: i, Field: "runner", Reason: "must be non-empty"}
		}
	}

	trx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = trx.Rollback() }()

	// the NOT EXISTS guard keeps the uniqueness check inside the DB engine
	res, err := trx.Exec(`INSERT INTO presets (name, description, created_at)
			SELECT ?, ?, datetime('now')
			WHERE NOT EXISTS(SELECT 1 FROM presets WHERE TRIM(name) = ?)`, name, description, name)
	if err != nil {
		return 0, fmt.Errorf("insert preset: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, fmt.Errorf("name %q already in use", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := insertCommandsTx(trx, id, specs); err != nil {
		return 0, err
	}
	if err := trx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertCommandsTx(trx *sql.Tx, presetID int64, specs []command.Spec) error {
	for i, s := range specs {
		_, err := trx.Exec(`INSERT INTO preset_commands
			(preset_id, position, runner, args, label, color, info_color, error_color, warning_color, cmd_key, req_path, timeout_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			presetID, i+1, s.Runner, shellquote.Join(s.Args...),
			nullable(s.Label), nullable(s.Color), nullable(s.InfoColor), nullable(s.ErrorColor), nullable(s.WarningColor),
			nullable(s.Key), s.ReqPath, s.Timeout.Milliseconds())
		if err != nil {
			return fmt.Errorf("insert preset command: %w", err)
		}
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ReplaceCommands swaps every command of the named preset for specs.
func (r *Repository) ReplaceCommands(name string, specs []command.Spec) error {
	trx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()

	var id int64
	if err := trx.QueryRow("SELECT id FROM presets WHERE name = ?", name).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("preset %q not found", name)
		}
		return err
	}
	if _, err := trx.Exec("DELETE FROM preset_commands WHERE preset_id = ?", id); err != nil {
		return err
	}
	if err := insertCommandsTx(trx, id, specs); err != nil {
		return err
	}
	return trx.Commit()
}

// Get retrieves a preset and its commands by name. A missing preset
// returns (nil, nil).
func (r *Repository) Get(name string) (*Preset, error) {
	row := r.db.QueryRow("SELECT id, name, description, created_at, last_used FROM presets WHERE name = ?", name)
	var p Preset
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.LastUsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.attachCommands(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) attachCommands(p *Preset) error {
	rows, err := r.db.Query(`SELECT runner, args, label, color, info_color, error_color, warning_color, cmd_key, req_path, timeout_ms
		FROM preset_commands WHERE preset_id = ? ORDER BY position ASC`, p.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var s command.Spec
		var args string
		var label, color, infoColor, errorColor, warnColor, key sql.NullString
		var timeoutMS int64
		if err := rows.Scan(&s.Runner, &args, &label, &color, &infoColor, &errorColor, &warnColor, &key, &s.ReqPath, &timeoutMS); err != nil {
			return err
		}
		if args != "" {
			split, err := shellquote.Split(args)
			if err != nil {
				return fmt.Errorf("preset %s: decode args %q: %w", p.Name, args, err)
			}
			s.Args = split
		}
		s.Label, s.Color, s.Key = label.String, color.String, key.String
		s.InfoColor, s.ErrorColor, s.WarningColor = infoColor.String, errorColor.String, warnColor.String
		s.Timeout = time.Duration(timeoutMS) * time.Millisecond
		p.Commands = append(p.Commands, s)
	}
	return rows.Err()
}

// List returns all presets (without their commands), newest first.
func (r *Repository) List() ([]Preset, error) {
	rows, err := r.db.Query("SELECT id, name, description, created_at, last_used FROM presets ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Preset
	for rows.Next() {
		var p Preset
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.LastUsed); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Search returns presets whose name, description or command runner/args
// contain query.
func (r *Repository) Search(query string) ([]Preset, error) {
	pattern := "%" + query + "%"
	rows, err := r.db.Query(`
		SELECT DISTINCT p.id, p.name, p.description, p.created_at, p.last_used
		FROM presets p
		LEFT JOIN preset_commands c ON c.preset_id = p.id
		WHERE p.name LIKE ? OR p.description LIKE ? OR c.runner LIKE ? OR c.args LIKE ?
		ORDER BY p.created_at DESC, p.id DESC
	`, pattern, pattern, pattern, pattern)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Preset
	for rows.Next() {
		var p Preset
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.LastUsed); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkUsed records that the named preset was loaded into a session.
func (r *Repository) MarkUsed(name string) error {
	_, err := r.db.Exec("UPDATE presets SET last_used = datetime('now') WHERE name = ?", name)
	return err
}

// Delete removes the named preset and its commands. Deleting a missing
// preset is not an error.
func (r *Repository) Delete(name string) error {
	trx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = trx.Rollback() }()

	var id int64
	if err := trx.QueryRow("SELECT id FROM presets WHERE name = ?", name).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if _, err := trx.Exec("DELETE FROM preset_commands WHERE preset_id = ?", id); err != nil {
		return err
	}
	if _, err := trx.Exec("DELETE FROM presets WHERE id = ?", id); err != nil {
		return err
	}
	return trx.Commit()
}
