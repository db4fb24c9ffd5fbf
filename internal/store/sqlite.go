package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"image-studio/internal/errs"
)

const schema = `
CREATE TABLE IF NOT EXISTS adjustments (
	project_id  TEXT NOT NULL,
	image_id    TEXT NOT NULL,
	adjustments TEXT NOT NULL,
	applied_at  TEXT NOT NULL,
	preset_used TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (project_id, image_id)
);
CREATE TABLE IF NOT EXISTS projects (
	project_id TEXT PRIMARY KEY,
	saved_at   TEXT NOT NULL
);`

// SQLite stores adjustments in an SQLite database.
type SQLite struct {
	db *sql.DB
}

type sqliteConfig struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
}

// SQLiteOption customises OpenSQLite.
type SQLiteOption func(*sqliteConfig)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds.
func WithBusyTimeout(ms int) SQLiteOption { return func(c *sqliteConfig) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous.
func WithSynchronous(mode string) SQLiteOption { return func(c *sqliteConfig) { c.synchronous = mode } }

// WithMkdirAll creates the database's parent directory first.
func WithMkdirAll() SQLiteOption { return func(c *sqliteConfig) { c.mkdirAll = true } }

// OpenSQLite opens (and migrates) the database at path. ":memory:" gives a
// private in-memory database.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	cfg := sqliteConfig{busyTimeout: 10_000, synchronous: "NORMAL"}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Save replaces the project's stored adjustments in one transaction.
func (s *SQLite) Save(ctx context.Context, projectID string, adjustments ByImage) error {
	const op = "store.Save"
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM adjustments WHERE project_id = ?`, projectID); err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO adjustments (project_id, image_id, adjustments, applied_at, preset_used) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	defer stmt.Close()

	for id, a := range adjustments {
		body, err := json.Marshal(a.Adjustments)
		if err != nil {
			return errs.E(op, errs.KindPersistence, fmt.Errorf("encode %s: %w", id, err))
		}
		if _, err := stmt.ExecContext(ctx, projectID, id, string(body), a.AppliedAt.UTC().Format(time.RFC3339Nano), a.PresetUsed); err != nil {
			return errs.E(op, errs.KindPersistence, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO projects (project_id, saved_at) VALUES (?, ?)
		 ON CONFLICT(project_id) DO UPDATE SET saved_at = excluded.saved_at`,
		projectID, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	if err := tx.Commit(); err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	return nil
}

// Load returns the project's adjustments, or nil if it was never saved.
func (s *SQLite) Load(ctx context.Context, projectID string) (ByImage, error) {
	const op = "store.Load"
	var savedAt string
	err := s.db.QueryRowContext(ctx, `SELECT saved_at FROM projects WHERE project_id = ?`, projectID).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.E(op, errs.KindPersistence, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT image_id, adjustments, applied_at, preset_used FROM adjustments WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, errs.E(op, errs.KindPersistence, err)
	}
	defer rows.Close()

	out := make(ByImage)
	for rows.Next() {
		var (
			a             StoredAdjustment
			body, applied string
		)
		if err := rows.Scan(&a.ImageID, &body, &applied, &a.PresetUsed); err != nil {
			return nil, errs.E(op, errs.KindPersistence, err)
		}
		if err := json.Unmarshal([]byte(body), &a.Adjustments); err != nil {
			return nil, errs.E(op, errs.KindPersistence, fmt.Errorf("decode %s: %w", a.ImageID, err))
		}
		if a.AppliedAt, err = time.Parse(time.RFC3339Nano, applied); err != nil {
			return nil, errs.E(op, errs.KindPersistence, fmt.Errorf("applied_at for %s: %w", a.ImageID, err))
		}
		out[a.ImageID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, errs.E(op, errs.KindPersistence, err)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Adapter = (*SQLite)(nil)
