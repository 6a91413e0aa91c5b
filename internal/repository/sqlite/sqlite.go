// Package sqlite contains a SlotRepository backed by a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/and161185/mobicure/internal/errs"
)

const schema = `
CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SlotRepo implements SlotRepository using SQLite.
type SlotRepo struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*SlotRepo, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SlotRepo{db: db}, nil
}

// Close closes the database.
func (r *SlotRepo) Close() error { return r.db.Close() }

// Get selects the slot value.
func (r *SlotRepo) Get(ctx context.Context, name string) ([]byte, error) {
	var v []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE name = ?`, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Put inserts or replaces the slot value.
func (r *SlotRepo) Put(ctx context.Context, name string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO slots (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, name, data)
	return err
}

// Delete removes the slot row.
func (r *SlotRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name)
	return err
}
