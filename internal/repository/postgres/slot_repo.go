package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/and161185/mobicure/internal/errs"
)

// SlotRepo implements SlotRepository using PostgreSQL.
type SlotRepo struct{ db *DB }

// NewSlotRepo constructs a slot repository.
func NewSlotRepo(db *DB) *SlotRepo { return &SlotRepo{db: db} }

// Get selects a slot value by name.
func (r *SlotRepo) Get(ctx context.Context, name string) ([]byte, error) {
	const q = `SELECT value FROM slots WHERE name=$1`
	var v []byte
	if err := r.db.Pool.QueryRow(ctx, q, name).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Put upserts the whole slot value.
func (r *SlotRepo) Put(ctx context.Context, name string, data []byte) error {
	const q = `
INSERT INTO slots (name, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if data == nil {
		data = []byte{}
	}
	_, err := r.db.Pool.Exec(ctx, q, name, data)
	return err
}

// Delete removes a slot row.
func (r *SlotRepo) Delete(ctx context.Context, name string) error {
	const q = `DELETE FROM slots WHERE name=$1`
	_, err := r.db.Pool.Exec(ctx, q, name)
	return err
}
