package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/mobicure/internal/errs"
	"github.com/and161185/mobicure/internal/repository"
)

var _ repository.SlotRepository = (*SlotRepo)(nil)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestSlotRepo_Get_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSlotRepo(db)

	mock.ExpectQuery(`SELECT value FROM slots WHERE name=\$1`).
		WithArgs("mobicure-vault").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	got, err := r.Get(context.Background(), "mobicure-vault")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_Get_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSlotRepo(db)

	mock.ExpectQuery(`SELECT value FROM slots WHERE name=\$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := r.Get(context.Background(), "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSlotRepo_Get_DBError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSlotRepo(db)

	boom := errors.New("boom")
	mock.ExpectQuery(`SELECT value FROM slots WHERE name=\$1`).
		WithArgs("x").
		WillReturnError(boom)

	_, err := r.Get(context.Background(), "x")
	require.ErrorIs(t, err, boom)
}

func TestSlotRepo_Put_Upserts(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSlotRepo(db)

	mock.ExpectExec(`INSERT INTO slots \(name, value, updated_at\) VALUES \(\$1, \$2, now\(\)\)`).
		WithArgs("mobicure-vault", []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Put(context.Background(), "mobicure-vault", []byte(`[1]`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_Put_NilBecomesEmpty(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSlotRepo(db)

	mock.ExpectExec(`INSERT INTO slots`).
		WithArgs("s", []byte{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Put(context.Background(), "s", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepo_Delete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewSlotRepo(db)

	mock.ExpectExec(`DELETE FROM slots WHERE name=\$1`).
		WithArgs("mobicure-user").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, r.Delete(context.Background(), "mobicure-user"))
	require.NoError(t, mock.ExpectationsWereMet())
}
