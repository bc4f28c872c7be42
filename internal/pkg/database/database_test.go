package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func TestInTx_Commits(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM hr_filter").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	err := InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("DELETE FROM hr_filter WHERE filter_corp_id = $1", 1)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTx_CancelledContext(t *testing.T) {
	db, mock := newMockDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := InTx(ctx, db, func(tx *sqlx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, mock.ExpectationsWereMet())
}
