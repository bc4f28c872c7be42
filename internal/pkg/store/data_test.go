package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoosefleetEO/aa-hrapplications-two/internal/models"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sqlmockTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return sqlx.NewDb(conn, "postgres"), mock
}

func TestDataStore_Create(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewDataStore[models.ApplicationChoice](db, "hr_application_choice")

	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO hr_application_choice (question_id, choice_text) VALUES ($1, $2) RETURNING id")).
		ExpectQuery().
		WithArgs(4, "Nullsec").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	created, err := ds.Create(context.Background(), models.CreateChoiceDTO{QuestionID: 4, ChoiceText: "Nullsec"})
	require.NoError(t, err)

	assert.Equal(t, &models.ApplicationChoice{ID: 9, QuestionID: 4, ChoiceText: "Nullsec"}, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDataStore_CreateMapsConstraintErrors(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewDataStore[models.ApplicationChoice](db, "hr_application_choice")

	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO hr_application_choice")).
		ExpectQuery().
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	_, err := ds.Create(context.Background(), models.CreateChoiceDTO{QuestionID: 404, ChoiceText: "Nullsec"})
	assert.ErrorIs(t, err, fault.ErrForeignKeyViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDataStore_CreateCancelled(t *testing.T) {
	db, _ := newMockDB(t)
	ds := NewDataStore[models.ApplicationChoice](db, "hr_application_choice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ds.Create(ctx, models.CreateChoiceDTO{QuestionID: 4, ChoiceText: "Nullsec"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDataStore_Update(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewDataStore[models.ApplicationChoice](db, "hr_application_choice")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE hr_application_choice SET question_id = $1, choice_text = $2 WHERE id = $3")).
		WithArgs(4, "Wormholes", 9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, question_id, choice_text FROM hr_application_choice WHERE id = $1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "choice_text"}).AddRow(9, 4, "Wormholes"))

	got, err := ds.Update(context.Background(), 9, models.CreateChoiceDTO{QuestionID: 4, ChoiceText: "Wormholes"})
	require.NoError(t, err)
	assert.Equal(t, "Wormholes", got.ChoiceText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDataStore_UpdateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewDataStore[models.ApplicationChoice](db, "hr_application_choice")

	mock.ExpectExec(regexp.QuoteMeta("UPDATE hr_application_choice")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := ds.Update(context.Background(), 9, models.CreateChoiceDTO{QuestionID: 4, ChoiceText: "Wormholes"})
	assert.ErrorIs(t, err, fault.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDataStore_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewDataStore[models.Application](db, "hr_application")

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM hr_application WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM hr_application WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ds.Delete(context.Background(), 3))
	assert.ErrorIs(t, ds.Delete(context.Background(), 3), fault.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDataStore_GetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewDataStore[models.ApplicationComment](db, "hr_application_comment")

	mock.ExpectQuery(regexp.QuoteMeta("FROM hr_application_comment")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	_, err := ds.Get(context.Background(), "SELECT id FROM hr_application_comment WHERE id = $1", 1)
	assert.ErrorIs(t, err, fault.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDataStore_QueryRowAndSelect(t *testing.T) {
	db, mock := newMockDB(t)
	ds := NewDataStore[models.ApplicationSummary](db, "hr_application")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "approved", "reviewer_id", "created"}).
			AddRow(2, 11, nil, nil, sqlmockTime).
			AddRow(1, 10, true, 5, sqlmockTime))

	count, err := ds.QueryRow(context.Background(), "SELECT COUNT(*) FROM hr_application")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rows, err := ds.Select(context.Background(), "SELECT id, user_id, approved, reviewer_id, created FROM hr_application")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.Pending, rows[0].Classification())
	assert.Equal(t, models.Accepted, rows[1].Classification())
	assert.NoError(t, mock.ExpectationsWereMet())
}
