package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skolaris/skolaris-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "company_id", "date", "start_time", "end_time", "teacher_id", "class_id", "class_room_id", "session_type_id", "status", "created_at", "updated_at"})
}

func TestSessionRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	rows := sessionRows().
		AddRow(1, 7, "2025-09-01", "08:00", "10:00", 3, 4, 5, 1, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, company_id, date, start_time, end_time, teacher_id, class_id, class_room_id, session_type_id, status, created_at, updated_at FROM sessions WHERE company_id = $1 AND status <> -2 ORDER BY date ASC, start_time ASC LIMIT 20 OFFSET 0")).
		WithArgs(int64(7)).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions WHERE company_id = $1 AND status <> -2")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), 7, models.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListFiltersByTeacherAndDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("date = $2 AND teacher_id = $3")).
		WithArgs(int64(7), "2025-09-01", int64(3)).
		WillReturnRows(sessionRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(int64(7), "2025-09-01", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	list, total, err := repo.List(context.Background(), 7, models.SessionFilter{Date: "2025-09-01", TeacherID: 3})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListActiveForDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	rows := sessionRows().
		AddRow(1, 7, "2025-09-01", "08:00", "10:00", 3, 4, 5, 1, 1, time.Now(), time.Now()).
		AddRow(2, 7, "2025-09-01", "10:00", "12:00", 3, 4, 5, 1, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE company_id = $1 AND date = $2 AND status <> -2")).
		WithArgs(int64(7), "2025-09-01").
		WillReturnRows(rows)

	list, err := repo.ListActiveForDay(context.Background(), 7, "2025-09-01")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery("INSERT INTO sessions").
		WithArgs(int64(7), "2025-09-01", "08:00", "10:00", int64(3), int64(4), int64(5), int64(1), 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	session := &models.Session{
		CompanyID:     7,
		Date:          "2025-09-01",
		StartTime:     "08:00",
		EndTime:       "10:00",
		TeacherID:     3,
		ClassID:       4,
		ClassRoomID:   5,
		SessionTypeID: 1,
		Status:        models.StatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), session))
	assert.Equal(t, int64(42), session.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("UPDATE sessions SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), &models.Session{ID: 42, Date: "2025-09-01", StartTime: "08:00", EndTime: "10:00"}))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}
