package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skolaris/skolaris-api/internal/models"
)

func linkRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "module_id", "course_id", "tri", "volume", "coefficient", "status", "created_at", "updated_at"})
}

func TestLinkRepositoryFindPair(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	rows := linkRows().AddRow(9, 1, 2, 0, nil, nil, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM module_courses WHERE module_id = $1 AND course_id = $2")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(rows)

	link, err := repo.FindPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(9), link.ID)
	assert.Equal(t, 0, link.Tri)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryFindPairMirroredDirection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseModuleLinks(db)

	rows := linkRows().AddRow(9, 2, 1, 0, nil, nil, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM module_courses WHERE course_id = $1 AND module_id = $2")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(rows)

	_, err := repo.FindPair(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryCreateAssignsNextPosition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM module_courses WHERE module_id = $1 AND status <> -2")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("INSERT INTO module_courses").
		WithArgs(int64(1), int64(2), 3, nil, nil, models.StatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(linkRows().AddRow(9, 1, 2, 3, nil, nil, 1, time.Now(), time.Now()))
	mock.ExpectCommit()

	link, err := repo.Create(context.Background(), 1, 2, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, link.Tri)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryResurrectReentersAtEnd(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("UPDATE module_courses SET status").
		WithArgs(models.StatusActive, 2, nil, nil, sqlmock.AnyArg(), int64(9)).
		WillReturnRows(linkRows().AddRow(9, 1, 2, 2, nil, nil, 1, time.Now(), time.Now()))
	mock.ExpectCommit()

	link, err := repo.Resurrect(context.Background(), 9, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, link.Tri)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryUnlinkNoActiveRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM module_courses WHERE module_id = $1 AND course_id = $2 AND status <> -2")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Unlink(context.Background(), 1, 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryDeactivateMarksRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE module_courses SET status = -2, updated_at = $1 WHERE module_id = $2 AND course_id = $3 AND status <> -2")).
		WithArgs(sqlmock.AnyArg(), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryBatchApplyNumbersFromSingleBase(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec("ON CONFLICT").
		WithArgs(int64(1), int64(10), 5, models.StatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("ON CONFLICT").
		WithArgs(int64(1), int64(11), 6, models.StatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM module_courses WHERE module_id = $1 AND course_id = ANY($2)")).
		WithArgs(int64(1), pq.Array([]int64{20, 21})).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.BatchApply(context.Background(), 1, []int64{10, 11}, []int64{20, 21})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryBatchApplyRollsBackOnInsertError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("ON CONFLICT").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.BatchApply(context.Background(), 1, []int64{10}, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLinkRepositoryReplaceAllRebuildsSequence(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewModuleCourseLinks(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM module_courses WHERE module_id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec("INSERT INTO module_courses").
		WithArgs(int64(1), int64(30), 0, models.StatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO module_courses").
		WithArgs(int64(1), int64(31), 1, models.StatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), 1, []int64{30, 31}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
