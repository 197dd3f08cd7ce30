package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const softDeleteFileQuery = "UPDATE task_files SET is_deleted = TRUE, deleted_at = $2 WHERE id = $1 AND is_deleted = FALSE"

func TestTaskFileSoftDeleteMarksLiveRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskFileRepository(db)

	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(softDeleteFileQuery)).
		WithArgs("f1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), nil, "f1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskFileSoftDeleteReportsMissingOrDeletedRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskFileRepository(db)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(softDeleteFileQuery)).
		WithArgs("f1", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), nil, "f1", at)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskFileSoftDeleteSurfacesRowsAffectedFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskFileRepository(db)

	boom := errors.New("driver does not report rows")
	mock.ExpectExec(regexp.QuoteMeta(softDeleteFileQuery)).
		WillReturnResult(sqlmock.NewErrorResult(boom))

	err := repo.SoftDelete(context.Background(), nil, "f1", time.Now())
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskFileGetByIDIncludesDeletedRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskFileRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "task_id", "uploaded_by_id", "history_id", "filename", "original_filename", "file_path",
		"file_type", "file_size", "version", "uploaded_at", "deleted_at", "is_deleted"}).
		AddRow("f1", "t1", "u-ds1", "h1", "abc_cover.png", "cover.png", "tasks/t1/abc_cover.png", "png", int64(3), 2, now, now, true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM task_files WHERE id = $1")).WithArgs("f1").WillReturnRows(rows)

	file, err := repo.GetByID(context.Background(), nil, "f1")
	require.NoError(t, err)
	assert.True(t, file.IsDeleted)
	assert.Equal(t, 2, file.Version)
	require.NotNil(t, file.DeletedAt)

	mock.ExpectQuery(regexp.QuoteMeta("FROM task_files WHERE id = $1")).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), nil, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
