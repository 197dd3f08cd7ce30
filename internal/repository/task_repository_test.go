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

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

var taskRowColumns = []string{"id", "title", "category", "company_name", "description", "priority", "status", "current_department", "assigned_department", "created_by_id", "version", "created_at", "updated_at", "is_archived"}

func TestTaskCreateSetsDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec("INSERT INTO tasks").WillReturnResult(sqlmock.NewResult(0, 1))

	task := &models.Task{Title: "Profile: Acme", CreatedByID: "u-sales", Status: models.TaskStatusOpen}
	require.NoError(t, repo.Create(context.Background(), nil, task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, 1, task.Version)
	assert.Equal(t, models.PriorityNormal, task.Priority)
	assert.False(t, task.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskUpdateIsVersionGuarded(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("version = version + 1")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = ? AND version = ?")).WillReturnResult(sqlmock.NewResult(0, 0))

	task := &models.Task{ID: "t1", Status: models.TaskStatusAssigned, Version: 3}
	require.NoError(t, repo.Update(context.Background(), nil, task))
	assert.Equal(t, 4, task.Version)

	stale := &models.Task{ID: "t1", Status: models.TaskStatusInProgress, Version: 3}
	err := repo.Update(context.Background(), nil, stale)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.Equal(t, 3, stale.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskGetForUpdateLocksRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(taskRowColumns).
		AddRow("t1", "Profile: Acme", "Profile", "Acme", "", "normal", "Open", "editorial", "editorial", "u-sales", 2, now, now, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1 FOR UPDATE")).
		WithArgs("t1").
		WillReturnRows(rows)

	task, err := repo.GetForUpdate(context.Background(), nil, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.DepartmentEditorial, task.CurrentDepartment)
	assert.Equal(t, 2, task.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	_, err := repo.GetByID(context.Background(), nil, "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskListHidesArchivedByDefault(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE is_archived = FALSE")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	now := time.Now()
	rows := sqlmock.NewRows(taskRowColumns).
		AddRow("t1", "Profile: Acme", "Profile", "Acme", "", "normal", "Open", "sales", "sales", "u-sales", 1, now, now, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE is_archived = FALSE ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)

	tasks, total, err := repo.List(context.Background(), models.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskListFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	dept := models.DepartmentDesign
	where := "WHERE status IN ($1,$2) AND current_department = $3 AND assigned_to_id IS NULL AND status NOT IN ('Completed', 'Archived') AND is_archived = FALSE"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks " + where)).
		WithArgs(models.TaskStatusOpen, models.TaskStatusReview, dept).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(where + " ORDER BY deadline ASC NULLS LAST, created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs(models.TaskStatusOpen, models.TaskStatusReview, dept).
		WillReturnRows(sqlmock.NewRows(taskRowColumns))

	tasks, total, err := repo.List(context.Background(), models.TaskFilter{
		Status:      []models.TaskStatus{models.TaskStatusOpen, models.TaskStatusReview},
		Department:  &dept,
		Unassigned:  true,
		ExcludeDone: true,
		Page:        2,
		PageSize:    10,
		SortBy:      "deadline",
		SortOrder:   "asc",
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskWorkload(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	rows := sqlmock.NewRows([]string{"user_id", "username", "task_count"}).
		AddRow("u-ds1", "dan", 2).
		AddRow("u-ds2", "dina", 0)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN tasks t ON t.assigned_to_id = u.id")).
		WithArgs(models.DepartmentDesign).
		WillReturnRows(rows)

	workload, err := repo.Workload(context.Background(), models.DepartmentDesign)
	require.NoError(t, err)
	require.Len(t, workload, 2)
	assert.Equal(t, 2, workload[0].TaskCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
