package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

var historyColumns = []string{"id", "task_id", "user_id", "username", "action", "old_value", "new_value", "from_department", "to_department", "comment", "created_at"}

func TestTaskHistoryListByTaskIsChronological(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskHistoryRepository(db)

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(historyColumns).
		AddRow("h1", "t1", "u-edm", "emma", models.ActionTaskCreated, nil, "editorial", nil, "editorial", nil, created).
		AddRow("h2", "t1", "u-edm", "emma", models.ActionEditorialSentDesign, "editorial", "design", "editorial", "design", "layout please", created).
		AddRow("h3", "t1", "u-gone", "", models.ActionTaskCompleted, nil, nil, nil, nil, nil, created.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN users u ON u.id = h.user_id WHERE h.task_id = $1 ORDER BY h.created_at ASC, h.id ASC")).
		WithArgs("t1").
		WillReturnRows(rows)

	entries, err := repo.ListByTask(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"h1", "h2", "h3"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
	require.NotNil(t, entries[1].ToDepartment)
	assert.Equal(t, models.DepartmentDesign, *entries[1].ToDepartment)
	assert.Equal(t, "layout please", *entries[1].Comment)
	assert.Empty(t, entries[2].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskHistoryListByTaskWrapsErrors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskHistoryRepository(db)

	boom := errors.New("connection reset")
	mock.ExpectQuery("FROM task_history h").WithArgs("t1").WillReturnError(boom)

	_, err := repo.ListByTask(context.Background(), "t1")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskHistoryAppendStampsIDAndTime(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTaskHistoryRepository(db)

	mock.ExpectExec("INSERT INTO task_history").WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &models.TaskHistory{TaskID: "t1", UserID: "u1", Action: models.ActionTaskCreated}
	require.NoError(t, repo.Append(context.Background(), nil, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
