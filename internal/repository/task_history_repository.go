package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

// TaskHistoryRepository appends and reads the task audit trail. Rows are never updated.
type TaskHistoryRepository struct {
	db *sqlx.DB
}

// NewTaskHistoryRepository constructs the repository.
func NewTaskHistoryRepository(db *sqlx.DB) *TaskHistoryRepository {
	return &TaskHistoryRepository{db: db}
}

func (r *TaskHistoryRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Append inserts one history row.
func (r *TaskHistoryRepository) Append(ctx context.Context, exec sqlx.ExtContext, entry *models.TaskHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO task_history (id, task_id, user_id, action, old_value, new_value, from_department, to_department, comment, created_at)
VALUES (:id, :task_id, :user_id, :action, :old_value, :new_value, :from_department, :to_department, :comment, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("append task history: %w", err)
	}
	return nil
}

// ListByTask returns the history of a task in chronological order.
func (r *TaskHistoryRepository) ListByTask(ctx context.Context, taskID string) ([]models.TaskHistory, error) {
	const query = `SELECT h.id, h.task_id, h.user_id, COALESCE(u.username, '') AS username, h.action, h.old_value, h.new_value,
h.from_department, h.to_department, h.comment, h.created_at
FROM task_history h LEFT JOIN users u ON u.id = h.user_id
WHERE h.task_id = $1 ORDER BY h.created_at ASC, h.id ASC`
	var entries []models.TaskHistory
	if err := r.db.SelectContext(ctx, &entries, query, taskID); err != nil {
		return nil, fmt.Errorf("list task history: %w", err)
	}
	return entries, nil
}
