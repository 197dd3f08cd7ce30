package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

const taskFileColumns = `id, task_id, uploaded_by_id, history_id, filename, original_filename, file_path, file_type,
file_size, version, uploaded_at, deleted_at, is_deleted`

// TaskFileRepository is the attachment ledger. Rows are only ever soft deleted.
type TaskFileRepository struct {
	db *sqlx.DB
}

// NewTaskFileRepository constructs the repository.
func NewTaskFileRepository(db *sqlx.DB) *TaskFileRepository {
	return &TaskFileRepository{db: db}
}

func (r *TaskFileRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create records file metadata. Version increments per original filename on the task.
func (r *TaskFileRepository) Create(ctx context.Context, exec sqlx.ExtContext, file *models.TaskFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}
	target := r.exec(exec)

	const versionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM task_files WHERE task_id = $1 AND original_filename = $2`
	if err := sqlx.GetContext(ctx, target, &file.Version, versionQuery, file.TaskID, file.OriginalFilename); err != nil {
		return fmt.Errorf("compute task file version: %w", err)
	}

	const query = `INSERT INTO task_files (` + taskFileColumns + `)
VALUES (:id, :task_id, :uploaded_by_id, :history_id, :filename, :original_filename, :file_path, :file_type,
:file_size, :version, :uploaded_at, :deleted_at, :is_deleted)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, file); err != nil {
		return fmt.Errorf("insert task file: %w", err)
	}
	return nil
}

// GetByID returns file metadata including soft-deleted rows.
func (r *TaskFileRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TaskFile, error) {
	query := `SELECT ` + taskFileColumns + ` FROM task_files WHERE id = $1`
	var file models.TaskFile
	if err := sqlx.GetContext(ctx, r.exec(exec), &file, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get task file: %w", err)
	}
	return &file, nil
}

// ListByTask returns live files of a task, newest first.
func (r *TaskFileRepository) ListByTask(ctx context.Context, taskID string) ([]models.TaskFile, error) {
	query := `SELECT ` + taskFileColumns + ` FROM task_files WHERE task_id = $1 AND is_deleted = FALSE ORDER BY uploaded_at DESC`
	var files []models.TaskFile
	if err := r.db.SelectContext(ctx, &files, query, taskID); err != nil {
		return nil, fmt.Errorf("list task files: %w", err)
	}
	return files, nil
}

// SoftDelete flags a live file as deleted.
func (r *TaskFileRepository) SoftDelete(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error {
	const query = `UPDATE task_files SET is_deleted = TRUE, deleted_at = $2 WHERE id = $1 AND is_deleted = FALSE`
	result, err := r.exec(exec).ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("soft delete task file: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check task file rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
