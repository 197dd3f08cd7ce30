package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

const taskColumns = `id, brand_id, edition_id, edition_other, created_by_id, assigned_to_id, assigned_department,
original_requester_id, editorial_owner_id, design_owner_id, title, category, category_other, company_name,
company_url, description, deadline, priority, status, current_department, version, created_at, updated_at,
completed_at, archived_at, is_archived`

// TaskRepository persists tasks and their routing state.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a new task row.
func (r *TaskRepository) Create(ctx context.Context, exec sqlx.ExtContext, task *models.Task) error {
	if task == nil {
		return fmt.Errorf("task payload is nil")
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if task.Priority == "" {
		task.Priority = models.PriorityNormal
	}
	task.Version = 1

	const query = `INSERT INTO tasks (` + taskColumns + `)
VALUES (:id, :brand_id, :edition_id, :edition_other, :created_by_id, :assigned_to_id, :assigned_department,
:original_requester_id, :editorial_owner_id, :design_owner_id, :title, :category, :category_other, :company_name,
:company_url, :description, :deadline, :priority, :status, :current_department, :version, :created_at, :updated_at,
:completed_at, :archived_at, :is_archived)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetByID fetches a task by identifier.
func (r *TaskRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	var task models.Task
	if err := sqlx.GetContext(ctx, r.exec(exec), &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// GetForUpdate fetches a task and locks its row until the transaction ends.
func (r *TaskRepository) GetForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	var task models.Task
	if err := sqlx.GetContext(ctx, r.exec(exec), &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock task: %w", err)
	}
	return &task, nil
}

// Update persists routing state guarded by the row version.
func (r *TaskRepository) Update(ctx context.Context, exec sqlx.ExtContext, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks SET brand_id = :brand_id, edition_id = :edition_id, edition_other = :edition_other,
assigned_to_id = :assigned_to_id, assigned_department = :assigned_department,
original_requester_id = :original_requester_id, editorial_owner_id = :editorial_owner_id,
design_owner_id = :design_owner_id, title = :title, description = :description, deadline = :deadline,
priority = :priority, status = :status, current_department = :current_department,
updated_at = :updated_at, completed_at = :completed_at, archived_at = :archived_at, is_archived = :is_archived,
version = version + 1
WHERE id = :id AND version = :version`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, task)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check task update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	task.Version++
	return nil
}

// List returns tasks matching the filter along with the total count.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	where, args := buildTaskConditions(filter)

	countQuery := `SELECT COUNT(*) FROM tasks` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM tasks%s ORDER BY %s LIMIT %d OFFSET %d`,
		taskColumns, where, taskOrder(filter), size, (page-1)*size)
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

func buildTaskConditions(filter models.TaskFilter) (string, []interface{}) {
	conditions := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(company_name ILIKE $%d OR description ILIKE $%d OR title ILIKE $%d)", len(args), len(args), len(args)))
	}
	if filter.BrandID != "" {
		args = append(args, filter.BrandID)
		conditions = append(conditions, fmt.Sprintf("brand_id = $%d", len(args)))
	}
	if filter.EditionID != "" {
		args = append(args, filter.EditionID)
		conditions = append(conditions, fmt.Sprintf("edition_id = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, fmt.Sprintf("current_department = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		conditions = append(conditions, fmt.Sprintf("assigned_to_id = $%d", len(args)))
	}
	if filter.Unassigned {
		conditions = append(conditions, "assigned_to_id IS NULL")
	}
	if filter.ExcludeDone {
		conditions = append(conditions, "status NOT IN ('Completed', 'Archived')")
	}
	if !filter.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filter.DeadlineFrom != nil {
		args = append(args, *filter.DeadlineFrom)
		conditions = append(conditions, fmt.Sprintf("deadline >= $%d", len(args)))
	}
	if filter.DeadlineTo != nil {
		args = append(args, *filter.DeadlineTo)
		conditions = append(conditions, fmt.Sprintf("deadline <= $%d", len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func taskOrder(filter models.TaskFilter) string {
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	switch filter.SortBy {
	case "deadline":
		return "deadline " + direction + " NULLS LAST, created_at DESC"
	case "priority":
		return "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END " + direction + ", created_at DESC"
	case "updated_at":
		return "updated_at " + direction
	default:
		return "created_at " + direction
	}
}

// DepartmentStats aggregates counts for the department overview.
func (r *TaskRepository) DepartmentStats(ctx context.Context, dept models.Department) (*models.DepartmentStats, error) {
	const query = `SELECT COUNT(*) AS total,
COUNT(*) FILTER (WHERE status = 'Open') AS open,
COUNT(*) FILTER (WHERE status = 'Assigned') AS assigned,
COUNT(*) FILTER (WHERE status = 'InProgress') AS in_progress,
COUNT(*) FILTER (WHERE status = 'Review') AS review,
COUNT(*) FILTER (WHERE status = 'Completed') AS completed,
COUNT(*) FILTER (WHERE priority = 'high' AND status NOT IN ('Completed', 'Archived')) AS high,
COUNT(*) FILTER (WHERE priority = 'urgent' AND status NOT IN ('Completed', 'Archived')) AS urgent
FROM tasks WHERE current_department = $1 AND is_archived = FALSE`
	var stats models.DepartmentStats
	if err := r.db.GetContext(ctx, &stats, query, dept); err != nil {
		return nil, fmt.Errorf("department stats: %w", err)
	}
	return &stats, nil
}

// Workload counts active tasks held by each department member.
func (r *TaskRepository) Workload(ctx context.Context, dept models.Department) ([]models.MemberWorkload, error) {
	const query = `SELECT u.id AS user_id, u.username, COUNT(t.id) AS task_count
FROM users u
LEFT JOIN tasks t ON t.assigned_to_id = u.id AND t.status NOT IN ('Completed', 'Archived')
WHERE u.department = $1
GROUP BY u.id, u.username
ORDER BY task_count DESC, u.username`
	var workload []models.MemberWorkload
	if err := r.db.SelectContext(ctx, &workload, query, dept); err != nil {
		return nil, fmt.Errorf("department workload: %w", err)
	}
	return workload, nil
}
