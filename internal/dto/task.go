package dto

import (
	"time"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

// CreateTaskRequest payload for opening a task in a department.
type CreateTaskRequest struct {
	Department    models.Department   `json:"department" validate:"required,department"`
	BrandID       string              `json:"brandId" validate:"required"`
	EditionID     *string             `json:"editionId"`
	EditionOther  *string             `json:"editionOther" validate:"omitempty,max=200"`
	Title         string              `json:"title" validate:"max=200"`
	Category      string              `json:"category" validate:"required,task_category"`
	CategoryOther *string             `json:"categoryOther" validate:"omitempty,max=200"`
	CompanyName   string              `json:"companyName" validate:"required,max=200"`
	CompanyURL    *string             `json:"companyUrl" validate:"omitempty,max=255"`
	Description   string              `json:"description"`
	Deadline      *time.Time          `json:"deadline"`
	Priority      models.TaskPriority `json:"priority" validate:"omitempty,priority"`
	Comment       string              `json:"comment" validate:"max=2000"`
}

// RoutingRequest carries the optional comment every routing action accepts.
type RoutingRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

// AssignMemberRequest names the department member a manager assigns.
type AssignMemberRequest struct {
	MemberID string `json:"memberId" validate:"required"`
	Comment  string `json:"comment" validate:"max=2000"`
}

// ReassignRequest moves a task to another department.
type ReassignRequest struct {
	Department models.Department `json:"department" validate:"required,department"`
	AssigneeID *string           `json:"assigneeId"`
	Comment    string            `json:"comment" validate:"max=2000"`
}

// TaskQuery mirrors supported listing filters.
type TaskQuery struct {
	Search     string
	BrandID    string
	EditionID  string
	Status     []models.TaskStatus
	Department *models.Department
	Priority   *models.TaskPriority
	Archived   bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// TaskListResponse wraps a page of tasks.
type TaskListResponse struct {
	Items      []models.Task     `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

// HistoryExportRequest selects the export format for a task history.
type HistoryExportRequest struct {
	Format string `form:"format" json:"format"`
}
