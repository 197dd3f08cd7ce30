package models

import "time"

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "Open"
	TaskStatusAssigned   TaskStatus = "Assigned"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusReview     TaskStatus = "Review"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusArchived   TaskStatus = "Archived"
)

// Terminal reports whether no further routing is allowed from the status.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusArchived
}

// TaskPriority captures urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Task categories offered on creation.
const (
	CategoryProfile    = "Profile"
	CategoryArticle    = "Article"
	CategoryCover      = "Cover"
	CategoryCOYCover   = "COY Cover"
	CategoryCOY        = "COY"
	CategoryAd         = "AD"
	CategoryOther      = "Other"
	CategoryCXOArticle = "CXO Article"
)

// TaskCategories lists categories accepted on task creation.
var TaskCategories = []string{
	CategoryProfile, CategoryArticle, CategoryCover, CategoryCOYCover,
	CategoryCOY, CategoryAd, CategoryOther, CategoryCXOArticle,
}

// Task is the central routed work item.
type Task struct {
	ID                 string       `db:"id" json:"id"`
	BrandID            *string      `db:"brand_id" json:"brand_id,omitempty"`
	EditionID          *string      `db:"edition_id" json:"edition_id,omitempty"`
	EditionOther       *string      `db:"edition_other" json:"edition_other,omitempty"`
	CreatedByID        string       `db:"created_by_id" json:"created_by_id"`
	AssignedToID       *string      `db:"assigned_to_id" json:"assigned_to_id,omitempty"`
	AssignedDepartment Department   `db:"assigned_department" json:"assigned_department"`
	OriginalRequester  *string      `db:"original_requester_id" json:"original_requester_id,omitempty"`
	EditorialOwnerID   *string      `db:"editorial_owner_id" json:"editorial_owner_id,omitempty"`
	DesignOwnerID      *string      `db:"design_owner_id" json:"design_owner_id,omitempty"`
	Title              string       `db:"title" json:"title"`
	Category           string       `db:"category" json:"category"`
	CategoryOther      *string      `db:"category_other" json:"category_other,omitempty"`
	CompanyName        string       `db:"company_name" json:"company_name"`
	CompanyURL         *string      `db:"company_url" json:"company_url,omitempty"`
	Description        string       `db:"description" json:"description"`
	Deadline           *time.Time   `db:"deadline" json:"deadline,omitempty"`
	Priority           TaskPriority `db:"priority" json:"priority"`
	Status             TaskStatus   `db:"status" json:"status"`
	CurrentDepartment  Department   `db:"current_department" json:"current_department"`
	Version            int          `db:"version" json:"version"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
	CompletedAt        *time.Time   `db:"completed_at" json:"completed_at,omitempty"`
	ArchivedAt         *time.Time   `db:"archived_at" json:"archived_at,omitempty"`
	IsArchived         bool         `db:"is_archived" json:"is_archived"`
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Search          string
	BrandID         string
	EditionID       string
	Status          []TaskStatus
	Department      *Department
	Priority        *TaskPriority
	AssignedTo      string
	Unassigned      bool
	ExcludeDone     bool
	IncludeArchived bool
	DeadlineFrom    *time.Time
	DeadlineTo      *time.Time
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}

// TaskHistory is one append-only audit row.
type TaskHistory struct {
	ID             string      `db:"id" json:"id"`
	TaskID         string      `db:"task_id" json:"task_id"`
	UserID         string      `db:"user_id" json:"user_id"`
	Username       string      `db:"username" json:"username,omitempty"`
	Action         string      `db:"action" json:"action"`
	OldValue       *string     `db:"old_value" json:"old_value,omitempty"`
	NewValue       *string     `db:"new_value" json:"new_value,omitempty"`
	FromDepartment *Department `db:"from_department" json:"from_department,omitempty"`
	ToDepartment   *Department `db:"to_department" json:"to_department,omitempty"`
	Comment        *string     `db:"comment" json:"comment,omitempty"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// History action vocabulary.
const (
	ActionTaskCreated         = "Task Created"
	ActionTaskPickedUp        = "Task Picked Up"
	ActionAssignedByManager   = "Task Assigned by Manager"
	ActionAssignedToTeam      = "Task Assigned to Team"
	ActionTaskReassigned      = "Task Reassigned"
	ActionTaskCompleted       = "Task Completed"
	ActionDesignReturned      = "Design Completed - Returned to Editorial"
	ActionSentBackToManager   = "Sent Back to Manager"
	ActionDesignSentToEditor  = "Design Completed - Sent to Editorial"
	ActionEditorialSentDesign = "Editorial Completed - Sent to Design"
	ActionSentToSales         = "Sent to Sales for Client Feedback"
	ActionFilesUploaded       = "Files Uploaded"
	ActionFileDeleted         = "File Deleted"
	ActionTaskArchived        = "Task Archived"
)

// TaskFile is an attachment stored against a task.
type TaskFile struct {
	ID               string     `db:"id" json:"id"`
	TaskID           string     `db:"task_id" json:"task_id"`
	UploadedByID     string     `db:"uploaded_by_id" json:"uploaded_by_id"`
	HistoryID        *string    `db:"history_id" json:"history_id,omitempty"`
	Filename         string     `db:"filename" json:"filename"`
	OriginalFilename string     `db:"original_filename" json:"original_filename"`
	FilePath         string     `db:"file_path" json:"-"`
	FileType         string     `db:"file_type" json:"file_type"`
	FileSize         int64      `db:"file_size" json:"file_size"`
	Version          int        `db:"version" json:"version"`
	UploadedAt       time.Time  `db:"uploaded_at" json:"uploaded_at"`
	DeletedAt        *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	IsDeleted        bool       `db:"is_deleted" json:"is_deleted"`
}

// TaskDetail aggregates a task with its audit trail and live files.
type TaskDetail struct {
	Task    *Task         `json:"task"`
	History []TaskHistory `json:"history"`
	Files   []TaskFile    `json:"files"`
}
