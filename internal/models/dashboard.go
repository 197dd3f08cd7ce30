package models

// UserDashboard summarises the work waiting for one user.
type UserDashboard struct {
	TodoTasks         []Task       `json:"todo_tasks"`
	UpcomingDeadlines []Task       `json:"upcoming_deadlines"`
	UnreadCount       int          `json:"unread_notifications"`
	PendingArticles   []CXOArticle `json:"pending_articles,omitempty"`
}

// MemberWorkload counts active tasks per department member.
type MemberWorkload struct {
	UserID    string `db:"user_id" json:"user_id"`
	Username  string `db:"username" json:"username"`
	TaskCount int    `db:"task_count" json:"task_count"`
}

// DepartmentStats aggregates task counts for a department.
type DepartmentStats struct {
	Total      int `db:"total" json:"total"`
	Open       int `db:"open" json:"open"`
	Assigned   int `db:"assigned" json:"assigned"`
	InProgress int `db:"in_progress" json:"in_progress"`
	Review     int `db:"review" json:"review"`
	Completed  int `db:"completed" json:"completed"`
	High       int `db:"high" json:"high"`
	Urgent     int `db:"urgent" json:"urgent"`
}

// ManagerDashboard is the department overview for managers.
type ManagerDashboard struct {
	Department Department       `json:"department"`
	Tasks      []Task           `json:"tasks"`
	Workload   []MemberWorkload `json:"workload"`
	OpenTasks  []Task           `json:"open_tasks"`
	Stats      DepartmentStats  `json:"stats"`
}
