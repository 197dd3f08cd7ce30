package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSales      UserRole = "sales"
	RoleEditorial  UserRole = "editorial"
	RoleDesign     UserRole = "design"
	RoleCXO        UserRole = "cxo"
	RoleManager    UserRole = "manager"
	RoleSuperAdmin UserRole = "super_admin"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleSales, RoleEditorial, RoleDesign, RoleCXO, RoleManager, RoleSuperAdmin:
		return true
	}
	return false
}

// Department is the routing dimension of a task.
type Department string

const (
	DepartmentSales     Department = "sales"
	DepartmentEditorial Department = "editorial"
	DepartmentDesign    Department = "design"
)

// Departments lists every routable department.
var Departments = []Department{DepartmentSales, DepartmentEditorial, DepartmentDesign}

// ParseDepartment converts raw input into a Department.
func ParseDepartment(raw string) (Department, bool) {
	switch Department(raw) {
	case DepartmentSales, DepartmentEditorial, DepartmentDesign:
		return Department(raw), true
	}
	return "", false
}

// Title renders the department name capitalised for messages.
func (d Department) Title() string {
	switch d {
	case DepartmentSales:
		return "Sales"
	case DepartmentEditorial:
		return "Editorial"
	case DepartmentDesign:
		return "Design"
	}
	return "Unknown"
}

// User represents an application user stored in the users table.
type User struct {
	ID           string      `db:"id" json:"id"`
	Username     string      `db:"username" json:"username"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	Role         UserRole    `db:"role" json:"role"`
	Department   *Department `db:"department" json:"department,omitempty"`
	IsManager    bool        `db:"is_manager" json:"is_manager"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// InDepartment reports whether the user belongs to dept.
func (u *User) InDepartment(dept Department) bool {
	return u != nil && u.Department != nil && *u.Department == dept
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role       *UserRole
	Department *Department
	Managers   *bool
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
