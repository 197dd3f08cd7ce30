package service

import (
	"fmt"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

// RoutingAction names a task state-machine operation.
type RoutingAction string

const (
	ActionCreate            RoutingAction = "create"
	ActionPickUp            RoutingAction = "pickup"
	ActionAssignToMember    RoutingAction = "assign_to_member"
	ActionAssignToTeam      RoutingAction = "assign_to_team"
	ActionReassign          RoutingAction = "reassign"
	ActionComplete          RoutingAction = "complete"
	ActionSendBackToManager RoutingAction = "send_back_to_manager"
	ActionHandOff           RoutingAction = "hand_off"
	ActionSendToSales       RoutingAction = "send_to_sales"
	ActionArchive           RoutingAction = "archive"
	ActionUploadFiles       RoutingAction = "upload_files"
	ActionDeleteFile        RoutingAction = "delete_file"
)

// capability describes what an actor is to a particular task.
type capability struct {
	role        models.UserRole
	superAdmin  bool
	manager     bool
	deptManager bool
	deptMember  bool
	roleIsDept  bool
	assignee    bool
	creator     bool
}

func capabilityOf(actor *models.User, task *models.Task) capability {
	c := capability{
		role:       actor.Role,
		superAdmin: actor.Role == models.RoleSuperAdmin,
		manager:    actor.IsManager,
		deptMember: actor.InDepartment(task.CurrentDepartment),
		roleIsDept: string(actor.Role) == string(task.CurrentDepartment),
		creator:    task.CreatedByID == actor.ID,
	}
	c.deptManager = c.manager && c.deptMember
	c.assignee = task.AssignedToID != nil && *task.AssignedToID == actor.ID
	return c
}

func (c capability) editorialOrDesign() bool {
	return c.role == models.RoleEditorial || c.role == models.RoleDesign
}

// routeRule is one cell of the routing table.
type routeRule struct {
	// statuses lists legal source statuses; nil accepts any non-terminal status.
	statuses []models.TaskStatus
	allow    func(c capability) bool
	denial   string
	// target is the destination department for hand-offs.
	target models.Department
}

// routingTable is keyed by action then by the task's current department.
// A missing department entry means the action is not available there.
var routingTable = map[RoutingAction]map[models.Department]routeRule{
	ActionPickUp: everyDepartment(routeRule{
		statuses: []models.TaskStatus{models.TaskStatusOpen},
		allow:    func(c capability) bool { return true },
	}),
	ActionAssignToMember: everyDepartment(routeRule{
		statuses: []models.TaskStatus{models.TaskStatusOpen, models.TaskStatusAssigned},
		allow:    func(c capability) bool { return c.deptManager },
		denial:   "only the department manager can assign tasks to team members",
	}),
	ActionAssignToTeam: everyDepartment(routeRule{
		allow:  func(c capability) bool { return c.superAdmin || c.deptManager },
		denial: "only the department manager can assign tasks to the team",
	}),
	ActionReassign: everyDepartment(routeRule{
		allow: func(c capability) bool {
			return c.superAdmin || c.manager || c.role == models.RoleManager || c.roleIsDept || c.deptMember
		},
		denial: "you can only reassign tasks in your department or if you are a manager",
	}),
	ActionComplete: everyDepartment(routeRule{
		allow:  func(c capability) bool { return c.superAdmin || c.manager || c.assignee || c.deptMember },
		denial: "only the assignee, a department member or a manager can complete this task",
	}),
	ActionSendBackToManager: {
		models.DepartmentEditorial: sendBackRule(""),
		models.DepartmentDesign:    sendBackRule(""),
	},
	ActionHandOff: {
		models.DepartmentDesign:    sendBackRule(models.DepartmentEditorial),
		models.DepartmentEditorial: sendBackRule(models.DepartmentDesign),
	},
	ActionSendToSales: {
		models.DepartmentEditorial: {
			allow:  func(c capability) bool { return c.role == models.RoleEditorial && (c.assignee || c.manager) },
			denial: "only the assigned editor or an editorial manager can send tasks to sales",
			target: models.DepartmentSales,
		},
	},
	ActionArchive: everyDepartment(routeRule{
		statuses: []models.TaskStatus{models.TaskStatusCompleted},
		allow:    func(c capability) bool { return c.superAdmin || c.manager },
		denial:   "only managers can archive tasks",
	}),
}

func sendBackRule(target models.Department) routeRule {
	return routeRule{
		allow:  func(c capability) bool { return c.editorialOrDesign() && (c.assignee || c.manager) },
		denial: "you can only send back tasks that are assigned to you",
		target: target,
	}
}

func everyDepartment(rule routeRule) map[models.Department]routeRule {
	out := make(map[models.Department]routeRule, len(models.Departments))
	for _, dept := range models.Departments {
		out[dept] = rule
	}
	return out
}

// authorize evaluates the routing table. Terminal tasks are rejected before any
// privilege check so a completed task never reports Forbidden.
func authorize(action RoutingAction, actor *models.User, task *models.Task) (routeRule, error) {
	byDept, ok := routingTable[action]
	if !ok {
		return routeRule{}, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("unknown routing action %q", action))
	}
	if action == ActionArchive {
		if task.Status == models.TaskStatusArchived {
			return routeRule{}, appErrors.Clone(appErrors.ErrInvalidTransition, "task is already archived")
		}
	} else if task.Status.Terminal() {
		return routeRule{}, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("task is %s and cannot be routed", task.Status))
	}

	rule, ok := byDept[task.CurrentDepartment]
	if !ok {
		return routeRule{}, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("action not available for tasks in the %s department", task.CurrentDepartment))
	}
	if !rule.allow(capabilityOf(actor, task)) {
		return routeRule{}, appErrors.Clone(appErrors.ErrForbidden, rule.denial)
	}
	if rule.statuses != nil && !containsStatus(rule.statuses, task.Status) {
		return routeRule{}, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("action not allowed while task is %s", task.Status))
	}
	return rule, nil
}

func containsStatus(list []models.TaskStatus, status models.TaskStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

// isIntermediateCompletion reports whether completing the task hands it back to
// its editorial requester instead of closing it. A requester who has left
// editorial makes the completion terminal.
func isIntermediateCompletion(actor *models.User, task *models.Task, requester *models.User) bool {
	return task.CurrentDepartment == models.DepartmentDesign &&
		task.OriginalRequester != nil &&
		requester.InDepartment(models.DepartmentEditorial) &&
		!actor.IsManager
}

// editorialRequester returns the first candidate who belongs to editorial, in
// priority order, or nil when none does.
func editorialRequester(candidates ...*models.User) *string {
	for _, user := range candidates {
		if user.InDepartment(models.DepartmentEditorial) {
			return idPtr(user)
		}
	}
	return nil
}

// canCreateTask reports whether actor may open a task.
func canCreateTask(actor *models.User) bool {
	switch actor.Role {
	case models.RoleSales, models.RoleManager, models.RoleCXO, models.RoleSuperAdmin:
		return true
	case models.RoleEditorial, models.RoleDesign:
		return actor.IsManager
	}
	return false
}
