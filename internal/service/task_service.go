package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

const myTasksPageSize = 20

type catalogLookup interface {
	GetBrand(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Brand, error)
	GetEdition(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Edition, error)
}

type taskFileLister interface {
	ListByTask(ctx context.Context, taskID string) ([]models.TaskFile, error)
}

// TaskStores groups the persistence collaborators of the task engine.
type TaskStores struct {
	Tasks         taskStore
	History       historyStore
	Notifications notificationWriter
	Users         userDirectory
	Articles      linkedArticleStore
}

func (s TaskStores) engine() *taskEngine {
	return &taskEngine{
		tasks:         s.Tasks,
		history:       s.History,
		notifications: s.Notifications,
		users:         s.Users,
		articles:      s.Articles,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RoutingResult reports the outcome of a routing action.
type RoutingResult struct {
	Task    *models.Task        `json:"task"`
	History *models.TaskHistory `json:"history,omitempty"`
	Article *models.CXOArticle  `json:"article,omitempty"`
	Changed bool                `json:"changed"`
	Message string              `json:"message"`
}

// routeContext is the state handed to a single transition inside its transaction.
type routeContext struct {
	ctx    context.Context
	exec   sqlx.ExtContext
	actor  *models.User
	task   *models.Task
	rule   routeRule
	change change
}

// TaskService implements the task routing state machine.
type TaskService struct {
	engine    *taskEngine
	tx        txRunner
	catalog   catalogLookup
	files     taskFileLister
	validator *validator.Validate
	metrics   *MetricsService
	cache     *CacheService
	logger    *zap.Logger
}

// NewTaskService constructs the service.
func NewTaskService(stores TaskStores, tx txRunner, catalog catalogLookup, files taskFileLister, validate *validator.Validate, metrics *MetricsService, cache *CacheService, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		engine:    stores.engine(),
		tx:        tx,
		catalog:   catalog,
		files:     files,
		validator: validate,
		metrics:   metrics,
		cache:     cache,
		logger:    logger,
	}
}

// route runs one transition atomically: lock, authorize, apply, persist, record, sync.
func (s *TaskService) route(ctx context.Context, action RoutingAction, taskID, actorID string, apply func(rc *routeContext) error) (*RoutingResult, error) {
	var result *RoutingResult
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		task, err := s.engine.lockTask(ctx, exec, taskID)
		if err != nil {
			return err
		}
		rule, err := authorize(action, actor, task)
		if err != nil {
			return err
		}
		rc := &routeContext{ctx: ctx, exec: exec, actor: actor, task: task, rule: rule}
		if err := apply(rc); err != nil {
			return err
		}
		if rc.change.history == nil {
			result = &RoutingResult{Task: task, Message: rc.change.message}
			return nil
		}
		if err := s.engine.saveTask(ctx, exec, task); err != nil {
			return err
		}
		if err := s.engine.record(ctx, exec, task, actor, &rc.change); err != nil {
			return err
		}
		article, err := s.engine.syncLinkedArticle(ctx, exec, task)
		if err != nil {
			return err
		}
		result = &RoutingResult{Task: task, History: rc.change.history, Article: article, Changed: true, Message: rc.change.message}
		return nil
	})
	s.metrics.RecordRoutingAction(string(action), outcomeOf(err))
	if err != nil {
		return nil, err
	}
	if result.Changed {
		s.logger.Info("task routed",
			zap.String("action", string(action)),
			zap.String("task_id", taskID),
			zap.String("actor_id", actorID),
			zap.String("status", string(result.Task.Status)),
			zap.String("department", string(result.Task.CurrentDepartment)),
		)
		s.cache.InvalidateGroup(ctx, cacheGroupDashboard)
	}
	return result, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case appErrors.Is(err, appErrors.ErrForbidden):
		return OutcomeForbidden
	case appErrors.Is(err, appErrors.ErrInvalidTransition):
		return OutcomeInvalid
	case appErrors.Is(err, appErrors.ErrValidation):
		return OutcomeRejected
	case appErrors.Is(err, appErrors.ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}

func invalidTransition(format string, args ...interface{}) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf(format, args...))
}

// Create opens a task in the requested department, handing it to the department manager when one exists.
func (s *TaskService) Create(ctx context.Context, actorID string, req dto.CreateTaskRequest) (*RoutingResult, error) {
	req.BrandID = strings.TrimSpace(req.BrandID)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordRoutingAction(string(ActionCreate), OutcomeRejected)
		return nil, validationError(err)
	}

	var result *RoutingResult
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		if !canCreateTask(actor) {
			return appErrors.Clone(appErrors.ErrForbidden, "only sales, cxo, managers or department managers can create tasks")
		}
		if err := ensureCatalog(ctx, exec, s.catalog, req.BrandID, req.EditionID); err != nil {
			return err
		}

		manager, err := s.engine.users.FindManager(ctx, exec, req.Department)
		if err != nil {
			return internalError(err, "failed to resolve department manager")
		}

		task := buildTask(actor, req)
		task.AssignedToID = idPtr(manager)
		task.Status = models.TaskStatusOpen
		if manager != nil {
			task.Status = models.TaskStatusAssigned
		}
		if req.Department == models.DepartmentDesign && actor.InDepartment(models.DepartmentEditorial) {
			task.OriginalRequester = idPtr(actor)
		}
		if err := s.engine.tasks.Create(ctx, exec, task); err != nil {
			return internalError(err, "failed to create task")
		}

		ch := change{history: newHistory(models.ActionTaskCreated, "", string(task.Status), nil, nil, req.Comment)}
		if manager != nil {
			ch.notify(manager.ID, task, fmt.Sprintf("New task for %s department assigned by %s", req.Department.Title(), actor.Username))
		}
		if err := s.engine.record(ctx, exec, task, actor, &ch); err != nil {
			return err
		}
		result = &RoutingResult{Task: task, History: ch.history, Changed: true, Message: "task created"}
		return nil
	})
	s.metrics.RecordRoutingAction(string(ActionCreate), outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.logger.Info("task created",
		zap.String("task_id", result.Task.ID),
		zap.String("actor_id", actorID),
		zap.String("department", string(result.Task.CurrentDepartment)),
	)
	s.cache.InvalidateGroup(ctx, cacheGroupDashboard)
	return result, nil
}

func buildTask(actor *models.User, req dto.CreateTaskRequest) *models.Task {
	task := &models.Task{
		BrandID:            optionalString(req.BrandID),
		CreatedByID:        actor.ID,
		AssignedDepartment: req.Department,
		CurrentDepartment:  req.Department,
		Title:              strings.TrimSpace(req.Title),
		Category:           req.Category,
		CompanyName:        req.CompanyName,
		CompanyURL:         trimmed(req.CompanyURL),
		Description:        strings.TrimSpace(req.Description),
		Deadline:           req.Deadline,
		Priority:           req.Priority,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityNormal
	}
	if task.Title == "" {
		task.Title = fmt.Sprintf("%s: %s", req.Category, req.CompanyName)
	}
	if edition := trimmed(req.EditionID); edition != nil {
		task.EditionID = edition
	} else {
		task.EditionOther = trimmed(req.EditionOther)
	}
	if req.Category == models.CategoryOther {
		task.CategoryOther = trimmed(req.CategoryOther)
	}
	return task
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	return optionalString(*value)
}

func ensureCatalog(ctx context.Context, exec sqlx.ExtContext, catalog catalogLookup, brandID string, editionID *string) error {
	if catalog == nil {
		return nil
	}
	if _, err := catalog.GetBrand(ctx, exec, brandID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "brand not found")
		}
		return internalError(err, "failed to load brand")
	}
	if id := trimmed(editionID); id != nil {
		if _, err := catalog.GetEdition(ctx, exec, *id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "edition not found")
			}
			return internalError(err, "failed to load edition")
		}
	}
	return nil
}

// PickUp assigns an open team task to the acting department member.
func (s *TaskService) PickUp(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*RoutingResult, error) {
	return s.route(ctx, ActionPickUp, taskID, actorID, func(rc *routeContext) error {
		task, actor := rc.task, rc.actor
		if task.AssignedToID != nil {
			return invalidTransition("task is already assigned")
		}
		if actor.Department == nil {
			return invalidTransition("you must belong to a department to pick up tasks")
		}
		if !actor.InDepartment(task.CurrentDepartment) {
			return invalidTransition("you can only pick up tasks in your department")
		}
		task.AssignedToID = idPtr(actor)
		task.Status = models.TaskStatusAssigned

		comment := stringOr(optionalString(req.Comment), fmt.Sprintf("Task picked up by %s", actor.Username))
		rc.change.history = newHistory(models.ActionTaskPickedUp, string(models.TaskStatusOpen), string(models.TaskStatusAssigned), nil, nil, comment)
		rc.change.message = "task picked up"
		return nil
	})
}

// AssignToMember lets a department manager hand the task to one member and records ownership.
func (s *TaskService) AssignToMember(ctx context.Context, actorID, taskID string, req dto.AssignMemberRequest) (*RoutingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordRoutingAction(string(ActionAssignToMember), OutcomeRejected)
		return nil, validationError(err)
	}
	return s.route(ctx, ActionAssignToMember, taskID, actorID, func(rc *routeContext) error {
		task, actor := rc.task, rc.actor
		member, err := s.engine.findUser(rc.ctx, rc.exec, &req.MemberID)
		if err != nil {
			return err
		}
		if member == nil || !member.InDepartment(task.CurrentDepartment) {
			return appErrors.Clone(appErrors.ErrValidation, "invalid team member selected")
		}
		oldAssignee, err := s.engine.username(rc.ctx, rc.exec, task.AssignedToID, "Unassigned")
		if err != nil {
			return err
		}

		var owner **string
		switch task.CurrentDepartment {
		case models.DepartmentEditorial:
			owner = &task.EditorialOwnerID
		case models.DepartmentDesign:
			owner = &task.DesignOwnerID
		}
		note := ""
		if owner != nil {
			previous, err := s.engine.username(rc.ctx, rc.exec, *owner, "")
			if err != nil {
				return err
			}
			if previous == "" {
				note = fmt.Sprintf(" [Owner set: %s]", member.Username)
			} else {
				note = fmt.Sprintf(" [Owner changed: %s → %s]", previous, member.Username)
			}
			*owner = idPtr(member)
		}

		task.AssignedToID = idPtr(member)
		task.Status = models.TaskStatusAssigned

		comment := stringOr(optionalString(req.Comment), fmt.Sprintf("Manager assigned task to %s", member.Username))
		rc.change.history = newHistory(models.ActionAssignedByManager, oldAssignee, member.Username+note, nil, nil, comment)
		rc.change.notify(member.ID, task, fmt.Sprintf("Task #%s assigned to you by %s", task.ID, actor.Username))
		rc.change.message = fmt.Sprintf("task assigned to %s", member.Username)
		return nil
	})
}

// AssignToTeam clears the individual assignee so any department member can pick the task up.
func (s *TaskService) AssignToTeam(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*RoutingResult, error) {
	return s.route(ctx, ActionAssignToTeam, taskID, actorID, func(rc *routeContext) error {
		task := rc.task
		if task.AssignedToID == nil {
			rc.change.message = "task is already assigned to the team"
			return nil
		}
		oldAssignee, err := s.engine.username(rc.ctx, rc.exec, task.AssignedToID, "Unassigned")
		if err != nil {
			return err
		}
		oldStatus := task.Status
		task.AssignedToID = nil
		task.Status = models.TaskStatusOpen

		comment := stringOr(optionalString(req.Comment), "Task made available to team")
		rc.change.history = newHistory(models.ActionAssignedToTeam,
			fmt.Sprintf("%s (%s)", oldAssignee, oldStatus),
			fmt.Sprintf("%s team (%s)", task.CurrentDepartment, models.TaskStatusOpen),
			nil, nil, comment)
		rc.change.message = fmt.Sprintf("task assigned to %s team", task.CurrentDepartment)
		return nil
	})
}

// Reassign moves the task to another department and optionally a named member of it.
func (s *TaskService) Reassign(ctx context.Context, actorID, taskID string, req dto.ReassignRequest) (*RoutingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordRoutingAction(string(ActionReassign), OutcomeRejected)
		return nil, validationError(err)
	}
	return s.route(ctx, ActionReassign, taskID, actorID, func(rc *routeContext) error {
		task, actor := rc.task, rc.actor
		newDept := req.Department

		var assignee *models.User
		if id := trimmed(req.AssigneeID); id != nil {
			user, err := s.engine.findUser(rc.ctx, rc.exec, id)
			if err != nil {
				return err
			}
			if user == nil {
				return appErrors.Clone(appErrors.ErrValidation, "selected user does not exist")
			}
			if !user.InDepartment(newDept) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("selected user is not a member of the %s department", newDept))
			}
			assignee = user
		}

		current, err := s.engine.findUser(rc.ctx, rc.exec, task.AssignedToID)
		if err != nil {
			return err
		}
		oldDept := task.CurrentDepartment
		oldAssignee := "Unassigned"
		if current != nil {
			oldAssignee = current.Username
		}

		if newDept == models.DepartmentDesign && oldDept == models.DepartmentEditorial && task.OriginalRequester == nil {
			task.OriginalRequester = editorialRequester(current, actor)
		}

		if assignee != nil {
			rc.change.notify(assignee.ID, task, fmt.Sprintf("Task reassigned to you by %s (%s department)", actor.Username, newDept.Title()))
		} else {
			manager, err := s.engine.users.FindManager(rc.ctx, rc.exec, newDept)
			if err != nil {
				return internalError(err, "failed to resolve department manager")
			}
			if manager != nil {
				assignee = manager
				rc.change.notify(manager.ID, task, fmt.Sprintf("New task for %s department from %s", newDept.Title(), actor.Username))
			}
		}

		task.AssignedToID = idPtr(assignee)
		task.AssignedDepartment = newDept
		task.CurrentDepartment = newDept
		task.Status = models.TaskStatusOpen
		newAssignee := "Unassigned"
		if assignee != nil {
			task.Status = models.TaskStatusAssigned
			newAssignee = assignee.Username
		}

		rc.change.history = newHistory(models.ActionTaskReassigned,
			fmt.Sprintf("%s (%s)", oldAssignee, oldDept),
			fmt.Sprintf("%s (%s)", newAssignee, newDept),
			deptPtr(oldDept), deptPtr(newDept), req.Comment)
		rc.change.message = "task reassigned"
		return nil
	})
}

// Complete closes the task, or returns design work to its editorial requester.
func (s *TaskService) Complete(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*RoutingResult, error) {
	return s.route(ctx, ActionComplete, taskID, actorID, func(rc *routeContext) error {
		task, actor := rc.task, rc.actor
		oldStatus := task.Status

		requester, err := s.engine.findUser(rc.ctx, rc.exec, task.OriginalRequester)
		if err != nil {
			return err
		}
		if isIntermediateCompletion(actor, task, requester) {
			task.Status = models.TaskStatusReview
			task.AssignedToID = idPtr(requester)
			task.AssignedDepartment = models.DepartmentEditorial
			task.CurrentDepartment = models.DepartmentEditorial

			rc.change.history = newHistory(models.ActionDesignReturned, string(oldStatus), string(models.TaskStatusReview),
				deptPtr(models.DepartmentDesign), deptPtr(models.DepartmentEditorial), req.Comment)
			rc.change.notify(requester.ID, task, fmt.Sprintf("Design work completed by %s. Task returned for your review.", actor.Username))
			rc.change.message = "design work completed, task returned to editorial for review"
			return nil
		}

		now := s.engine.now()
		task.Status = models.TaskStatusCompleted
		task.CompletedAt = &now
		rc.change.history = newHistory(models.ActionTaskCompleted, string(oldStatus), string(models.TaskStatusCompleted), nil, nil, req.Comment)
		rc.change.message = "task marked as completed"
		return nil
	})
}

// SendBackToManager returns the task to the manager of its current department.
func (s *TaskService) SendBackToManager(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*RoutingResult, error) {
	return s.route(ctx, ActionSendBackToManager, taskID, actorID, func(rc *routeContext) error {
		task, actor := rc.task, rc.actor
		manager, err := s.engine.users.FindManager(rc.ctx, rc.exec, task.CurrentDepartment)
		if err != nil {
			return internalError(err, "failed to resolve department manager")
		}
		if manager == nil {
			return invalidTransition("no manager found for the %s department", task.CurrentDepartment)
		}
		oldAssignee, err := s.engine.username(rc.ctx, rc.exec, task.AssignedToID, "Unassigned")
		if err != nil {
			return err
		}
		task.AssignedToID = idPtr(manager)
		task.Status = models.TaskStatusAssigned

		comment := stringOr(optionalString(req.Comment), fmt.Sprintf("Sent back to %s for review", manager.Username))
		rc.change.history = newHistory(models.ActionSentBackToManager, oldAssignee, manager.Username, nil, nil, comment)
		rc.change.notify(manager.ID, task, fmt.Sprintf("Task #%s sent back to you for review by %s", task.ID, actor.Username))
		rc.change.message = fmt.Sprintf("task sent back to %s for review", manager.Username)
		return nil
	})
}

// HandOff moves the task between editorial and design, resolving the next individual from ownership memory.
func (s *TaskService) HandOff(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*RoutingResult, error) {
	return s.route(ctx, ActionHandOff, taskID, actorID, func(rc *routeContext) error {
		task, actor := rc.task, rc.actor
		from, to := task.CurrentDepartment, rc.rule.target

		var (
			next *models.User
			err  error
		)
		if to == models.DepartmentEditorial {
			next, err = s.resolveEditorialReturn(rc.ctx, rc.exec, task)
		} else {
			next, err = s.resolveDesignTarget(rc.ctx, rc.exec, task)
		}
		if err != nil {
			return err
		}
		current, err := s.engine.findUser(rc.ctx, rc.exec, task.AssignedToID)
		if err != nil {
			return err
		}
		oldAssignee := "Unassigned"
		if current != nil {
			oldAssignee = current.Username
		}

		if to == models.DepartmentDesign && task.OriginalRequester == nil {
			task.OriginalRequester = editorialRequester(actor, current)
		}
		task.AssignedToID = idPtr(next)
		task.AssignedDepartment = to
		task.CurrentDepartment = to
		task.Status = models.TaskStatusOpen
		newAssignee := "Unassigned"
		if next != nil {
			task.Status = models.TaskStatusAssigned
			newAssignee = next.Username
		}

		action, fallback := models.ActionDesignSentToEditor, "Design work completed, sending back to editor"
		notice := fmt.Sprintf("Task #%s design completed - returned to you by %s", task.ID, actor.Username)
		if to == models.DepartmentDesign {
			action, fallback = models.ActionEditorialSentDesign, "Editorial work completed, sending to design"
			notice = fmt.Sprintf("Task #%s sent to you for design by %s", task.ID, actor.Username)
		}
		rc.change.history = newHistory(action, oldAssignee, newAssignee, deptPtr(from), deptPtr(to), stringOr(optionalString(req.Comment), fallback))
		if next != nil {
			rc.change.notify(next.ID, task, notice)
			rc.change.message = fmt.Sprintf("task sent to %s", next.Username)
		} else {
			rc.change.message = fmt.Sprintf("task sent to %s team", to)
		}
		return nil
	})
}

// resolveEditorialReturn picks who receives design work back:
// requester, editorial owner, editorial creator, editorial manager, any editorial member.
func (s *TaskService) resolveEditorialReturn(ctx context.Context, exec sqlx.ExtContext, task *models.Task) (*models.User, error) {
	requester, err := s.engine.findUser(ctx, exec, task.OriginalRequester)
	if err != nil {
		return nil, err
	}
	if requester.InDepartment(models.DepartmentEditorial) {
		return requester, nil
	}
	owner, err := s.engine.findUser(ctx, exec, task.EditorialOwnerID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		return owner, nil
	}
	creator, err := s.engine.findUser(ctx, exec, &task.CreatedByID)
	if err != nil {
		return nil, err
	}
	if creator.InDepartment(models.DepartmentEditorial) {
		return creator, nil
	}
	manager, err := s.engine.users.FindManager(ctx, exec, models.DepartmentEditorial)
	if err != nil {
		return nil, internalError(err, "failed to resolve editorial manager")
	}
	if manager != nil {
		return manager, nil
	}
	member, err := s.engine.users.FindAnyMember(ctx, exec, models.DepartmentEditorial)
	if err != nil {
		return nil, internalError(err, "failed to resolve editorial member")
	}
	return member, nil
}

func (s *TaskService) resolveDesignTarget(ctx context.Context, exec sqlx.ExtContext, task *models.Task) (*models.User, error) {
	owner, err := s.engine.findUser(ctx, exec, task.DesignOwnerID)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		return owner, nil
	}
	manager, err := s.engine.users.FindManager(ctx, exec, models.DepartmentDesign)
	if err != nil {
		return nil, internalError(err, "failed to resolve design manager")
	}
	return manager, nil
}

// SendToSales returns the task to the sales creator for client feedback.
func (s *TaskService) SendToSales(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*RoutingResult, error) {
	return s.route(ctx, ActionSendToSales, taskID, actorID, func(rc *routeContext) error {
		task, actor := rc.task, rc.actor
		creator, err := s.engine.findUser(rc.ctx, rc.exec, &task.CreatedByID)
		if err != nil {
			return err
		}
		if !creator.InDepartment(models.DepartmentSales) {
			return invalidTransition("no sales person found for this task")
		}
		oldAssignee, err := s.engine.username(rc.ctx, rc.exec, task.AssignedToID, "Unassigned")
		if err != nil {
			return err
		}
		from := task.CurrentDepartment
		task.AssignedToID = idPtr(creator)
		task.AssignedDepartment = models.DepartmentSales
		task.CurrentDepartment = models.DepartmentSales
		task.Status = models.TaskStatusAssigned

		comment := stringOr(optionalString(req.Comment), "Sent back to sales for client feedback")
		rc.change.history = newHistory(models.ActionSentToSales, oldAssignee, creator.Username, deptPtr(from), deptPtr(models.DepartmentSales), comment)
		rc.change.notify(creator.ID, task, fmt.Sprintf("Task #%s sent back to you for client feedback by %s", task.ID, actor.Username))
		rc.change.message = fmt.Sprintf("task sent to %s for client feedback", creator.Username)
		return nil
	})
}

// Archive retires a completed task.
func (s *TaskService) Archive(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*RoutingResult, error) {
	return s.route(ctx, ActionArchive, taskID, actorID, func(rc *routeContext) error {
		task := rc.task
		now := s.engine.now()
		oldStatus := task.Status
		task.Status = models.TaskStatusArchived
		task.IsArchived = true
		task.ArchivedAt = &now

		rc.change.history = newHistory(models.ActionTaskArchived, string(oldStatus), string(models.TaskStatusArchived), nil, nil, req.Comment)
		rc.change.message = "task archived"
		return nil
	})
}

// Get returns a task with its history and live files.
func (s *TaskService) Get(ctx context.Context, taskID string) (*models.TaskDetail, error) {
	task, err := s.engine.tasks.GetByID(ctx, nil, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, internalError(err, "failed to load task")
	}
	history, err := s.engine.history.ListByTask(ctx, taskID)
	if err != nil {
		return nil, internalError(err, "failed to load task history")
	}
	detail := &models.TaskDetail{Task: task, History: history, Files: []models.TaskFile{}}
	if s.files != nil {
		files, err := s.files.ListByTask(ctx, taskID)
		if err != nil {
			return nil, internalError(err, "failed to load task files")
		}
		if files != nil {
			detail.Files = files
		}
	}
	return detail, nil
}

// History returns the chronological audit trail of a task.
func (s *TaskService) History(ctx context.Context, taskID string) (*models.Task, []models.TaskHistory, error) {
	task, err := s.engine.tasks.GetByID(ctx, nil, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, nil, internalError(err, "failed to load task")
	}
	history, err := s.engine.history.ListByTask(ctx, taskID)
	if err != nil {
		return nil, nil, internalError(err, "failed to load task history")
	}
	return task, history, nil
}

// List returns tasks matching the query.
func (s *TaskService) List(ctx context.Context, query dto.TaskQuery) (*dto.TaskListResponse, error) {
	filter := models.TaskFilter{
		Search:          strings.TrimSpace(query.Search),
		BrandID:         query.BrandID,
		EditionID:       query.EditionID,
		Status:          query.Status,
		Department:      query.Department,
		Priority:        query.Priority,
		IncludeArchived: query.Archived,
		Page:            query.Page,
		PageSize:        query.PageSize,
		SortBy:          query.SortBy,
		SortOrder:       query.SortOrder,
	}
	return s.list(ctx, filter)
}

// MyTasks lists active tasks assigned to the actor, soonest deadline first.
func (s *TaskService) MyTasks(ctx context.Context, actorID string, query dto.TaskQuery) (*dto.TaskListResponse, error) {
	filter := models.TaskFilter{
		Search:      strings.TrimSpace(query.Search),
		Status:      query.Status,
		AssignedTo:  actorID,
		ExcludeDone: len(query.Status) == 0,
		Page:        query.Page,
		PageSize:    myTasksPageSize,
		SortBy:      "deadline",
		SortOrder:   "asc",
	}
	return s.list(ctx, filter)
}

// OpenTasks lists unassigned open tasks available for pickup.
func (s *TaskService) OpenTasks(ctx context.Context, query dto.TaskQuery) (*dto.TaskListResponse, error) {
	filter := models.TaskFilter{
		Search:     strings.TrimSpace(query.Search),
		BrandID:    query.BrandID,
		Department: query.Department,
		Priority:   query.Priority,
		Status:     []models.TaskStatus{models.TaskStatusOpen},
		Unassigned: true,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	return s.list(ctx, filter)
}

func (s *TaskService) list(ctx context.Context, filter models.TaskFilter) (*dto.TaskListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = myTasksPageSize
	}
	tasks, total, err := s.engine.tasks.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list tasks")
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return &dto.TaskListResponse{
		Items:      tasks,
		Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
	}, nil
}
