package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

type txRunner interface {
	WithinTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error
}

type taskStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, task *models.Task) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Task, error)
	GetForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Task, error)
	Update(ctx context.Context, exec sqlx.ExtContext, task *models.Task) error
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
}

type historyStore interface {
	Append(ctx context.Context, exec sqlx.ExtContext, entry *models.TaskHistory) error
	ListByTask(ctx context.Context, taskID string) ([]models.TaskHistory, error)
}

type notificationWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, n *models.Notification) error
}

type userDirectory interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.User, error)
	FindManager(ctx context.Context, exec sqlx.ExtContext, dept models.Department) (*models.User, error)
	FindAnyMember(ctx context.Context, exec sqlx.ExtContext, dept models.Department) (*models.User, error)
	FindMembers(ctx context.Context, exec sqlx.ExtContext, dept models.Department) ([]models.User, error)
}

type linkedArticleStore interface {
	GetByTaskID(ctx context.Context, exec sqlx.ExtContext, taskID string) (*models.CXOArticle, error)
	Update(ctx context.Context, exec sqlx.ExtContext, article *models.CXOArticle) error
}

// taskEngine holds the persistence steps shared by every unit of work touching a task.
type taskEngine struct {
	tasks         taskStore
	history       historyStore
	notifications notificationWriter
	users         userDirectory
	articles      linkedArticleStore
	now           func() time.Time
}

// change accumulates what a routing step wants persisted.
type change struct {
	history       *models.TaskHistory
	notifications []models.Notification
	message       string
}

func (c *change) notify(userID string, task *models.Task, message string) {
	if userID == "" {
		return
	}
	n := models.Notification{UserID: userID, Message: message}
	if task != nil && task.ID != "" {
		id := task.ID
		n.TaskID = &id
	}
	c.notifications = append(c.notifications, n)
}

func (e *taskEngine) loadActor(ctx context.Context, exec sqlx.ExtContext, actorID string) (*models.User, error) {
	if actorID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	actor, err := e.users.FindByID(ctx, exec, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user no longer exists")
		}
		return nil, internalError(err, "failed to load acting user")
	}
	return actor, nil
}

func (e *taskEngine) lockTask(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Task, error) {
	task, err := e.tasks.GetForUpdate(ctx, exec, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, internalError(err, "failed to load task")
	}
	return task, nil
}

func (e *taskEngine) findUser(ctx context.Context, exec sqlx.ExtContext, id *string) (*models.User, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	user, err := e.users.FindByID(ctx, exec, *id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, internalError(err, "failed to load user")
	}
	return user, nil
}

// username renders a user reference for history snapshots.
func (e *taskEngine) username(ctx context.Context, exec sqlx.ExtContext, id *string, fallback string) (string, error) {
	user, err := e.findUser(ctx, exec, id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return fallback, nil
	}
	return user.Username, nil
}

// saveTask persists a routed task guarded by its version.
func (e *taskEngine) saveTask(ctx context.Context, exec sqlx.ExtContext, task *models.Task) error {
	if err := e.tasks.Update(ctx, exec, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidTransition, "task was changed by another request, reload and retry")
		}
		return internalError(err, "failed to update task")
	}
	return nil
}

// record writes the history row and notifications of a change.
func (e *taskEngine) record(ctx context.Context, exec sqlx.ExtContext, task *models.Task, actor *models.User, ch *change) error {
	if ch.history != nil {
		ch.history.TaskID = task.ID
		ch.history.UserID = actor.ID
		ch.history.Username = actor.Username
		ch.history.CreatedAt = e.now()
		if err := e.history.Append(ctx, exec, ch.history); err != nil {
			return internalError(err, "failed to record task history")
		}
	}
	for i := range ch.notifications {
		n := &ch.notifications[i]
		if n.TaskID == nil && task.ID != "" {
			id := task.ID
			n.TaskID = &id
		}
		if err := e.notifications.Create(ctx, exec, n); err != nil {
			return internalError(err, "failed to create notification")
		}
	}
	return nil
}

// syncLinkedArticle refreshes the article backed by task, if any.
func (e *taskEngine) syncLinkedArticle(ctx context.Context, exec sqlx.ExtContext, task *models.Task) (*models.CXOArticle, error) {
	if e.articles == nil {
		return nil, nil
	}
	article, err := e.articles.GetByTaskID(ctx, exec, task.ID)
	if err != nil {
		return nil, internalError(err, "failed to load linked article")
	}
	if article == nil {
		return nil, nil
	}
	SyncArticle(article, task, e.now())
	if err := e.articles.Update(ctx, exec, article); err != nil {
		return nil, internalError(err, "failed to sync linked article")
	}
	return article, nil
}

func newHistory(action string, oldValue, newValue string, from, to *models.Department, comment string) *models.TaskHistory {
	return &models.TaskHistory{
		Action:         action,
		OldValue:       optionalString(oldValue),
		NewValue:       optionalString(newValue),
		FromDepartment: from,
		ToDepartment:   to,
		Comment:        optionalString(comment),
	}
}

func deptPtr(d models.Department) *models.Department {
	return &d
}

func idPtr(user *models.User) *string {
	if user == nil {
		return nil
	}
	id := user.ID
	return &id
}
