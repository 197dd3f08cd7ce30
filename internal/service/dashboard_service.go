package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

type dashboardTaskSource interface {
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
	DepartmentStats(ctx context.Context, dept models.Department) (*models.DepartmentStats, error)
	Workload(ctx context.Context, dept models.Department) ([]models.MemberWorkload, error)
}

type unreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int, error)
}

type pendingArticleLister interface {
	List(ctx context.Context, filter models.CXOArticleFilter) ([]models.CXOArticle, int, error)
}

type dashboardUserLookup interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.User, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL       time.Duration
	UpcomingWindow time.Duration
	ListLimit      int
}

// DashboardService composes the per-user and per-department overviews.
type DashboardService struct {
	tasks         dashboardTaskSource
	notifications unreadCounter
	articles      pendingArticleLister
	users         dashboardUserLookup
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Tasks         dashboardTaskSource
	Notifications unreadCounter
	Articles      pendingArticleLister
	Users         dashboardUserLookup
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.UpcomingWindow <= 0 {
		cfg.UpcomingWindow = 7 * 24 * time.Hour
	}
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 50
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		tasks:         params.Tasks,
		notifications: params.Notifications,
		articles:      params.Articles,
		users:         params.Users,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// User returns the personal dashboard of the actor.
func (s *DashboardService) User(ctx context.Context, userID string) (*models.UserDashboard, error) {
	actor, err := s.actor(ctx, userID)
	if err != nil {
		return nil, err
	}

	todo, _, err := s.tasks.List(ctx, models.TaskFilter{
		AssignedTo:  actor.ID,
		ExcludeDone: true,
		SortBy:      "deadline",
		SortOrder:   "asc",
		Page:        1,
		PageSize:    s.cfg.ListLimit,
	})
	if err != nil {
		return nil, internalError(err, "failed to load todo tasks")
	}

	now := s.now().UTC()
	until := now.Add(s.cfg.UpcomingWindow)
	upcoming, _, err := s.tasks.List(ctx, models.TaskFilter{
		AssignedTo:   actor.ID,
		ExcludeDone:  true,
		DeadlineFrom: &now,
		DeadlineTo:   &until,
		SortBy:       "deadline",
		SortOrder:    "asc",
		Page:         1,
		PageSize:     s.cfg.ListLimit,
	})
	if err != nil {
		return nil, internalError(err, "failed to load upcoming deadlines")
	}

	unread, err := s.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, internalError(err, "failed to count notifications")
	}

	dashboard := &models.UserDashboard{
		TodoTasks:         nonNilTasks(todo),
		UpcomingDeadlines: nonNilTasks(upcoming),
		UnreadCount:       unread,
	}
	if canReview(actor) && s.articles != nil {
		pending, _, err := s.articles.List(ctx, models.CXOArticleFilter{
			Status:   []models.CXOArticleStatus{models.ArticleStatusPending},
			Page:     1,
			PageSize: s.cfg.ListLimit,
		})
		if err != nil {
			return nil, internalError(err, "failed to load pending articles")
		}
		dashboard.PendingArticles = pending
	}
	return dashboard, nil
}

// Manager returns the department overview. Super admins pick the department;
// everyone else sees their own. The bool reports a cache hit.
func (s *DashboardService) Manager(ctx context.Context, userID string, requested *models.Department) (*models.ManagerDashboard, bool, error) {
	actor, err := s.actor(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	var dept models.Department
	switch {
	case actor.Role == models.RoleSuperAdmin && requested != nil:
		dept = *requested
	case actor.IsManager && actor.Department != nil:
		dept = *actor.Department
	case actor.Role == models.RoleSuperAdmin:
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "department is required")
	default:
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "only department managers can view the team dashboard")
	}

	key := CacheKey(cacheGroupDashboard, "manager", string(dept))
	var cached models.ManagerDashboard
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	dashboard, err := s.composeManager(ctx, dept)
	if err != nil {
		return nil, false, err
	}
	if err := s.cache.Set(ctx, key, dashboard, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
	return dashboard, false, nil
}

func (s *DashboardService) composeManager(ctx context.Context, dept models.Department) (*models.ManagerDashboard, error) {
	tasks, _, err := s.tasks.List(ctx, models.TaskFilter{
		Department:  &dept,
		ExcludeDone: true,
		SortBy:      "priority",
		Page:        1,
		PageSize:    s.cfg.ListLimit,
	})
	if err != nil {
		return nil, internalError(err, "failed to load department tasks")
	}
	open, _, err := s.tasks.List(ctx, models.TaskFilter{
		Department: &dept,
		Status:     []models.TaskStatus{models.TaskStatusOpen},
		Unassigned: true,
		Page:       1,
		PageSize:   s.cfg.ListLimit,
	})
	if err != nil {
		return nil, internalError(err, "failed to load open tasks")
	}
	workload, err := s.tasks.Workload(ctx, dept)
	if err != nil {
		return nil, internalError(err, "failed to load team workload")
	}
	stats, err := s.tasks.DepartmentStats(ctx, dept)
	if err != nil {
		return nil, internalError(err, "failed to load department stats")
	}
	if workload == nil {
		workload = []models.MemberWorkload{}
	}
	return &models.ManagerDashboard{
		Department: dept,
		Tasks:      nonNilTasks(tasks),
		Workload:   workload,
		OpenTasks:  nonNilTasks(open),
		Stats:      *stats,
	}, nil
}

func (s *DashboardService) actor(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "acting user no longer exists")
		}
		return nil, internalError(err, "failed to load user")
	}
	return user, nil
}

func nonNilTasks(tasks []models.Task) []models.Task {
	if tasks == nil {
		return []models.Task{}
	}
	return tasks
}
