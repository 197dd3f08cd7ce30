package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

// Article review actions reported on the routing counter.
const (
	ActionArticleSubmit   RoutingAction = "article_submit"
	ActionArticleApprove  RoutingAction = "article_approve"
	ActionArticleReject   RoutingAction = "article_reject"
	ActionArticleMarkUsed RoutingAction = "article_mark_used"
	ActionArticleEdit     RoutingAction = "article_edit"
)

const articleFilesDir = "cxo_articles"

type articleStore interface {
	linkedArticleStore
	Create(ctx context.Context, exec sqlx.ExtContext, article *models.CXOArticle) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CXOArticle, error)
	GetForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CXOArticle, error)
	List(ctx context.Context, filter models.CXOArticleFilter) ([]models.CXOArticle, int, error)
	AppendAnnotation(ctx context.Context, exec sqlx.ExtContext, ann *models.CXOArticleAnnotation) error
	ListAnnotations(ctx context.Context, articleID string) ([]models.CXOArticleAnnotation, error)
	AddFile(ctx context.Context, exec sqlx.ExtContext, file *models.CXOArticleFile) error
	ListFiles(ctx context.Context, articleID string) ([]models.CXOArticleFile, error)
	GetFile(ctx context.Context, id string) (*models.CXOArticleFile, error)
}

// ArticleListResponse wraps a page of articles.
type ArticleListResponse struct {
	Items      []models.CXOArticle `json:"items"`
	Pagination models.Pagination   `json:"pagination"`
}

// CXOService runs the contributed article review workflow.
type CXOService struct {
	engine      *taskEngine
	articles    articleStore
	catalog     catalogLookup
	tx          txRunner
	attachments *Attachments
	metrics     *MetricsService
	cache       *CacheService
	logger      *zap.Logger
}

// NewCXOService constructs the service. stores.Articles is replaced by articles.
func NewCXOService(stores TaskStores, articles articleStore, catalog catalogLookup, tx txRunner, attachments *Attachments, metrics *MetricsService, cache *CacheService, logger *zap.Logger) *CXOService {
	if logger == nil {
		logger = zap.NewNop()
	}
	stores.Articles = articles
	return &CXOService{
		engine:      stores.engine(),
		articles:    articles,
		catalog:     catalog,
		tx:          tx,
		attachments: attachments,
		metrics:     metrics,
		cache:       cache,
		logger:      logger,
	}
}

// reviewStep is the mutable state of one article transaction.
type reviewStep struct {
	ctx     context.Context
	exec    sqlx.ExtContext
	actor   *models.User
	article *models.CXOArticle
	design  *models.Task
}

func (s *CXOService) finish(ctx context.Context, action RoutingAction, articleID, actorID string, err error) {
	s.metrics.RecordRoutingAction(string(action), outcomeOf(err))
	if err != nil {
		return
	}
	s.logger.Info("article reviewed",
		zap.String("action", string(action)),
		zap.String("article_id", articleID),
		zap.String("actor_id", actorID),
	)
	s.cache.InvalidateGroup(ctx, cacheGroupDashboard)
}

func (s *CXOService) lockArticle(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CXOArticle, error) {
	article, err := s.articles.GetForUpdate(ctx, exec, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, internalError(err, "failed to load article")
	}
	return article, nil
}

func (s *CXOService) annotate(step *reviewStep, kind models.AnnotationKind, text, extra string) error {
	ann := newAnnotation(step.article.ID, kind, step.actor.Username, s.engine.now(), text, extra)
	if err := s.articles.AppendAnnotation(step.ctx, step.exec, &ann); err != nil {
		return internalError(err, "failed to record article annotation")
	}
	step.article.Comments = appendAnnotation(step.article.Comments, ann)
	return nil
}

func (s *CXOService) notify(step *reviewStep, userID string, taskID *string, message string) error {
	n := &models.Notification{UserID: userID, TaskID: taskID, Message: message}
	if err := s.engine.notifications.Create(step.ctx, step.exec, n); err != nil {
		return internalError(err, "failed to create notification")
	}
	return nil
}

func canReview(actor *models.User) bool {
	return actor.Role == models.RoleEditorial || actor.Role == models.RoleSuperAdmin
}

func ownsOnly(actor *models.User) bool {
	return actor.Role == models.RoleCXO || actor.Role == models.RoleSales
}

// Submit records a new article and opens its editorial review task.
func (s *CXOService) Submit(ctx context.Context, actorID string, req dto.SubmitArticleRequest, uploads []FileUpload) (*models.CXOArticleDetail, error) {
	req.BrandID = strings.TrimSpace(req.BrandID)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.BrandID == "" || req.CompanyName == "" {
		s.metrics.RecordRoutingAction(string(ActionArticleSubmit), OutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand and company name are required")
	}
	var files []storedFile
	if s.attachments != nil && len(uploads) > 0 {
		prepared, err := s.attachments.prepare(articleFilesDir, uploads, ArticleFileExtensions)
		if err != nil {
			s.metrics.RecordRoutingAction(string(ActionArticleSubmit), OutcomeRejected)
			return nil, err
		}
		files = prepared
	}

	detail := &models.CXOArticleDetail{}
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		switch actor.Role {
		case models.RoleSales, models.RoleCXO, models.RoleSuperAdmin:
		default:
			return appErrors.Clone(appErrors.ErrForbidden, "only sales, cxo or super admin users can submit articles")
		}
		editionID := trimmed(req.EditionID)
		if err := ensureCatalog(ctx, exec, s.catalog, req.BrandID, editionID); err != nil {
			return err
		}
		assignee, err := s.resolveReviewer(ctx, exec, actor, req.AssigneeID)
		if err != nil {
			return err
		}

		comments := strings.TrimSpace(req.Comments)
		task := &models.Task{
			BrandID:            &req.BrandID,
			EditionID:          editionID,
			CreatedByID:        actor.ID,
			AssignedToID:       idPtr(assignee),
			AssignedDepartment: models.DepartmentEditorial,
			CurrentDepartment:  models.DepartmentEditorial,
			Title:              fmt.Sprintf("CXO Article Review: %s", req.CompanyName),
			Category:           models.CategoryCXOArticle,
			CompanyName:        req.CompanyName,
			CompanyURL:         trimmed(req.CompanyURL),
			Description:        strings.TrimSpace(fmt.Sprintf("Review and approve CXO article for %s. %s", req.CompanyName, comments)),
			Priority:           models.PriorityNormal,
			Status:             models.TaskStatusOpen,
		}
		if assignee != nil {
			task.Status = models.TaskStatusAssigned
		}
		if err := s.engine.tasks.Create(ctx, exec, task); err != nil {
			return internalError(err, "failed to create review task")
		}
		ch := change{history: newHistory(models.ActionTaskCreated, "", string(task.Status), nil, nil,
			fmt.Sprintf("CXO article submitted by %s", actor.Username))}
		if assignee != nil {
			ch.notify(assignee.ID, task, fmt.Sprintf("New CXO Article uploaded by %s for %s - requires approval", actor.Username, req.CompanyName))
		}
		if err := s.engine.record(ctx, exec, task, actor, &ch); err != nil {
			return err
		}

		taskID := task.ID
		article := &models.CXOArticle{
			BrandID:                  req.BrandID,
			EditionID:                editionID,
			UploadedByID:             actor.ID,
			TaskID:                   &taskID,
			CompanyName:              req.CompanyName,
			ContactPersonName:        trimmed(req.ContactPersonName),
			ContactPersonDesignation: trimmed(req.ContactPersonDesignation),
			CompanyURL:               trimmed(req.CompanyURL),
			Status:                   models.ArticleStatusPending,
		}
		if editionID == nil {
			article.EditionOther = trimmed(req.EditionOther)
		}
		SyncArticle(article, task, s.engine.now())
		if err := s.articles.Create(ctx, exec, article); err != nil {
			return internalError(err, "failed to create article")
		}
		step := &reviewStep{ctx: ctx, exec: exec, actor: actor, article: article}
		if comments != "" {
			if err := s.annotate(step, models.AnnotationSubmitted, comments, ""); err != nil {
				return err
			}
			if err := s.articles.Update(ctx, exec, article); err != nil {
				return internalError(err, "failed to update article comments")
			}
		}

		detail.Article = article
		detail.Files = make([]models.CXOArticleFile, 0, len(files))
		for _, f := range files {
			row := models.CXOArticleFile{
				ArticleID:        article.ID,
				OriginalFilename: f.Original,
				StoredFilename:   f.Stored,
				FilePath:         f.Path,
				FileType:         f.Ext,
			}
			if err := s.articles.AddFile(ctx, exec, &row); err != nil {
				return internalError(err, "failed to record article file")
			}
			detail.Files = append(detail.Files, row)
		}
		return nil
	})
	articleID := ""
	if detail.Article != nil {
		articleID = detail.Article.ID
	}
	s.finish(ctx, ActionArticleSubmit, articleID, actorID, err)
	if err != nil {
		if len(files) > 0 {
			s.attachments.discard(files)
		}
		return nil, err
	}
	if len(files) > 0 {
		s.attachments.write(files)
	}
	return detail, nil
}

// resolveReviewer honours an explicit editorial assignee, else routes sales submissions to the editorial manager.
func (s *CXOService) resolveReviewer(ctx context.Context, exec sqlx.ExtContext, actor *models.User, override *string) (*models.User, error) {
	if id := trimmed(override); id != nil {
		user, err := s.engine.findUser(ctx, exec, id)
		if err != nil {
			return nil, err
		}
		if user == nil || !user.InDepartment(models.DepartmentEditorial) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assigned editor must be an editorial user")
		}
		return user, nil
	}
	if actor.Role != models.RoleSales {
		return nil, nil
	}
	manager, err := s.engine.users.FindManager(ctx, exec, models.DepartmentEditorial)
	if err != nil {
		return nil, internalError(err, "failed to resolve editorial manager")
	}
	return manager, nil
}

// closeReviewTask completes the linked review task and re-derives the article status.
func (s *CXOService) closeReviewTask(step *reviewStep, comment string) error {
	if step.article.TaskID == nil {
		return nil
	}
	task, err := s.engine.lockTask(step.ctx, step.exec, *step.article.TaskID)
	if err != nil {
		return err
	}
	if !task.Status.Terminal() {
		oldStatus := task.Status
		now := s.engine.now()
		task.Status = models.TaskStatusCompleted
		task.CompletedAt = &now
		if err := s.engine.saveTask(step.ctx, step.exec, task); err != nil {
			return err
		}
		ch := change{history: newHistory(models.ActionTaskCompleted, string(oldStatus), string(models.TaskStatusCompleted), nil, nil, comment)}
		if err := s.engine.record(step.ctx, step.exec, task, step.actor, &ch); err != nil {
			return err
		}
	}
	SyncArticle(step.article, task, s.engine.now())
	return nil
}

// spawnDesignTask opens an unassigned design task for the article and links it.
func (s *CXOService) spawnDesignTask(step *reviewStep, description, notice string) error {
	article := step.article
	brandID := article.BrandID
	task := &models.Task{
		BrandID:            &brandID,
		EditionID:          article.EditionID,
		EditionOther:       article.EditionOther,
		CreatedByID:        step.actor.ID,
		AssignedDepartment: models.DepartmentDesign,
		CurrentDepartment:  models.DepartmentDesign,
		Title:              fmt.Sprintf("CXO Article Design: %s", article.CompanyName),
		Category:           models.CategoryCXOArticle,
		CompanyName:        article.CompanyName,
		CompanyURL:         article.CompanyURL,
		Description:        description,
		Priority:           models.PriorityNormal,
		Status:             models.TaskStatusOpen,
	}
	if err := s.engine.tasks.Create(step.ctx, step.exec, task); err != nil {
		return internalError(err, "failed to create design task")
	}
	members, err := s.engine.users.FindMembers(step.ctx, step.exec, models.DepartmentDesign)
	if err != nil {
		return internalError(err, "failed to list design members")
	}
	ch := change{history: newHistory(models.ActionTaskCreated, "", string(task.Status), nil, nil,
		fmt.Sprintf("Design task for CXO article %s", article.CompanyName))}
	for _, member := range members {
		ch.notify(member.ID, task, fmt.Sprintf(notice, task.ID, article.CompanyName))
	}
	if err := s.engine.record(step.ctx, step.exec, task, step.actor, &ch); err != nil {
		return err
	}
	taskID := task.ID
	article.TaskID = &taskID
	step.design = task
	return nil
}

func (s *CXOService) editionName(ctx context.Context, exec sqlx.ExtContext, id *string) (string, error) {
	if id == nil || s.catalog == nil {
		return "N/A", nil
	}
	edition, err := s.catalog.GetEdition(ctx, exec, *id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "N/A", nil
		}
		return "", internalError(err, "failed to load edition")
	}
	return edition.Name, nil
}

// Approve accepts a pending article, optionally moving it to a new edition and spawning design work.
func (s *CXOService) Approve(ctx context.Context, actorID, articleID string, req dto.ApproveArticleRequest) (*dto.ArticleReviewResponse, error) {
	var out *dto.ArticleReviewResponse
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		if !canReview(actor) {
			return appErrors.Clone(appErrors.ErrForbidden, "only editorial users can approve articles")
		}
		article, err := s.lockArticle(ctx, exec, articleID)
		if err != nil {
			return err
		}
		if article.Status != models.ArticleStatusPending {
			return invalidTransition("this article has already been reviewed")
		}
		step := &reviewStep{ctx: ctx, exec: exec, actor: actor, article: article}

		editionNote := ""
		if newEdition := trimmed(req.EditionID); newEdition != nil && (article.EditionID == nil || *article.EditionID != *newEdition) {
			if err := ensureCatalog(ctx, exec, s.catalog, article.BrandID, newEdition); err != nil {
				return err
			}
			oldName, err := s.editionName(ctx, exec, article.EditionID)
			if err != nil {
				return err
			}
			newName, err := s.editionName(ctx, exec, newEdition)
			if err != nil {
				return err
			}
			article.EditionID = newEdition
			article.EditionOther = nil
			editionNote = fmt.Sprintf("Edition changed from \"%s\" to \"%s\"", oldName, newName)
		}

		article.Status = models.ArticleStatusApproved
		if err := s.closeReviewTask(step, fmt.Sprintf("CXO article approved by %s", actor.Username)); err != nil {
			return err
		}
		if err := s.annotate(step, models.AnnotationApproved, req.Comments, editionNote); err != nil {
			return err
		}
		if err := s.notify(step, article.UploadedByID, nil,
			fmt.Sprintf("Your article for %s has been approved by %s!", article.CompanyName, actor.Username)); err != nil {
			return err
		}

		if req.CreateDesignTask {
			description := fmt.Sprintf("Design task for approved CXO article #%s", article.ID)
			if comments := strings.TrimSpace(req.Comments); comments != "" {
				description += "\n\nEditor Comments: " + comments
			}
			if err := s.spawnDesignTask(step, description, "New design task #%s created for CXO article: %s"); err != nil {
				return err
			}
			SyncArticle(article, step.design, s.engine.now())
		}
		if err := s.articles.Update(ctx, exec, article); err != nil {
			return internalError(err, "failed to update article")
		}
		out = &dto.ArticleReviewResponse{Article: article, DesignTask: step.design}
		return nil
	})
	s.finish(ctx, ActionArticleApprove, articleID, actorID, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reject declines a pending article. Rejected is sticky against later task syncs.
func (s *CXOService) Reject(ctx context.Context, actorID, articleID string, req dto.RejectArticleRequest) (*dto.ArticleReviewResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		s.metrics.RecordRoutingAction(string(ActionArticleReject), OutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrValidation, "please provide a reason for rejection")
	}
	var out *dto.ArticleReviewResponse
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		if !canReview(actor) {
			return appErrors.Clone(appErrors.ErrForbidden, "only editorial users can reject articles")
		}
		article, err := s.lockArticle(ctx, exec, articleID)
		if err != nil {
			return err
		}
		if article.Status != models.ArticleStatusPending {
			return invalidTransition("this article has already been reviewed")
		}
		step := &reviewStep{ctx: ctx, exec: exec, actor: actor, article: article}

		article.Status = models.ArticleStatusRejected
		if err := s.closeReviewTask(step, fmt.Sprintf("CXO article rejected by %s", actor.Username)); err != nil {
			return err
		}
		if err := s.annotate(step, models.AnnotationRejected, reason, ""); err != nil {
			return err
		}
		if err := s.notify(step, article.UploadedByID, nil,
			fmt.Sprintf("Your article for %s was rejected by %s. Reason: %s", article.CompanyName, actor.Username, reason)); err != nil {
			return err
		}
		if err := s.articles.Update(ctx, exec, article); err != nil {
			return internalError(err, "failed to update article")
		}
		out = &dto.ArticleReviewResponse{Article: article}
		return nil
	})
	s.finish(ctx, ActionArticleReject, articleID, actorID, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkUsed flags an approved article as published. It is terminal.
func (s *CXOService) MarkUsed(ctx context.Context, actorID, articleID string) (*models.CXOArticle, error) {
	var out *models.CXOArticle
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		if !canReview(actor) {
			return appErrors.Clone(appErrors.ErrForbidden, "only editorial users can mark articles as used")
		}
		article, err := s.lockArticle(ctx, exec, articleID)
		if err != nil {
			return err
		}
		if article.IsUsed {
			return invalidTransition("this article has already been marked as used")
		}
		if article.Status != models.ArticleStatusApproved {
			return invalidTransition("only approved articles can be marked as used")
		}
		now := s.engine.now()
		article.IsUsed = true
		article.UsedAt = &now
		article.Status = models.ArticleStatusUsed

		step := &reviewStep{ctx: ctx, exec: exec, actor: actor, article: article}
		if err := s.annotate(step, models.AnnotationMarkedUsed, "", ""); err != nil {
			return err
		}
		edition, err := s.editionName(ctx, exec, article.EditionID)
		if err != nil {
			return err
		}
		if edition == "N/A" {
			edition = "the magazine"
		}
		if err := s.notify(step, article.UploadedByID, nil,
			fmt.Sprintf("Your article for %s has been marked as used in %s!", article.CompanyName, edition)); err != nil {
			return err
		}
		if err := s.articles.Update(ctx, exec, article); err != nil {
			return internalError(err, "failed to update article")
		}
		out = article
		return nil
	})
	s.finish(ctx, ActionArticleMarkUsed, articleID, actorID, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

type articleSnapshot struct {
	brand, edition, assignee, company, contact, designation, url string
}

func (s *CXOService) snapshot(ctx context.Context, exec sqlx.ExtContext, article *models.CXOArticle) (articleSnapshot, error) {
	snap := articleSnapshot{
		company:     article.CompanyName,
		contact:     stringOr(article.ContactPersonName, "N/A"),
		designation: stringOr(article.ContactPersonDesignation, "N/A"),
		url:         stringOr(article.CompanyURL, "N/A"),
		brand:       article.BrandID,
	}
	if s.catalog != nil {
		brand, err := s.catalog.GetBrand(ctx, exec, article.BrandID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return snap, internalError(err, "failed to load brand")
		}
		if brand != nil {
			snap.brand = brand.Name
		}
	}
	edition, err := s.editionName(ctx, exec, article.EditionID)
	if err != nil {
		return snap, err
	}
	if article.EditionID == nil {
		edition = stringOr(article.EditionOther, "N/A")
	}
	snap.edition = edition
	assignee, err := s.engine.username(ctx, exec, article.AssignedToID, "Unassigned")
	if err != nil {
		return snap, err
	}
	snap.assignee = assignee
	return snap, nil
}

func diffSnapshots(before, after articleSnapshot) []string {
	fields := []struct {
		label    string
		from, to string
	}{
		{"Brand", before.brand, after.brand},
		{"Edition", before.edition, after.edition},
		{"Assigned to", before.assignee, after.assignee},
		{"Company Name", before.company, after.company},
		{"Contact Person", before.contact, after.contact},
		{"Designation", before.designation, after.designation},
		{"Company URL", before.url, after.url},
	}
	changes := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.from != f.to {
			changes = append(changes, fmt.Sprintf("%s: %s → %s", f.label, f.from, f.to))
		}
	}
	return changes
}

// Edit lets a CXO manager correct article metadata. Editing a rejected article re-approves it
// and opens a new design task.
func (s *CXOService) Edit(ctx context.Context, actorID, articleID string, req dto.EditArticleRequest) (*dto.ArticleReviewResponse, error) {
	req.BrandID = strings.TrimSpace(req.BrandID)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.BrandID == "" || req.CompanyName == "" {
		s.metrics.RecordRoutingAction(string(ActionArticleEdit), OutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand and company name are required")
	}
	var out *dto.ArticleReviewResponse
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleCXO || !actor.IsManager {
			return appErrors.Clone(appErrors.ErrForbidden, "only CXO managers can edit articles")
		}
		article, err := s.lockArticle(ctx, exec, articleID)
		if err != nil {
			return err
		}
		if article.IsUsed {
			return invalidTransition("cannot edit articles that have already been used")
		}
		editionID := trimmed(req.EditionID)
		if err := ensureCatalog(ctx, exec, s.catalog, req.BrandID, editionID); err != nil {
			return err
		}
		assigneeID := trimmed(req.AssigneeID)
		if assigneeID != nil {
			user, err := s.engine.findUser(ctx, exec, assigneeID)
			if err != nil {
				return err
			}
			if user == nil {
				return appErrors.Clone(appErrors.ErrValidation, "selected user does not exist")
			}
		}

		before, err := s.snapshot(ctx, exec, article)
		if err != nil {
			return err
		}
		article.BrandID = req.BrandID
		article.EditionID = editionID
		article.EditionOther = nil
		if editionID == nil {
			article.EditionOther = trimmed(req.EditionOther)
		}
		article.CompanyName = req.CompanyName
		article.ContactPersonName = trimmed(req.ContactPersonName)
		article.ContactPersonDesignation = trimmed(req.ContactPersonDesignation)
		article.CompanyURL = trimmed(req.CompanyURL)
		article.AssignedToID = assigneeID
		after, err := s.snapshot(ctx, exec, article)
		if err != nil {
			return err
		}

		step := &reviewStep{ctx: ctx, exec: exec, actor: actor, article: article}
		if changes := diffSnapshots(before, after); len(changes) > 0 {
			if err := s.annotate(step, models.AnnotationEdited, "", "Changes: "+strings.Join(changes, ", ")); err != nil {
				return err
			}
		}
		if article.Status == models.ArticleStatusRejected {
			article.Status = models.ArticleStatusApproved
			if err := s.annotate(step, models.AnnotationAutoApproved, "", ""); err != nil {
				return err
			}
			description := fmt.Sprintf("Design task for re-approved CXO article #%s", article.ID)
			if err := s.spawnDesignTask(step, description, "New design task #%s created for edited CXO article: %s"); err != nil {
				return err
			}
		}
		if err := s.articles.Update(ctx, exec, article); err != nil {
			return internalError(err, "failed to update article")
		}
		out = &dto.ArticleReviewResponse{Article: article, DesignTask: step.design}
		return nil
	})
	s.finish(ctx, ActionArticleEdit, articleID, actorID, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List returns articles visible to the actor.
func (s *CXOService) List(ctx context.Context, actorID string, query dto.ArticleQuery) (*ArticleListResponse, error) {
	actor, err := s.engine.loadActor(ctx, nil, actorID)
	if err != nil {
		return nil, err
	}
	filter := models.CXOArticleFilter{
		BrandID:         query.BrandID,
		Status:          query.Status,
		IncludeArchived: actor.Role == models.RoleSuperAdmin,
		Page:            query.Page,
		PageSize:        query.PageSize,
	}
	if ownsOnly(actor) {
		filter.UploadedBy = actor.ID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 200 {
		filter.PageSize = 20
	}
	items, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list articles")
	}
	if items == nil {
		items = []models.CXOArticle{}
	}
	return &ArticleListResponse{
		Items:      items,
		Pagination: models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total},
	}, nil
}

func (s *CXOService) visibleArticle(ctx context.Context, actor *models.User, articleID string) (*models.CXOArticle, error) {
	article, err := s.articles.GetByID(ctx, nil, articleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, internalError(err, "failed to load article")
	}
	if ownsOnly(actor) && article.UploadedByID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to view this article")
	}
	return article, nil
}

// Get returns an article with its annotations and files.
func (s *CXOService) Get(ctx context.Context, actorID, articleID string) (*models.CXOArticleDetail, error) {
	actor, err := s.engine.loadActor(ctx, nil, actorID)
	if err != nil {
		return nil, err
	}
	article, err := s.visibleArticle(ctx, actor, articleID)
	if err != nil {
		return nil, err
	}
	annotations, err := s.articles.ListAnnotations(ctx, articleID)
	if err != nil {
		return nil, internalError(err, "failed to load article annotations")
	}
	files, err := s.articles.ListFiles(ctx, articleID)
	if err != nil {
		return nil, internalError(err, "failed to load article files")
	}
	return &models.CXOArticleDetail{Article: article, Annotations: annotations, Files: files}, nil
}

// ToggleArchive flips the archived flag. Super admin only.
func (s *CXOService) ToggleArchive(ctx context.Context, actorID, articleID string) (*models.CXOArticle, error) {
	var out *models.CXOArticle
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleSuperAdmin {
			return appErrors.Clone(appErrors.ErrForbidden, "only super admin can archive articles")
		}
		article, err := s.lockArticle(ctx, exec, articleID)
		if err != nil {
			return err
		}
		article.IsArchived = !article.IsArchived
		article.ArchivedAt = nil
		if article.IsArchived {
			now := s.engine.now()
			article.ArchivedAt = &now
		}
		if err := s.articles.Update(ctx, exec, article); err != nil {
			return internalError(err, "failed to update article")
		}
		out = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FileLink returns a signed link to an article document.
func (s *CXOService) FileLink(ctx context.Context, actorID, fileID string) (*dto.FileDownloadResponse, error) {
	if s.attachments == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "file storage unavailable")
	}
	actor, err := s.engine.loadActor(ctx, nil, actorID)
	if err != nil {
		return nil, err
	}
	file, err := s.articles.GetFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, internalError(err, "failed to load file")
	}
	if _, err := s.visibleArticle(ctx, actor, file.ArticleID); err != nil {
		return nil, err
	}
	return s.attachments.Link(file.ID, file.FilePath, file.OriginalFilename)
}
