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

const articleColumns = `id, brand_id, edition_id, edition_other, uploaded_by_id, assigned_to_id, task_id, company_name,
contact_person_name, contact_person_designation, company_url, comments, status, is_used, is_archived,
uploaded_at, updated_at, used_at, archived_at`

// CXOArticleRepository persists articles, their annotations and files.
type CXOArticleRepository struct {
	db *sqlx.DB
}

// NewCXOArticleRepository constructs the repository.
func NewCXOArticleRepository(db *sqlx.DB) *CXOArticleRepository {
	return &CXOArticleRepository{db: db}
}

func (r *CXOArticleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts an article.
func (r *CXOArticleRepository) Create(ctx context.Context, exec sqlx.ExtContext, article *models.CXOArticle) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if article.UploadedAt.IsZero() {
		article.UploadedAt = now
	}
	article.UpdatedAt = now
	const query = `INSERT INTO cxo_articles (` + articleColumns + `)
VALUES (:id, :brand_id, :edition_id, :edition_other, :uploaded_by_id, :assigned_to_id, :task_id, :company_name,
:contact_person_name, :contact_person_designation, :company_url, :comments, :status, :is_used, :is_archived,
:uploaded_at, :updated_at, :used_at, :archived_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, article); err != nil {
		return fmt.Errorf("insert cxo article: %w", err)
	}
	return nil
}

// GetByID returns an article.
func (r *CXOArticleRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CXOArticle, error) {
	return r.getOne(ctx, exec, `SELECT `+articleColumns+` FROM cxo_articles WHERE id = $1`, id)
}

// GetForUpdate returns an article and locks its row.
func (r *CXOArticleRepository) GetForUpdate(ctx context.Context, exec sqlx.ExtContext, id string) (*models.CXOArticle, error) {
	return r.getOne(ctx, exec, `SELECT `+articleColumns+` FROM cxo_articles WHERE id = $1 FOR UPDATE`, id)
}

// GetByTaskID returns the article linked to a task, locked. Returns nil when none is linked.
func (r *CXOArticleRepository) GetByTaskID(ctx context.Context, exec sqlx.ExtContext, taskID string) (*models.CXOArticle, error) {
	article, err := r.getOne(ctx, exec, `SELECT `+articleColumns+` FROM cxo_articles WHERE task_id = $1 LIMIT 1 FOR UPDATE`, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return article, err
}

func (r *CXOArticleRepository) getOne(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}) (*models.CXOArticle, error) {
	var article models.CXOArticle
	if err := sqlx.GetContext(ctx, r.exec(exec), &article, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get cxo article: %w", err)
	}
	return &article, nil
}

// Update persists every mutable article column.
func (r *CXOArticleRepository) Update(ctx context.Context, exec sqlx.ExtContext, article *models.CXOArticle) error {
	article.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cxo_articles SET brand_id = :brand_id, edition_id = :edition_id, edition_other = :edition_other,
assigned_to_id = :assigned_to_id, task_id = :task_id, company_name = :company_name,
contact_person_name = :contact_person_name, contact_person_designation = :contact_person_designation,
company_url = :company_url, comments = :comments, status = :status, is_used = :is_used, is_archived = :is_archived,
updated_at = :updated_at, used_at = :used_at, archived_at = :archived_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, article)
	if err != nil {
		return fmt.Errorf("update cxo article: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check cxo article rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns articles matching the filter with the total count.
func (r *CXOArticleRepository) List(ctx context.Context, filter models.CXOArticleFilter) ([]models.CXOArticle, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	if filter.UploadedBy != "" {
		args = append(args, filter.UploadedBy)
		conditions = append(conditions, fmt.Sprintf("uploaded_by_id = $%d", len(args)))
	}
	if filter.BrandID != "" {
		args = append(args, filter.BrandID)
		conditions = append(conditions, fmt.Sprintf("brand_id = $%d", len(args)))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if !filter.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM cxo_articles`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count cxo articles: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM cxo_articles%s ORDER BY uploaded_at DESC LIMIT %d OFFSET %d`, articleColumns, where, size, (page-1)*size)
	var articles []models.CXOArticle
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list cxo articles: %w", err)
	}
	return articles, total, nil
}

// AppendAnnotation stores the next annotation in sequence.
func (r *CXOArticleRepository) AppendAnnotation(ctx context.Context, exec sqlx.ExtContext, ann *models.CXOArticleAnnotation) error {
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now().UTC()
	}
	target := r.exec(exec)
	const seqQuery = `SELECT COALESCE(MAX(seq), 0) + 1 FROM cxo_article_annotations WHERE article_id = $1`
	if err := sqlx.GetContext(ctx, target, &ann.Seq, seqQuery, ann.ArticleID); err != nil {
		return fmt.Errorf("compute annotation seq: %w", err)
	}
	const query = `INSERT INTO cxo_article_annotations (id, article_id, seq, kind, author, text, extra, created_at)
VALUES (:id, :article_id, :seq, :kind, :author, :text, :extra, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, ann); err != nil {
		return fmt.Errorf("insert annotation: %w", err)
	}
	return nil
}

// ListAnnotations returns annotations in order.
func (r *CXOArticleRepository) ListAnnotations(ctx context.Context, articleID string) ([]models.CXOArticleAnnotation, error) {
	const query = `SELECT id, article_id, seq, kind, author, text, extra, created_at
FROM cxo_article_annotations WHERE article_id = $1 ORDER BY seq`
	var items []models.CXOArticleAnnotation
	if err := r.db.SelectContext(ctx, &items, query, articleID); err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return items, nil
}

// AddFile records an article document.
func (r *CXOArticleRepository) AddFile(ctx context.Context, exec sqlx.ExtContext, file *models.CXOArticleFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO cxo_article_files (id, article_id, original_filename, stored_filename, file_path, file_type, uploaded_at)
VALUES (:id, :article_id, :original_filename, :stored_filename, :file_path, :file_type, :uploaded_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, file); err != nil {
		return fmt.Errorf("insert cxo article file: %w", err)
	}
	return nil
}

// ListFiles returns documents of an article.
func (r *CXOArticleRepository) ListFiles(ctx context.Context, articleID string) ([]models.CXOArticleFile, error) {
	const query = `SELECT id, article_id, original_filename, stored_filename, file_path, file_type, uploaded_at
FROM cxo_article_files WHERE article_id = $1 ORDER BY uploaded_at`
	var files []models.CXOArticleFile
	if err := r.db.SelectContext(ctx, &files, query, articleID); err != nil {
		return nil, fmt.Errorf("list cxo article files: %w", err)
	}
	return files, nil
}

// GetFile returns one article document.
func (r *CXOArticleRepository) GetFile(ctx context.Context, id string) (*models.CXOArticleFile, error) {
	const query = `SELECT id, article_id, original_filename, stored_filename, file_path, file_type, uploaded_at
FROM cxo_article_files WHERE id = $1`
	var file models.CXOArticleFile
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get cxo article file: %w", err)
	}
	return &file, nil
}
