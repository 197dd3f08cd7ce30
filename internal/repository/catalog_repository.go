package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/magazine-flow-api/internal/models"
)

// CatalogRepository stores brands and editions.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListBrands returns all brands ordered by name.
func (r *CatalogRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	const query = `SELECT id, name, description, created_at FROM brands ORDER BY name`
	var brands []models.Brand
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return brands, nil
}

// GetBrand returns a brand by id.
func (r *CatalogRepository) GetBrand(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Brand, error) {
	const query = `SELECT id, name, description, created_at FROM brands WHERE id = $1`
	var brand models.Brand
	if err := sqlx.GetContext(ctx, r.exec(exec), &brand, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get brand: %w", err)
	}
	return &brand, nil
}

// FindBrandByName returns the brand with the given name, or nil.
func (r *CatalogRepository) FindBrandByName(ctx context.Context, exec sqlx.ExtContext, name string) (*models.Brand, error) {
	const query = `SELECT id, name, description, created_at FROM brands WHERE lower(name) = lower($1)`
	var brand models.Brand
	if err := sqlx.GetContext(ctx, r.exec(exec), &brand, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find brand by name: %w", err)
	}
	return &brand, nil
}

// FindEdition returns the edition of brandID with the given name, or nil.
func (r *CatalogRepository) FindEdition(ctx context.Context, exec sqlx.ExtContext, brandID, name string) (*models.Edition, error) {
	const query = `SELECT id, brand_id, name, year, month, status, created_at FROM editions WHERE brand_id = $1 AND lower(name) = lower($2)`
	var edition models.Edition
	if err := sqlx.GetContext(ctx, r.exec(exec), &edition, query, brandID, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find edition: %w", err)
	}
	return &edition, nil
}

// BrandNameExists reports whether another brand already uses name.
func (r *CatalogRepository) BrandNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM brands WHERE lower(name) = lower($1) AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name, excludeID); err != nil {
		return false, fmt.Errorf("check brand name: %w", err)
	}
	return exists, nil
}

// CreateBrand inserts a brand.
func (r *CatalogRepository) CreateBrand(ctx context.Context, exec sqlx.ExtContext, brand *models.Brand) error {
	if brand.ID == "" {
		brand.ID = uuid.NewString()
	}
	if brand.CreatedAt.IsZero() {
		brand.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO brands (id, name, description, created_at) VALUES (:id, :name, :description, :created_at)
ON CONFLICT (name) DO NOTHING`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, brand); err != nil {
		return fmt.Errorf("insert brand: %w", err)
	}
	return nil
}

// UpdateBrand changes name and description.
func (r *CatalogRepository) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	const query = `UPDATE brands SET name = :name, description = :description WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, brand)
	if err != nil {
		return fmt.Errorf("update brand: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check brand rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteBrand removes a brand and its editions.
func (r *CatalogRepository) DeleteBrand(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete brand: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check brand rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListEditions returns editions, optionally limited to one brand.
func (r *CatalogRepository) ListEditions(ctx context.Context, brandID string) ([]models.Edition, error) {
	query := `SELECT id, brand_id, name, year, month, status, created_at FROM editions`
	args := []interface{}{}
	if brandID != "" {
		query += ` WHERE brand_id = $1`
		args = append(args, brandID)
	}
	query += ` ORDER BY year DESC NULLS LAST, month DESC NULLS LAST, name`
	var editions []models.Edition
	if err := r.db.SelectContext(ctx, &editions, query, args...); err != nil {
		return nil, fmt.Errorf("list editions: %w", err)
	}
	return editions, nil
}

// GetEdition returns an edition by id.
func (r *CatalogRepository) GetEdition(ctx context.Context, exec sqlx.ExtContext, id string) (*models.Edition, error) {
	const query = `SELECT id, brand_id, name, year, month, status, created_at FROM editions WHERE id = $1`
	var edition models.Edition
	if err := sqlx.GetContext(ctx, r.exec(exec), &edition, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get edition: %w", err)
	}
	return &edition, nil
}

// CreateEdition inserts an edition.
func (r *CatalogRepository) CreateEdition(ctx context.Context, exec sqlx.ExtContext, edition *models.Edition) error {
	if edition.ID == "" {
		edition.ID = uuid.NewString()
	}
	if edition.Status == "" {
		edition.Status = models.EditionScheduled
	}
	if edition.CreatedAt.IsZero() {
		edition.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO editions (id, brand_id, name, year, month, status, created_at)
VALUES (:id, :brand_id, :name, :year, :month, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, edition); err != nil {
		return fmt.Errorf("insert edition: %w", err)
	}
	return nil
}

// UpdateEditionStatus changes the production stage of an edition.
func (r *CatalogRepository) UpdateEditionStatus(ctx context.Context, id string, status models.EditionStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE editions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update edition status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check edition rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
