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

const adColumns = `id, brand_id, edition_id, uploaded_by_id, filename, original_filename, file_path, file_type, uploaded_at`

// AdRepository stores advertisement artwork metadata.
type AdRepository struct {
	db *sqlx.DB
}

// NewAdRepository constructs the repository.
func NewAdRepository(db *sqlx.DB) *AdRepository {
	return &AdRepository{db: db}
}

// Create inserts an ad.
func (r *AdRepository) Create(ctx context.Context, ad *models.Ad) error {
	if ad.ID == "" {
		ad.ID = uuid.NewString()
	}
	if ad.UploadedAt.IsZero() {
		ad.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO ads (` + adColumns + `)
VALUES (:id, :brand_id, :edition_id, :uploaded_by_id, :filename, :original_filename, :file_path, :file_type, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ad); err != nil {
		return fmt.Errorf("insert ad: %w", err)
	}
	return nil
}

// GetByID returns an ad.
func (r *AdRepository) GetByID(ctx context.Context, id string) (*models.Ad, error) {
	var ad models.Ad
	if err := r.db.GetContext(ctx, &ad, `SELECT `+adColumns+` FROM ads WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get ad: %w", err)
	}
	return &ad, nil
}

// List returns ads, optionally for one brand, newest first.
func (r *AdRepository) List(ctx context.Context, brandID string) ([]models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads`
	args := []interface{}{}
	if brandID != "" {
		query += ` WHERE brand_id = $1`
		args = append(args, brandID)
	}
	query += ` ORDER BY uploaded_at DESC`
	var ads []models.Ad
	if err := r.db.SelectContext(ctx, &ads, query, args...); err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	return ads, nil
}

// AssignEdition links an ad to an edition.
func (r *AdRepository) AssignEdition(ctx context.Context, id string, editionID *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE ads SET edition_id = $2 WHERE id = $1`, id, editionID)
	if err != nil {
		return fmt.Errorf("assign ad edition: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check ad rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
