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

type catalogStore interface {
	catalogLookup
	ListBrands(ctx context.Context) ([]models.Brand, error)
	BrandNameExists(ctx context.Context, name, excludeID string) (bool, error)
	CreateBrand(ctx context.Context, exec sqlx.ExtContext, brand *models.Brand) error
	UpdateBrand(ctx context.Context, brand *models.Brand) error
	DeleteBrand(ctx context.Context, id string) error
	ListEditions(ctx context.Context, brandID string) ([]models.Edition, error)
	CreateEdition(ctx context.Context, exec sqlx.ExtContext, edition *models.Edition) error
	UpdateEditionStatus(ctx context.Context, id string, status models.EditionStatus) error
}

// CatalogService manages brands and editions. Listings are cached.
type CatalogService struct {
	repo      catalogStore
	validator *validator.Validate
	cache     *CacheService
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewCatalogService constructs the service.
func NewCatalogService(repo catalogStore, validate *validator.Validate, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, validator: validate, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ListBrands returns all brands. The bool reports a cache hit.
func (s *CatalogService) ListBrands(ctx context.Context) ([]models.Brand, bool, error) {
	key := CacheKey(cacheGroupCatalog, "brands")
	var cached []models.Brand
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}
	brands, err := s.repo.ListBrands(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to list brands")
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	_ = s.cache.Set(ctx, key, brands, s.cacheTTL)
	return brands, false, nil
}

// CreateBrand adds a brand with a unique name.
func (s *CatalogService) CreateBrand(ctx context.Context, req dto.BrandRequest) (*models.Brand, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.ensureUniqueBrand(ctx, req.Name, ""); err != nil {
		return nil, err
	}
	brand := &models.Brand{Name: req.Name, Description: trimmed(req.Description)}
	if err := s.repo.CreateBrand(ctx, nil, brand); err != nil {
		return nil, internalError(err, "failed to create brand")
	}
	s.cache.InvalidateGroup(ctx, cacheGroupCatalog)
	s.logger.Info("brand created", zap.String("brand_id", brand.ID), zap.String("name", brand.Name))
	return brand, nil
}

// UpdateBrand renames a brand.
func (s *CatalogService) UpdateBrand(ctx context.Context, id string, req dto.BrandRequest) (*models.Brand, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	brand, err := s.getBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueBrand(ctx, req.Name, id); err != nil {
		return nil, err
	}
	brand.Name = req.Name
	brand.Description = trimmed(req.Description)
	if err := s.repo.UpdateBrand(ctx, brand); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "brand not found")
		}
		return nil, internalError(err, "failed to update brand")
	}
	s.cache.InvalidateGroup(ctx, cacheGroupCatalog)
	return brand, nil
}

// DeleteBrand removes a brand.
func (s *CatalogService) DeleteBrand(ctx context.Context, id string) error {
	if err := s.repo.DeleteBrand(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "brand not found")
		}
		return internalError(err, "failed to delete brand")
	}
	s.cache.InvalidateGroup(ctx, cacheGroupCatalog)
	s.logger.Info("brand deleted", zap.String("brand_id", id))
	return nil
}

// ListEditions returns editions, optionally for one brand. The bool reports a cache hit.
func (s *CatalogService) ListEditions(ctx context.Context, brandID string) ([]models.Edition, bool, error) {
	key := CacheKey(cacheGroupCatalog, "editions", stringOr(optionalString(brandID), "all"))
	var cached []models.Edition
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, true, nil
	}
	editions, err := s.repo.ListEditions(ctx, brandID)
	if err != nil {
		return nil, false, internalError(err, "failed to list editions")
	}
	if editions == nil {
		editions = []models.Edition{}
	}
	_ = s.cache.Set(ctx, key, editions, s.cacheTTL)
	return editions, false, nil
}

// CreateEdition adds an edition under an existing brand.
func (s *CatalogService) CreateEdition(ctx context.Context, req dto.EditionRequest) (*models.Edition, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.Status != "" && !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown edition status %q", req.Status))
	}
	if _, err := s.getBrand(ctx, req.BrandID); err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "brand not found")
		}
		return nil, err
	}
	edition := &models.Edition{
		BrandID: req.BrandID,
		Name:    req.Name,
		Year:    req.Year,
		Month:   req.Month,
		Status:  req.Status,
	}
	if err := s.repo.CreateEdition(ctx, nil, edition); err != nil {
		return nil, internalError(err, "failed to create edition")
	}
	s.cache.InvalidateGroup(ctx, cacheGroupCatalog)
	return edition, nil
}

// UpdateEditionStatus moves an edition to another production stage.
func (s *CatalogService) UpdateEditionStatus(ctx context.Context, id string, req dto.EditionStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err)
	}
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown edition status %q", req.Status))
	}
	if err := s.repo.UpdateEditionStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "edition not found")
		}
		return internalError(err, "failed to update edition status")
	}
	s.cache.InvalidateGroup(ctx, cacheGroupCatalog)
	return nil
}

func (s *CatalogService) getBrand(ctx context.Context, id string) (*models.Brand, error) {
	brand, err := s.repo.GetBrand(ctx, nil, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "brand not found")
		}
		return nil, internalError(err, "failed to load brand")
	}
	return brand, nil
}

func (s *CatalogService) ensureUniqueBrand(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.BrandNameExists(ctx, name, excludeID)
	if err != nil {
		return internalError(err, "failed to check brand name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("brand %q already exists", name))
	}
	return nil
}
