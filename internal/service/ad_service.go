package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

type adStore interface {
	Create(ctx context.Context, ad *models.Ad) error
	GetByID(ctx context.Context, id string) (*models.Ad, error)
	List(ctx context.Context, brandID string) ([]models.Ad, error)
	AssignEdition(ctx context.Context, id string, editionID *string) error
}

type brandLister interface {
	catalogLookup
	ListBrands(ctx context.Context) ([]models.Brand, error)
}

// AdService manages advertisement artwork per brand.
type AdService struct {
	repo        adStore
	catalog     brandLister
	attachments *Attachments
	logger      *zap.Logger
}

// NewAdService constructs the service.
func NewAdService(repo adStore, catalog brandLister, attachments *Attachments, logger *zap.Logger) *AdService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdService{repo: repo, catalog: catalog, attachments: attachments, logger: logger}
}

// Upload stores ad artwork for a brand and optional edition.
func (s *AdService) Upload(ctx context.Context, actorID string, req dto.AdUploadRequest, uploads []FileUpload) ([]models.Ad, error) {
	req.BrandID = strings.TrimSpace(req.BrandID)
	if req.BrandID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "brand is required")
	}
	if err := ensureCatalog(ctx, nil, s.catalog, req.BrandID, req.EditionID); err != nil {
		return nil, err
	}
	prepared, err := s.attachments.prepare("ads/"+req.BrandID, uploads, AdFileExtensions)
	if err != nil {
		return nil, err
	}
	if len(prepared) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files selected")
	}

	ads := make([]models.Ad, 0, len(prepared))
	for i, f := range prepared {
		ad := models.Ad{
			BrandID:          req.BrandID,
			EditionID:        trimmed(req.EditionID),
			UploadedByID:     actorID,
			Filename:         f.Stored,
			OriginalFilename: f.Original,
			FilePath:         f.Path,
			FileType:         f.Ext,
		}
		if err := s.repo.Create(ctx, &ad); err != nil {
			s.attachments.write(prepared[:i])
			s.attachments.discard(prepared[i:])
			return nil, internalError(err, "failed to record ad")
		}
		ads = append(ads, ad)
	}
	s.attachments.write(prepared)
	s.logger.Info("ads uploaded", zap.String("brand_id", req.BrandID), zap.Int("count", len(ads)))
	return ads, nil
}

// ListGrouped returns ads grouped under their brand. Brands without ads are omitted.
func (s *AdService) ListGrouped(ctx context.Context, brandID string) ([]models.BrandAds, error) {
	ads, err := s.repo.List(ctx, brandID)
	if err != nil {
		return nil, internalError(err, "failed to list ads")
	}
	brands, err := s.catalog.ListBrands(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list brands")
	}
	byBrand := make(map[string][]models.Ad)
	for _, ad := range ads {
		byBrand[ad.BrandID] = append(byBrand[ad.BrandID], ad)
	}
	groups := make([]models.BrandAds, 0, len(byBrand))
	for _, brand := range brands {
		if items, ok := byBrand[brand.ID]; ok {
			groups = append(groups, models.BrandAds{Brand: brand, Ads: items})
		}
	}
	return groups, nil
}

// AssignEdition links an ad to an edition of its brand, or clears the link.
func (s *AdService) AssignEdition(ctx context.Context, id string, req dto.AdEditionRequest) (*models.Ad, error) {
	ad, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	editionID := trimmed(req.EditionID)
	if editionID != nil {
		edition, err := s.catalog.GetEdition(ctx, nil, *editionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "edition not found")
			}
			return nil, internalError(err, "failed to load edition")
		}
		if edition.BrandID != ad.BrandID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "edition belongs to another brand")
		}
	}
	if err := s.repo.AssignEdition(ctx, id, editionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ad not found")
		}
		return nil, internalError(err, "failed to assign edition")
	}
	ad.EditionID = editionID
	return ad, nil
}

// DownloadLink returns a signed link to the ad artwork.
func (s *AdService) DownloadLink(ctx context.Context, id string) (*dto.FileDownloadResponse, error) {
	ad, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.attachments.Link(ad.ID, ad.FilePath, ad.OriginalFilename)
}

func (s *AdService) get(ctx context.Context, id string) (*models.Ad, error) {
	ad, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "ad not found")
		}
		return nil, internalError(err, "failed to load ad")
	}
	return ad, nil
}
