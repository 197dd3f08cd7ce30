package dto

import "github.com/noah-isme/magazine-flow-api/internal/models"

// BrandRequest creates or renames a brand.
type BrandRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

// EditionRequest creates an edition for a brand.
type EditionRequest struct {
	BrandID string               `json:"brandId" validate:"required"`
	Name    string               `json:"name" validate:"required,max=100"`
	Year    *int                 `json:"year" validate:"omitempty,min=1900,max=2100"`
	Month   *int                 `json:"month" validate:"omitempty,min=1,max=12"`
	Status  models.EditionStatus `json:"status"`
}

// EditionStatusRequest moves an edition through production stages.
type EditionStatusRequest struct {
	Status models.EditionStatus `json:"status" validate:"required"`
}

// AdUploadRequest metadata for an ad artwork upload.
type AdUploadRequest struct {
	BrandID   string  `form:"brandId" json:"brandId"`
	EditionID *string `form:"editionId" json:"editionId"`
}

// AdEditionRequest assigns an ad to an edition.
type AdEditionRequest struct {
	EditionID *string `json:"editionId"`
}
