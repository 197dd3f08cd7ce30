package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/middleware"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

type catalogService interface {
	ListBrands(ctx context.Context) ([]models.Brand, bool, error)
	CreateBrand(ctx context.Context, req dto.BrandRequest) (*models.Brand, error)
	UpdateBrand(ctx context.Context, id string, req dto.BrandRequest) (*models.Brand, error)
	DeleteBrand(ctx context.Context, id string) error
	ListEditions(ctx context.Context, brandID string) ([]models.Edition, bool, error)
	CreateEdition(ctx context.Context, req dto.EditionRequest) (*models.Edition, error)
	UpdateEditionStatus(ctx context.Context, id string, req dto.EditionStatusRequest) error
}

// CatalogHandler manages brands and editions.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(svc catalogService) *CatalogHandler {
	return &CatalogHandler{service: svc}
}

// ListBrands godoc
// @Summary List brands
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /brands [get]
func (h *CatalogHandler) ListBrands(c *gin.Context) {
	brands, hit, err := h.service.ListBrands(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, brands, nil, middleware.ExtractMeta(c))
}

// CreateBrand godoc
// @Summary Create a brand
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.BrandRequest true "Brand"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /brands [post]
func (h *CatalogHandler) CreateBrand(c *gin.Context) {
	var req dto.BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid brand payload"))
		return
	}
	brand, err := h.service.CreateBrand(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, brand)
}

// UpdateBrand godoc
// @Summary Update a brand
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Brand ID"
// @Param payload body dto.BrandRequest true "Brand"
// @Success 200 {object} response.Envelope
// @Router /brands/{id} [put]
func (h *CatalogHandler) UpdateBrand(c *gin.Context) {
	var req dto.BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid brand payload"))
		return
	}
	brand, err := h.service.UpdateBrand(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, brand, nil)
}

// DeleteBrand godoc
// @Summary Delete a brand and its editions
// @Tags Catalog
// @Param id path string true "Brand ID"
// @Success 204
// @Router /brands/{id} [delete]
func (h *CatalogHandler) DeleteBrand(c *gin.Context) {
	if err := h.service.DeleteBrand(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListEditions godoc
// @Summary List editions
// @Tags Catalog
// @Produce json
// @Param brandId query string false "Brand ID"
// @Success 200 {object} response.Envelope
// @Router /editions [get]
func (h *CatalogHandler) ListEditions(c *gin.Context) {
	editions, hit, err := h.service.ListEditions(c.Request.Context(), c.Query("brandId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, editions, nil, middleware.ExtractMeta(c))
}

// CreateEdition godoc
// @Summary Create an edition
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.EditionRequest true "Edition"
// @Success 201 {object} response.Envelope
// @Router /editions [post]
func (h *CatalogHandler) CreateEdition(c *gin.Context) {
	var req dto.EditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edition payload"))
		return
	}
	edition, err := h.service.CreateEdition(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, edition)
}

// UpdateEditionStatus godoc
// @Summary Move an edition to another production stage
// @Tags Catalog
// @Accept json
// @Param id path string true "Edition ID"
// @Param payload body dto.EditionStatusRequest true "Status"
// @Success 204
// @Router /editions/{id}/status [patch]
func (h *CatalogHandler) UpdateEditionStatus(c *gin.Context) {
	var req dto.EditionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	if err := h.service.UpdateEditionStatus(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
