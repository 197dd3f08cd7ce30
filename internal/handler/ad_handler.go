package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/internal/service"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

type adService interface {
	Upload(ctx context.Context, actorID string, req dto.AdUploadRequest, uploads []service.FileUpload) ([]models.Ad, error)
	ListGrouped(ctx context.Context, brandID string) ([]models.BrandAds, error)
	AssignEdition(ctx context.Context, id string, req dto.AdEditionRequest) (*models.Ad, error)
	DownloadLink(ctx context.Context, id string) (*dto.FileDownloadResponse, error)
}

// AdHandler manages ad artwork.
type AdHandler struct {
	service adService
}

// NewAdHandler constructs the handler.
func NewAdHandler(svc adService) *AdHandler {
	return &AdHandler{service: svc}
}

// Upload godoc
// @Summary Upload ad artwork
// @Tags Ads
// @Accept multipart/form-data
// @Produce json
// @Param brandId formData string true "Brand ID"
// @Param editionId formData string false "Edition ID"
// @Param files formData file true "Artwork"
// @Success 201 {object} response.Envelope
// @Router /ads [post]
func (h *AdHandler) Upload(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.AdUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, payloadError(err, "invalid ad payload"))
		return
	}
	uploads, release, err := readUploads(c, "files")
	defer release()
	if err != nil {
		response.Error(c, err)
		return
	}
	ads, err := h.service.Upload(c.Request.Context(), claims.UserID, req, uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ads)
}

// List godoc
// @Summary List ads grouped by brand
// @Tags Ads
// @Produce json
// @Param brandId query string false "Brand ID"
// @Success 200 {object} response.Envelope
// @Router /ads [get]
func (h *AdHandler) List(c *gin.Context) {
	groups, err := h.service.ListGrouped(c.Request.Context(), c.Query("brandId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}

// AssignEdition godoc
// @Summary Assign an ad to an edition
// @Tags Ads
// @Accept json
// @Produce json
// @Param id path string true "Ad ID"
// @Param payload body dto.AdEditionRequest true "Edition"
// @Success 200 {object} response.Envelope
// @Router /ads/{id}/edition [put]
func (h *AdHandler) AssignEdition(c *gin.Context) {
	var req dto.AdEditionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ad, err := h.service.AssignEdition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ad, nil)
}

// Link godoc
// @Summary Signed download link for ad artwork
// @Tags Ads
// @Produce json
// @Param id path string true "Ad ID"
// @Success 200 {object} response.Envelope
// @Router /ads/{id}/link [get]
func (h *AdHandler) Link(c *gin.Context) {
	link, err := h.service.DownloadLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}
