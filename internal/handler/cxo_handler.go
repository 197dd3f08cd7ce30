package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/internal/service"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

type cxoService interface {
	Submit(ctx context.Context, actorID string, req dto.SubmitArticleRequest, uploads []service.FileUpload) (*models.CXOArticleDetail, error)
	Approve(ctx context.Context, actorID, articleID string, req dto.ApproveArticleRequest) (*dto.ArticleReviewResponse, error)
	Reject(ctx context.Context, actorID, articleID string, req dto.RejectArticleRequest) (*dto.ArticleReviewResponse, error)
	MarkUsed(ctx context.Context, actorID, articleID string) (*models.CXOArticle, error)
	Edit(ctx context.Context, actorID, articleID string, req dto.EditArticleRequest) (*dto.ArticleReviewResponse, error)
	List(ctx context.Context, actorID string, query dto.ArticleQuery) (*service.ArticleListResponse, error)
	Get(ctx context.Context, actorID, articleID string) (*models.CXOArticleDetail, error)
	ToggleArchive(ctx context.Context, actorID, articleID string) (*models.CXOArticle, error)
	FileLink(ctx context.Context, actorID, fileID string) (*dto.FileDownloadResponse, error)
}

// CXOHandler exposes the contributed article review workflow.
type CXOHandler struct {
	service cxoService
}

// NewCXOHandler constructs the handler.
func NewCXOHandler(svc cxoService) *CXOHandler {
	return &CXOHandler{service: svc}
}

// Submit godoc
// @Summary Submit a CXO article
// @Description Stores the article with its documents and opens an editorial review task
// @Tags CXO
// @Accept multipart/form-data
// @Produce json
// @Param brandId formData string true "Brand ID"
// @Param companyName formData string true "Company name"
// @Param files formData file false "Article documents"
// @Success 201 {object} response.Envelope
// @Router /cxo/articles [post]
func (h *CXOHandler) Submit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.SubmitArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, payloadError(err, "invalid article payload"))
		return
	}
	var uploads []service.FileUpload
	if c.ContentType() == "multipart/form-data" {
		files, release, err := readUploads(c, "files")
		defer release()
		if err != nil {
			response.Error(c, err)
			return
		}
		uploads = files
	}
	detail, err := h.service.Submit(c.Request.Context(), claims.UserID, req, uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List godoc
// @Summary List CXO articles visible to the caller
// @Tags CXO
// @Produce json
// @Param brandId query string false "Brand ID"
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /cxo/articles [get]
func (h *CXOHandler) List(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	query := dto.ArticleQuery{BrandID: c.Query("brandId")}
	query.Page, query.PageSize = pageParams(c)
	for _, raw := range splitQuery(c.Query("status")) {
		query.Status = append(query.Status, models.CXOArticleStatus(raw))
	}
	result, err := h.service.List(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Get godoc
// @Summary CXO article detail
// @Tags CXO
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /cxo/articles/{id} [get]
func (h *CXOHandler) Get(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Approve godoc
// @Summary Approve a CXO article
// @Tags CXO
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body dto.ApproveArticleRequest false "Decision"
// @Success 200 {object} response.Envelope
// @Router /cxo/articles/{id}/approve [post]
func (h *CXOHandler) Approve(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.ApproveArticleRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Approve(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject a CXO article
// @Tags CXO
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body dto.RejectArticleRequest true "Reason"
// @Success 200 {object} response.Envelope
// @Router /cxo/articles/{id}/reject [post]
func (h *CXOHandler) Reject(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.RejectArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reject payload"))
		return
	}
	result, err := h.service.Reject(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MarkUsed godoc
// @Summary Mark an approved article as used
// @Tags CXO
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /cxo/articles/{id}/mark-used [post]
func (h *CXOHandler) MarkUsed(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	article, err := h.service.MarkUsed(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Edit godoc
// @Summary Edit CXO article metadata
// @Tags CXO
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body dto.EditArticleRequest true "Article fields"
// @Success 200 {object} response.Envelope
// @Router /cxo/articles/{id} [put]
func (h *CXOHandler) Edit(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.EditArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, payloadError(err, "invalid article payload"))
		return
	}
	result, err := h.service.Edit(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ToggleArchive godoc
// @Summary Archive or unarchive a CXO article
// @Tags CXO
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /cxo/articles/{id}/archive [post]
func (h *CXOHandler) ToggleArchive(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	article, err := h.service.ToggleArchive(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// FileLink godoc
// @Summary Signed download link for an article document
// @Tags CXO
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} response.Envelope
// @Router /cxo/files/{fileId}/link [get]
func (h *CXOHandler) FileLink(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	link, err := h.service.FileLink(c.Request.Context(), claims.UserID, c.Param("fileId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}
