package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/middleware"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

type dashboardService interface {
	User(ctx context.Context, userID string) (*models.UserDashboard, error)
	Manager(ctx context.Context, userID string, requested *models.Department) (*models.ManagerDashboard, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// User godoc
// @Summary Personal dashboard
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) User(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	summary, err := h.service.User(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Manager godoc
// @Summary Department manager dashboard
// @Tags Dashboard
// @Produce json
// @Param department query string false "Department (super admin only)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/manager [get]
func (h *DashboardHandler) Manager(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	dept, err := departmentParam(c, "department")
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Manager(c.Request.Context(), claims.UserID, dept)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
