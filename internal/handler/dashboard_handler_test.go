package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/magazine-flow-api/internal/middleware"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

type dashboardServiceMock struct {
	userResp    *models.UserDashboard
	managerResp *models.ManagerDashboard
	cacheHit    bool
	err         error
	requested   *models.Department
}

func (m *dashboardServiceMock) User(ctx context.Context, userID string) (*models.UserDashboard, error) {
	return m.userResp, m.err
}

func (m *dashboardServiceMock) Manager(ctx context.Context, userID string, requested *models.Department) (*models.ManagerDashboard, bool, error) {
	m.requested = requested
	return m.managerResp, m.cacheHit, m.err
}

func TestDashboardHandlerManagerReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &dashboardServiceMock{
		managerResp: &models.ManagerDashboard{Department: models.DepartmentEditorial},
		cacheHit:    true,
	}
	handler := NewDashboardHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard/manager?department=editorial", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u-admin", Role: models.RoleSuperAdmin})

	handler.Manager(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.requested)
	assert.Equal(t, models.DepartmentEditorial, *svc.requested)

	var payload response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.NotNil(t, payload.Meta)
	assert.Equal(t, true, payload.Meta["cache_hit"])
	assert.Contains(t, payload.Meta, "processing_time_ms")
}

func TestDashboardHandlerUserRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&dashboardServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.User(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
