package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Team(ctx context.Context, actorID string, requested *models.Department) ([]models.User, error)
}

// UserHandler serves the staff directory.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Description Directory lookup for assignment pickers
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param department query string false "Department filter"
// @Param managers query bool false "Managers only"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter

	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	dept, err := departmentParam(c, "department")
	if err != nil {
		response.Error(c, err)
		return
	}
	filter.Department = dept
	if managers := c.Query("managers"); managers != "" {
		if val, err := strconv.ParseBool(managers); err == nil {
			filter.Managers = &val
		}
	}

	users, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, nil)
}

// Team godoc
// @Summary Members of the caller's department
// @Tags Users
// @Produce json
// @Param department query string false "Department for managers without one"
// @Success 200 {object} response.Envelope
// @Router /users/team [get]
func (h *UserHandler) Team(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	dept, err := departmentParam(c, "department")
	if err != nil {
		response.Error(c, err)
		return
	}
	members, err := h.service.Team(c.Request.Context(), claims.UserID, dept)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}
