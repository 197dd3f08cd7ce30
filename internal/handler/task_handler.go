package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/internal/service"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

type taskService interface {
	Create(ctx context.Context, actorID string, req dto.CreateTaskRequest) (*service.RoutingResult, error)
	PickUp(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)
	AssignToMember(ctx context.Context, actorID, taskID string, req dto.AssignMemberRequest) (*service.RoutingResult, error)
	AssignToTeam(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)
	Reassign(ctx context.Context, actorID, taskID string, req dto.ReassignRequest) (*service.RoutingResult, error)
	Complete(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)
	SendBackToManager(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)
	HandOff(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)
	SendToSales(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)
	Archive(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)
	Get(ctx context.Context, taskID string) (*models.TaskDetail, error)
	List(ctx context.Context, query dto.TaskQuery) (*dto.TaskListResponse, error)
	MyTasks(ctx context.Context, actorID string, query dto.TaskQuery) (*dto.TaskListResponse, error)
	OpenTasks(ctx context.Context, query dto.TaskQuery) (*dto.TaskListResponse, error)
}

type historyExporter interface {
	TaskHistory(ctx context.Context, taskID, format string) (*service.ExportFile, error)
}

type routingCall func(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error)

// TaskHandler exposes task routing endpoints.
type TaskHandler struct {
	tasks   taskService
	exports historyExporter
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(tasks taskService, exports historyExporter) *TaskHandler {
	return &TaskHandler{tasks: tasks, exports: exports}
}

// Create godoc
// @Summary Create a task
// @Description Opens a task in a department and routes it to the department manager
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body dto.CreateTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid task payload"))
		return
	}
	result, err := h.tasks.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Param search query string false "Company or description search"
// @Param brandId query string false "Brand ID"
// @Param editionId query string false "Edition ID"
// @Param status query string false "Comma separated statuses"
// @Param department query string false "Current department"
// @Param priority query string false "Priority"
// @Param archived query bool false "Include archived tasks"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	query, err := taskQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.tasks.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Mine godoc
// @Summary List tasks assigned to the current user
// @Tags Tasks
// @Produce json
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /tasks/my [get]
func (h *TaskHandler) Mine(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	query, err := taskQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.tasks.MyTasks(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Open godoc
// @Summary List unassigned open tasks
// @Description Defaults to the caller's department
// @Tags Tasks
// @Produce json
// @Param department query string false "Department"
// @Param brandId query string false "Brand ID"
// @Param priority query string false "Priority"
// @Success 200 {object} response.Envelope
// @Router /tasks/open [get]
func (h *TaskHandler) Open(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	query, err := taskQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if query.Department == nil && claims.Department != "" {
		dept := claims.Department
		query.Department = &dept
	}
	result, err := h.tasks.OpenTasks(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination)
}

// Get godoc
// @Summary Task detail with history and files
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	detail, err := h.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// PickUp godoc
// @Summary Self-assign an open task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param payload body dto.RoutingRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /tasks/{id}/pickup [post]
func (h *TaskHandler) PickUp(c *gin.Context) {
	h.route(c, h.tasks.PickUp)
}

// AssignToTeam godoc
// @Summary Release a task back to the department pool
// @Tags Tasks
// @Param id path string true "Task ID"
// @Param payload body dto.RoutingRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/assign-team [post]
func (h *TaskHandler) AssignToTeam(c *gin.Context) {
	h.route(c, h.tasks.AssignToTeam)
}

// Complete godoc
// @Summary Complete the current stage of a task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Param payload body dto.RoutingRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	h.route(c, h.tasks.Complete)
}

// SendBackToManager godoc
// @Summary Return a task to the department manager
// @Tags Tasks
// @Param id path string true "Task ID"
// @Param payload body dto.RoutingRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/send-back [post]
func (h *TaskHandler) SendBackToManager(c *gin.Context) {
	h.route(c, h.tasks.SendBackToManager)
}

// HandOff godoc
// @Summary Hand a task to the other production department
// @Tags Tasks
// @Param id path string true "Task ID"
// @Param payload body dto.RoutingRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/handoff [post]
func (h *TaskHandler) HandOff(c *gin.Context) {
	h.route(c, h.tasks.HandOff)
}

// SendToSales godoc
// @Summary Send a task to sales for client feedback
// @Tags Tasks
// @Param id path string true "Task ID"
// @Param payload body dto.RoutingRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/send-to-sales [post]
func (h *TaskHandler) SendToSales(c *gin.Context) {
	h.route(c, h.tasks.SendToSales)
}

// Archive godoc
// @Summary Archive a completed task
// @Tags Tasks
// @Param id path string true "Task ID"
// @Param payload body dto.RoutingRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/archive [post]
func (h *TaskHandler) Archive(c *gin.Context) {
	h.route(c, h.tasks.Archive)
}

// AssignToMember godoc
// @Summary Assign a task to a department member
// @Tags Tasks
// @Accept json
// @Param id path string true "Task ID"
// @Param payload body dto.AssignMemberRequest true "Member"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/assign [post]
func (h *TaskHandler) AssignToMember(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.AssignMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	result, err := h.tasks.AssignToMember(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reassign godoc
// @Summary Move a task to another department
// @Tags Tasks
// @Accept json
// @Param id path string true "Task ID"
// @Param payload body dto.ReassignRequest true "Target department"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/reassign [post]
func (h *TaskHandler) Reassign(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reassign payload"))
		return
	}
	result, err := h.tasks.Reassign(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ExportHistory godoc
// @Summary Export the history of a task
// @Tags Tasks
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Task ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /tasks/{id}/history/export [get]
func (h *TaskHandler) ExportHistory(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req dto.HistoryExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.exports.TaskHistory(c.Request.Context(), c.Param("id"), req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.AttachmentBytes(c, file.Filename, file.ContentType, file.Data)
}

func (h *TaskHandler) route(c *gin.Context, call routingCall) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.RoutingRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := call(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func taskQuery(c *gin.Context) (dto.TaskQuery, error) {
	query := dto.TaskQuery{
		Search:    c.Query("search"),
		BrandID:   c.Query("brandId"),
		EditionID: c.Query("editionId"),
		Archived:  c.Query("archived") == "true",
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	query.Page, query.PageSize = pageParams(c)
	for _, raw := range splitQuery(c.Query("status")) {
		query.Status = append(query.Status, models.TaskStatus(raw))
	}
	dept, err := departmentParam(c, "department")
	if err != nil {
		return query, err
	}
	query.Department = dept
	if raw := strings.TrimSpace(c.Query("priority")); raw != "" {
		priority := models.TaskPriority(strings.ToLower(raw))
		query.Priority = &priority
	}
	return query, nil
}
