package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/middleware"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/internal/service"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

type taskServiceMock struct {
	result    *service.RoutingResult
	err       error
	lastActor string
	lastTask  string
	lastReq   dto.RoutingRequest
	lastQuery dto.TaskQuery
	assignReq dto.AssignMemberRequest
	created   dto.CreateTaskRequest
}

func (m *taskServiceMock) routed(actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	m.lastActor, m.lastTask, m.lastReq = actorID, taskID, req
	return m.result, m.err
}

func (m *taskServiceMock) Create(ctx context.Context, actorID string, req dto.CreateTaskRequest) (*service.RoutingResult, error) {
	m.lastActor, m.created = actorID, req
	return m.result, m.err
}

func (m *taskServiceMock) PickUp(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, req)
}

func (m *taskServiceMock) AssignToMember(ctx context.Context, actorID, taskID string, req dto.AssignMemberRequest) (*service.RoutingResult, error) {
	m.assignReq = req
	return m.routed(actorID, taskID, dto.RoutingRequest{Comment: req.Comment})
}

func (m *taskServiceMock) AssignToTeam(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, req)
}

func (m *taskServiceMock) Reassign(ctx context.Context, actorID, taskID string, req dto.ReassignRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, dto.RoutingRequest{Comment: req.Comment})
}

func (m *taskServiceMock) Complete(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, req)
}

func (m *taskServiceMock) SendBackToManager(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, req)
}

func (m *taskServiceMock) HandOff(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, req)
}

func (m *taskServiceMock) SendToSales(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, req)
}

func (m *taskServiceMock) Archive(ctx context.Context, actorID, taskID string, req dto.RoutingRequest) (*service.RoutingResult, error) {
	return m.routed(actorID, taskID, req)
}

func (m *taskServiceMock) Get(ctx context.Context, taskID string) (*models.TaskDetail, error) {
	m.lastTask = taskID
	return nil, m.err
}

func (m *taskServiceMock) List(ctx context.Context, query dto.TaskQuery) (*dto.TaskListResponse, error) {
	m.lastQuery = query
	return &dto.TaskListResponse{Items: []models.Task{}}, m.err
}

func (m *taskServiceMock) MyTasks(ctx context.Context, actorID string, query dto.TaskQuery) (*dto.TaskListResponse, error) {
	m.lastActor, m.lastQuery = actorID, query
	return &dto.TaskListResponse{Items: []models.Task{}}, m.err
}

func (m *taskServiceMock) OpenTasks(ctx context.Context, query dto.TaskQuery) (*dto.TaskListResponse, error) {
	m.lastQuery = query
	return &dto.TaskListResponse{Items: []models.Task{}}, m.err
}

type exporterMock struct {
	file   *service.ExportFile
	err    error
	format string
}

func (m *exporterMock) TaskHistory(ctx context.Context, taskID, format string) (*service.ExportFile, error) {
	m.format = format
	return m.file, m.err
}

func newTaskContext(method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "task-1"}}
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestTaskHandlerPickUpWithoutBody(t *testing.T) {
	mockSvc := &taskServiceMock{result: &service.RoutingResult{Changed: true, Message: "Task picked up successfully!"}}
	handler := NewTaskHandler(mockSvc, nil)

	c, w := newTaskContext(http.MethodPost, "/tasks/task-1/pickup", "", &models.JWTClaims{UserID: "u-ed1", Role: models.RoleEditorial})
	handler.PickUp(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-ed1", mockSvc.lastActor)
	assert.Equal(t, "task-1", mockSvc.lastTask)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Task picked up successfully!", body["data"]["message"])
}

func TestTaskHandlerRoutingPassesComment(t *testing.T) {
	mockSvc := &taskServiceMock{result: &service.RoutingResult{}}
	handler := NewTaskHandler(mockSvc, nil)

	c, w := newTaskContext(http.MethodPost, "/tasks/task-1/handoff", `{"comment":"layout ready"}`, &models.JWTClaims{UserID: "u-ed1"})
	handler.HandOff(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "layout ready", mockSvc.lastReq.Comment)
}

func TestTaskHandlerMapsInvalidTransition(t *testing.T) {
	mockSvc := &taskServiceMock{err: appErrors.Clone(appErrors.ErrInvalidTransition, "task is already assigned")}
	handler := NewTaskHandler(mockSvc, nil)

	c, w := newTaskContext(http.MethodPost, "/tasks/task-1/pickup", "", &models.JWTClaims{UserID: "u-ed2"})
	handler.PickUp(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTaskHandlerRequiresClaims(t *testing.T) {
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc, nil)

	c, w := newTaskContext(http.MethodPost, "/tasks/task-1/complete", "", nil)
	handler.Complete(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, mockSvc.lastActor)
}

func TestTaskHandlerAssignInvalidBody(t *testing.T) {
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc, nil)

	c, w := newTaskContext(http.MethodPost, "/tasks/task-1/assign", `{"memberId":`, &models.JWTClaims{UserID: "u-edm"})
	handler.AssignToMember(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mockSvc.lastTask)
}

func TestTaskHandlerCreate(t *testing.T) {
	mockSvc := &taskServiceMock{result: &service.RoutingResult{Task: &models.Task{ID: "task-9"}}}
	handler := NewTaskHandler(mockSvc, nil)

	payload := `{"department":"editorial","brandId":"brand-1","category":"Profile","companyName":"Acme"}`
	c, w := newTaskContext(http.MethodPost, "/tasks", payload, &models.JWTClaims{UserID: "u-sales"})
	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.DepartmentEditorial, mockSvc.created.Department)
	assert.Equal(t, "Acme", mockSvc.created.CompanyName)
}

func TestTaskHandlerListParsesFilters(t *testing.T) {
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc, nil)

	c, w := newTaskContext(http.MethodGet, "/tasks?status=Open,Review&department=Design&priority=HIGH&page=2&limit=5&archived=true", "", &models.JWTClaims{UserID: "u-admin"})
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.TaskStatus{models.TaskStatusOpen, models.TaskStatusReview}, mockSvc.lastQuery.Status)
	require.NotNil(t, mockSvc.lastQuery.Department)
	assert.Equal(t, models.DepartmentDesign, *mockSvc.lastQuery.Department)
	require.NotNil(t, mockSvc.lastQuery.Priority)
	assert.Equal(t, models.PriorityHigh, *mockSvc.lastQuery.Priority)
	assert.Equal(t, 2, mockSvc.lastQuery.Page)
	assert.Equal(t, 5, mockSvc.lastQuery.PageSize)
	assert.True(t, mockSvc.lastQuery.Archived)
}

func TestTaskHandlerListRejectsUnknownDepartment(t *testing.T) {
	handler := NewTaskHandler(&taskServiceMock{}, nil)

	c, w := newTaskContext(http.MethodGet, "/tasks?department=finance", "", &models.JWTClaims{UserID: "u-admin"})
	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskHandlerOpenDefaultsToCallerDepartment(t *testing.T) {
	mockSvc := &taskServiceMock{}
	handler := NewTaskHandler(mockSvc, nil)

	c, w := newTaskContext(http.MethodGet, "/tasks/open", "", &models.JWTClaims{UserID: "u-ds1", Department: models.DepartmentDesign})
	handler.Open(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mockSvc.lastQuery.Department)
	assert.Equal(t, models.DepartmentDesign, *mockSvc.lastQuery.Department)
}

func TestTaskHandlerExportHistory(t *testing.T) {
	exporter := &exporterMock{file: &service.ExportFile{Filename: "history.csv", ContentType: "text/csv", Data: []byte("When,User\n")}}
	handler := NewTaskHandler(&taskServiceMock{}, exporter)

	c, w := newTaskContext(http.MethodGet, "/tasks/task-1/history/export?format=csv", "", &models.JWTClaims{UserID: "u-admin"})
	handler.ExportHistory(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "history.csv")
	assert.Equal(t, "When,User\n", w.Body.String())
}
