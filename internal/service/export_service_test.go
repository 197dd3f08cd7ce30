package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/export"
)

type historyStub struct {
	task    *models.Task
	entries []models.TaskHistory
	err     error
}

func (h historyStub) History(ctx context.Context, taskID string) (*models.Task, []models.TaskHistory, error) {
	return h.task, h.entries, h.err
}

func newExportServiceForTest(t *testing.T, stub historyStub) *ExportService {
	t.Helper()
	svc := NewExportService(stub, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func sampleHistory() historyStub {
	comment := "please review"
	from, to := models.DepartmentEditorial, models.DepartmentDesign
	return historyStub{
		task: &models.Task{ID: "task-1", Title: "Profile: Acme"},
		entries: []models.TaskHistory{
			{Action: models.ActionTaskCreated, Username: "sam", NewValue: strPtr("Assigned"), CreatedAt: time.Date(2024, 2, 1, 10, 30, 0, 0, time.UTC)},
			{Action: models.ActionEditorialSentDesign, Username: "eve", OldValue: strPtr("eve"), NewValue: strPtr("dan"),
				FromDepartment: &from, ToDepartment: &to, Comment: &comment, CreatedAt: time.Date(2024, 2, 2, 11, 0, 0, 0, time.UTC)},
		},
	}
}

func TestExportServiceTaskHistoryCSV(t *testing.T) {
	svc := newExportServiceForTest(t, sampleHistory())

	file, err := svc.TaskHistory(context.Background(), "task-1", "")
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
	require.Equal(t, "task_task-1_history_20240301_090000.csv", file.Filename)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "When,User,Action,Old,New,From,To,Comment", lines[0])
	require.Equal(t, "2024-02-02 11:00,eve,Editorial Completed - Sent to Design,eve,dan,editorial,design,please review", lines[2])
}

func TestExportServiceTaskHistoryPDF(t *testing.T) {
	svc := newExportServiceForTest(t, sampleHistory())

	file, err := svc.TaskHistory(context.Background(), "task-1", "PDF")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := newExportServiceForTest(t, sampleHistory())

	_, err := svc.TaskHistory(context.Background(), "task-1", "xlsx")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportServicePropagatesNotFound(t *testing.T) {
	svc := newExportServiceForTest(t, historyStub{err: appErrors.Clone(appErrors.ErrNotFound, "task not found")})

	_, err := svc.TaskHistory(context.Background(), "missing", "csv")
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
