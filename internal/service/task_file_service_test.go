package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/storage"
)

func newTaskFileServiceForTest(t *testing.T) (*TaskFileService, *memDB, staff) {
	t.Helper()
	db := newMemDB()
	people := seedStaff(db)
	svc := NewTaskFileService(db.stores(), memTaskFiles{db}, memTx{db}, newTestAttachments(t), nil, zap.NewNop())
	return svc, db, people
}

func TestTaskFileServiceUploadRecordsOneHistoryRow(t *testing.T) {
	svc, db, people := newTaskFileServiceForTest(t)
	task := seedTask(t, db, models.Task{
		CurrentDepartment: models.DepartmentDesign,
		Status:            models.TaskStatusAssigned,
		AssignedToID:      &people.designer.ID,
	})

	resp, err := svc.Upload(context.Background(), people.designer.ID, task.ID, []FileUpload{
		textUpload("cover.png", "png"),
		textUpload("notes.txt", "txt"),
	}, "first pass")
	require.NoError(t, err)
	require.Len(t, resp.Files, 2)
	assert.Equal(t, models.ActionFilesUploaded, resp.History.Action)
	assert.Equal(t, "cover.png, notes.txt", *resp.History.NewValue)
	for _, f := range resp.Files {
		require.NotNil(t, f.HistoryID)
		assert.Equal(t, resp.History.ID, *f.HistoryID)
	}

	history := db.historyOf(task.ID)
	require.Len(t, history, 1)
	assert.Equal(t, "first pass", *history[0].Comment)
	assert.Equal(t, 1, db.task(task.ID).Version)

	files, err := svc.List(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestTaskFileServiceUploadRejections(t *testing.T) {
	svc, db, people := newTaskFileServiceForTest(t)
	ctx := context.Background()
	task := seedTask(t, db, models.Task{CurrentDepartment: models.DepartmentDesign})

	_, err := svc.Upload(ctx, people.designer.ID, task.ID, nil, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Upload(ctx, people.designer.ID, task.ID, []FileUpload{textUpload("run.sh", "x")}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.Upload(ctx, people.editor.ID, task.ID, []FileUpload{textUpload("a.pdf", "x")}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Upload(ctx, people.designer.ID, "missing", []FileUpload{textUpload("a.pdf", "x")}, "")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, db.historyOf(task.ID))
}

func TestTaskFileServiceDownloadLink(t *testing.T) {
	svc, db, people := newTaskFileServiceForTest(t)
	ctx := context.Background()
	task := seedTask(t, db, models.Task{CurrentDepartment: models.DepartmentDesign})
	resp, err := svc.Upload(ctx, people.designer.ID, task.ID, []FileUpload{textUpload("cover.png", "png")}, "")
	require.NoError(t, err)
	fileID := resp.Files[0].ID

	link, err := svc.DownloadLink(ctx, people.sales.ID, fileID)
	require.NoError(t, err)
	assert.Equal(t, "cover.png", link.OriginalFilename)

	_, err = svc.DownloadLink(ctx, people.editor.ID, fileID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.DownloadLink(ctx, people.designer.ID, "nope")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTaskFileServiceDelete(t *testing.T) {
	svc, db, people := newTaskFileServiceForTest(t)
	ctx := context.Background()
	task := seedTask(t, db, models.Task{CurrentDepartment: models.DepartmentDesign, Status: models.TaskStatusCompleted})
	resp, err := svc.Upload(ctx, people.dsManager.ID, task.ID, []FileUpload{textUpload("final.pdf", "%PDF")}, "")
	require.NoError(t, err)
	fileID := resp.Files[0].ID

	_, err = svc.Delete(ctx, people.dsManager.ID, fileID, dto.DeleteFileRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	entry, err := svc.Delete(ctx, people.admin.ID, fileID, dto.DeleteFileRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.ActionFileDeleted, entry.Action)
	assert.Equal(t, "final.pdf", *entry.OldValue)
	assert.Equal(t, "File deleted by Super Admin", *entry.Comment)

	files, err := svc.List(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Len(t, db.historyOf(task.ID), 2)

	_, err = svc.Delete(ctx, people.admin.ID, fileID, dto.DeleteFileRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))

	_, err = svc.DownloadLink(ctx, people.admin.ID, fileID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTaskFileServiceRejectedUploadLeavesNoFiles(t *testing.T) {
	db := newMemDB()
	people := seedStaff(db)
	root := t.TempDir()
	local, err := storage.NewLocalStorage(root)
	require.NoError(t, err)
	attachments := NewAttachments(local, storage.NewSignedURLSigner("test-secret", time.Hour), nil, zap.NewNop(), AttachmentsConfig{MaxFileSize: 1024})
	svc := NewTaskFileService(db.stores(), memTaskFiles{db}, memTx{db}, attachments, nil, zap.NewNop())
	task := seedTask(t, db, models.Task{CurrentDepartment: models.DepartmentDesign})

	_, err = svc.Upload(context.Background(), people.editor.ID, task.ID, []FileUpload{textUpload("a.pdf", "x"), textUpload("b.pdf", "y")}, "")
	require.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	staged, err := os.ReadDir(filepath.Join(root, stagingDir))
	require.NoError(t, err)
	assert.Empty(t, staged)
	_, err = os.Stat(filepath.Join(root, "tasks", task.ID))
	assert.True(t, os.IsNotExist(err))

	_, err = svc.Upload(context.Background(), people.designer.ID, task.ID, []FileUpload{textUpload("a.pdf", "x")}, "")
	require.NoError(t, err)
	staged, err = os.ReadDir(filepath.Join(root, stagingDir))
	require.NoError(t, err)
	assert.Empty(t, staged)
	stored, err := os.ReadDir(filepath.Join(root, "tasks", task.ID))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
