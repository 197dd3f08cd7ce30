package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/magazine-flow-api/internal/dto"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
)

type taskFileStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, file *models.TaskFile) error
	GetByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TaskFile, error)
	ListByTask(ctx context.Context, taskID string) ([]models.TaskFile, error)
	SoftDelete(ctx context.Context, exec sqlx.ExtContext, id string, at time.Time) error
}

// TaskFileService manages the attachment ledger of tasks.
type TaskFileService struct {
	engine      *taskEngine
	files       taskFileStore
	tx          txRunner
	attachments *Attachments
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewTaskFileService constructs the service.
func NewTaskFileService(stores TaskStores, files taskFileStore, tx txRunner, attachments *Attachments, metrics *MetricsService, logger *zap.Logger) *TaskFileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskFileService{
		engine:      stores.engine(),
		files:       files,
		tx:          tx,
		attachments: attachments,
		metrics:     metrics,
		logger:      logger,
	}
}

func canUploadTaskFile(actor *models.User, task *models.Task) bool {
	c := capabilityOf(actor, task)
	return c.superAdmin || c.manager || c.assignee || c.deptMember
}

func canDownloadTaskFile(actor *models.User, task *models.Task) bool {
	c := capabilityOf(actor, task)
	return c.superAdmin || c.manager || c.creator || c.assignee || c.deptMember
}

// Upload stores files against a task under a single "Files Uploaded" history row.
// Metadata commits first and bytes are written afterwards.
func (s *TaskFileService) Upload(ctx context.Context, actorID, taskID string, uploads []FileUpload, comment string) (*dto.TaskUploadResponse, error) {
	if len(uploads) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files selected")
	}
	prepared, err := s.attachments.prepare("tasks/"+taskID, uploads, TaskFileExtensions)
	if err != nil {
		s.metrics.RecordRoutingAction(string(ActionUploadFiles), OutcomeRejected)
		return nil, err
	}
	if len(prepared) == 0 {
		s.metrics.RecordRoutingAction(string(ActionUploadFiles), OutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files selected")
	}

	var resp *dto.TaskUploadResponse
	err = s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		task, err := s.engine.lockTask(ctx, exec, taskID)
		if err != nil {
			return err
		}
		if !canUploadTaskFile(actor, task) {
			return appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to upload files to this task")
		}

		names := make([]string, 0, len(prepared))
		for _, f := range prepared {
			names = append(names, f.Original)
		}
		ch := change{history: newHistory(models.ActionFilesUploaded, "", strings.Join(names, ", "), nil, nil, comment)}
		if err := s.engine.record(ctx, exec, task, actor, &ch); err != nil {
			return err
		}

		resp = &dto.TaskUploadResponse{History: ch.history, Files: make([]models.TaskFile, 0, len(prepared))}
		historyID := ch.history.ID
		for _, f := range prepared {
			file := models.TaskFile{
				TaskID:           task.ID,
				UploadedByID:     actor.ID,
				HistoryID:        &historyID,
				Filename:         f.Stored,
				OriginalFilename: f.Original,
				FilePath:         f.Path,
				FileType:         f.Ext,
				FileSize:         f.Size,
				UploadedAt:       s.engine.now(),
			}
			if err := s.files.Create(ctx, exec, &file); err != nil {
				return internalError(err, "failed to record task file")
			}
			resp.Files = append(resp.Files, file)
		}
		return nil
	})
	s.metrics.RecordRoutingAction(string(ActionUploadFiles), outcomeOf(err))
	if err != nil {
		s.attachments.discard(prepared)
		return nil, err
	}
	s.attachments.write(prepared)
	s.logger.Info("task files uploaded",
		zap.String("task_id", taskID),
		zap.String("actor_id", actorID),
		zap.Int("count", len(prepared)),
	)
	return resp, nil
}

// List returns the live files of a task.
func (s *TaskFileService) List(ctx context.Context, taskID string) ([]models.TaskFile, error) {
	files, err := s.files.ListByTask(ctx, taskID)
	if err != nil {
		return nil, internalError(err, "failed to list task files")
	}
	if files == nil {
		files = []models.TaskFile{}
	}
	return files, nil
}

// DownloadLink returns a signed link for a live task file the actor can see.
func (s *TaskFileService) DownloadLink(ctx context.Context, actorID, fileID string) (*dto.FileDownloadResponse, error) {
	actor, err := s.engine.loadActor(ctx, nil, actorID)
	if err != nil {
		return nil, err
	}
	file, err := s.loadFile(ctx, nil, fileID)
	if err != nil {
		return nil, err
	}
	if file.IsDeleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	task, err := s.engine.tasks.GetByID(ctx, nil, file.TaskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, internalError(err, "failed to load task")
	}
	if !canDownloadTaskFile(actor, task) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to download this file")
	}
	return s.attachments.Link(file.ID, file.FilePath, file.OriginalFilename)
}

// Delete soft-deletes a file and records the deletion on the task history.
func (s *TaskFileService) Delete(ctx context.Context, actorID, fileID string, req dto.DeleteFileRequest) (*models.TaskHistory, error) {
	var entry *models.TaskHistory
	err := s.tx.WithinTx(ctx, func(exec sqlx.ExtContext) error {
		actor, err := s.engine.loadActor(ctx, exec, actorID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleSuperAdmin {
			return appErrors.Clone(appErrors.ErrForbidden, "only super admins can delete files")
		}
		file, err := s.loadFile(ctx, exec, fileID)
		if err != nil {
			return err
		}
		if file.IsDeleted {
			return invalidTransition("file is already deleted")
		}
		task, err := s.engine.lockTask(ctx, exec, file.TaskID)
		if err != nil {
			return err
		}
		if err := s.files.SoftDelete(ctx, exec, file.ID, s.engine.now()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return invalidTransition("file is already deleted")
			}
			return internalError(err, "failed to delete file")
		}
		comment := stringOr(optionalString(req.Comment), "File deleted by Super Admin")
		ch := change{history: newHistory(models.ActionFileDeleted, file.OriginalFilename, "", nil, nil, comment)}
		if err := s.engine.record(ctx, exec, task, actor, &ch); err != nil {
			return err
		}
		entry = ch.history
		return nil
	})
	s.metrics.RecordRoutingAction(string(ActionDeleteFile), outcomeOf(err))
	if err != nil {
		return nil, err
	}
	s.logger.Info("task file deleted", zap.String("file_id", fileID), zap.String("actor_id", actorID))
	return entry, nil
}

func (s *TaskFileService) loadFile(ctx context.Context, exec sqlx.ExtContext, id string) (*models.TaskFile, error) {
	file, err := s.files.GetByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("file %s not found", id))
		}
		return nil, internalError(err, "failed to load file")
	}
	return file, nil
}
