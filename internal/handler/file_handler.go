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

type taskFileService interface {
	Upload(ctx context.Context, actorID, taskID string, uploads []service.FileUpload, comment string) (*dto.TaskUploadResponse, error)
	List(ctx context.Context, taskID string) ([]models.TaskFile, error)
	DownloadLink(ctx context.Context, actorID, fileID string) (*dto.FileDownloadResponse, error)
	Delete(ctx context.Context, actorID, fileID string, req dto.DeleteFileRequest) (*models.TaskHistory, error)
}

type fileOpener interface {
	Open(ctx context.Context, token, filename string) (*service.FileDownload, error)
}

// FileHandler serves task attachments and signed downloads.
type FileHandler struct {
	files  taskFileService
	opener fileOpener
}

// NewFileHandler constructs the handler.
func NewFileHandler(files taskFileService, opener fileOpener) *FileHandler {
	return &FileHandler{files: files, opener: opener}
}

// Upload godoc
// @Summary Upload files to a task
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Task ID"
// @Param files formData file true "Files"
// @Param comment formData string false "Comment"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /tasks/{id}/files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	uploads, release, err := readUploads(c, "files")
	defer release()
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.files.Upload(c.Request.Context(), claims.UserID, c.Param("id"), uploads, c.PostForm("comment"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List live files of a task
// @Tags Files
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/files [get]
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.files.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Link godoc
// @Summary Signed download link for a task file
// @Tags Files
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /files/{fileId}/link [get]
func (h *FileHandler) Link(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	link, err := h.files.DownloadLink(c.Request.Context(), claims.UserID, c.Param("fileId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Delete godoc
// @Summary Soft-delete a task file
// @Tags Files
// @Accept json
// @Produce json
// @Param fileId path string true "File ID"
// @Param payload body dto.DeleteFileRequest false "Comment"
// @Success 200 {object} response.Envelope
// @Router /files/{fileId} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var req dto.DeleteFileRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	entry, err := h.files.Delete(c.Request.Context(), claims.UserID, c.Param("fileId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Download godoc
// @Summary Download a file through a signed token
// @Tags Files
// @Produce octet-stream
// @Param token query string true "Signed token"
// @Param name query string false "Download file name"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /files/download [get]
func (h *FileHandler) Download(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	download, err := h.opener.Open(c.Request.Context(), token, c.Query("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	response.Attachment(c, download.Filename, "", download.Size, download.File)
}
