package dto

import "github.com/noah-isme/magazine-flow-api/internal/models"

// FileDownloadResponse enriches file metadata with a signed download URL.
type FileDownloadResponse struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"originalFilename"`
	DownloadURL      string `json:"downloadUrl"`
}

// TaskUploadResponse lists stored files and the history entry they hang off.
type TaskUploadResponse struct {
	History *models.TaskHistory `json:"history"`
	Files   []models.TaskFile   `json:"files"`
}

// DeleteFileRequest carries the optional deletion comment.
type DeleteFileRequest struct {
	Comment string `json:"comment"`
}
