package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/magazine-flow-api/internal/middleware"
	"github.com/noah-isme/magazine-flow-api/internal/models"
	"github.com/noah-isme/magazine-flow-api/internal/service"
	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// requireClaims writes a 401 and returns nil when the request is anonymous.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}

// bindOptionalJSON decodes a JSON body when one is present.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
	}
	return nil
}

// payloadError reports a body that tripped the size cap as 413 and anything else as 400.
func payloadError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

// readUploads opens every multipart file posted under field without buffering it. The
// returned release func closes the files and drops the form's temp files; callers defer it.
func readUploads(c *gin.Context, field string) ([]service.FileUpload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, payloadError(err, "invalid multipart payload")
	}
	headers := form.File[field]
	uploads := make([]service.FileUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	release := func() {
		for _, file := range opened {
			file.Close() //nolint:errcheck
		}
		form.RemoveAll() //nolint:errcheck
	}
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			release()
			return nil, func() {}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("cannot read %s", header.Filename))
		}
		opened = append(opened, file)
		uploads = append(uploads, service.FileUpload{Filename: header.Filename, Size: header.Size, Content: file})
	}
	return uploads, release, nil
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return page, size
}

func departmentParam(c *gin.Context, key string) (*models.Department, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	dept, ok := models.ParseDepartment(strings.ToLower(raw))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid department %q", raw))
	}
	return &dept, nil
}

func splitQuery(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
