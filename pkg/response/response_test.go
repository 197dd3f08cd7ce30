package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/magazine-flow-api/pkg/errors"
	"github.com/noah-isme/magazine-flow-api/pkg/middleware/requestid"
)

func serve(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestid.Middleware())
	router.GET("/x", handler)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(requestid.Header, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	var errs []*gin.Error
	w := serve(func(c *gin.Context) {
		Error(c, appErrors.Clone(appErrors.ErrInvalidTransition, "task already completed"))
		errs = c.Errors
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "INVALID_TRANSITION", body.Error.Code)
	assert.Equal(t, "req-42", body.RequestID)
	assert.Len(t, errs, 1)
}

func TestErrorHidesInternalCause(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Error(c, errors.New("pq: password authentication failed"))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = serve(func(c *gin.Context) { Error(c, nil) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJSONOmitsRequestIDOnSuccess(t *testing.T) {
	w := serve(func(c *gin.Context) {
		JSON(c, http.StatusOK, gin.H{"id": "t1"}, nil, map[string]interface{}{"cache_hit": true})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "request_id")
	assert.Contains(t, w.Body.String(), `"cache_hit":true`)
}

func TestAttachmentSetsDownloadHeaders(t *testing.T) {
	w := serve(func(c *gin.Context) {
		Attachment(c, "tasks/t1/Résumé final.pdf", "", 5, strings.NewReader("%PDF!"))
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF!", w.Body.String())
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "attachment; filename*=utf-8''R%C3%A9sum%C3%A9%20final.pdf", w.Header().Get("Content-Disposition"))

	w = serve(func(c *gin.Context) {
		AttachmentBytes(c, "history.csv", "text/csv", []byte("a,b\n"))
	})
	assert.Equal(t, "attachment; filename=history.csv", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}
