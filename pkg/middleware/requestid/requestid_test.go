package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(incoming string) (header, seen string) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if incoming != "" {
		req.Header.Set(Header, incoming)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Header().Get(Header), seen
}

func TestMiddlewareKeepsWellFormedClientID(t *testing.T) {
	header, seen := serve("edge-7f3a:42")
	assert.Equal(t, "edge-7f3a:42", header)
	assert.Equal(t, header, seen)
}

func TestMiddlewareReplacesMissingOrUnsafeID(t *testing.T) {
	for _, incoming := range []string{"", "line\nbreak", strings.Repeat("a", 65), "spaces are bad"} {
		header, seen := serve(incoming)
		_, err := uuid.Parse(header)
		require.NoError(t, err, "incoming %q", incoming)
		assert.Equal(t, header, seen)
	}
}

func TestValueWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, Value(c))
	assert.Empty(t, Value(nil))
}
