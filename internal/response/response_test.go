package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, h gin.HandlerFunc, header string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("X-Request-ID", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestFail_UsesCodeMessage(t *testing.T) {
	w, body := serve(t, func(c *gin.Context) {
		Fail(c, http.StatusTooManyRequests, ErrQuizCooldown)
	}, "req-1")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrQuizCooldown, body.Error.Code)
	assert.Equal(t, GetMessage(ErrQuizCooldown), body.Error.Message)
	assert.Equal(t, "req-1", body.Metadata.RequestID)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestFailWithMessage(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) {
		FailWithMessage(c, http.StatusBadRequest, ErrInvalidSubmission, "answers must be a JSON array")
	}, "")
	assert.Equal(t, "answers must be a JSON array", body.Error.Message)
	assert.NotEmpty(t, body.Metadata.RequestID)

	_, body = serve(t, func(c *gin.Context) {
		FailWithMessage(c, http.StatusBadRequest, ErrInvalidSubmission, "")
	}, "")
	assert.Equal(t, GetMessage(ErrInvalidSubmission), body.Error.Message)
}

func TestRequestID_RejectsOversizedHeader(t *testing.T) {
	long := strings.Repeat("x", maxRequestIDLen+1)
	_, body := serve(t, func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"ok": true})
	}, long)
	assert.NotEqual(t, long, body.Metadata.RequestID)
	assert.Nil(t, body.Error)
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 20, 41)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, NewPagination(1, 20, 0).TotalPages)
}

func TestGetMessage_Fallback(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage("SOMETHING_ELSE"))
}
