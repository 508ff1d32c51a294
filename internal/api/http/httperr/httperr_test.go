package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/campusmarket-server/internal/apierror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func write(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Write(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestWrite(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		w, body := write(t, apierror.NewErrRateLimited(42))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "42", w.Header().Get("Retry-After"))
		assert.EqualValues(t, 42, body["retry_after"])
	})

	t.Run("not verified", func(t *testing.T) {
		w, body := write(t, apierror.NewErrNotVerified("a@mit.edu"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Not verified", body["error"])
		assert.Equal(t, "/verify", body["redirect"])
		assert.Equal(t, "a@mit.edu", body["email"])
	})

	t.Run("plain error hides detail", func(t *testing.T) {
		w, body := write(t, errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, map[string]any{"error": "Internal server error"}, body)
	})
}
