package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCachePinger struct {
	err error
}

func (s *stubCachePinger) HealthCheck(ctx context.Context) error {
	return s.err
}

func healthRouter(pinger CachePinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupHealthRoutes(router, nil, pinger)
	return router
}

func TestHealthEndpoint(t *testing.T) {
	router := healthRouter(&stubCachePinger{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestHealthCacheEndpoint(t *testing.T) {
	t.Run("reachable cache", func(t *testing.T) {
		router := healthRouter(&stubCachePinger{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health/cache", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unreachable cache", func(t *testing.T) {
		router := healthRouter(&stubCachePinger{err: errors.New("connection refused")})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health/cache", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "cache unavailable")
	})
}
