package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/larder/backend/internal/metrics"
)

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New()

	r := gin.New()
	r.Use(RequestLogger(zap.New(core), m))
	r.GET("/recipes/:id", func(c *gin.Context) {
		c.Set(userIDKey, "user-1")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/recipes/:id", fields["route"])
	assert.Equal(t, "/recipes/abc", fields["path"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "user-1", fields["uid"])

	n, err := testutil.GatherAndCount(m.Registry(), "larder_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
