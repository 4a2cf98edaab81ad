package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	reg := NewRegistry()

	router := chi.NewRouter()
	router.Use(reg.Middleware)
	router.Get("/users/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("GET", "/users/{userID}", "404")))
}

func TestRecordersAreNilSafe(t *testing.T) {
	var reg *Registry
	reg.RecordUserOperation("create", "ok")
	reg.TrackCacheHit("user")
	reg.TrackCacheMiss("user")
}

func TestHandlerExposesCounters(t *testing.T) {
	reg := NewRegistry()
	reg.RecordUserOperation("create", "ok")
	reg.TrackCacheMiss("user")

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `user_operations_total{operation="create",outcome="ok"} 1`))
	assert.True(t, strings.Contains(string(body), `cache_misses_total{cache="user"} 1`))
}
