package router

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipes-api/internal/middleware"
	"github.com/pageza/recipes-api/internal/store"
	"github.com/pageza/recipes-api/internal/testhelpers"
	"github.com/pageza/recipes-api/internal/testingutils"
)

func TestSetupRouter(t *testing.T) {
	log, _ := testhelpers.NewTestLogger()
	r := SetupRouter(Options{
		Store:  store.NewMemoryStore(nil),
		Logger: log,
	})

	routes := map[string]bool{}
	for _, ri := range r.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"GET /recipes",
		"GET /recipes/:id",
		"POST /recipes",
		"PUT /recipes/:id",
		"DELETE /recipes/:id",
		"GET /api/v1/recipes",
		"DELETE /api/v1/recipes/:id",
	} {
		assert.True(t, routes[want], want)
	}
	assert.False(t, routes["GET /metrics"])
}

func TestSetupRouterSharesLimiterAcrossVersions(t *testing.T) {
	log, _ := testhelpers.NewTestLogger()
	r := SetupRouter(Options{
		Store:   store.NewMemoryStore(nil),
		Logger:  log,
		Limiter: middleware.NewLocalRateLimiter(middleware.RateLimitConfig{Window: time.Hour, Limit: 1}),
	})

	w := testingutils.PerformRequest(r, http.MethodGet, "/recipes", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testingutils.PerformRequest(r, http.MethodGet, "/api/v1/recipes", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestNonCORSRequestPassesThrough(t *testing.T) {
	log, _ := testhelpers.NewTestLogger()
	r := SetupRouter(Options{
		Store:       store.NewMemoryStore(nil),
		Logger:      log,
		CORSOrigins: []string{"http://localhost:5173"},
	})

	w := testingutils.PerformRequest(r, http.MethodGet, "/recipes", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestHealthReportsRateLimitWithoutCounting(t *testing.T) {
	log, _ := testhelpers.NewTestLogger()
	r := SetupRouter(Options{
		Store:   store.NewMemoryStore(nil),
		Logger:  log,
		Limiter: middleware.NewLocalRateLimiter(middleware.RateLimitConfig{Window: time.Hour, Limit: 1}),
	})

	for i := 0; i < 3; i++ {
		w := testingutils.PerformRequest(r, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	}

	w := testingutils.PerformRequest(r, http.MethodGet, "/recipes", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testingutils.PerformRequest(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestPanicIsLoggedAndCounted(t *testing.T) {
	log, hook := testhelpers.NewTestLogger()
	reg := prometheus.NewRegistry()
	r := SetupRouter(Options{
		Store:   store.NewMemoryStore(nil),
		Logger:  log,
		Metrics: middleware.NewMetrics(reg),
	})
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := testingutils.PerformRequest(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var completed *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "request completed" {
			completed = e
		}
	}
	require.NotNil(t, completed)
	assert.Equal(t, http.StatusInternalServerError, completed.Data["status"])

	expected := `
# HELP recipes_http_requests_total Total number of HTTP requests
# TYPE recipes_http_requests_total counter
recipes_http_requests_total{method="GET",route="/boom",status="500"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "recipes_http_requests_total"))
}
