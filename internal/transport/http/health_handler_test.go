package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/internal/services"
)

func newHealthRouter(probes ...services.ReadinessProbe) http.Handler {
	h := NewHealthHandler(services.NewHealthService(discardLogger(), probes...), discardLogger())
	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func getJSON(t *testing.T, handler http.Handler, path string) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthEndpoints(t *testing.T) {
	router := newHealthRouter()

	code, body := getJSON(t, router, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "backend", body["service"])

	code, body = getJSON(t, router, "/api/health/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", body["status"])

	code, body = getJSON(t, router, "/api/version")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "api_version")
}

func TestReadinessReportsMissingCollaborator(t *testing.T) {
	missing := services.ConfiguredProbe("llamaparse", func() bool { return false }, true)

	code, body := getJSON(t, newHealthRouter(missing), "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, services.StatusNotReady, body["status"])

	present := services.ConfiguredProbe("llamaparse", func() bool { return true }, true)
	code, body = getJSON(t, newHealthRouter(present), "/api/health/ready")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, services.StatusReady, body["status"])
}
