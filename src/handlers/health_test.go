package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type checkerFunc func(ctx context.Context) error

func (f checkerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

var (
	healthy   = checkerFunc(func(context.Context) error { return nil })
	unhealthy = checkerFunc(func(context.Context) error { return errors.New("connection refused") })
)

func serveHealth(t *testing.T, deps HealthDeps) (int, map[string]any) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	router := gin.New()
	router.GET("/health", Health(deps, logger))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealth_AllDependenciesUp(t *testing.T) {
	code, body := serveHealth(t, HealthDeps{DB: healthy, Redis: healthy, Blobs: healthy, DiskPath: t.TempDir()})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "ok", deps["database"])
	assert.Equal(t, "ok", deps["redis"])
	assert.Equal(t, "ok", deps["blob_store"])
	assert.Contains(t, body, "disk_total")
	assert.Contains(t, body, "disk_free")
}

func TestHealth_Degraded(t *testing.T) {
	tests := []struct {
		name   string
		deps   HealthDeps
		failed string
	}{
		{"database down", HealthDeps{DB: unhealthy, Redis: healthy, Blobs: healthy}, "database"},
		{"redis down", HealthDeps{DB: healthy, Redis: unhealthy, Blobs: healthy}, "redis"},
		{"blob store missing", HealthDeps{DB: healthy, Redis: healthy}, "blob_store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serveHealth(t, tt.deps)
			assert.Equal(t, http.StatusServiceUnavailable, code)
			assert.Equal(t, "degraded", body["status"])
			assert.Equal(t, "unhealthy", body["dependencies"].(map[string]any)[tt.failed])
			assert.NotContains(t, body, "disk_total", "no disk path configured")
		})
	}
}
