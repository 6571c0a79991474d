package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/transport-report/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:               "localhost",
			Port:               8080,
			RateLimitPerSecond: 100,
			RateLimitBurst:     100,
			AllowedOrigins:     []string{"http://localhost:5173"},
			MaxUploadMB:        1,
		},
		Store:         config.StoreConfig{Type: "memory"},
		Report:        config.ReportConfig{HeaderScanRows: 20},
		Observability: config.ObservabilityConfig{MetricsEnabled: true, LogLevel: slog.LevelInfo},
	}
}

func TestRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := InitDependencies(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	defer deps.Cleanup()

	router := deps.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/report"`)

	req := httptest.NewRequest(http.MethodOptions, "/api/report", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestInitDependencies_InvalidStore(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Type = "redis"
	_, err := InitDependencies(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestInitDependencies_RetentionJob(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, err := InitDependencies(context.Background(), testConfig(), logger)
	require.NoError(t, err)
	assert.Nil(t, deps.Scheduler)
	deps.Cleanup()

	cfg := testConfig()
	cfg.Report.RetentionMonths = 6
	cfg.Report.RetentionSchedule = "*/5 * * * *"
	deps, err = InitDependencies(context.Background(), cfg, logger)
	require.NoError(t, err)
	require.NotNil(t, deps.Scheduler)
	assert.Equal(t, "*/5 * * * *", deps.Scheduler.Schedule())
	deps.Cleanup()

	cfg.Report.RetentionSchedule = "every tuesday"
	_, err = InitDependencies(context.Background(), cfg, logger)
	assert.Error(t, err)
}
