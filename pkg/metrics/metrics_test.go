package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveImport(t *testing.T) {
	m := New()

	m.ObserveImport("xlsx", 12, 20*time.Millisecond, nil)
	m.ObserveImport("xlsx", 0, time.Millisecond, errors.New("bad file"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("xlsx", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imports.WithLabelValues("xlsx", "error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.importedRows))
}

func TestDatasetAndDeletions(t *testing.T) {
	m := New()
	m.SetDatasetSize(40)
	m.ObserveDeletion("month", 7)

	assert.Equal(t, 40.0, testutil.ToFloat64(m.datasetRecords))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.deletions.WithLabelValues("month")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/report", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `transport_report_http_requests_total{method="GET",route="/api/report",status="200"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveImport("csv", 1, time.Second, nil)
		m.SetDatasetSize(1)
		m.ObserveDeletion("all", 1)
		m.ObserveHTTP("GET", "/", 200, time.Second)
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
