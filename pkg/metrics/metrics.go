// Package metrics exposes Prometheus collectors for imports, the dataset and
// the HTTP API. All methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "transport_report"

// Metrics holds the application collectors
type Metrics struct {
	registry *prometheus.Registry

	imports        *prometheus.CounterVec
	importedRows   prometheus.Counter
	importDuration *prometheus.HistogramVec
	datasetRecords prometheus.Gauge
	deletions      *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Spreadsheet imports by format and outcome.",
		}, []string{"format", "outcome"}),
		importedRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_records_total",
			Help:      "Records extracted from imported spreadsheets.",
		}),
		importDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time spent extracting a spreadsheet.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
		datasetRecords: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the current dataset.",
		}),
		deletions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deleted_records_total",
			Help:      "Records removed by scope (all, month, week).",
		}, []string{"scope"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveImport records one import attempt
func (m *Metrics) ObserveImport(format string, records int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.imports.WithLabelValues(format, outcome).Inc()
	m.importDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	if err == nil {
		m.importedRows.Add(float64(records))
	}
}

// SetDatasetSize records the size of the current dataset
func (m *Metrics) SetDatasetSize(records int) {
	if m == nil {
		return
	}
	m.datasetRecords.Set(float64(records))
}

// ObserveDeletion counts records removed by a delete operation
func (m *Metrics) ObserveDeletion(scope string, records int) {
	if m == nil {
		return
	}
	m.deletions.WithLabelValues(scope).Add(float64(records))
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
