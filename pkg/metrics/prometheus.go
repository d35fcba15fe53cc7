package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store operation labels.
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
)

// Import row outcomes.
const (
	ImportImported = "imported"
	ImportSkipped  = "skipped"
)

// Manager owns every Prometheus collector of the roster service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Store metrics
	studentsCreated    prometheus.Counter
	validationFailures prometheus.Counter
	lookupsNotFound    prometheus.Counter
	studentsTotal      prometheus.Gauge
	storeLatency       *prometheus.HistogramVec
	importRows         *prometheus.CounterVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByType        *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out of /healthz

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
// Registering twice on the same registry panics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "roster",
		subsystem:        "students",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.studentsCreated = auto.NewCounter(m.counterOpts(
		"created_total", "Total number of student records created"))
	m.validationFailures = auto.NewCounter(m.counterOpts(
		"validation_failures_total", "Total number of create requests rejected by validation"))
	m.lookupsNotFound = auto.NewCounter(m.counterOpts(
		"lookups_not_found_total", "Total number of lookups for an unknown student id"))
	m.studentsTotal = auto.NewGauge(m.gaugeOpts(
		"total", "Current number of student records in the store"))
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts(
		"store_latency_milliseconds", "Store operation latency in milliseconds", m.histogramBuckets),
		[]string{"operation"})
	m.importRows = auto.NewCounterVec(m.counterOpts(
		"import_rows_total", "Spreadsheet rows processed by import, by outcome"),
		[]string{"outcome"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"})
	m.errorsByType = auto.NewCounterVec(m.counterOpts(
		"errors_by_type_total", "HTTP errors by type and severity"),
		[]string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "Heap memory in use in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordStudentCreated increments the created counter.
func (m *Manager) RecordStudentCreated() { m.studentsCreated.Inc() }

// RecordValidationFailure increments the validation failure counter.
func (m *Manager) RecordValidationFailure() { m.validationFailures.Inc() }

// RecordLookupNotFound increments the not-found counter.
func (m *Manager) RecordLookupNotFound() { m.lookupsNotFound.Inc() }

// UpdateStudentsTotal sets the current record count.
func (m *Manager) UpdateStudentsTotal(count int) { m.studentsTotal.Set(float64(count)) }

// RecordStoreLatency observes the latency of a store operation.
func (m *Manager) RecordStoreLatency(operation string, latencyMs float64) {
	m.storeLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordImportRows adds n rows with the given outcome.
func (m *Manager) RecordImportRows(outcome string, n int) {
	m.importRows.WithLabelValues(outcome).Add(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an HTTP error for an endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType records an HTTP error by type and severity.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	m.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) { m.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func (m *Manager) UpdateSystemGoroutineCount(count int) { m.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime observes the average GC pause.
func (m *Manager) RecordSystemGCPauseTime(pauseMs float64) { m.systemGCPauseTime.Observe(pauseMs) }

// Package-level helpers delegate to the global manager.

func RecordStudentCreated()                        { globalManager.RecordStudentCreated() }
func RecordValidationFailure()                     { globalManager.RecordValidationFailure() }
func RecordLookupNotFound()                        { globalManager.RecordLookupNotFound() }
func UpdateStudentsTotal(count int)                { globalManager.UpdateStudentsTotal(count) }
func RecordStoreLatency(op string, ms float64)     { globalManager.RecordStoreLatency(op, ms) }
func RecordImportRows(outcome string, n int)       { globalManager.RecordImportRows(outcome, n) }
func UpdateSystemMemoryUsage(bytes uint64)         { globalManager.UpdateSystemMemoryUsage(bytes) }
func UpdateSystemGoroutineCount(count int)         { globalManager.UpdateSystemGoroutineCount(count) }
func RecordSystemGCPauseTime(pauseMs float64)      { globalManager.RecordSystemGCPauseTime(pauseMs) }
func RecordErrorByType(errorType, severity string) { globalManager.RecordErrorByType(errorType, severity) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
