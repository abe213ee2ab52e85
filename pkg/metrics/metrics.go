package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for transcription results
const (
	OutcomeSuccess       = "success"
	OutcomeStorageError  = "storage_error"
	OutcomeAPIError      = "api_error"
	OutcomeEmptyResult   = "empty_transcription"
	OutcomeInvalidUpload = "invalid_upload"
)

// Metrics contains all Prometheus metrics for the gateway
type Metrics struct {
	registry *prometheus.Registry

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Transcription metrics
	Transcriptions        *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	UploadBytes           prometheus.Histogram
}

// NewMetrics creates all metrics on a dedicated registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iuris_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "iuris_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Transcriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "iuris_transcriptions_total",
			Help: "Transcription requests by outcome",
		}, []string{"outcome"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "iuris_transcription_duration_seconds",
			Help:    "Time spent in the external transcription call",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "iuris_upload_bytes",
			Help:    "Size of uploaded audio payloads",
			Buckets: prometheus.ExponentialBuckets(4096, 4, 8),
		}),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) RecordTranscription(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Transcriptions.WithLabelValues(outcome).Inc()
	if duration > 0 {
		m.TranscriptionDuration.Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordUpload(size int64) {
	if m == nil {
		return
	}
	m.UploadBytes.Observe(float64(size))
}
