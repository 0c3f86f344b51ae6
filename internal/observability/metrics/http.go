package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics carries the assistant's prometheus surface: HTTP
// server metrics plus assistant-loop and search observations.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	assistantRunsTotal      *prometheus.CounterVec
	assistantIterations     *prometheus.HistogramVec
	assistantToolCallsTotal *prometheus.CounterVec

	searchRequestsTotal *prometheus.CounterVec
	searchResults       *prometheus.HistogramVec
	searchDuration      *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leakwatch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leakwatch",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "leakwatch",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	assistantRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leakwatch",
			Subsystem: "assistant",
			Name:      "runs_total",
			Help:      "Total completed assistant turns by status.",
		},
		[]string{"service", "status"},
	)
	assistantIterations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leakwatch",
			Subsystem: "assistant",
			Name:      "iterations",
			Help:      "Distribution of model round-trips per assistant turn.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
		[]string{"service"},
	)
	assistantToolCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leakwatch",
			Subsystem: "assistant",
			Name:      "tool_calls_total",
			Help:      "Total tool invocations performed by the assistant.",
		},
		[]string{"service", "tool"},
	)
	searchRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leakwatch",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total knowledge searches by outcome.",
		},
		[]string{"service", "outcome"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leakwatch",
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of results per knowledge search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leakwatch",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Knowledge search duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		assistantRunsTotal,
		assistantIterations,
		assistantToolCallsTotal,
		searchRequestsTotal,
		searchResults,
		searchDuration,
	)

	return &HTTPServerMetrics{
		registry:                registry,
		requestTotal:            requestTotal,
		requestDuration:         requestDuration,
		requestInFlight:         requestInFlight,
		assistantRunsTotal:      assistantRunsTotal,
		assistantIterations:     assistantIterations,
		assistantToolCallsTotal: assistantToolCallsTotal,
		searchRequestsTotal:     searchRequestsTotal,
		searchResults:           searchResults,
		searchDuration:          searchDuration,
	}
}

// RegisterEmbedCache exposes the embedding cache's lifetime hit and miss
// counts as counters. stats must be safe for concurrent calls.
func (m *HTTPServerMetrics) RegisterEmbedCache(service string, stats func() (hits, misses uint64)) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace:   "leakwatch",
				Subsystem:   "embedding",
				Name:        "cache_hits_total",
				Help:        "Total embedding cache hits.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			func() float64 {
				hits, _ := stats()
				return float64(hits)
			},
		),
		prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace:   "leakwatch",
				Subsystem:   "embedding",
				Name:        "cache_misses_total",
				Help:        "Total embedding cache misses.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			func() float64 {
				_, misses := stats()
				return float64(misses)
			},
		),
	)
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath keeps the path label bounded: unknown paths (probes,
// scanners) collapse into one series instead of minting new ones.
func normalizePath(path string) string {
	switch path {
	case "/healthz", "/metrics",
		"/v1/assistant/chat", "/v1/assistant/tools",
		"/v1/knowledge/search", "/v1/knowledge/reindex":
		return path
	default:
		return "other"
	}
}

func (m *HTTPServerMetrics) RecordAssistantRun(service, status string, iterations int) {
	if status == "" {
		status = "unknown"
	}
	m.assistantRunsTotal.WithLabelValues(service, status).Inc()
	if iterations > 0 {
		m.assistantIterations.WithLabelValues(service).Observe(float64(iterations))
	}
}

func (m *HTTPServerMetrics) RecordAssistantToolCall(service, tool string) {
	if tool == "" {
		tool = "unknown"
	}
	m.assistantToolCallsTotal.WithLabelValues(service, tool).Inc()
}

func (m *HTTPServerMetrics) RecordSearch(service, outcome string, results int, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.searchRequestsTotal.WithLabelValues(service, outcome).Inc()
	m.searchResults.WithLabelValues(service).Observe(float64(results))
	m.searchDuration.WithLabelValues(service).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
