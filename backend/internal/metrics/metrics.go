package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solar-system/backend/internal/core/domain/entity"
	"solar-system/backend/internal/session"
)

// Metrics счетчики сервера. Реализует session.Observer.
type Metrics struct {
	tickDuration     prometheus.Histogram
	viewers          prometheus.Gauge
	inputEvents      *prometheus.CounterVec
	rejected         *prometheus.CounterVec
	focusChanges     *prometheus.CounterVec
	cameraAnimations *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpDurationSeconds *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New создает и регистрирует метрики. nil означает глобальный реестр.
func New(reg *prometheus.Registry) *Metrics {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}

	m := &Metrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solar_tick_duration_seconds",
			Help:    "Duration of one session tick.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		viewers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solar_connected_viewers",
			Help: "Number of connected viewers.",
		}),
		inputEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solar_input_events_total",
				Help: "Input events applied to sessions.",
			},
			[]string{"kind"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solar_rejected_total",
				Help: "Rejected connections and dropped input messages.",
			},
			[]string{"reason"},
		),
		focusChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solar_focus_changes_total",
				Help: "Focus changes by target kind.",
			},
			[]string{"kind"},
		),
		cameraAnimations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solar_camera_animations_total",
				Help: "Camera framing animations started.",
			},
			[]string{"reason"},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solar_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"path", "method", "code"},
		),
		httpDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solar_http_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
		gatherer: gatherer,
	}

	registerer.MustRegister(
		m.tickDuration,
		m.viewers,
		m.inputEvents,
		m.rejected,
		m.focusChanges,
		m.cameraAnimations,
		m.httpRequestsTotal,
		m.httpDurationSeconds,
	)
	return m
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveTick записывает длительность тика
func (m *Metrics) ObserveTick(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}

// ViewerConnected увеличивает число зрителей
func (m *Metrics) ViewerConnected() {
	m.viewers.Inc()
}

// ViewerDisconnected уменьшает число зрителей
func (m *Metrics) ViewerDisconnected() {
	m.viewers.Dec()
}

// Rejected считает отказ с причиной
func (m *Metrics) Rejected(reason string) {
	m.rejected.WithLabelValues(reason).Inc()
}

// FocusChanged implements session.Observer.
func (m *Metrics) FocusChanged(_ string, target entity.FocusTarget) {
	m.focusChanges.WithLabelValues(target.Kind.String()).Inc()
}

// AnimationStarted implements session.Observer.
func (m *Metrics) AnimationStarted(_ string, reason string) {
	m.cameraAnimations.WithLabelValues(reason).Inc()
}

// InputHandled implements session.Observer.
func (m *Metrics) InputHandled(_ string, kind session.EventKind) {
	m.inputEvents.WithLabelValues(string(kind)).Inc()
}

var knownRoutes = map[string]bool{
	"/":          true,
	"/ws":        true,
	"/metrics":   true,
	"/healthz":   true,
	"/telemetry": true,
	"/stats":     true,
	"/pause":     true,
	"/resume":    true,
}

// normalizeRoute сводит неизвестные пути к одной метке
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack нужен для апгрейда WebSocket через обертку
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request count and duration for each request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		path := normalizeRoute(r.URL.Path)

		m.httpRequestsTotal.WithLabelValues(path, r.Method, code).Inc()
		m.httpDurationSeconds.WithLabelValues(path, r.Method).Observe(duration)
	})
}

var _ session.Observer = (*Metrics)(nil)
