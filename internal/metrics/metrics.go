// Package metrics holds the Prometheus collectors for the draft service.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Billy-Davies-2/fantasy-draft-engine/internal/models"
)

const namespace = "fantasy_draft"

// Registry holds every collector on its own Prometheus registry so tests can
// build as many as they like
type Registry struct {
	reg *prometheus.Registry

	PicksTotal        *prometheus.CounterVec
	StepDuration      *prometheus.HistogramVec
	DraftsCompleted   prometheus.Counter
	ActiveStreams     *prometheus.GaugeVec
	AnalyticsErrors   *prometheus.CounterVec
	ADPPlayers        prometheus.Gauge
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	RecommendDuration prometheus.Histogram
}

// New creates and registers all collectors
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		PicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draft",
			Name:      "picks_total",
			Help:      "Picks applied by kind (human, automated, skipped)",
		}, []string{"kind"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "draft",
			Name:      "step_duration_seconds",
			Help:      "Duration of draft step calls by outcome",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}, []string{"result"}),
		DraftsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "draft",
			Name:      "completed_total",
			Help:      "Draft sessions that reached completion",
		}),
		ActiveStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "active_streams",
			Help:      "Open event streams by transport",
		}, []string{"transport"}),
		AnalyticsErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "errors_total",
			Help:      "Failed analytics calls by operation",
		}, []string{"op"}),
		ADPPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "adp_players",
			Help:      "Players with an average draft position in the last refresh",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RecommendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "recommendation_duration_seconds",
			Help:      "Time to rank the pool for one team",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.PicksTotal,
		r.StepDuration,
		r.DraftsCompleted,
		r.ActiveStreams,
		r.AnalyticsErrors,
		r.ADPPlayers,
		r.HTTPRequests,
		r.HTTPDuration,
		r.RecommendDuration,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObservePick counts one pick record
func (r *Registry) ObservePick(rec models.PickRecord) {
	switch {
	case rec.Skipped:
		r.PicksTotal.WithLabelValues("skipped").Inc()
	case rec.Automated:
		r.PicksTotal.WithLabelValues("automated").Inc()
	default:
		r.PicksTotal.WithLabelValues("human").Inc()
	}
}

// ObserveStep records how long a step took and what it ended with
func (r *Registry) ObserveStep(result string, d time.Duration) {
	r.StepDuration.WithLabelValues(result).Observe(d.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the recorder
func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets WebSocket upgrades through the recorder
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// Middleware records request count and latency keyed by the chi route
// pattern, so path parameters do not explode cardinality
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		r.HTTPRequests.WithLabelValues(req.Method, route, strconv.Itoa(rec.status)).Inc()
		r.HTTPDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())
	})
}
