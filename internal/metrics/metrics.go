// Package metrics exposes Prometheus instrumentation for navigation
// transitions.
package metrics

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts transitions and rejected requests. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	interrupted *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	depth       prometheus.Gauge
}

// NewRecorder creates a Recorder backed by its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navstack_transitions_total",
				Help: "Total number of transitions started",
			},
			[]string{"kind", "direction", "animated"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navstack_rejected_total",
				Help: "Requests rejected because a transition was in flight",
			},
			[]string{"op"},
		),
		interrupted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "navstack_interrupted_total",
				Help: "Transitions that completed without finishing",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "navstack_transition_duration_seconds",
				Help:    "Wall time between transition start and completion",
				Buckets: []float64{0.001, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2},
			},
			[]string{"kind"},
		),
		depth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "navstack_stack_depth",
				Help: "Number of screens on the navigation stack",
			},
		),
	}
	r.registry.MustRegister(r.transitions, r.rejections, r.interrupted, r.duration, r.depth)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// TransitionStarted records the start of a transition.
func (r *Recorder) TransitionStarted(kind, direction string, animated bool) {
	if r == nil {
		return
	}
	a := "false"
	if animated {
		a = "true"
	}
	r.transitions.WithLabelValues(kind, direction, a).Inc()
}

// TransitionCompleted records how long a transition took and whether it
// was interrupted.
func (r *Recorder) TransitionCompleted(kind string, elapsed time.Duration, finished bool) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if !finished {
		r.interrupted.WithLabelValues(kind).Inc()
	}
}

// Rejected records a request refused by the single-flight guard.
func (r *Recorder) Rejected(op string) {
	if r == nil {
		return
	}
	r.rejections.WithLabelValues(op).Inc()
}

// SetDepth records the current stack depth.
func (r *Recorder) SetDepth(n int) {
	if r == nil {
		return
	}
	r.depth.Set(float64(n))
}

// Serve binds addr and serves /metrics on it in the background. Bind
// failures are returned; errors after that are logged. The caller shuts
// the returned server down.
func (r *Recorder) Serve(addr string, logger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "addr", srv.Addr, "error", err)
		}
	}()
	return srv, nil
}
