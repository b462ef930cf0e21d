package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/autograde/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatched = "unmatched"

// Metrics holds the collectors of one process. Each Metrics owns its
// registry so that tests and embedded servers never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	Verifications   *prometheus.CounterVec
	HookFailures    *prometheus.CounterVec
	GradingDuration *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
// Process and Go runtime collectors are included when withRuntime is set.
func NewMetrics(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograde_verifications_total",
				Help: "Total number of graded submissions by outcome.",
			},
			[]string{"exercise", "outcome"},
		),
		HookFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograde_hook_failures_total",
				Help: "Total number of eject hooks that failed to produce a verdict.",
			},
			[]string{"exercise", "kind"},
		),
		GradingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autograde_grading_duration_seconds",
				Help:    "Duration of the verification pipeline in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"hook"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autograde_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "autograde_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(m.Verifications, m.HookFailures, m.GradingDuration, m.HTTPRequests, m.HTTPDuration)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hooks returns lifecycle hooks that record grading outcomes.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnVerify: func(_ context.Context, e *domain.VerificationEvent) {
			m.Verifications.WithLabelValues(e.Exercise, string(e.Type)).Inc()
			m.GradingDuration.WithLabelValues(strconv.FormatBool(e.Hook)).Observe(e.Duration.Seconds())
		},
		OnHookFailure: func(_ context.Context, e *domain.HookEvent) {
			m.HookFailures.WithLabelValues(e.Exercise, string(e.Kind)).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and duration for every HTTP request.
// Uses the chi route pattern (not the raw path) to avoid unbounded cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := routePattern(r)
		m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern extracts the matched chi route pattern, falling back to "unmatched".
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unmatched
}
