// Package telemetry exposes Prometheus metrics for the scheduling and
// inventory engines and the HTTP layer.
package telemetry

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	activeRequests  prometheus.Gauge

	readinessEvaluations *prometheus.CounterVec
	riskRecomputations   *prometheus.CounterVec
	intakeTransitions    *prometheus.CounterVec
}

func NewProvider(serviceName string) *Provider {
	reg := prometheus.NewRegistry()

	p := &Provider{
		registry: reg,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_server_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds.",
			Buckets:     []float64{0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0},
			ConstLabels: prometheus.Labels{"service": serviceName},
		}, []string{"method", "route", "status_code"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests.",
		}),
		readinessEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "readiness_evaluations_total",
			Help: "Case readiness evaluations by resulting state.",
		}, []string{"state"}),
		riskRecomputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "financial_risk_recomputations_total",
			Help: "Financial risk cache recomputations by resulting tier.",
		}, []string{"tier"}),
		intakeTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_transitions_total",
			Help: "Surgery request lifecycle transitions by event type.",
		}, []string{"event"}),
	}

	reg.MustRegister(
		p.requestDuration,
		p.activeRequests,
		p.readinessEvaluations,
		p.riskRecomputations,
		p.intakeTransitions,
	)
	return p
}

// ReadinessEvaluated records one readiness evaluation result.
func (p *Provider) ReadinessEvaluated(state string) {
	p.readinessEvaluations.WithLabelValues(state).Inc()
}

// RiskRecomputed records one financial risk cache recomputation.
func (p *Provider) RiskRecomputed(tier string) {
	p.riskRecomputations.WithLabelValues(tier).Inc()
}

// IntakeTransition records one lifecycle transition.
func (p *Provider) IntakeTransition(event string) {
	p.intakeTransitions.WithLabelValues(event).Inc()
}

// Middleware records request duration and active request count.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.activeRequests.Inc()
			start := time.Now()

			err := next(c)

			p.activeRequests.Dec()
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			p.requestDuration.WithLabelValues(
				c.Request().Method, route, strconv.Itoa(c.Response().Status),
			).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the Prometheus text exposition endpoint.
func (p *Provider) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}
