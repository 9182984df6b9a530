package noderank

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics manages Prometheus metrics for the checker.
type Metrics struct {
	registry *prometheus.Registry
	server   *http.Server

	// Per-node metrics
	ProbesTotal      *prometheus.CounterVec
	NodeHealthy      *prometheus.GaugeVec
	ConfirmedLatency *prometheus.HistogramVec

	// Per-run metrics
	RunsTotal    *prometheus.CounterVec
	HealthRate   *prometheus.GaugeVec
	HealthyNodes *prometheus.GaugeVec
	RunDuration  *prometheus.HistogramVec
}

// NewMetrics creates a new metrics manager with its own registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ProbesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noderank_node_checks_total",
			Help: "Total node classifications, by outcome",
		}, []string{"pool", "node", "outcome"}),

		NodeHealthy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "noderank_node_healthy",
			Help: "Last classification for the node (1=healthy, 0=unhealthy)",
		}, []string{"pool", "node"}),

		ConfirmedLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "noderank_confirmed_latency_ms",
			Help:    "Confirmation probe latency for healthy nodes in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"pool"}),

		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "noderank_runs_total",
			Help: "Total completed check runs",
		}, []string{"pool"}),

		HealthRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "noderank_health_rate_percent",
			Help: "Health rate of the last completed run",
		}, []string{"pool"}),

		HealthyNodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "noderank_healthy_nodes",
			Help: "Healthy node count in the last completed run",
		}, []string{"pool"}),

		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "noderank_run_duration_seconds",
			Help:    "Duration of a full check run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"pool"}),
	}

	registry.MustRegister(
		m.ProbesTotal,
		m.NodeHealthy,
		m.ConfirmedLatency,
		m.RunsTotal,
		m.HealthRate,
		m.HealthyNodes,
		m.RunDuration,
	)

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Handler returns an HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on addr.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	m.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return m.server.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

func (m *Metrics) observeNode(pool, nodeID string, healthy bool, latencyMs float64) {
	outcome := "unhealthy"
	gauge := 0.0
	if healthy {
		outcome = "healthy"
		gauge = 1.0
		m.ConfirmedLatency.WithLabelValues(pool).Observe(latencyMs)
	}
	m.ProbesTotal.WithLabelValues(pool, nodeID, outcome).Inc()
	m.NodeHealthy.WithLabelValues(pool, nodeID).Set(gauge)
}

func (m *Metrics) observeRun(pool string, report *Report) {
	m.RunsTotal.WithLabelValues(pool).Inc()
	m.HealthRate.WithLabelValues(pool).Set(report.Stats.HealthRatePercent)
	m.HealthyNodes.WithLabelValues(pool).Set(float64(report.Stats.Succeeded))
	m.RunDuration.WithLabelValues(pool).Observe(float64(report.Duration) / float64(time.Second))
}
