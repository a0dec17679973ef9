package metrics

import (
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registry = prometheus.NewRegistry()

	GRPCMetrics = grpcprometheus.NewServerMetrics(
		func(c *prometheus.CounterOpts) {
			c.Namespace = "OmniDB"
		},
	)

	QueryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "OmniDB",
		Name:      "query_duration_seconds",
		Help:      "Latency of ExecuteQuery statements forwarded to the engine.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	AnomaliesDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "OmniDB",
		Name:      "query_anomalies_total",
		Help:      "Query metrics flagged by the anomaly detector.",
	})

	MigrationsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "OmniDB",
		Name:      "migrations_applied_total",
		Help:      "Schema migrations applied since process start.",
	})

	BackupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "OmniDB",
		Name:      "backups_total",
		Help:      "Backup and restore operations by kind and result.",
	}, []string{"kind", "result"})
)

func init() {
	Registry.MustRegister(
		GRPCMetrics,
		QueryDuration,
		AnomaliesDetected,
		MigrationsApplied,
		BackupsTotal,
	)
	GRPCMetrics.EnableHandlingTimeHistogram(
		func(h *prometheus.HistogramOpts) {
			h.Namespace = "OmniDB"
		},
	)
}
