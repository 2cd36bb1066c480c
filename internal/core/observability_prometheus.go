package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation latency and outcome counts as
// Prometheus collectors.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the recorder's collectors with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rec := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orchard",
			Subsystem: "genome",
			Name:      "operation_duration_seconds",
			Help:      "Latency of genome store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orchard",
			Subsystem: "genome",
			Name:      "operations_total",
			Help:      "Genome store operations by outcome.",
		}, []string{"operation", "status"}),
	}
	for _, c := range []prometheus.Collector{rec.durations, rec.results} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, statusLabel(success)).Inc()
}
