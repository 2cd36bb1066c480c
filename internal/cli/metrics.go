package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"orchard/internal/config"
	"orchard/internal/core"
)

// newMetrics builds the configured recorder and a reporter that logs its
// totals at debug level when the command finishes.
func newMetrics(exporter string) (core.MetricsRecorder, func(*slog.Logger), error) {
	switch exporter {
	case config.ExporterExpvar:
		rec := core.NewExpvarMetricsRecorder("")
		return rec, func(logger *slog.Logger) {
			snap := rec.Snapshot()
			for op, counts := range snap.Results {
				logger.Debug("metrics", "operation", op, "success", counts["success"], "error", counts["error"], "duration_ms", snap.DurationsMS[op])
			}
		}, nil
	case config.ExporterPrometheus:
		reg := prometheus.NewRegistry()
		rec, err := core.NewPrometheusMetricsRecorder(reg)
		if err != nil {
			return nil, nil, err
		}
		return rec, func(logger *slog.Logger) {
			families, err := reg.Gather()
			if err != nil {
				logger.Warn("gather metrics", "error", err)
				return
			}
			for _, mf := range families {
				for _, m := range mf.GetMetric() {
					if c := m.GetCounter(); c != nil {
						labels := make([]string, 0, len(m.GetLabel()))
						for _, lp := range m.GetLabel() {
							labels = append(labels, lp.GetName()+"="+lp.GetValue())
						}
						logger.Debug("metrics", "name", mf.GetName(), "labels", strings.Join(labels, ","), "value", c.GetValue())
					}
				}
			}
		}, nil
	case config.ExporterNone, "":
		return nil, func(*slog.Logger) {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown metrics exporter %q", exporter)
	}
}
