package scan

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteMetrics writes scan totals to path in the node_exporter textfile
// collector format. The file is replaced atomically.
func WriteMetrics(path string, results []Result) error {
	reg := prometheus.NewRegistry()

	files := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "migrationguard",
		Name:      "scanned_files_total",
		Help:      "Migration files evaluated, by decision.",
	}, []string{"decision"})
	findings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "migrationguard",
		Name:      "findings_total",
		Help:      "Findings reported across scanned files, by rule and severity.",
	}, []string{"rule", "severity"})
	worst := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "migrationguard",
		Name:      "worst_decision",
		Help:      "Most severe decision in the scan: 0 pass, 1 warn, 2 block.",
	})
	reg.MustRegister(files, findings, worst)

	for _, r := range results {
		files.WithLabelValues(r.Decision.String()).Inc()
		for _, f := range r.Findings {
			findings.WithLabelValues(f.RuleID, f.Severity.String()).Inc()
		}
	}
	worst.Set(float64(Worst(results)))

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
