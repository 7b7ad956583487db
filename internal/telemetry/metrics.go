package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"foodclean/internal"
)

// Metrics holds the gauges of the last run, exported through the
// node_exporter textfile collector.
type Metrics struct {
	reg *prometheus.Registry

	rowsIn        prometheus.Gauge
	rowsOut       prometheus.Gauge
	rowsDropped   prometheus.Gauge
	duration      prometheus.Gauge
	lastSuccess   prometheus.Gauge
	lastRunFailed prometheus.Gauge
	changed       *prometheus.GaugeVec
	nulled        *prometheus.GaugeVec
	imputed       *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "foodclean", Name: name, Help: help})
	}
	perColumn := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: "foodclean", Name: name, Help: help}, []string{"column"})
	}
	m := &Metrics{
		reg:           prometheus.NewRegistry(),
		rowsIn:        gauge("rows_in", "Rows loaded by the last run."),
		rowsOut:       gauge("rows_out", "Rows written by the last run."),
		rowsDropped:   gauge("rows_dropped", "Rows dropped by the last run."),
		duration:      gauge("run_duration_seconds", "Wall time of the last run."),
		lastSuccess:   gauge("last_success_timestamp_seconds", "Unix time of the last successful run."),
		lastRunFailed: gauge("last_run_failed", "1 if the last run failed."),
		changed:       perColumn("values_changed", "Values rewritten per column in the last run."),
		nulled:        perColumn("values_nulled", "Values set to null per column in the last run."),
		imputed:       perColumn("values_imputed", "Values imputed per column in the last run."),
	}
	m.reg.MustRegister(m.rowsIn, m.rowsOut, m.rowsDropped, m.duration, m.lastSuccess, m.lastRunFailed, m.changed, m.nulled, m.imputed)
	return m
}

func (m *Metrics) Observe(s internal.RunSummary, status string) {
	m.rowsIn.Set(float64(s.RowsIn))
	m.rowsOut.Set(float64(s.RowsOut))
	m.rowsDropped.Set(float64(s.RowsDropped))
	m.duration.Set(s.FinishedAt.Sub(s.StartedAt).Seconds())
	if status == internal.StatusSucceeded {
		m.lastRunFailed.Set(0)
		m.lastSuccess.Set(float64(s.FinishedAt.Unix()))
	} else {
		m.lastRunFailed.Set(1)
	}
	m.changed.Reset()
	m.nulled.Reset()
	m.imputed.Reset()
	for name, cs := range s.Columns {
		m.changed.WithLabelValues(name).Set(float64(cs.Changed))
		m.nulled.WithLabelValues(name).Set(float64(cs.Nulled))
		m.imputed.WithLabelValues(name).Set(float64(cs.Imputed))
	}
}

// WriteTextfile atomically writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
