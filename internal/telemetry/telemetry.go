// Package telemetry holds the prometheus collectors for pipeline runs.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeOK             = "ok"
	OutcomeMissingColumn  = "missing_column"
	OutcomeMalformedInput = "malformed_input"
	OutcomeInvalidOptions = "invalid_options"
	OutcomeInternal       = "error"
)

type Collector struct {
	reg      *prometheus.Registry
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	rows     *prometheus.CounterVec
	warnings prometheus.Counter
}

// New registers the run collectors on a private registry.
func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roas_pipeline_runs_total",
			Help: "Pipeline runs partitioned by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "roas_pipeline_duration_seconds",
			Help:    "Wall time of a pipeline run including file decoding.",
			Buckets: prometheus.DefBuckets,
		}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roas_pipeline_rows_total",
			Help: "Rows read per table kind and rows emitted.",
		}, []string{"table"}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roas_pipeline_warnings_total",
			Help: "Soft failures such as skipped enrichment.",
		}),
	}
	c.reg.MustRegister(c.runs, c.duration, c.rows, c.warnings)
	return c
}

func (c *Collector) ObserveRun(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.runs.WithLabelValues(outcome).Inc()
	c.duration.Observe(d.Seconds())
}

func (c *Collector) AddRows(table string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.rows.WithLabelValues(table).Add(float64(n))
}

func (c *Collector) AddWarnings(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.warnings.Add(float64(n))
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler exposes the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
