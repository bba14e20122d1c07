// Package metrics defines the Prometheus collectors for the mapper index and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/standardbeagle/mapperlink/internal/types"
)

// Document kinds used as label values
const (
	KindXML  = "xml"
	KindJava = "java"
)

// Result label values
const (
	ResultOK       = "ok"
	ResultSkipped  = "skipped"
	ResultError    = "error"
	ResultHit      = "hit"
	ResultMiss     = "miss"
	ResultNotReady = "not_ready"
)

// Metrics holds all Prometheus collectors for one index.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	ScansTotal        *prometheus.CounterVec
	ScanDuration      prometheus.Histogram
	FilesParsedTotal  *prometheus.CounterVec
	ChangeEventsTotal *prometheus.CounterVec
	LookupsTotal      *prometheus.CounterVec
	IndexedDocuments  *prometheus.GaugeVec
	IndexState        prometheus.Gauge
}

// New creates the collectors and registers them on reg. A nil reg gets a
// private registry so several indexes can live in one process.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapperlink_scans_total",
				Help: "Full workspace scans by status (ok, error, disposed).",
			},
			[]string{"status"},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mapperlink_scan_duration_seconds",
				Help:    "Full workspace scan latency in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		FilesParsedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapperlink_files_parsed_total",
				Help: "Files read and parsed by kind and result (ok, skipped, error).",
			},
			[]string{"kind", "result"},
		),
		ChangeEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapperlink_change_events_total",
				Help: "File change events by type (created, changed, deleted) and outcome.",
			},
			[]string{"type", "outcome"},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mapperlink_lookups_total",
				Help: "Index lookups by kind (statement, method) and result (hit, miss, not_ready).",
			},
			[]string{"kind", "result"},
		),
		IndexedDocuments: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mapperlink_indexed_documents",
				Help: "Mapper documents currently indexed by kind.",
			},
			[]string{"kind"},
		),
		IndexState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mapperlink_index_state",
				Help: "Index state (0=uninitialized, 1=initializing, 2=ready).",
			},
		),
	}

	reg.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.FilesParsedTotal,
		m.ChangeEventsTotal,
		m.LookupsTotal,
		m.IndexedDocuments,
		m.IndexState,
	)

	return m
}

// Handler returns the scrape handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScan records one finished scan.
func (m *Metrics) ObserveScan(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(status).Inc()
	m.ScanDuration.Observe(elapsed.Seconds())
}

// FileParsed counts one file read+parse.
func (m *Metrics) FileParsed(kind, result string) {
	if m == nil {
		return
	}
	m.FilesParsedTotal.WithLabelValues(kind, result).Inc()
}

// ChangeEvent counts one OnFile* call.
func (m *Metrics) ChangeEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.ChangeEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// Lookup counts one FindStatement/FindMethod call.
func (m *Metrics) Lookup(kind, result string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(kind, result).Inc()
}

// SetDocuments publishes the indexed document counts.
func (m *Metrics) SetDocuments(xmlDocs, javaDocs int) {
	if m == nil {
		return
	}
	m.IndexedDocuments.WithLabelValues(KindXML).Set(float64(xmlDocs))
	m.IndexedDocuments.WithLabelValues(KindJava).Set(float64(javaDocs))
}

// SetState publishes the index lifecycle state.
func (m *Metrics) SetState(state types.IndexState) {
	if m == nil {
		return
	}
	m.IndexState.Set(float64(state))
}
