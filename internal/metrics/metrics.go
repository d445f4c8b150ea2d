// Package metrics exposes scan and delivery counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Instrument outcomes used as the "outcome" label.
const (
	OutcomeEvaluated = "evaluated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// Metrics holds all Prometheus metrics for the scanner. Each instance owns its
// registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal       *prometheus.CounterVec // labels: trigger
	ScanDuration     prometheus.Histogram
	InstrumentsTotal *prometheus.CounterVec // labels: outcome
	AlertsTotal      prometheus.Counter
	SignalsTotal     *prometheus.CounterVec // labels: kind
	SuppressedTotal  prometheus.Counter
	DeliveryFailures prometheus.Counter
	FetchDuration    prometheus.Histogram
	LastScanUnix     prometheus.Gauge
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentinel_scans_total",
			Help: "Completed universe scans",
		}, []string{"trigger"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalsentinel_scan_duration_seconds",
			Help:    "Wall time of one universe scan",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		InstrumentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentinel_instruments_total",
			Help: "Instruments processed, by outcome",
		}, []string{"outcome"}),
		AlertsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentinel_alerts_total",
			Help: "Alerts produced by the engine",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalsentinel_signals_total",
			Help: "Signals included in alerts, by kind",
		}, []string{"kind"}),
		SuppressedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentinel_alerts_suppressed_total",
			Help: "Alerts not sent because the same bar already alerted",
		}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalsentinel_delivery_failures_total",
			Help: "Alert notifications that could not be delivered",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalsentinel_fetch_duration_seconds",
			Help:    "Market data fetch latency per instrument",
			Buckets: prometheus.DefBuckets,
		}),
		LastScanUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalsentinel_last_scan_timestamp_seconds",
			Help: "Unix time the last scan finished",
		}),
	}

	m.registry.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.InstrumentsTotal,
		m.AlertsTotal,
		m.SignalsTotal,
		m.SuppressedTotal,
		m.DeliveryFailures,
		m.FetchDuration,
		m.LastScanUnix,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScan records a finished scan.
func (m *Metrics) ObserveScan(trigger string, d time.Duration) {
	m.ScansTotal.WithLabelValues(trigger).Inc()
	m.ScanDuration.Observe(d.Seconds())
	m.LastScanUnix.Set(float64(time.Now().Unix()))
}
