// Package metrics exposes simulation counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"starlane/internal/engine"
)

const namespace = "starlane"

// Metrics owns a private registry so several simulations (and tests) can
// live in one process. It implements engine.Observer.
type Metrics struct {
	reg *prometheus.Registry

	ticks         prometheus.Counter
	tickDuration  prometheus.Histogram
	colonizations *prometheus.CounterVec
	abandoned     *prometheus.CounterVec
	launched      prometheus.Counter
	fleets        prometheus.Gauge
	claimed       prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Simulation ticks completed.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		colonizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "colonizations_total",
			Help:      "Resolved colonization events by outcome.",
		}, []string{"outcome"}),
		abandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_abandoned_total",
			Help:      "Fleet plan stacks cleared, by reason.",
		}, []string{"reason"}),
		launched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fleets_launched_total",
			Help:      "Colony fleets launched from colonies.",
		}),
		fleets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fleets",
			Help:      "Live fleets after the last tick.",
		}),
		claimed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "claimed_systems",
			Help:      "Systems claimed by any empire after the last tick.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.reg.MustRegister(
		m.ticks, m.tickDuration, m.colonizations, m.abandoned, m.launched, m.fleets, m.claimed,
		m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObserveTick(d time.Duration, fleets, claimed int) {
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
	m.fleets.Set(float64(fleets))
	m.claimed.Set(float64(claimed))
}

func (m *Metrics) ObserveColonization(outcome engine.Outcome) {
	m.colonizations.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) ObserveAbandon(reason string) {
	m.abandoned.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveLaunch() { m.launched.Inc() }

// RecordHTTPRequest counts one served request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	m.httpDuration.WithLabelValues(method, route, statusLabel).Observe(d.Seconds())
}

var _ engine.Observer = (*Metrics)(nil)
