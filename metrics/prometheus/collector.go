// Package prometheus exports skyindex metrics to Prometheus.
//
//	reg := prom.NewRegistry()
//	mc := prometheus.New(reg, "skyindex")
//	orch, _ := skyindex.Build(ctx, ds, skyindex.WithMetricsCollector(mc))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/capacity"
)

// Collector implements skyindex.MetricsCollector.
type Collector struct {
	buildLatency *prom.HistogramVec
	buildRecords *prom.CounterVec
	queryLatency *prom.HistogramVec
	bookings     *prom.CounterVec
	validations  *prom.CounterVec
}

var _ skyindex.MetricsCollector = (*Collector)(nil)

// queryBuckets start at a microsecond; most lookups finish well below DefBuckets.
var queryBuckets = prom.ExponentialBuckets(1e-6, 4, 12)

// New registers the collector's metrics with reg under namespace.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prom.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		buildLatency: f.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time taken to build one index component",
			Buckets:   prom.DefBuckets,
		}, []string{"prototype", "component", "status"}),
		buildRecords: f.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_records_total",
			Help:      "The total number of records fed into index builds",
		}, []string{"prototype", "component"}),
		queryLatency: f.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Latency of index queries",
			Buckets:   queryBuckets,
		}, []string{"prototype", "kind", "status"}),
		bookings: f.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "The total number of validated bookings",
		}, []string{"prototype", "status"}),
		validations: f.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "capacity_validations_total",
			Help:      "The total number of flight capacity checks by outcome",
		}, []string{"prototype", "status"}),
	}
}

// RecordBuild implements skyindex.MetricsCollector.
func (c *Collector) RecordBuild(p skyindex.Prototype, component string, records int, d time.Duration, err error) {
	c.buildLatency.WithLabelValues(p.String(), component, status(err)).Observe(d.Seconds())
	c.buildRecords.WithLabelValues(p.String(), component).Add(float64(records))
}

// RecordQuery implements skyindex.MetricsCollector.
func (c *Collector) RecordQuery(p skyindex.Prototype, kind skyindex.QueryKind, d time.Duration, err error) {
	c.queryLatency.WithLabelValues(p.String(), kind.String(), status(err)).Observe(d.Seconds())
}

// RecordBooking implements skyindex.MetricsCollector.
func (c *Collector) RecordBooking(p skyindex.Prototype, err error) {
	s := "accepted"
	if err != nil {
		s = "rejected"
	}
	c.bookings.WithLabelValues(p.String(), s).Inc()
}

// RecordValidation implements skyindex.MetricsCollector.
func (c *Collector) RecordValidation(p skyindex.Prototype, s capacity.Status) {
	c.validations.WithLabelValues(p.String(), s.String()).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
