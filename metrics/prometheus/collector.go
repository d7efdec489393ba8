// Package prometheus exports table metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	c, err := soaprom.New(reg, "particles")
//	t, err := soa.NewTable(schema, soa.WithMetrics(c))
package prometheus

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/soa"
)

const namespace = "soa"

var _ soa.MetricsCollector = (*Collector)(nil)

// Collector implements soa.MetricsCollector with Prometheus metrics. Every
// metric carries a constant "table" label, so one registry can hold the
// collectors of many tables.
type Collector struct {
	acquires  *prom.CounterVec
	releases  *prom.CounterVec
	clears    prom.Counter
	grows     prom.Counter
	capacity  prom.Gauge
	snapLat   *prom.HistogramVec
	snapBytes *prom.CounterVec
	snapErrs  *prom.CounterVec
}

// New creates the metrics of one table and registers them with reg.
func New(reg prom.Registerer, table string) (*Collector, error) {
	labels := prom.Labels{"table": table}
	c := &Collector{
		acquires: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "acquires_total",
			Help:        "Rows acquired, by whether a block had to be linked first.",
			ConstLabels: labels,
		}, []string{"grew"}),
		releases: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "releases_total",
			Help:        "Rows released, by whether the row was reset.",
			ConstLabels: labels,
		}, []string{"reset"}),
		clears: prom.NewCounter(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "clears_total",
			Help:        "Full table clears.",
			ConstLabels: labels,
		}),
		grows: prom.NewCounter(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "blocks_linked_total",
			Help:        "Blocks linked into the chain.",
			ConstLabels: labels,
		}),
		capacity: prom.NewGauge(prom.GaugeOpts{
			Namespace:   namespace,
			Name:        "capacity_rows",
			Help:        "Addressable rows.",
			ConstLabels: labels,
		}),
		snapLat: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace:   namespace,
			Name:        "snapshot_duration_seconds",
			Help:        "Latency of snapshot saves and loads.",
			Buckets:     prom.DefBuckets,
			ConstLabels: labels,
		}, []string{"op"}),
		snapBytes: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "snapshot_bytes_total",
			Help:        "Encoded snapshot bytes saved or loaded.",
			ConstLabels: labels,
		}, []string{"op"}),
		snapErrs: prom.NewCounterVec(prom.CounterOpts{
			Namespace:   namespace,
			Name:        "snapshot_errors_total",
			Help:        "Failed snapshot saves and loads.",
			ConstLabels: labels,
		}, []string{"op"}),
	}

	for _, m := range []prom.Collector{
		c.acquires, c.releases, c.clears, c.grows,
		c.capacity, c.snapLat, c.snapBytes, c.snapErrs,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordAcquire implements soa.MetricsCollector.
func (c *Collector) RecordAcquire(grew bool) {
	c.acquires.WithLabelValues(strconv.FormatBool(grew)).Inc()
}

// RecordRelease implements soa.MetricsCollector.
func (c *Collector) RecordRelease(reset bool) {
	c.releases.WithLabelValues(strconv.FormatBool(reset)).Inc()
}

// RecordClear implements soa.MetricsCollector.
func (c *Collector) RecordClear(capacity int) {
	c.clears.Inc()
	c.capacity.Set(float64(capacity))
}

// RecordGrow implements soa.MetricsCollector.
func (c *Collector) RecordGrow(capacity int) {
	c.grows.Inc()
	c.capacity.Set(float64(capacity))
}

// RecordClose implements soa.MetricsCollector.
func (c *Collector) RecordClose() {
	c.capacity.Set(0)
}

// RecordSnapshot implements soa.MetricsCollector.
func (c *Collector) RecordSnapshot(op string, bytes int64, d time.Duration, err error) {
	c.snapLat.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		c.snapErrs.WithLabelValues(op).Inc()
		return
	}
	c.snapBytes.WithLabelValues(op).Add(float64(bytes))
}
