package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusRecorder struct {
	counters  *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// NewPrometheusRecorder registers hpay counters and latency histograms on the
// default registry. Counter events carry the upstream price source as a label
// (empty for ledger events).
func NewPrometheusRecorder() Recorder {
	counters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hpay",
			Name:      "events_total",
			Help:      "hpay event counters",
		},
		[]string{"type", "source"},
	)

	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hpay",
			Name:      "latency_seconds",
			Help:      "hpay operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "source"},
	)

	prometheus.MustRegister(counters, histogram)

	return &PrometheusRecorder{
		counters:  counters,
		histogram: histogram,
	}
}

func (p *PrometheusRecorder) IncCounter(name string, labels map[string]string) {
	p.counters.With(prometheus.Labels{
		"type":   name,
		"source": labels["source"],
	}).Inc()
}

func (p *PrometheusRecorder) ObserveLatency(name string, d time.Duration, labels map[string]string) {
	p.histogram.With(prometheus.Labels{
		"operation": name,
		"source":    labels["source"],
	}).Observe(d.Seconds())
}
