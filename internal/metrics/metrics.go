package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records workflow outcomes. A nil *Collector is a no-op.
type Collector struct {
	workflows *prometheus.CounterVec
	duration  prometheus.Histogram
	connects  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		workflows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_transfer_workflows_total",
				Help: "SendMoney invocations by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_transfer_workflow_duration_seconds",
			Help:    "SendMoney latency including wallet signing and mining",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		connects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_connect_total",
				Help: "Connect invocations by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(c.workflows, c.duration, c.connects)
	return c
}

func (c *Collector) ObserveWorkflow(outcome string, started time.Time) {
	if c == nil {
		return
	}
	c.workflows.WithLabelValues(outcome).Inc()
	c.duration.Observe(time.Since(started).Seconds())
}

func (c *Collector) ObserveConnect(result string) {
	if c == nil {
		return
	}
	c.connects.WithLabelValues(result).Inc()
}
