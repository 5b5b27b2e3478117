package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// collector exposes the registry as const metrics. It describes nothing, so
// the prometheus registry treats it as unchecked.
type collector struct {
	registry *registry
}

func newCollector() *collector {
	return &collector{registry: newRegistry()}
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, sample := range c.registry.snapshot() {
		m, err := prometheus.NewConstMetric(
			prometheus.NewDesc(sample.name, sample.help, sample.labelNames, prometheus.Labels{}),
			sample.valueType,
			sample.value,
			sample.labelValues...,
		)
		if err != nil {
			ch <- prometheus.NewInvalidMetric(prometheus.NewInvalidDesc(err), err)
			continue
		}
		ch <- m
	}
}

func (c *collector) Describe(_ chan<- *prometheus.Desc) {}
