// Package metric counts the work of a conversion run and writes it in the
// Prometheus text format, for the node exporter textfile collector.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	recordsRead    = "iris_converters_records_read_total"
	recordsWritten = "iris_converters_records_written_total"
	replies        = "iris_converters_replies_total"
	errorsTotal    = "iris_converters_errors_total"
	inputBytes     = "iris_converters_input_bytes"
)

type Metrics struct {
	registry  *prometheus.Registry
	collector *collector
}

func New() *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		collector: newCollector(),
	}
	m.registry.MustRegister(m.collector)
	return m
}

// RecordsRead counts records decoded from the input format.
func (m *Metrics) RecordsRead(format string, n int) {
	m.collector.registry.add(recordsRead, "Records decoded, by input format.", prometheus.CounterValue, prometheus.Labels{"format": format}, float64(n))
}

// RecordsWritten counts records encoded to the output format.
func (m *Metrics) RecordsWritten(format string, n int) {
	m.collector.registry.add(recordsWritten, "Records encoded, by output format.", prometheus.CounterValue, prometheus.Labels{"format": format}, float64(n))
}

func (m *Metrics) Replies(format string, n int) {
	m.collector.registry.add(replies, "Replies converted, by input format.", prometheus.CounterValue, prometheus.Labels{"format": format}, float64(n))
}

func (m *Metrics) Error(kind string) {
	m.collector.registry.add(errorsTotal, "Conversion errors, by kind.", prometheus.CounterValue, prometheus.Labels{"kind": kind}, 1)
}

func (m *Metrics) InputBytes(n int64) {
	m.collector.registry.set(inputBytes, "Size of the decompressed input.", prometheus.GaugeValue, prometheus.Labels{}, float64(n))
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile atomically replaces path with the current metrics.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
