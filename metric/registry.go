package metric

import (
	"bytes"
	"hash"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/model"
)

type (
	valueHash uint64
	series    map[valueHash]*registeredMetric
)

type registeredMetric struct {
	name      string
	value     float64
	help      string
	valueType prometheus.ValueType

	// Keep LabelNames and LabelValues separately as it'll be
	// required by prometheus.MustNewConstMetric in the Collect
	// method
	labelNames  []string
	labelValues []string

	// Hash of label name + label value pairs
	valueKey valueHash
}

type registry struct {
	// mu holds lock on metrics
	mu sync.Mutex
	// refCount is the number of series currently in the store
	refCount int
	// metrics maps a metric name to its series, one per label set
	metrics map[string]series
	// The below value and label variables are allocated in the registry struct
	// so that we don't have to allocate them every time have to compute a label
	// hash.
	valueBuf, nameBuf bytes.Buffer
	hasher            hash.Hash64
}

func newRegistry() *registry {
	return &registry{
		metrics: make(map[string]series),
		hasher:  fnv.New64a(),
	}
}

func (r *registry) hashLabels(labels prometheus.Labels) (valueHash, []string) {
	r.hasher.Reset()
	r.nameBuf.Reset()
	r.valueBuf.Reset()
	labelNames := make([]string, 0, len(labels))
	for labelName := range labels {
		labelNames = append(labelNames, labelName)
	}
	sort.Strings(labelNames)
	r.valueBuf.WriteByte(model.SeparatorByte)
	for _, labelName := range labelNames {
		r.valueBuf.WriteString(labels[labelName])
		r.valueBuf.WriteByte(model.SeparatorByte)
		r.nameBuf.WriteString(labelName)
		r.nameBuf.WriteByte(model.SeparatorByte)
	}
	r.hasher.Write(r.nameBuf.Bytes())
	r.hasher.Write(r.valueBuf.Bytes())
	return valueHash(r.hasher.Sum64()), labelNames
}

// get returns the series of name with the given labels, creating it with a
// zero value when missing. Callers hold mu.
func (r *registry) get(name, help string, valueType prometheus.ValueType, labels prometheus.Labels) *registeredMetric {
	hash, labelNames := r.hashLabels(labels)
	m, ok := r.metrics[name]
	if !ok {
		m = make(series)
		r.metrics[name] = m
	}
	if rm, ok := m[hash]; ok {
		return rm
	}
	labelValues := make([]string, 0, len(labelNames))
	for _, labelName := range labelNames {
		labelValues = append(labelValues, labels[labelName])
	}
	rm := &registeredMetric{
		valueKey:    hash,
		name:        name,
		help:        help,
		valueType:   valueType,
		labelNames:  labelNames,
		labelValues: labelValues,
	}
	m[hash] = rm
	r.refCount++
	return rm
}

func (r *registry) add(name, help string, valueType prometheus.ValueType, labels prometheus.Labels, delta float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(name, help, valueType, labels).value += delta
}

func (r *registry) set(name, help string, valueType prometheus.ValueType, labels prometheus.Labels, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(name, help, valueType, labels).value = value
}

// snapshot copies every series so that collection runs without the lock.
func (r *registry) snapshot() []registeredMetric {
	r.mu.Lock()
	defer r.mu.Unlock()
	samples := make([]registeredMetric, 0, r.refCount)
	for _, m := range r.metrics {
		for _, rm := range m {
			samples = append(samples, *rm)
		}
	}
	return samples
}
