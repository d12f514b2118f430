// Package metrics pkg/metrics/registry.go
package metrics

import (
	"encoding/json"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// keySeparator joins a metric name with its label text to form the series
// key. Labels are pre-formatted by the caller (e.g. `endpoint="/fuse"`);
// identical text means the same series.
const keySeparator = "|"

// bucketBounds are the fixed finite histogram upper bounds. Values above the
// last bound land in the overflow slot and only show up in the +Inf line.
var bucketBounds = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000}

type counter struct {
	value  uint64
	labels string
}

type histogram struct {
	count   uint64
	sum     uint64
	buckets [10]uint64
	labels  string
}

type gauge struct {
	bits   uint64 // math.Float64bits of the current value
	labels string
}

// Registry is a process-wide store of named, labeled series. Series creation
// goes through sync.Map's LoadOrStore; once a series exists its numeric
// fields are mutated with atomics only. Renders are therefore best-effort
// snapshots: fields of one series, or different series in one render, may
// reflect slightly different moments under concurrent writers.
type Registry struct {
	counters   sync.Map // key -> *counter
	histograms sync.Map // key -> *histogram
	gauges     sync.Map // key -> *gauge
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) counterFor(name, labels string) *counter {
	key := name + keySeparator + labels
	if v, ok := r.counters.Load(key); ok {
		return v.(*counter)
	}

	v, _ := r.counters.LoadOrStore(key, &counter{labels: labels})

	return v.(*counter)
}

func (r *Registry) histogramFor(name, labels string) *histogram {
	key := name + keySeparator + labels
	if v, ok := r.histograms.Load(key); ok {
		return v.(*histogram)
	}

	v, _ := r.histograms.LoadOrStore(key, &histogram{labels: labels})

	return v.(*histogram)
}

func (r *Registry) gaugeFor(name, labels string) *gauge {
	key := name + keySeparator + labels
	if v, ok := r.gauges.Load(key); ok {
		return v.(*gauge)
	}

	v, _ := r.gauges.LoadOrStore(key, &gauge{labels: labels})

	return v.(*gauge)
}

// IncrementCounter adds 1 to the counter series, creating it on first use.
func (r *Registry) IncrementCounter(name, labels string) {
	atomic.AddUint64(&r.counterFor(name, labels).value, 1)
}

// AddToCounter adds value to the counter series. Counters live in an integer
// domain; fractional increments are truncated and negative ones ignored.
func (r *Registry) AddToCounter(name string, value float64, labels string) {
	if value < 0 {
		return
	}

	atomic.AddUint64(&r.counterFor(name, labels).value, uint64(value))
}

// ObserveHistogram records one observation: count+1, sum+value (integer
// domain), and the first bucket whose bound is >= value.
func (r *Registry) ObserveHistogram(name string, value float64, labels string) {
	h := r.histogramFor(name, labels)

	atomic.AddUint64(&h.count, 1)

	if value > 0 {
		atomic.AddUint64(&h.sum, uint64(value))
	}

	idx := len(bucketBounds) // overflow slot
	for i, bound := range bucketBounds {
		if value <= bound {
			idx = i
			break
		}
	}

	atomic.AddUint64(&h.buckets[idx], 1)
}

// SetGauge overwrites the gauge series with value.
func (r *Registry) SetGauge(name string, value float64, labels string) {
	atomic.StoreUint64(&r.gaugeFor(name, labels).bits, math.Float64bits(value))
}

// Reset clears every series. Primarily for tests.
func (r *Registry) Reset() {
	r.counters.Clear()
	r.histograms.Clear()
	r.gauges.Clear()
}

func sortedKeys(m *sync.Map) []string {
	var keys []string

	m.Range(func(k, _ interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})

	sort.Strings(keys)

	return keys
}

// metricName is the externally visible part of a series key.
func metricName(key string) string {
	if i := strings.Index(key, keySeparator); i >= 0 {
		return key[:i]
	}

	return key
}

func formatLabels(labels string) string {
	if labels == "" {
		return ""
	}

	return "{" + labels + "}"
}

func joinLabels(labels, extra string) string {
	if labels == "" {
		return extra
	}

	return labels + "," + extra
}

// RenderPrometheus renders every series in exposition text format. Series are
// walked in lexicographic key order so output is deterministic.
func (r *Registry) RenderPrometheus() string {
	var b strings.Builder

	for _, key := range sortedKeys(&r.counters) {
		v, ok := r.counters.Load(key)
		if !ok {
			continue
		}

		c := v.(*counter)
		name := metricName(key)

		b.WriteString("# HELP " + name + " Total count\n")
		b.WriteString("# TYPE " + name + " counter\n")
		b.WriteString(name + formatLabels(c.labels) + " " +
			strconv.FormatUint(atomic.LoadUint64(&c.value), 10) + "\n")
	}

	for _, key := range sortedKeys(&r.histograms) {
		v, ok := r.histograms.Load(key)
		if !ok {
			continue
		}

		h := v.(*histogram)
		name := metricName(key)
		count := atomic.LoadUint64(&h.count)
		sum := atomic.LoadUint64(&h.sum)

		b.WriteString("# HELP " + name + " Request duration histogram\n")
		b.WriteString("# TYPE " + name + " histogram\n")

		var cumulative uint64

		for i, bound := range bucketBounds {
			cumulative += atomic.LoadUint64(&h.buckets[i])
			le := `le="` + strconv.FormatFloat(bound, 'f', -1, 64) + `"`
			b.WriteString(name + "_bucket" + formatLabels(joinLabels(h.labels, le)) + " " +
				strconv.FormatUint(cumulative, 10) + "\n")
		}

		// The +Inf bucket always equals the total observation count.
		b.WriteString(name + "_bucket" + formatLabels(joinLabels(h.labels, `le="+Inf"`)) + " " +
			strconv.FormatUint(count, 10) + "\n")
		b.WriteString(name + "_count" + formatLabels(h.labels) + " " +
			strconv.FormatUint(count, 10) + "\n")
		b.WriteString(name + "_sum" + formatLabels(h.labels) + " " +
			strconv.FormatUint(sum, 10) + "\n")
	}

	for _, key := range sortedKeys(&r.gauges) {
		v, ok := r.gauges.Load(key)
		if !ok {
			continue
		}

		g := v.(*gauge)
		name := metricName(key)

		b.WriteString("# HELP " + name + " Current value\n")
		b.WriteString("# TYPE " + name + " gauge\n")
		b.WriteString(name + formatLabels(g.labels) + " " +
			strconv.FormatFloat(math.Float64frombits(atomic.LoadUint64(&g.bits)), 'f', -1, 64) + "\n")
	}

	return b.String()
}

type histogramSnapshot struct {
	Count uint64 `json:"count"`
	Sum   uint64 `json:"sum"`
}

type registrySnapshot struct {
	Counters   map[string]uint64            `json:"counters"`
	Histograms map[string]histogramSnapshot `json:"histograms"`
	Gauges     map[string]float64           `json:"gauges"`
}

// RenderJSON renders a snapshot keyed by metric name. Label variants of the
// same name collapse onto one key (last write as iterated); this mirrors the
// Prometheus render's key extraction and is a documented limitation.
func (r *Registry) RenderJSON() string {
	snap := registrySnapshot{
		Counters:   make(map[string]uint64),
		Histograms: make(map[string]histogramSnapshot),
		Gauges:     make(map[string]float64),
	}

	r.counters.Range(func(k, v interface{}) bool {
		snap.Counters[metricName(k.(string))] = atomic.LoadUint64(&v.(*counter).value)
		return true
	})

	r.histograms.Range(func(k, v interface{}) bool {
		h := v.(*histogram)
		snap.Histograms[metricName(k.(string))] = histogramSnapshot{
			Count: atomic.LoadUint64(&h.count),
			Sum:   atomic.LoadUint64(&h.sum),
		}

		return true
	})

	r.gauges.Range(func(k, v interface{}) bool {
		snap.Gauges[metricName(k.(string))] = math.Float64frombits(atomic.LoadUint64(&v.(*gauge).bits))
		return true
	})

	out, err := json.Marshal(snap)
	if err != nil {
		log.Printf("Error marshaling metrics snapshot: %v", err)
		return "{}"
	}

	return string(out)
}
