package metrics

import (
	"sync/atomic"
	"time"
)

// Timer measures elapsed wall time for one request and records it, in
// milliseconds, into a histogram series. The intended use is
//
//	t := metrics.NewTimer(rec, "request_duration_ms", `endpoint="/fuse"`)
//	defer t.ObserveDuration()
//
// so the observation happens on every exit path, including panic unwinds.
type Timer struct {
	recorder Recorder
	name     string
	labels   string
	start    time.Time
	observed uint32
}

func NewTimer(recorder Recorder, name, labels string) *Timer {
	return &Timer{
		recorder: recorder,
		name:     name,
		labels:   labels,
		start:    time.Now(),
	}
}

// ObserveDuration records the elapsed time exactly once. Later calls are
// no-ops.
func (t *Timer) ObserveDuration() {
	if !atomic.CompareAndSwapUint32(&t.observed, 0, 1) {
		return
	}

	elapsed := float64(time.Since(t.start).Microseconds()) / 1000.0

	t.recorder.ObserveHistogram(t.name, elapsed, t.labels)
}
