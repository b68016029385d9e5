// Package metrics instruments pivot runs behind a backend-agnostic interface.
//
// The installed backend defaults to a no-op, so the Record helpers are always
// safe to call. Concrete systems (Prometheus Pushgateway, DogStatsD) live in
// subpackages. A run is a short batch job; the backend is flushed once at
// exit.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by the helpers below.
const (
	StepTotal           = "pivot_step_total"
	StepDurationSeconds = "pivot_step_duration_seconds"
	RecordsTotal        = "pivot_records_total"
	GroupsTotal         = "pivot_groups_total"
)

// Step names a phase of a run.
type Step string

const (
	StepRead      Step = "read"
	StepAggregate Step = "aggregate"
	StepRender    Step = "render"
)

// Record kinds for RecordRecords.
const (
	KindProcessed = "processed"
	KindSkipped   = "skipped"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend receives metric updates.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a duration-like value.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush sends buffered values, if the backend buffers.
	Flush() error
}

type nop struct{}

func (nop) IncCounter(string, float64, Labels)       {}
func (nop) ObserveHistogram(string, float64, Labels) {}
func (nop) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	current Backend = nop{}
)

// SetBackend installs b. A nil b is ignored.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	current = b
	mu.Unlock()
}

func installed() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Flush flushes the installed backend.
func Flush() error {
	return installed().Flush()
}

// StartStep starts timing step. The returned func records the outcome and
// must be called once.
func StartStep(job string, step Step) func(err error) {
	start := time.Now()
	return func(err error) {
		RecordStep(job, step, err, time.Since(start))
	}
}

// RecordStep counts one execution of step and observes its duration.
func RecordStep(job string, step Step, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": string(step), "status": status}

	b := installed()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRecords adds delta input records of kind (KindProcessed or
// KindSkipped). Non-positive deltas are dropped.
func RecordRecords(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	installed().IncCounter(RecordsTotal, float64(delta), Labels{"job": job, "kind": kind})
}

// RecordGroups adds the number of distinct pivot keys a run produced.
func RecordGroups(job string, n int) {
	if n <= 0 {
		return
	}
	installed().IncCounter(GroupsTotal, float64(n), Labels{"job": job})
}
