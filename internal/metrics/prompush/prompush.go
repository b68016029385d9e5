// Package prompush pushes pivot run metrics to a Prometheus Pushgateway.
//
// A run exits before any scraper could reach it, so values are kept in a
// private registry and pushed once on Flush under the job grouping key.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"pivot/internal/metrics"
)

// DefaultJob is used when NewBackend gets an empty job name.
const DefaultJob = "pivot"

// counter is a CounterVec plus the label names to pull out of metrics.Labels,
// in declaration order. The job label is the push grouping key instead.
type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

// Backend implements metrics.Backend on top of a push.Pusher.
type Backend struct {
	job    string
	reg    *prometheus.Registry
	pusher *push.Pusher

	counters  map[string]counter
	durations *prometheus.HistogramVec
}

// NewBackend builds a backend that pushes to gatewayURL (e.g.
// http://pushgateway:9091) under job.
func NewBackend(job, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if job == "" {
		job = DefaultJob
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	newCounter := func(name, help string, labels ...string) counter {
		return counter{
			vec:    factory.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels),
			labels: labels,
		}
	}

	b := &Backend{
		job: job,
		reg: reg,
		counters: map[string]counter{
			metrics.StepTotal:    newCounter(metrics.StepTotal, "Pivot step executions by step and status.", "step", "status"),
			metrics.RecordsTotal: newCounter(metrics.RecordsTotal, "Input records by kind (processed, skipped).", "kind"),
			metrics.GroupsTotal:  newCounter(metrics.GroupsTotal, "Distinct pivot keys produced."),
		},
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metrics.StepDurationSeconds,
			Help:    "Pivot step duration in seconds by step and status.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"step", "status"}),
	}
	b.pusher = push.New(gatewayURL, job).Gatherer(reg)
	return b, nil
}

// Job returns the Pushgateway grouping key.
func (b *Backend) Job() string { return b.job }

func values(names []string, l metrics.Labels) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = l[n]
	}
	return out
}

// IncCounter adds delta to a known counter. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	c, ok := b.counters[name]
	if !ok {
		return
	}
	c.vec.WithLabelValues(values(c.labels, labels)...).Add(delta)
}

// ObserveHistogram records step durations; other names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds || b.durations == nil {
		return
	}
	b.durations.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush replaces the job's metric group on the Pushgateway.
func (b *Backend) Flush() error {
	if err := b.pusher.Push(); err != nil {
		return fmt.Errorf("prompush: push job %s: %w", b.job, err)
	}
	return nil
}
