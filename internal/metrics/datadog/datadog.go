// Package datadog sends pivot run metrics to a DogStatsD agent.
//
// Labels become "key:value" tags. Counters map to Count and step durations to
// Distribution, so percentiles are computed server side across runs.
package datadog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/DataDog/datadog-go/v5/statsd"

	"pivot/internal/metrics"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or "unix:///path/to/socket".
	Addr string
	// Namespace prefixes every metric name, e.g. "batch.".
	Namespace string
	// GlobalTags are applied to all metrics, e.g. []string{"env:prod"}.
	GlobalTags []string
}

// Backend implements metrics.Backend.
type Backend struct {
	client statsd.ClientInterface
}

// NewBackend dials cfg.Addr. Client telemetry is disabled; a run is too short
// for it to be useful.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	opts := []statsd.Option{statsd.WithoutTelemetry()}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}

	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client for %s: %w", cfg.Addr, err)
	}
	return &Backend{client: c}, nil
}

// IncCounter sends a Count; fractional deltas are truncated.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(name, int64(delta), tags(labels), 1)
}

// ObserveHistogram sends a Distribution sample.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Distribution(name, value, tags(labels), 1)
}

// Flush closes the client, sending anything still buffered. Call it once, at
// exit.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// tags renders labels as "key:value" ordered by key.
func tags(l metrics.Labels) []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, k := range slices.Sorted(maps.Keys(l)) {
		out = append(out, k+":"+l[k])
	}
	return out
}
