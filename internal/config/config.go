// Package config defines the run configuration for the pivot CLI.
//
// Values are filled from command-line flags, with environment fallbacks for
// the metrics settings, and checked with Validate before anything is read.
// Decoding stays in the standard library; there is no config file.
package config

import (
	"time"
	"unicode/utf8"
)

// Output formats accepted by Run.Format.
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Metrics backends accepted by Metrics.Backend.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// Run is everything about one invocation except the positional pivot and
// directive arguments.
type Run struct {
	// Input is a file path, "-" for standard input, or an http(s) URL.
	Input string

	// HTTPRetries and HTTPTimeout apply when Input is a URL.
	HTTPRetries int
	HTTPTimeout time.Duration

	// Encoding is a WHATWG label for the input text; "" or "utf-8" keeps bytes as-is.
	Encoding string

	// Delimiter is the raw field delimiter; exactly one character.
	Delimiter string

	// Format selects the output renderer (FormatCSV or FormatMarkdown).
	Format string

	// StrictWidth drops records whose field count differs from the first record.
	StrictWidth bool

	// StrictQuotes drops records with a stray quote in an unquoted field
	// instead of keeping the quote as literal text.
	StrictQuotes bool

	// Verbose enables progress and summary logs on stderr.
	Verbose bool

	// SkipLog is an optional CSV report path for records the decoder dropped.
	SkipLog string

	Metrics Metrics
}

// Metrics selects where run metrics are sent.
type Metrics struct {
	Backend        string
	PushgatewayURL string
	StatsdAddr     string
	// Job names the run in metrics (Pushgateway job, Datadog tag).
	Job string
}

// Default returns the configuration that reproduces the bare
// `pivot <pivot> <op:col>...` behavior.
func Default() Run {
	return Run{
		Input:       "-",
		HTTPRetries: 2,
		HTTPTimeout: 30 * time.Second,
		Encoding:    "utf-8",
		Delimiter:   ",",
		Format:      FormatCSV,
		Metrics: Metrics{
			Backend: MetricsNone,
			Job:     "pivot",
		},
	}
}

// Comma returns the delimiter as a rune, or ',' when Delimiter is empty or
// not valid UTF-8.
func (r Run) Comma() rune {
	if r.Delimiter == "" {
		return ','
	}
	c, _ := utf8.DecodeRuneInString(r.Delimiter)
	if c == utf8.RuneError {
		return ','
	}
	return c
}

// ApplyEnv fills empty metrics settings from the environment: flag -> env ->
// default. getenv is usually os.Getenv.
func (m *Metrics) ApplyEnv(getenv func(string) string) {
	if m.Backend == "" {
		m.Backend = getenv("METRICS_BACKEND")
	}
	if m.Backend == "" {
		m.Backend = MetricsNone
	}
	if m.PushgatewayURL == "" {
		m.PushgatewayURL = getenv("PUSHGATEWAY_URL")
	}
	if m.PushgatewayURL == "" {
		m.PushgatewayURL = "http://localhost:9091"
	}
	if m.StatsdAddr == "" {
		m.StatsdAddr = getenv("DD_AGENT_ADDR")
	}
	if m.StatsdAddr == "" {
		m.StatsdAddr = "127.0.0.1:8125"
	}
}
