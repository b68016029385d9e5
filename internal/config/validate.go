package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path names the setting
// (e.g. "delimiter", "metrics.backend").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks over r without mutating it.
func Validate(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Input) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "input",
			Message:  `input must not be empty; use "-" for standard input`,
		})
	}
	if r.HTTPRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http_retries",
			Message:  "http_retries must not be negative",
		})
	}
	if r.HTTPTimeout < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "http_timeout",
			Message:  "http_timeout must not be negative",
		})
	}
	if r.SkipLog != "" && filepath.Clean(r.SkipLog) == filepath.Clean(r.Input) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "skip_log",
			Message:  "skip log path is the input file; it would be truncated before reading",
		})
	}
	issues = append(issues, validateDelimiter(r.Delimiter)...)
	issues = append(issues, validateEncoding(r.Encoding)...)

	switch r.Format {
	case FormatCSV, FormatMarkdown:
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "format",
			Message:  fmt.Sprintf("unknown format %q; want %s or %s", r.Format, FormatCSV, FormatMarkdown),
		})
	}

	issues = append(issues, validateMetrics(r.Metrics)...)
	return issues
}

func validateDelimiter(d string) []Issue {
	if utf8.RuneCountInString(d) != 1 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "delimiter",
			Message:  fmt.Sprintf("delimiter must be a single character, got %q", d),
		}}
	}
	c, _ := utf8.DecodeRuneInString(d)
	switch {
	case c == utf8.RuneError:
		return []Issue{{Severity: SeverityError, Path: "delimiter", Message: "delimiter is not valid UTF-8"}}
	case c == 0 || c == '"' || c == '\r' || c == '\n':
		return []Issue{{Severity: SeverityError, Path: "delimiter", Message: fmt.Sprintf("delimiter %q cannot be used", c)}}
	case c == ' ':
		return []Issue{{Severity: SeverityWarning, Path: "delimiter", Message: "space delimiter splits on every single space; runs of spaces yield empty fields"}}
	}
	return nil
}

func validateEncoding(e string) []Issue {
	label := strings.ToLower(strings.TrimSpace(e))
	if label == "" || label == "utf-8" || label == "utf8" {
		return nil
	}
	if _, err := htmlindex.Get(label); err != nil {
		return []Issue{{
			Severity: SeverityError,
			Path:     "encoding",
			Message:  fmt.Sprintf("unknown encoding %q", e),
		}}
	}
	return nil
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", MetricsNone:
		return nil
	case MetricsPushgateway:
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case MetricsDatadog:
		if strings.TrimSpace(m.StatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		// Unknown backends only disable metrics; they never block a run.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		})
		return issues
	}

	if strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "job is empty; the backend default is used",
		})
	}
	return issues
}
