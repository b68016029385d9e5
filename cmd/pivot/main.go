// Command pivot summarizes delimited text by a pivot column.
//
// Usage:
//
//	pivot [flags] <pivot-column> <op:column> [op:column ...]
//
// Columns are zero-based. The operators are sum, max, min and avg; avg is
// integer division truncated toward zero. Records are read from standard
// input (or -input) and one line is printed per distinct pivot value, in the
// order the values were first seen:
//
//	$ printf 'x,1\ny,2\nx,3\n' | pivot 0 sum:1
//	x,4,
//	y,2,
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"pivot/internal/config"
	"pivot/internal/datasource"
	"pivot/internal/datasource/file"
	"pivot/internal/datasource/httpds"
	"pivot/internal/metrics"
	"pivot/internal/metrics/datadog"
	"pivot/internal/metrics/prompush"
	"pivot/internal/parser/csv"
	"pivot/internal/pipeline"
	"pivot/internal/pivot"
	"pivot/internal/render"
	"pivot/internal/skiplog"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Default()
	cfg.Metrics.Backend = ""

	fs := flag.NewFlagSet("pivot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), `Usage: pivot [flags] <pivot-column> <op:column> [op:column ...]

Groups records by the pivot column and prints sum, max, min or avg of the
given columns per distinct pivot value. Columns are indexed from 0.

Flags:`)
		fs.PrintDefaults()
	}

	fs.StringVar(&cfg.Input, "input", cfg.Input, `input file, http(s) URL, or "-" for standard input`)
	fs.IntVar(&cfg.HTTPRetries, "http-retries", cfg.HTTPRetries, "retries after 429/5xx or transport errors for URL input")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "per-attempt response header timeout for URL input")
	fs.StringVar(&cfg.Delimiter, "delimiter", cfg.Delimiter, "field delimiter (single character)")
	fs.StringVar(&cfg.Encoding, "encoding", cfg.Encoding, "input text encoding, e.g. utf-8, windows-1250, iso-8859-2")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "output format: csv or markdown")
	fs.BoolVar(&cfg.StrictWidth, "strict-width", false, "drop records whose field count differs from the first record")
	fs.BoolVar(&cfg.StrictQuotes, "strict-quotes", false, "drop records with a stray quote in an unquoted field")
	fs.BoolVar(&cfg.Verbose, "v", false, "enable verbose logs on stderr")
	fs.StringVar(&cfg.SkipLog, "skip-log", "", "write records the decoder dropped to this CSV report")
	fs.StringVar(&cfg.Metrics.Backend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (overrides env METRICS_BACKEND)")
	fs.StringVar(&cfg.Metrics.PushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	fs.StringVar(&cfg.Metrics.StatsdAddr, "statsd-addr", "", "DogStatsD address (overrides env DD_AGENT_ADDR)")
	fs.StringVar(&cfg.Metrics.Job, "job", cfg.Metrics.Job, "job name used in metrics")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	pc, err := pivot.ParseArgs(fs.Args())
	if err != nil {
		fatalf(stderr, "%v", err)
		return 1
	}

	cfg.Metrics.ApplyEnv(os.Getenv)
	issues := config.Validate(cfg)
	for _, iss := range issues {
		switch {
		case iss.Severity == config.SeverityError:
			fatalf(stderr, "%s: %s", iss.Path, iss.Message)
		case cfg.Verbose:
			log.Printf("%s: %s: %s", iss.Severity, iss.Path, iss.Message)
		}
	}
	if config.HasErrors(issues) {
		return 1
	}

	renderFn, err := render.ByName(cfg.Format)
	if err != nil {
		fatalf(stderr, "%v", err)
		return 1
	}

	flush := setupMetrics(cfg)
	defer flush()

	var skips *skiplog.Log
	if cfg.SkipLog != "" {
		skips, err = skiplog.Create(cfg.SkipLog)
		if err != nil {
			fatalf(stderr, "%v", err)
			return 1
		}
		defer func() {
			if err := skips.Close(); err != nil {
				log.Printf("skip log: %v", err)
			}
		}()
	}

	ctx := context.Background()
	start := time.Now()

	if cfg.Verbose {
		log.Printf("pivot: input=%s pivot=%d directives=%v format=%s", cfg.Input, pc.Pivot, pc.Directives, cfg.Format)
	}

	tbl, _, err := pipeline.Run(ctx, sourceFor(cfg), pipeline.Options{
		Pivot:      pc.Pivot,
		Directives: pc.Directives,
		Encoding:   cfg.Encoding,
		Decode: csv.Options{
			Comma:        cfg.Comma(),
			StrictWidth:  cfg.StrictWidth,
			StrictQuotes: cfg.StrictQuotes,
		},
		Job:     cfg.Metrics.Job,
		Verbose: cfg.Verbose,
		SkipLog: skips,
	})
	if err != nil {
		fatalf(stderr, "%v", err)
		return 1
	}

	done := metrics.StartStep(cfg.Metrics.Job, metrics.StepRender)
	err = renderFn(stdout, tbl)
	done(err)
	if err != nil {
		fatalf(stderr, "%v", err)
		return 1
	}

	if cfg.Verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	return 0
}

// sourceFor picks the data source for cfg.Input.
func sourceFor(cfg config.Run) datasource.Source {
	if httpds.IsURL(cfg.Input) {
		return httpds.New(cfg.Input, httpds.Config{
			Timeout:    cfg.HTTPTimeout,
			MaxRetries: cfg.HTTPRetries,
		})
	}
	return file.NewLocal(cfg.Input)
}

// setupMetrics installs the configured backend and returns a function that
// flushes it. Backend failures only disable metrics; they never fail a run.
func setupMetrics(cfg config.Run) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case config.MetricsPushgateway:
		b, err = prompush.NewBackend(cfg.Metrics.Job, cfg.Metrics.PushgatewayURL)
	case config.MetricsDatadog:
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.StatsdAddr,
			GlobalTags: []string{"job:" + cfg.Metrics.Job},
		})
	default:
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", cfg.Metrics.Backend, err)
		return func() {}
	}
	if cfg.Verbose {
		log.Printf("metrics: backend=%s job=%s", cfg.Metrics.Backend, cfg.Metrics.Job)
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

// fatalf writes a one-line diagnostic, in red when w is a terminal.
func fatalf(w io.Writer, format string, a ...any) {
	c := color.New(color.FgRed)
	if isTerminal(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintf(w, "pivot: "+format, a...)
	fmt.Fprintln(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
