// Package pipeline runs one pivot pass: open the source, decode text and
// records, and fold them into the aggregation table.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"pivot/internal/datasource"
	"pivot/internal/metrics"
	"pivot/internal/parser/csv"
	"pivot/internal/pivot"
	"pivot/internal/skiplog"
	"pivot/internal/textenc"
)

const (
	// maxLoggedSkips caps per-record skip logs; the total is still counted.
	maxLoggedSkips        = 100
	defaultProgressPeriod = 10 * time.Second
)

// Options configures a run.
type Options struct {
	Pivot      int
	Directives []pivot.Directive

	// Encoding is passed to textenc.NewReader.
	Encoding string
	Decode   csv.Options

	// Job labels metrics.
	Job string
	// Verbose logs skipped records, periodic progress and a summary through
	// the log package.
	Verbose bool
	// ProgressEvery is the verbose progress period; 0 uses a default.
	ProgressEvery time.Duration
	// SkipLog, when set, receives every record the decoder dropped.
	SkipLog *skiplog.Log
}

// Stats summarizes a run.
type Stats struct {
	// Processed counts records folded into the table.
	Processed int64
	// Skipped counts records the decoder could not read.
	Skipped int64
	// Groups is the number of distinct pivot keys.
	Groups int
}

// Run reads src to the end and returns the finished table.
//
// Decoding and folding happen on one goroutine, so records are folded in
// input order and a fatal record error returns at once, even if src would
// block on its next read. On error the table is nil: callers never see
// partial results.
func Run(ctx context.Context, src datasource.Source, opt Options) (*pivot.Table, Stats, error) {
	var (
		st                 Stats
		processed, skipped atomic.Int64
	)

	opened := metrics.StartStep(opt.Job, metrics.StepRead)
	rc, err := src.Open(ctx)
	if err != nil {
		opened(err)
		return nil, st, err
	}
	defer rc.Close()

	r, err := textenc.NewReader(rc, opt.Encoding)
	opened(err)
	if err != nil {
		return nil, st, err
	}

	g, gctx := errgroup.WithContext(ctx)
	folded := make(chan struct{})

	var tbl *pivot.Table
	g.Go(func() error {
		defer close(folded)
		done := metrics.StartStep(opt.Job, metrics.StepAggregate)

		onErr := func(j int, err error) {
			n := skipped.Add(1)
			if opt.SkipLog != nil {
				opt.SkipLog.Add(j, err)
			}
			if opt.Verbose && n <= maxLoggedSkips {
				log.Printf("skipping record %d: %v", j, err)
			}
		}
		dec := csv.NewDecoder(gctx, r, opt.Decode, onErr)

		t, err := pivot.Run(opt.Pivot, opt.Directives, func(yield func(int, []string) bool) {
			for j, fields := range dec.All() {
				if !yield(j, fields) {
					return
				}
				processed.Add(1)
			}
		})
		if err == nil && dec.Err() != nil {
			err = fmt.Errorf("read input: %w", dec.Err())
		}
		done(err)
		if err != nil {
			return err
		}
		tbl = t
		return nil
	})

	if opt.Verbose {
		g.Go(func() error {
			reportProgress(gctx, folded, opt.ProgressEvery, &processed, &skipped)
			return nil
		})
	}

	err = g.Wait()
	st.Processed, st.Skipped = processed.Load(), skipped.Load()
	if err != nil {
		return nil, st, err
	}

	st.Groups = tbl.Len()
	metrics.RecordRecords(opt.Job, metrics.KindProcessed, st.Processed)
	metrics.RecordRecords(opt.Job, metrics.KindSkipped, st.Skipped)
	metrics.RecordGroups(opt.Job, st.Groups)

	if opt.Verbose {
		if st.Skipped > maxLoggedSkips {
			log.Printf("... %d more skipped records not shown", st.Skipped-maxLoggedSkips)
		}
		log.Printf("summary: processed=%s skipped=%s groups=%s",
			humanize.Comma(st.Processed), humanize.Comma(st.Skipped), humanize.Comma(int64(st.Groups)))
	}
	return tbl, st, nil
}

// reportProgress logs the running counts every period until folded is
// closed or ctx is done.
func reportProgress(ctx context.Context, folded <-chan struct{}, period time.Duration, processed, skipped *atomic.Int64) {
	if period <= 0 {
		period = defaultProgressPeriod
	}
	start := time.Now()
	tick := time.NewTicker(period)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-folded:
			return
		case <-tick.C:
			log.Printf("progress: folded=%s skipped=%s elapsed=%s",
				humanize.Comma(processed.Load()), humanize.Comma(skipped.Load()),
				time.Since(start).Truncate(time.Second))
		}
	}
}
