// Package skiplog writes a CSV report of input records the decoder dropped.
package skiplog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	pcsv "pivot/internal/parser/csv"
)

// Reasons recorded in the report's first column.
const (
	ReasonFieldCount = "field_count"
	ReasonBareQuote  = "bare_quote"
	ReasonQuote      = "quote"
	ReasonUTF8       = "utf8"
	ReasonParse      = "parse_error"
)

// Log appends one row per skipped record and counts rows per reason.
// It is not safe for concurrent use; the pipeline calls it from the reader
// goroutine only.
type Log struct {
	reasons map[string]int
	w       *csv.Writer
	f       *os.File
}

// Create makes any missing parent directories, truncates path and writes the
// header row.
func Create(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"reason", "row", "detail"}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	return &Log{reasons: make(map[string]int), w: w, f: f}, nil
}

// Add records a skipped record at enumeration index row.
func (l *Log) Add(row int, err error) {
	reason := Reason(err)
	l.reasons[reason]++
	_ = l.w.Write([]string{reason, strconv.Itoa(row), err.Error()})
}

// Counts returns a copy of the per-reason totals.
func (l *Log) Counts() map[string]int {
	out := make(map[string]int, len(l.reasons))
	for k, v := range l.reasons {
		out[k] = v
	}
	return out
}

// Close flushes buffered rows and closes the file.
func (l *Log) Close() error {
	l.w.Flush()
	werr := l.w.Error()
	cerr := l.f.Close()
	if werr != nil {
		return fmt.Errorf("flush skip log: %w", werr)
	}
	return cerr
}

// Reason classifies a decode error.
func Reason(err error) string {
	switch {
	case errors.Is(err, csv.ErrFieldCount):
		return ReasonFieldCount
	case errors.Is(err, csv.ErrBareQuote):
		return ReasonBareQuote
	case errors.Is(err, csv.ErrQuote):
		return ReasonQuote
	case errors.Is(err, pcsv.ErrInvalidUTF8):
		return ReasonUTF8
	default:
		return ReasonParse
	}
}
