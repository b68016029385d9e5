// Package csv decodes headerless delimited text into records for the pivot
// engine. It streams from an io.Reader and never buffers the whole input.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"unicode/utf8"
)

// ErrInvalidUTF8 is the Err of a *csv.ParseError for a record holding a field
// that is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 in field")

// Options configures the decoder. The zero value reads comma-separated,
// variable-width records and tolerates stray quotes.
type Options struct {
	// Comma is the field delimiter. When zero, ',' is used.
	Comma rune

	// StrictWidth makes the first record fix the field count; later records
	// with a different count are decode errors and are dropped. When false,
	// short records are passed through so the engine can reject them.
	StrictWidth bool

	// StrictQuotes rejects a quote inside an unquoted field (a"b) and a
	// non-doubled quote inside a quoted one. Such records are dropped.
	StrictQuotes bool
}

// Decoder pulls records from a reader on the caller's goroutine.
//
// A record that cannot be decoded is reported to the onErr callback and
// skipped; it still consumes an index, so later indices match the input.
type Decoder struct {
	ctx   context.Context
	cr    *csv.Reader
	onErr func(index int, err error)
	err   error
}

// NewDecoder returns a Decoder over src. onErr may be nil.
func NewDecoder(ctx context.Context, src io.Reader, opt Options, onErr func(index int, err error)) *Decoder {
	cr := csv.NewReader(src)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = !opt.StrictQuotes
	if opt.StrictWidth {
		cr.FieldsPerRecord = 0
	} else {
		cr.FieldsPerRecord = -1
	}
	// The engine keeps key strings; each record needs its own slice.
	cr.ReuseRecord = false
	return &Decoder{ctx: ctx, cr: cr, onErr: onErr}
}

// All yields each decoded record with its zero-based index. Iteration ends at
// EOF, on ctx cancellation, on a read error from src, or when the consumer
// stops; Err reports why.
func (d *Decoder) All() iter.Seq2[int, []string] {
	return func(yield func(int, []string) bool) {
		for j := 0; ; j++ {
			if err := d.ctx.Err(); err != nil {
				d.err = err
				return
			}

			fields, err := d.cr.Read()
			if err == io.EOF {
				return
			}
			if err == nil {
				err = d.checkUTF8(fields)
			}
			if err != nil {
				var pe *csv.ParseError
				if !errors.As(err, &pe) {
					d.err = fmt.Errorf("csv read: %w", err)
					return
				}
				if d.onErr != nil {
					d.onErr(j, err)
				}
				continue
			}

			if !yield(j, fields) {
				return
			}
		}
	}
}

// Err returns the error that ended iteration early, or nil after EOF.
func (d *Decoder) Err() error { return d.err }

func (d *Decoder) checkUTF8(fields []string) error {
	for i, f := range fields {
		if utf8.ValidString(f) {
			continue
		}
		start, _ := d.cr.FieldPos(0)
		line, col := d.cr.FieldPos(i)
		return &csv.ParseError{StartLine: start, Line: line, Column: col, Err: ErrInvalidUTF8}
	}
	return nil
}
