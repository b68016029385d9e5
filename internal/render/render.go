// Package render writes an aggregation table to an output stream.
//
// Every value is computed before the first byte is written, so a result
// error (e.g. an average over an empty accumulator) leaves the output empty.
package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"pivot/internal/pivot"
)

// Table is the read-only view of an aggregation result that renderers need.
type Table interface {
	Pivot() int
	Directives() []pivot.Directive
	Keys() []string
	Results(key string) ([]int64, error)
}

// row is one rendered output line: the key and its directive values.
type row struct {
	key  string
	vals []int64
}

func collect(t Table) ([]row, error) {
	keys := t.Keys()
	rows := make([]row, 0, len(keys))
	for _, k := range keys {
		vals, err := t.Results(k)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{key: k, vals: vals})
	}
	return rows, nil
}

// CSV writes one line per key in first-seen order:
//
//	<key>,<v1>,<v2>,...,
//
// Each line ends with a comma before the newline, there is no header, and
// keys are written verbatim without quoting. Existing consumers of the tool
// parse this exact shape.
func CSV(w io.Writer, t Table) error {
	rows, err := collect(t)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	var buf []byte
	for _, r := range rows {
		buf = append(buf[:0], r.key...)
		buf = append(buf, ',')
		for _, v := range r.vals {
			buf = strconv.AppendInt(buf, v, 10)
			buf = append(buf, ',')
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Markdown writes a Markdown table with a header row: col_<pivot> followed by
// one op:col column per directive.
func Markdown(w io.Writer, t Table) error {
	rows, err := collect(t)
	if err != nil {
		return err
	}

	dirs := t.Directives()
	headers := make([]string, 0, len(dirs)+1)
	headers = append(headers, fmt.Sprintf("col_%d", t.Pivot()))
	for _, d := range dirs {
		headers = append(headers, d.String())
	}

	alignment := make([]tw.Align, len(headers))
	alignment[0] = tw.AlignLeft
	for i := 1; i < len(alignment); i++ {
		alignment[i] = tw.AlignRight
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)

	for _, r := range rows {
		cells := make([]string, 0, len(r.vals)+1)
		cells = append(cells, r.key)
		for _, v := range r.vals {
			cells = append(cells, strconv.FormatInt(v, 10))
		}
		if err := table.Append(cells); err != nil {
			return fmt.Errorf("markdown row %q: %w", r.key, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Func renders a table to w.
type Func func(w io.Writer, t Table) error

// ByName returns the renderer for a config format name.
func ByName(name string) (Func, error) {
	switch name {
	case "", "csv":
		return CSV, nil
	case "markdown":
		return Markdown, nil
	default:
		return nil, fmt.Errorf("render: unknown format %q", name)
	}
}
