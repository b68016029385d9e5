// Package pivot groups records by a pivot column and folds integer columns
// into per-group sum, max, min and average accumulators.
//
// Keys are kept in first-seen order. Any malformed row or unparseable number
// ends the run with an error and no table; there are no partial results.
package pivot

import "iter"

// Run folds every record yielded by records into a new table. The int half of
// each pair is the record's index in the decoder's enumeration, which may skip
// values when the decoder drops records it could not read.
func Run(pivot int, directives []Directive, records iter.Seq2[int, []string]) (*Table, error) {
	t := NewTable(pivot, directives)
	for j, fields := range records {
		if err := t.Add(j, fields); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Slice adapts in-memory records to the sequence Run consumes, numbering
// them from zero.
func Slice(records [][]string) iter.Seq2[int, []string] {
	return func(yield func(int, []string) bool) {
		for j, r := range records {
			if !yield(j, r) {
				return
			}
		}
	}
}
