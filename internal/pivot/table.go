package pivot

import (
	"github.com/zeebo/xxh3"

	"pivot/internal/parser/ints"
)

// group is one pivot key with its accumulators, positionally aligned with
// the table's directives.
type group struct {
	key string
	row []Accumulator
}

// Table is the aggregation table. Groups are stored in first-seen order and
// indexed by the xxh3 hash of their key; colliding keys share a bucket and are
// told apart by comparing the full text.
//
// A Table has a single writer and is not safe for concurrent use.
type Table struct {
	pivot      int
	directives []Directive

	groups []group
	index  map[uint64][]int
}

// NewTable returns an empty table for the given pivot column and directives.
// The directive slice is copied.
func NewTable(pivot int, directives []Directive) *Table {
	return &Table{
		pivot:      pivot,
		directives: append([]Directive(nil), directives...),
		index:      make(map[uint64][]int),
	}
}

// Pivot returns the pivot column index.
func (t *Table) Pivot() int { return t.pivot }

// Directives returns a copy of the directive list in output order.
func (t *Table) Directives() []Directive {
	return append([]Directive(nil), t.directives...)
}

// Len returns the number of distinct pivot keys.
func (t *Table) Len() int { return len(t.groups) }

// Keys returns the pivot keys in order of first appearance.
func (t *Table) Keys() []string {
	out := make([]string, len(t.groups))
	for i, g := range t.groups {
		out[i] = g.key
	}
	return out
}

func (t *Table) lookup(h uint64, key string) (int, bool) {
	for _, i := range t.index[h] {
		if t.groups[i].key == key {
			return i, true
		}
	}
	return 0, false
}

// groupFor returns the position of key, creating an empty group on first sight.
func (t *Table) groupFor(key string) int {
	h := xxh3.HashString(key)
	if i, ok := t.lookup(h, key); ok {
		return i
	}
	i := len(t.groups)
	t.groups = append(t.groups, group{key: key, row: make([]Accumulator, len(t.directives))})
	t.index[h] = append(t.index[h], i)
	return i
}

// Add folds one record into the table. j is the record's position in the
// decoder's enumeration and is only used to label errors.
func (t *Table) Add(j int, fields []string) error {
	if t.pivot >= len(fields) {
		return &MalformedRowError{Row: j, Col: t.pivot, Fields: len(fields)}
	}
	row := t.groups[t.groupFor(fields[t.pivot])].row

	for i, d := range t.directives {
		if d.Col >= len(fields) {
			return &MalformedRowError{Row: j, Col: d.Col, Fields: len(fields)}
		}
		text := fields[d.Col]
		v, err := ints.ParseInt64(text)
		if err != nil {
			return &InvalidNumberError{Row: j, Col: d.Col, Text: text, Err: err}
		}
		if !row[i].Fold(v) {
			return &OverflowError{Row: j, Col: d.Col, Value: v}
		}
	}
	return nil
}

// Results computes every directive's output value for key, in directive order.
func (t *Table) Results(key string) ([]int64, error) {
	g, ok := t.lookup(xxh3.HashString(key), key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	out := make([]int64, len(t.directives))
	for i := range t.directives {
		v, err := t.result(t.groups[g], i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (t *Table) result(g group, i int) (int64, error) {
	d := t.directives[i]
	a := &g.row[i]

	var (
		v  int64
		ok bool
	)
	switch d.Op {
	case OpSum:
		return a.Sum, nil
	case OpMax:
		v, ok = a.Max()
	case OpMin:
		v, ok = a.Min()
	case OpAvg:
		if v, ok = a.Avg(); !ok {
			return 0, &DivisionByZeroError{Key: g.key, Directive: d}
		}
	}
	if !ok {
		return 0, &EmptyAccumulatorError{Key: g.key, Directive: d}
	}
	return v, nil
}
