package pivot

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"strings"
	"testing"
)

// split turns "x,1\ny,2\n" into records without going through a CSV decoder.
func split(in string) [][]string {
	var out [][]string
	for _, line := range strings.Split(strings.TrimSuffix(in, "\n"), "\n") {
		out = append(out, strings.Split(line, ","))
	}
	return out
}

func mustRun(t *testing.T, args []string, in string) *Table {
	t.Helper()
	cfg, err := ParseArgs(args)
	if err != nil {
		t.Fatalf("ParseArgs(%q) error = %v", args, err)
	}
	tbl, err := Run(cfg.Pivot, cfg.Directives, Slice(split(in)))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return tbl
}

func results(t *testing.T, tbl *Table) map[string][]int64 {
	t.Helper()
	out := make(map[string][]int64, tbl.Len())
	for _, k := range tbl.Keys() {
		vals, err := tbl.Results(k)
		if err != nil {
			t.Fatalf("Results(%q) error = %v", k, err)
		}
		out[k] = vals
	}
	return out
}

func TestRun_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		in       string
		wantKeys []string
		want     map[string][]int64
	}{
		{
			name:     "sum groups in first-seen order",
			args:     []string{"0", "sum:1"},
			in:       "x,1\ny,2\nx,3\n",
			wantKeys: []string{"x", "y"},
			want:     map[string][]int64{"x": {4}, "y": {2}},
		},
		{
			name:     "average",
			args:     []string{"0", "avg:1"},
			in:       "a,10\na,20\n",
			wantKeys: []string{"a"},
			want:     map[string][]int64{"a": {15}},
		},
		{
			name:     "max and min on the same column",
			args:     []string{"0", "max:1", "min:1"},
			in:       "a,5\na,-2\na,9\n",
			wantKeys: []string{"a"},
			want:     map[string][]int64{"a": {9, -2}},
		},
		{
			name:     "pivot on a later column",
			args:     []string{"2", "sum:0", "avg:1"},
			in:       "1,10,b\n2,20,a\n3,31,b\n",
			wantKeys: []string{"b", "a"},
			want:     map[string][]int64{"b": {4, 20}, "a": {2, 20}},
		},
		{
			name:     "keys are exact text",
			args:     []string{"0", "sum:1"},
			in:       "a,1\nA,2\na ,3\n",
			wantKeys: []string{"a", "A", "a "},
			want:     map[string][]int64{"a": {1}, "A": {2}, "a ": {3}},
		},
		{
			name:     "empty pivot field is a key",
			args:     []string{"0", "sum:1"},
			in:       ",1\n,2\n",
			wantKeys: []string{""},
			want:     map[string][]int64{"": {3}},
		},
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tbl := mustRun(t, tt.args, tt.in)
			if got := tbl.Keys(); !reflect.DeepEqual(got, tt.wantKeys) {
				t.Fatalf("Keys() = %q, want %q", got, tt.wantKeys)
			}
			if got := results(t, tbl); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("results = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid number cites row and text", func(t *testing.T) {
		t.Parallel()
		_, err := Run(0, []Directive{{Op: OpSum, Col: 1}}, Slice(split("a,foo\n")))
		var ne *InvalidNumberError
		if !errors.As(err, &ne) {
			t.Fatalf("Run() error = %v, want *InvalidNumberError", err)
		}
		if ne.Row != 0 || ne.Text != "foo" {
			t.Fatalf("InvalidNumberError = %+v, want Row=0 Text=foo", ne)
		}
		if want := "failed to parse number foo at CSV row 0"; err.Error() != want {
			t.Fatalf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("short pivot row", func(t *testing.T) {
		t.Parallel()
		_, err := Run(2, []Directive{{Op: OpSum, Col: 0}}, Slice(split("1,2,a\n3,4\n")))
		var me *MalformedRowError
		if !errors.As(err, &me) {
			t.Fatalf("Run() error = %v, want *MalformedRowError", err)
		}
		if me.Row != 1 || me.Col != 2 || me.Fields != 2 {
			t.Fatalf("MalformedRowError = %+v, want Row=1 Col=2 Fields=2", me)
		}
	})

	// A record exactly one field short must fail, not be accepted.
	t.Run("column equal to field count", func(t *testing.T) {
		t.Parallel()
		_, err := Run(0, []Directive{{Op: OpSum, Col: 1}}, Slice(split("a,1\nb\n")))
		var me *MalformedRowError
		if !errors.As(err, &me) || me.Row != 1 {
			t.Fatalf("Run() error = %v, want *MalformedRowError at row 1", err)
		}
	})

	t.Run("no table after error", func(t *testing.T) {
		t.Parallel()
		tbl, err := Run(0, []Directive{{Op: OpSum, Col: 1}}, Slice(split("a,1\nb,2\nc,x\n")))
		if err == nil || tbl != nil {
			t.Fatalf("Run() = %v, %v; want nil table and an error", tbl, err)
		}
	})

	t.Run("sum overflow", func(t *testing.T) {
		t.Parallel()
		_, err := Run(0, []Directive{{Op: OpSum, Col: 1}}, Slice(split("a,9223372036854775807\na,1\n")))
		var oe *OverflowError
		if !errors.As(err, &oe) || oe.Row != 1 {
			t.Fatalf("Run() error = %v, want *OverflowError at row 1", err)
		}
	})
}

// Row indices come from the sequence, not from counting yielded records, so
// errors still line up with the input when the decoder skipped records.
func TestRun_RowIndexFromSequence(t *testing.T) {
	t.Parallel()

	seq := func(yield func(int, []string) bool) {
		if !yield(0, []string{"a", "1"}) {
			return
		}
		// 1 and 2 were dropped by the decoder.
		yield(3, []string{"a", "bad"})
	}
	_, err := Run(0, []Directive{{Op: OpSum, Col: 1}}, iter.Seq2[int, []string](seq))
	var ne *InvalidNumberError
	if !errors.As(err, &ne) || ne.Row != 3 {
		t.Fatalf("Run() error = %v, want *InvalidNumberError at row 3", err)
	}
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "k%d,%d\n", (i*7)%53, i)
	}
	in := sb.String()
	args := []string{"0", "sum:1", "max:1", "min:1", "avg:1"}

	first := mustRun(t, args, in)
	second := mustRun(t, args, in)
	if !reflect.DeepEqual(first.Keys(), second.Keys()) {
		t.Fatal("key order differs between identical runs")
	}
	if !reflect.DeepEqual(results(t, first), results(t, second)) {
		t.Fatal("results differ between identical runs")
	}
	if first.Len() != 53 {
		t.Fatalf("Len() = %d, want 53", first.Len())
	}
}

func TestTable_ResultErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		op     Op
		target any
	}{
		{"avg of nothing", OpAvg, new(*DivisionByZeroError)},
		{"max of nothing", OpMax, new(*EmptyAccumulatorError)},
		{"min of nothing", OpMin, new(*EmptyAccumulatorError)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tbl := NewTable(0, []Directive{{Op: tt.op, Col: 1}})
			// Force a group with untouched accumulators.
			tbl.groupFor("k")
			_, err := tbl.Results("k")
			if !errors.As(err, tt.target) {
				t.Fatalf("Results(k) error = %v, want %T", err, tt.target)
			}
			if !strings.Contains(err.Error(), `"k"`) {
				t.Fatalf("Results(k) error = %q, want key in message", err)
			}
		})
	}
}

func TestTable_ResultsUnknownKey(t *testing.T) {
	t.Parallel()

	tbl := mustRun(t, []string{"0", "sum:1"}, "a,1\n")
	_, err := tbl.Results("missing")
	var nf *KeyNotFoundError
	if !errors.As(err, &nf) || nf.Key != "missing" {
		t.Fatalf("Results(missing) error = %v, want *KeyNotFoundError", err)
	}
	var ea *EmptyAccumulatorError
	if errors.As(err, &ea) {
		t.Fatalf("Results(missing) error = %v, must not be *EmptyAccumulatorError", err)
	}
}

func BenchmarkTableAdd(b *testing.B) {
	tbl := NewTable(0, []Directive{{Op: OpSum, Col: 1}, {Op: OpAvg, Col: 2}})
	keys := make([]string, 256)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := tbl.Add(i, []string{keys[i%len(keys)], "12", "-7"}); err != nil {
			b.Fatal(err)
		}
	}
}
