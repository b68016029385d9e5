package pivot

import (
	"fmt"
	"strconv"
)

// Op is an aggregate operation applied to one input column.
type Op int

const (
	OpSum Op = iota
	OpMax
	OpMin
	OpAvg
)

var opNames = [...]string{
	OpSum: "sum",
	OpMax: "max",
	OpMin: "min",
	OpAvg: "avg",
}

// String returns the command-line spelling of op.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

// ParseOp maps the exact, case-sensitive operator names sum, max, min and avg.
func ParseOp(s string) (Op, bool) {
	for i, name := range opNames {
		if s == name {
			return Op(i), true
		}
	}
	return 0, false
}

// Directive tells the engine which operation to run over which column.
// Col is zero-based.
type Directive struct {
	Op  Op
	Col int
}

// String renders d as op:col, the same form accepted on the command line.
func (d Directive) String() string {
	return fmt.Sprintf("%s:%d", d.Op, d.Col)
}
