package pivot

import (
	"strconv"
	"strings"
)

// Config is the validated form of the command-line arguments: the pivot
// column and the ordered directive list. Both are read-only once built.
type Config struct {
	Pivot      int
	Directives []Directive
}

// ParseArgs validates the positional arguments `<pivot> <op:col>...` and
// returns the pivot column with its directives. args excludes the program
// name. Errors are *ArgumentCountError or *ArgumentParseError.
func ParseArgs(args []string) (Config, error) {
	if len(args) < 2 {
		return Config{}, &ArgumentCountError{Got: len(args)}
	}

	pivot, ok := parseIndex(args[0])
	if !ok {
		return Config{}, &ArgumentParseError{
			Arg:    args[0],
			Reason: "first argument must be the pivot column number, indexed from 0",
		}
	}

	dirs := make([]Directive, 0, len(args)-1)
	for _, tok := range args[1:] {
		d, err := parseDirective(tok)
		if err != nil {
			return Config{}, err
		}
		dirs = append(dirs, d)
	}
	return Config{Pivot: pivot, Directives: dirs}, nil
}

func parseDirective(tok string) (Directive, error) {
	parts := strings.Split(tok, ":")
	if len(parts) != 2 {
		return Directive{}, &ArgumentParseError{Arg: tok, Reason: "column parameters must be in the form op:index"}
	}
	col, ok := parseIndex(parts[1])
	if !ok {
		return Directive{}, &ArgumentParseError{Arg: tok, Reason: "column parameters must be in the form op:index"}
	}
	op, ok := ParseOp(parts[0])
	if !ok {
		return Directive{}, &ArgumentParseError{Arg: parts[0], Reason: "the valid operators are: sum, max, min, avg"}
	}
	return Directive{Op: op, Col: col}, nil
}

// parseIndex accepts non-negative decimal integers only.
func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
