package pivot

import "fmt"

// ArgumentCountError is returned when fewer than a pivot column and one
// directive were supplied.
type ArgumentCountError struct {
	Got int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("need at least two arguments; has %d", e.Got)
}

// ArgumentParseError reports a pivot column, column index or operator token
// that could not be understood.
type ArgumentParseError struct {
	Arg    string
	Reason string
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("%s, don't understand %s", e.Reason, e.Arg)
}

// MalformedRowError means a record has too few fields for the pivot column
// or a directive column.
type MalformedRowError struct {
	Row    int
	Col    int
	Fields int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("insufficient columns in CSV at row %d (need column %d, have %d fields)", e.Row, e.Col, e.Fields)
}

// InvalidNumberError means a directive column did not hold a signed 64-bit integer.
type InvalidNumberError struct {
	Row  int
	Col  int
	Text string
	Err  error
}

func (e *InvalidNumberError) Error() string {
	return fmt.Sprintf("failed to parse number %s at CSV row %d", e.Text, e.Row)
}

func (e *InvalidNumberError) Unwrap() error { return e.Err }

// OverflowError means folding a value pushed a running sum past the int64 range.
type OverflowError struct {
	Row   int
	Col   int
	Value int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("sum overflows int64 adding %d from column %d at CSV row %d", e.Value, e.Col, e.Row)
}

// DivisionByZeroError is returned when an average is requested from an
// accumulator that never received a value.
type DivisionByZeroError struct {
	Key       string
	Directive Directive
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero computing %s for key %q", e.Directive, e.Key)
}

// EmptyAccumulatorError is returned when max or min is requested from an
// accumulator that never received a value.
type EmptyAccumulatorError struct {
	Key       string
	Directive Directive
}

func (e *EmptyAccumulatorError) Error() string {
	return fmt.Sprintf("no values folded for %s under key %q", e.Directive, e.Key)
}

// KeyNotFoundError is returned when results are requested for a key the
// table never saw.
type KeyNotFoundError struct {
	Key string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("no group for key %q", e.Key)
}
