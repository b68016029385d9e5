// Package ints parses integer values out of text fields.
package ints

import (
	"errors"
	"strconv"
)

// ErrEmpty is returned for an empty field.
var ErrEmpty = errors.New("empty field")

// ParseInt64 parses s as a base-10 signed 64-bit integer.
//
// The whole field must be the number: surrounding spaces, thousands
// separators and fractions are rejected. An optional leading sign is allowed.
// Errors from strconv are returned as-is so callers can test for
// strconv.ErrRange / strconv.ErrSyntax.
func ParseInt64(s string) (int64, error) {
	if s == "" {
		return 0, ErrEmpty
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}
