// Package textenc converts input text to UTF-8 before it reaches the CSV
// decoder.
package textenc

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewReader wraps r so that it yields UTF-8.
//
// For "" and "utf-8" (any case) the bytes pass through unchanged unless the
// input starts with a byte order mark: the mark is removed and a UTF-16 BOM
// switches to UTF-16 decoding. Without a BOM invalid UTF-8 is not rewritten;
// the CSV decoder drops records that carry it. Any other WHATWG encoding label, e.g.
// "windows-1250", "iso-8859-2" or "latin1", is decoded.
func NewReader(r io.Reader, name string) (io.Reader, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if label == "" || label == "utf-8" || label == "utf8" {
		return transform.NewReader(r, unicode.BOMOverride(transform.Nop)), nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("textenc: unknown encoding %q: %w", name, err)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
