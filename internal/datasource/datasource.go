// Package datasource abstracts where pivot input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens the input stream for one run.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
