// Package file implements a local filesystem-backed data source, including
// standard input.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Local is a data source that reads one local file, or standard input when
// its path is Stdin.
type Local struct{ path string }

// NewLocal returns a Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open returns a reader over the configured path.
//
// Behavior:
//   - If ctx is already done, Open returns ctx.Err() without touching the
//     filesystem.
//   - For Stdin, Open returns os.Stdin; closing the result does not close the
//     process's standard input.
//   - Otherwise the file is opened; errors are wrapped with the path and keep
//     errors.Is support (e.g. os.ErrNotExist).
//
// Regular files are advised for sequential access where the platform supports it.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if l.path == Stdin {
		adviseSequential(os.Stdin)
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}
