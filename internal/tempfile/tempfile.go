// Package tempfile allocates unique spill-file names under a working
// directory on an afero.Fs. It is the Go analogue of the original
// tool's tempFile(), which built names from hostname + pid + a counter;
// here a per-run UUID plus an atomic counter gives the same collision-free
// guarantee across concurrent workers and concurrent invocations sharing a
// directory.
package tempfile

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Allocator hands out unique file paths within a directory.
type Allocator struct {
	fs      afero.Fs
	dir     string
	runID   string
	counter uint64
}

// New creates (if needed) dir on fs and returns an Allocator that names
// files uniquely within it for the lifetime of one run.
func New(fs afero.Fs, dir string) (*Allocator, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tempfile: create spill directory %s: %w", dir, err)
	}
	return &Allocator{fs: fs, dir: dir, runID: uuid.NewString()}, nil
}

// Next returns a fresh, never-before-returned file path under the
// allocator's directory.
func (a *Allocator) Next(namePart string) string {
	n := atomic.AddUint64(&a.counter, 1)
	name := fmt.Sprintf("%s_%s_%d", namePart, a.runID, n)
	return filepath.Join(a.dir, name)
}

// RemoveAll deletes the allocator's working directory and everything in
// it, for use once every spill file has already been consumed and
// individually removed, as a final cleanup safety net.
func (a *Allocator) RemoveAll() error {
	return a.fs.RemoveAll(a.dir)
}
