package backend

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"

	"github.com/atomicstack/runstrip/internal/frequency"
	"github.com/atomicstack/runstrip/internal/logging"
	"github.com/atomicstack/runstrip/internal/logging/events"
)

// ScanFunc returns the names currently found on the search path.
type ScanFunc func() []string

// Refresher rescans the search path once in the background and folds any
// new names into the on-disk frequency store.
type Refresher struct {
	fs   afero.Fs
	path string
	scan ScanFunc

	done  atomic.Bool
	added atomic.Int64
	wg    sync.WaitGroup
}

// StartRefresh launches the refresh worker. The caller never has to wait for
// it; the store file is rewritten once when the scan finishes.
func StartRefresh(ctx context.Context, fs afero.Fs, path string, scan ScanFunc) *Refresher {
	r := &Refresher{fs: fs, path: path, scan: scan}
	r.wg.Add(1)
	go r.run(ctx)
	return r
}

func (r *Refresher) run(ctx context.Context) {
	defer r.wg.Done()
	defer r.done.Store(true)

	names := r.scan()
	if ctx.Err() != nil {
		return
	}

	// Reload so launches recorded since startup survive the rewrite.
	store, err := frequency.Load(r.fs, r.path)
	if err != nil {
		logging.Warn("refresh: %v", err)
		return
	}
	counts := store.Snapshot()
	added := frequency.Merge(counts, names)
	r.added.Store(int64(added))
	if err := frequency.Write(r.fs, r.path, counts); err != nil {
		logging.Warn("refresh: %v", err)
		return
	}
	events.Catalog.Refresh(len(names), added)
}

// Done reports whether the worker has finished.
func (r *Refresher) Done() bool {
	return r.done.Load()
}

// Added returns how many names the refresh appended. Only meaningful once
// Done reports true.
func (r *Refresher) Added() int {
	return int(r.added.Load())
}

// Wait blocks until the worker exits.
func (r *Refresher) Wait() {
	r.wg.Wait()
}
