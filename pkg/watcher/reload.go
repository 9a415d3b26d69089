package watcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/curriculum"
)

// Reloader re-reads a curriculum file each time it changes on disk.
type Reloader struct {
	w    *Watcher
	opts curriculum.Options
}

// NewReloader watches the curriculum file at path. Generated lessons are
// rebuilt with opts on every reload.
func NewReloader(path string, opts curriculum.Options, wopts ...WatcherOption) (*Reloader, error) {
	w, err := NewWatcher(path, wopts...)
	if err != nil {
		return nil, err
	}
	return &Reloader{w: w, opts: opts}, nil
}

// Start begins watching.
func (r *Reloader) Start() error { return r.w.Start() }

// Stop stops watching. A pending Next keeps waiting until its context ends.
func (r *Reloader) Stop() { r.w.Stop() }

// Path returns the watched curriculum path.
func (r *Reloader) Path() string { return r.w.Path() }

// Watcher exposes the underlying file watcher.
func (r *Reloader) Watcher() *Watcher { return r.w }

// Next blocks until the file changes, then loads it. A load error leaves the
// caller free to keep its current curriculum and call Next again.
func (r *Reloader) Next(ctx context.Context) (*curriculum.Repository, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.w.Changed():
	}
	repo, err := curriculum.Load(r.w.Path(), r.opts)
	if err != nil {
		r.w.log.Warn("curriculum reload failed", zap.String("path", r.w.Path()), zap.Error(err))
		return nil, err
	}
	return repo, nil
}
