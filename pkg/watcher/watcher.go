// Package watcher reports changes to a single file, using fsnotify where
// the filesystem supports it and stat polling elsewhere.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/vanderheijden86/candlecourse/pkg/debug"
)

// DefaultPollInterval is how often a polling watcher stats the file.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("watched file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets how long a burst of writes is coalesced.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.interval = d }
}

// WithOnChange registers a callback run after each debounced change.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError registers a callback for removal and stat errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) { w.onError = fn }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.log = l }
}

// WithForcePoll skips fsnotify entirely.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) { w.forcePoll = force }
}

// stamp is what polling compares between ticks.
type stamp struct {
	mtime time.Time
	size  int64
}

func (s stamp) exists() bool { return !s.mtime.IsZero() }

func (s stamp) differs(o stamp) bool {
	return o.mtime.After(s.mtime) || o.size != s.size
}

// Watcher signals changes to one file. Writes are debounced so an editor's
// save (truncate, write, rename) produces a single notification.
type Watcher struct {
	path      string
	debounce  time.Duration
	interval  time.Duration
	forcePoll bool
	onChange  func()
	onError   func(error)
	log       *zap.Logger

	mu        sync.RWMutex
	running   bool
	polling   bool
	fsType    FilesystemType
	last      stamp
	notify    *fsnotify.Watcher
	debouncer *Debouncer
	cancel    context.CancelFunc
	changed   chan struct{}
}

// NewWatcher returns a stopped watcher for path. The file need not exist yet.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounceDuration,
		interval: DefaultPollInterval,
		onChange: func() {},
		onError:  func(error) {},
		changed:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	w.log = debug.Or(w.log).Named("watcher")
	return w, nil
}

// Start begins watching. fsnotify watches the parent directory so atomic
// renames are seen; remote filesystems, CANDLE_FORCE_POLL and WithForcePoll
// select polling instead, as does any fsnotify setup failure.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return ErrAlreadyStarted
	}

	st, err := statFile(w.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	w.last = st

	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = w.wantPolling()

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	if !w.polling {
		if nw, err := w.openNotify(); err != nil {
			w.log.Debug("fsnotify unavailable, polling", zap.Error(err))
			w.polling = true
		} else {
			w.notify = nw
			go w.runNotify(ctx, nw.Events, nw.Errors)
		}
	}
	if w.polling {
		go w.runPoll(ctx)
	}

	w.running = true
	w.log.Debug("watching file",
		zap.String("path", w.path),
		zap.Bool("polling", w.polling),
		zap.Stringer("fs", w.fsType))
	return nil
}

func (w *Watcher) wantPolling() bool {
	return w.forcePoll ||
		envBool("CANDLE_FORCE_POLL") || envBool("CANDLE_FORCE_POLLING") ||
		isRemoteFilesystem(w.fsType)
}

func (w *Watcher) openNotify() (*fsnotify.Watcher, error) {
	nw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := nw.Add(filepath.Dir(w.path)); err != nil {
		nw.Close()
		return nil, err
	}
	return nw, nil
}

// Stop ends watching and drops any pending debounced change. Changed stays
// open; Start may be called again.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.cancel()
	if w.notify != nil {
		w.notify.Close()
		w.notify = nil
	}
	w.debouncer.Cancel()
	w.running = false
}

// IsPolling reports whether the last Start chose polling.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Changed receives once per debounced change. Bursts while nobody is
// receiving collapse into one pending signal.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Path returns the absolute watched path.
func (w *Watcher) Path() string {
	return w.path
}

// FilesystemType returns the classification made by the last Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

func (w *Watcher) PollInterval() time.Duration {
	return w.interval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

// statFile maps stat errors onto the package's sentinel errors.
func statFile(path string) (stamp, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return stamp{mtime: info.ModTime(), size: info.Size()}, nil
	case os.IsPermission(err):
		return stamp{}, ErrPermission
	default:
		return stamp{}, err
	}
}

func (w *Watcher) runNotify(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				w.fail(ErrFileRemoved)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.debouncer.Trigger(w.fire)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.fail(err)
		}
	}
}

func (w *Watcher) runPoll(ctx context.Context) {
	tick := time.NewTicker(w.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			w.pollOnce()
		}
	}
}

// pollOnce compares the file with the previous tick. A missing file is only
// an error if it existed before.
func (w *Watcher) pollOnce() {
	st, err := statFile(w.path)

	w.mu.Lock()
	prev := w.last
	if err == nil {
		w.last = st
	}
	w.mu.Unlock()

	switch {
	case errors.Is(err, fs.ErrNotExist):
		if prev.exists() {
			w.fail(ErrFileRemoved)
		}
	case err != nil:
		w.fail(err)
	case prev.differs(st):
		w.debouncer.Trigger(w.fire)
	}
}

func (w *Watcher) fail(err error) {
	w.log.Warn("watch error", zap.String("path", w.path), zap.Error(err))
	w.onError(err)
}

// fire delivers one change unless the watcher was stopped meanwhile.
func (w *Watcher) fire() {
	if !w.IsStarted() {
		return
	}
	w.log.Debug("file changed", zap.String("path", w.path))
	w.onChange()
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
