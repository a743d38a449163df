// Package watch reports changes to a fixed set of files, batched so that a
// burst of writes produces a single event.
//
// The parent directory of each file is watched rather than the file itself,
// so editors that save by renaming a temporary file over the original are
// still seen.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Default debounce settings.
const (
	DefaultQuiet   = 200 * time.Millisecond
	DefaultMaxWait = 2 * time.Second
)

// Event is a batch of changed files.
type Event struct {
	Paths []string
	Time  time.Time
}

// Options configures a [Watcher].
type Options struct {
	// Quiet is how long the files must stay unchanged before an event fires.
	Quiet time.Duration
	// MaxWait caps how long a continuous stream of writes can delay an event.
	MaxWait time.Duration
	Logger  *log.Logger
}

// Watcher watches files for changes.
type Watcher struct {
	fsw    *fsnotify.Watcher
	files  map[string]bool
	opts   Options
	events chan Event
}

// New starts watching paths. Paths are made absolute; the files need not
// exist yet but their directories must.
func New(paths []string, opts Options) (*Watcher, error) {
	if opts.Quiet <= 0 {
		opts.Quiet = DefaultQuiet
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{fsw: fsw, files: make(map[string]bool), opts: opts, events: make(chan Event, 1)}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Events returns the debounced change events. The channel is closed when
// Run returns.
func (w *Watcher) Events() <-chan Event { return w.events }

// Run forwards changes until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) {
	raw := make(chan string)
	go func() {
		defer close(raw)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				name, err := filepath.Abs(ev.Name)
				if err != nil || !w.files[name] {
					continue
				}
				select {
				case raw <- name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.opts.Logger.Warn("watcher error", "err", err)
			}
		}
	}()

	for ev := range Debounce(ctx, raw, w.opts.Quiet, w.opts.MaxWait) {
		w.opts.Logger.Debug("files changed", "paths", ev.Paths)
		select {
		case w.events <- ev:
		case <-ctx.Done():
		}
	}
	w.fsw.Close()
	close(w.events)
}

// Debounce batches names from in. A batch is emitted once no name has
// arrived for quiet, or maxWait after its first name, whichever is sooner.
// Names within a batch are unique and sorted. Pending names are flushed when
// in closes; they are dropped when ctx is done. The output closes after in
// closes or ctx is done.
func Debounce(ctx context.Context, in <-chan string, quiet, maxWait time.Duration) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)

		pending := make(map[string]bool)
		var quietC, maxC <-chan time.Time
		var quietT, maxT *time.Timer
		stop := func() {
			if quietT != nil {
				quietT.Stop()
			}
			if maxT != nil {
				maxT.Stop()
			}
			quietC, maxC = nil, nil
		}
		flush := func() bool {
			stop()
			if len(pending) == 0 {
				return true
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			select {
			case out <- Event{Paths: paths, Time: time.Now()}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case name, ok := <-in:
				if !ok {
					flush()
					return
				}
				pending[name] = true
				if quietT != nil {
					quietT.Stop()
				}
				quietT = time.NewTimer(quiet)
				quietC = quietT.C
				if maxC == nil {
					maxT = time.NewTimer(maxWait)
					maxC = maxT.C
				}
			case <-quietC:
				if !flush() {
					return
				}
			case <-maxC:
				if !flush() {
					return
				}
			}
		}
	}()
	return out
}
