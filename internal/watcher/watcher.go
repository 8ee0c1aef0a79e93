package watcher

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/brewcat/internal/logging"
)

const defaultDebounce = 2 * time.Second

// Config holds the parameters for a Watcher.
type Config struct {
	// Roots are the store roots to watch. Roots that do not exist are
	// skipped, so a prefix without a Caskroom is fine.
	Roots []string

	// Debounce is the quiet period after the last event before OnChange
	// fires. Zero or negative values fall back to two seconds.
	Debounce time.Duration

	// OnChange receives the deduplicated list of changed paths. Errors are
	// logged and do not stop the watcher.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher monitors store roots and fires a debounced callback on change.
// Run must be called exactly once.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	roots    map[string]bool
	debounce time.Duration
	started  atomic.Bool
}

// New creates a Watcher and registers the roots and their package folders.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		roots:    make(map[string]bool),
		debounce: debounce,
	}

	for _, root := range cfg.Roots {
		if err := w.addRoot(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	if len(w.roots) == 0 {
		fsw.Close()
		return nil, errors.New("no store roots to watch")
	}

	return w, nil
}

// addRoot watches root and each package folder directly below it.
func (w *Watcher) addRoot(root string) error {
	log := logging.Get("watcher")
	root = filepath.Clean(root)

	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("store root missing, not watching", "root", root)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", root, err)
	}

	if err := w.fsw.Add(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	w.roots[root] = true

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := w.fsw.Add(path); err != nil {
			log.Warn("cannot watch package folder", "path", path, "error", err)
		}
	}

	log.Debug("watching store root", "root", root, "packages", len(entries))
	return nil
}

// Roots returns the store roots being watched.
func (w *Watcher) Roots() []string {
	return slices.Sorted(maps.Keys(w.roots))
}

// Run blocks until ctx is cancelled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when the event source breaks.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watcher: Run called more than once")
	}
	log := logging.Get("watcher")

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		// A scan can outlast the debounce window; retry later instead of
		// stacking callbacks.
		if !running.CompareAndSwap(false, true) {
			log.Debug("previous rescan still running, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		log.Info("store changed", "paths", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				log.Error("change handler failed", "error", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			log.Warn("failed to close fsnotify watcher", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watcher: event channel closed unexpectedly")
			}
			if strings.HasPrefix(filepath.Base(evt.Name), ".") {
				continue
			}

			// New package folders need their own watch so version changes
			// inside them are seen.
			if evt.Has(fsnotify.Create) && w.roots[filepath.Dir(evt.Name)] {
				w.maybeAddDir(evt.Name)
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watcher: error channel closed unexpectedly")
			}
			if isFatal(err) {
				return fmt.Errorf("watcher: fatal fsnotify error: %w", err)
			}
			log.Warn("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		logging.Get("watcher").Warn("cannot watch new package folder", "path", path, "error", err)
	}
}

// isFatal reports whether err means the kernel ran out of watch resources.
func isFatal(err error) bool {
	return errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}
