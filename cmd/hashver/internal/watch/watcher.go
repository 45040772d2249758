package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"github.com/albertocavalcante/hashver/internal/telemetry"
	"github.com/albertocavalcante/hashver/pkg/util"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 500 * time.Millisecond

// RecomputeFunc computes the current hashversions, keyed by output key.
type RecomputeFunc func(ctx context.Context) (map[string]string, error)

// Config configures the watcher.
type Config struct {
	Root     string
	Debounce time.Duration
	// Ignore holds glob patterns matched against slash-separated paths
	// relative to Root. A matching directory is not watched at all.
	Ignore    []string
	Verbose   bool
	NoColor   bool
	JSON      bool
	Writer    io.Writer
	Recompute RecomputeFunc
}

// Watcher watches project sources and reports hashversion changes.
type Watcher struct {
	config    Config
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    *Logger
	ignore    []glob.Glob

	// recomputeMu prevents concurrent recomputations
	recomputeMu sync.Mutex
	ctx         context.Context
	versions    map[string]string
}

// New creates a new watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Recompute == nil {
		return nil, errors.New("watch: Recompute must be set")
	}

	ignore, err := compileIgnore(cfg.Ignore)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	logger := NewLogger(LoggerConfig{
		Writer:  cfg.Writer,
		Verbose: cfg.Verbose,
		NoColor: cfg.NoColor,
		JSON:    cfg.JSON,
	})

	return &Watcher{
		config:    cfg,
		fsWatcher: fsWatcher,
		logger:    logger,
		ignore:    ignore,
		ctx:       context.Background(),
	}, nil
}

func compileIgnore(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Run computes the initial hashversions and then recomputes them after
// every debounced batch of changes. It blocks until the context is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.ctx = ctx

	versions, err := w.config.Recompute(ctx)
	if err != nil {
		return fmt.Errorf("initial computation failed: %w", err)
	}
	w.versions = versions

	window := w.config.Debounce
	if window <= 0 {
		window = DefaultDebounce
	}
	w.debouncer = NewDebouncer(window, w.handleChangedPaths)
	defer w.debouncer.Stop()

	if err := w.addRecursive(w.config.Root); err != nil {
		return fmt.Errorf("failed to watch project: %w", err)
	}

	w.logger.Ready(len(versions), w.config.Root)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown()
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err)
		}
	}
}

// ignored reports whether path, absolute or relative to Root, matches an
// ignore pattern. A directory "target" is matched by "target/**" too.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range w.ignore {
		if g.Match(rel) || g.Match(rel+"/") {
			return true
		}
	}
	return false
}

// addRecursive adds a directory and all subdirectories to the watcher.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				if w.config.Verbose {
					w.logger.Error(fmt.Errorf("permission denied: %s", path))
				}
				return nil
			}
			w.logger.Error(fmt.Errorf("walk error at %s: %w", path, err))
			return nil
		}

		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}

		if err := w.fsWatcher.Add(path); err != nil {
			if isWatchLimitError(err) {
				return fmt.Errorf("%w for %s: %v\n"+
					"Increase limit with: sudo sysctl fs.inotify.max_user_watches=524288",
					ErrWatchLimitReached, path, err)
			}
			if w.config.Verbose {
				w.logger.Error(fmt.Errorf("failed to watch %s: %w", path, err))
			}
		}
		return nil
	})
}

// isWatchLimitError checks if an error is due to inotify watch limits.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "too many open files")
}

// changeType maps an fsnotify operation to a change type. Chmod-only
// events report false.
func changeType(event fsnotify.Event) (ChangeType, bool) {
	switch {
	case event.Has(fsnotify.Create):
		return ChangeAdded, true
	case event.Has(fsnotify.Write):
		return ChangeModified, true
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		return ChangeDeleted, true
	default:
		return "", false
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.ignored(path) {
		return
	}

	change, ok := changeType(event)
	if !ok {
		return
	}
	telemetry.WatcherEvents.Inc()

	if change == ChangeAdded {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(path); err != nil {
				w.logger.Error(fmt.Errorf("failed to watch new directory %s: %w", path, err))
			}
		}
	}

	w.logger.FileChanged(path, change)

	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return
	}
	w.debouncer.Add(filepath.ToSlash(rel))
}

// handleChangedPaths is called when the debouncer flushes. It recomputes
// all hashversions and logs the ones that changed.
func (w *Watcher) handleChangedPaths(paths []string) {
	if len(paths) == 0 {
		return
	}

	w.recomputeMu.Lock()
	defer w.recomputeMu.Unlock()

	w.logger.Recomputing(paths)

	versions, err := w.config.Recompute(w.ctx)
	if err != nil {
		w.logger.Error(fmt.Errorf("recompute failed: %w", err))
		return
	}

	changed := util.ChangedKeys(w.versions, versions)
	if len(changed) == 0 {
		w.logger.Unchanged()
	}
	for _, key := range changed {
		w.logger.VersionChanged(key, w.versions[key], versions[key])
	}
	w.versions = versions
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}

// ErrWatchLimitReached is returned when the OS watch limit is exceeded.
var ErrWatchLimitReached = errors.New("filesystem watch limit reached")
