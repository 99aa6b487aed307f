package schemes

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File is a Provider backed by a pattern file on disk. The file is re-read
// whenever it changes; if a reload fails the last good value is kept.
type File struct {
	path     string
	value    Dynamic
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	onReload func(string)
	done     chan struct{}
	wg       sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// FileOption configures a File provider.
type FileOption func(*File)

// WithLogger sets the logger used to report reload failures.
func WithLogger(logger *slog.Logger) FileOption {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithReloadHook registers a callback invoked after every successful reload.
func WithReloadHook(fn func(patterns string)) FileOption {
	return func(f *File) {
		f.onReload = fn
	}
}

// NewFile reads path and starts watching it for changes. Close must be
// called to release the watcher.
func NewFile(path string, opts ...FileOption) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve scheme file path: %w", err)
	}

	f := &File{
		path:   absPath,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}

	if err := f.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	// Watch the directory: editors and config management tools replace files
	// by rename, which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch scheme file directory: %w", err)
	}
	f.watcher = watcher

	f.wg.Add(1)
	go f.loop()

	return f, nil
}

// Get returns the most recently loaded pattern list.
func (f *File) Get() string {
	return f.value.Get()
}

// Path returns the absolute path of the watched file.
func (f *File) Path() string {
	return f.path
}

// Reload re-reads the file immediately.
func (f *File) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read scheme file: %w", err)
	}

	patterns := string(data)
	if _, err := Compile(patterns); err != nil {
		f.logger.Warn("scheme file contains invalid patterns", "path", f.path, "error", err)
	}
	f.value.Set(patterns)

	if f.onReload != nil {
		f.onReload(patterns)
	}
	return nil
}

// Close stops watching the file.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		close(f.done)
		f.closeErr = f.watcher.Close()
		f.wg.Wait()
	})
	return f.closeErr
}

func (f *File) loop() {
	defer f.wg.Done()
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			f.handleEvent(ev)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("scheme file watcher error", "path", f.path, "error", err)
		}
	}
}

func (f *File) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != f.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	if err := f.Reload(); err != nil {
		f.logger.Warn("scheme file reload failed; keeping previous patterns", "path", f.path, "error", err)
		return
	}
	f.logger.Debug("scheme file reloaded", "path", f.path)
}
