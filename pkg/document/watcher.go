package document

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay collapses the bursts of events editors produce on save
const DebounceDelay = 100 * time.Millisecond

// Watcher reloads a FileSource when the file changes on disk
type Watcher struct {
	source   *FileSource
	watcher  *fsnotify.Watcher
	onChange func([]byte)
	logger   *slog.Logger
	delay    time.Duration
}

// NewWatcher creates a watcher for source. The parent directory is watched
// so the document survives being replaced by rename.
func NewWatcher(source *FileSource, logger *slog.Logger) (*Watcher, error) {
	if source.Path == "" {
		return nil, ErrEmptyPath
	}
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(source.Path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch document directory: %w", err)
	}

	return &Watcher{
		source:  source,
		watcher: watcher,
		logger:  logger,
		delay:   DebounceDelay,
	}, nil
}

// OnChange registers a callback to be called with the new document
func (w *Watcher) OnChange(fn func([]byte)) {
	w.onChange = fn
}

// Start watches until ctx is cancelled
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("Starting document watcher", "path", w.source.Path)

	debounceTimer := time.NewTimer(0)
	debounceTimer.Stop()
	target := filepath.Clean(w.source.Path)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Document watcher stopped")
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounceTimer.Reset(w.delay)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Document watcher error", "error", err)

		case <-debounceTimer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	data, err := w.readChanged(ctx)
	if err != nil {
		w.logger.Error("Failed to reload document", "error", err)
		return
	}
	if data == nil {
		w.logger.Debug("Document unchanged, skipping reload")
		return
	}
	w.logger.Info("Document reloaded", "bytes", len(data))
	if w.onChange != nil {
		w.onChange(data)
	}
}

// readChanged returns nil when the file still holds what the console
// itself last loaded or wrote.
func (w *Watcher) readChanged(ctx context.Context) ([]byte, error) {
	last := w.source.lastSeen()
	data, err := w.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if last != nil && bytes.Equal(last, data) {
		return nil, nil
	}
	return data, nil
}

// Close stops the watcher
func (w *Watcher) Close() error {
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
