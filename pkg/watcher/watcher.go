package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ritzau/concept-mapper/pkg/finder"
	"github.com/ritzau/concept-mapper/pkg/logging"
)

// ChangeEvent represents a batch of changed input files
type ChangeEvent struct {
	Paths     []string
	Timestamp time.Time
}

// FileWatcher watches text inputs for changes. A watched file is tracked
// through its directory so editors that replace files on save are seen.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	input   string
	isDir   bool
	events  chan ChangeEvent
	mu      sync.Mutex
	stopped bool
}

// NewFileWatcher creates a watcher for an input file or directory
func NewFileWatcher(input string) (*FileWatcher, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch input: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}

	return &FileWatcher{
		watcher: watcher,
		input:   filepath.Clean(abs),
		isDir:   info.IsDir(),
		events:  make(chan ChangeEvent, 100),
	}, nil
}

// Start begins watching for file changes. A directory is watched with all
// of its non-hidden subdirectories, matching what the finder reads.
func (fw *FileWatcher) Start(ctx context.Context) error {
	if !fw.isDir {
		dir := filepath.Dir(fw.input)
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	} else if err := fw.addTree(fw.input); err != nil {
		return err
	}

	logging.Info("started watching input", "path", fw.input)

	go fw.processEvents(ctx)
	return nil
}

// addTree watches root and every non-hidden directory below it
func (fw *FileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != fw.input && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		logging.Trace("watching directory", "path", path)
		return nil
	})
}

// hidden reports whether name lies in a hidden directory below the input
func (fw *FileWatcher) hidden(name string) bool {
	rel, err := filepath.Rel(fw.input, filepath.Dir(name))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// relevant reports whether a file system event concerns a watched input
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(event.Name)
	if fw.isDir {
		return finder.IsTextInput(name) && !fw.hidden(name)
	}
	return name == fw.input
}

// processEvents forwards relevant events, batching bursts of writes
func (fw *FileWatcher) processEvents(ctx context.Context) {
	var pending []string

	flushTimer := time.NewTimer(time.Hour)
	flushTimer.Stop()

	flush := func() {
		if len(pending) == 0 {
			return
		}
		select {
		case fw.events <- ChangeEvent{Paths: pending, Timestamp: time.Now()}:
		case <-ctx.Done():
		}
		pending = nil
	}

	defer func() {
		fw.Stop()
		close(fw.events)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				flush()
				return
			}
			if fw.isDir && event.Has(fsnotify.Create) && !fw.hidden(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
					if err := fw.addTree(event.Name); err != nil {
						logging.Warn("could not watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !fw.relevant(event) {
				continue
			}
			logging.Trace("input changed", "path", event.Name, "op", event.Op.String())
			pending = append(pending, filepath.Clean(event.Name))
			flushTimer.Reset(100 * time.Millisecond)

		case <-flushTimer.C:
			flush()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error", "error", err)
		}
	}
}

// Events returns the channel of change events. It is closed when the
// watcher stops.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.stopped {
		return nil
	}
	fw.stopped = true
	return fw.watcher.Close()
}
