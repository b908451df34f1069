// Package watcher polls directories for changes to schema files.
package watcher

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar"
)

// Op is the kind of a file change.
type Op string

const (
	Create Op = "create"
	Write  Op = "write"
	Remove Op = "remove"
)

// Event represents a file change event.
type Event struct {
	Path string
	Op   Op
}

// DefaultPollInterval is the default polling interval for file change detection.
const DefaultPollInterval = 500 * time.Millisecond

// Watcher watches directories for file changes using a polling approach.
// Files are selected by glob patterns matched against their slash-separated
// path relative to the watched directory.
type Watcher struct {
	dirs         []string
	include      []string // e.g. ["**/*.vs"]
	exclude      []string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func(events []Event)

	mu      sync.Mutex
	pending []Event
	timer   *time.Timer
}

// New creates a new file watcher.
func New(dirs, include, exclude []string, debounce time.Duration, onChange func(events []Event)) *Watcher {
	return &Watcher{
		dirs:         dirs,
		include:      include,
		exclude:      exclude,
		debounce:     debounce,
		pollInterval: DefaultPollInterval,
		onChange:     onChange,
	}
}

// SetPollInterval sets the polling interval for file change detection.
func (w *Watcher) SetPollInterval(d time.Duration) {
	w.pollInterval = d
}

// Files returns the watched files currently on disk, sorted.
func (w *Watcher) Files() []string {
	snap := w.buildSnapshot()
	files := make([]string, 0, len(snap))
	for path := range snap {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// Watch polls for file changes until ctx is done. Changes are delivered in
// batches once no further change was seen for the debounce period.
func (w *Watcher) Watch(ctx context.Context) error {
	snapshot := w.buildSnapshot()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil
		case <-ticker.C:
			newSnapshot := w.buildSnapshot()
			if events := w.diff(snapshot, newSnapshot); len(events) > 0 {
				w.schedule(events)
			}
			snapshot = newSnapshot
		}
	}
}

func (w *Watcher) schedule(events []Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, events...)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	if len(pending) > 0 {
		w.onChange(pending)
	}
}

type fileInfo struct {
	modTime time.Time
	size    int64
}

// matches reports whether the relative slash path rel is watched.
func (w *Watcher) matches(rel string) bool {
	for _, p := range w.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	for _, p := range w.include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) buildSnapshot() map[string]fileInfo {
	snap := make(map[string]fileInfo)
	for _, dir := range w.dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				// Hidden directories (.git) and excluded trees are skipped.
				if path != dir && (strings.HasPrefix(d.Name(), ".") || w.excludedDir(rel)) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.matches(rel) {
				return nil
			}
			if info, err := d.Info(); err == nil {
				snap[path] = fileInfo{modTime: info.ModTime(), size: info.Size()}
			}
			return nil
		})
	}
	return snap
}

func (w *Watcher) excludedDir(rel string) bool {
	for _, p := range w.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) diff(old, new map[string]fileInfo) []Event {
	var events []Event

	// Check for new or modified files
	for path, newInfo := range new {
		if oldInfo, ok := old[path]; ok {
			if !newInfo.modTime.Equal(oldInfo.modTime) || newInfo.size != oldInfo.size {
				events = append(events, Event{Path: path, Op: Write})
			}
		} else {
			events = append(events, Event{Path: path, Op: Create})
		}
	}

	// Check for deleted files
	for path := range old {
		if _, ok := new[path]; !ok {
			events = append(events, Event{Path: path, Op: Remove})
		}
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	return events
}
