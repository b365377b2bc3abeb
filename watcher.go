package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const followDebounce = 100 * time.Millisecond

// FileChangeMsg is sent when the followed file changes
type FileChangeMsg struct {
	Path    string
	Deleted bool
}

// DebouncedRefreshMsg signals that enough time has passed to read new lines
type DebouncedRefreshMsg struct{}

// Watcher wraps fsnotify to watch the followed file for changes
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
}

// NewWatcher creates a watcher for path. The parent directory is watched
// so the file can be replaced or recreated.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	return &Watcher{watcher: w, path: path}, nil
}

// WatchCmd returns a BubbleTea command that listens for changes to the file
func (w *Watcher) WatchCmd() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}

				if filepath.Clean(event.Name) != w.path {
					continue
				}

				deleted := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
				return FileChangeMsg{Path: event.Name, Deleted: deleted}

			case _, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				continue
			}
		}
	}
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Debouncer coalesces rapid file change events into a single refresh
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
	program  *tea.Program
}

// NewDebouncer creates a new debouncer with the given delay duration
func NewDebouncer(d time.Duration) *Debouncer {
	return &Debouncer{duration: d}
}

// SetProgram sets the BubbleTea program to send messages to
func (d *Debouncer) SetProgram(p *tea.Program) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.program = p
}

// Trigger starts or resets the debounce timer
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		p := d.program
		d.mu.Unlock()
		if p != nil {
			p.Send(DebouncedRefreshMsg{})
		}
	})
}

// Tail reads the complete lines appended to a file since the last read
type Tail struct {
	path    string
	offset  int64
	partial string
}

// NewTail starts tailing path at offset. partial is an unterminated last
// line already consumed before offset.
func NewTail(path string, offset int64, partial string) *Tail {
	return &Tail{path: path, offset: offset, partial: partial}
}

// Read returns the lines completed since the previous call. When the file
// shrank it is read again from the start and truncated is true.
func (t *Tail) Read() (lines []string, truncated bool, err error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false, err
	}

	if info.Size() < t.offset {
		t.offset = 0
		t.partial = ""
		truncated = true
	}

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, truncated, err
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, truncated, err
	}
	t.offset += int64(len(data))

	text := t.partial + string(data)
	parts := strings.Split(text, "\n")
	t.partial = parts[len(parts)-1]

	lines = parts[:len(parts)-1]
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, truncated, nil
}

// Offset returns how many bytes of the file have been consumed
func (t *Tail) Offset() int64 {
	return t.offset
}
