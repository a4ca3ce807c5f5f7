// Package watch reports content changes of individual files.
package watch

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must stay quiet before it is read.
const DefaultSettle = 250 * time.Millisecond

// ChangedHandler is called with the new content of a watched file.
type ChangedHandler func(path string, content []byte)

// Watcher calls a handler whenever a watched file is written with content
// different from what it last saw, so an application can re-import a
// layout edited by another program. Content recorded with Remember is
// treated as already seen, which keeps an application's own writes from
// echoing back. Bursts of events (truncate then write) are coalesced and
// the file is read once it has been quiet for the settle time.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangedHandler
	settle   time.Duration
	mu       sync.Mutex
	watching map[string][]byte      // abs path -> last content seen
	timers   map[string]*time.Timer // pending reads per abs path
	closed   bool
	done     chan struct{}
}

// New creates a watcher and starts its event loop.
func New(onChange ChangedHandler) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		watcher:  fw,
		onChange: onChange,
		settle:   DefaultSettle,
		watching: make(map[string][]byte),
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// SetSettle changes the quiet period. Zero reads on every event.
func (w *Watcher) SetSettle(d time.Duration) {
	w.mu.Lock()
	w.settle = d
	w.mu.Unlock()
}

// WatchFile starts watching a file. Its current content, if any, counts
// as seen.
func (w *Watcher) WatchFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	current, _ := os.ReadFile(abs)

	w.mu.Lock()
	w.watching[abs] = current
	w.mu.Unlock()

	// fsnotify watches directories; editors often replace files by rename
	return w.watcher.Add(filepath.Dir(abs))
}

// StopWatching stops reporting changes of a file.
func (w *Watcher) StopWatching(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	delete(w.watching, abs)
	w.mu.Unlock()
}

// Remember records content as seen for a watched file.
func (w *Watcher) Remember(path string, content []byte) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	if _, ok := w.watching[abs]; ok {
		w.watching[abs] = bytes.Clone(content)
	}
	w.mu.Unlock()
}

// Close stops the watcher and waits for the event loop to exit. Pending
// reads are dropped.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	w.mu.Lock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.schedule(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watch] watcher error: %v", err)
		}
	}
}

// schedule restarts the settle timer of a watched file.
func (w *Watcher) schedule(name string) {
	abs, _ := filepath.Abs(name)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, watched := w.watching[abs]; !watched || w.closed {
		return
	}
	if w.settle <= 0 {
		go w.handle(abs)
		return
	}
	if t, ok := w.timers[abs]; ok {
		t.Stop()
	}
	w.timers[abs] = time.AfterFunc(w.settle, func() { w.handle(abs) })
}

func (w *Watcher) handle(abs string) {
	w.mu.Lock()
	last, watched := w.watching[abs]
	if w.closed {
		watched = false
	}
	delete(w.timers, abs)
	w.mu.Unlock()
	if !watched {
		return
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		log.Printf("[watch] read file %s: %v", abs, err)
		return
	}
	if len(content) == 0 || bytes.Equal(content, last) {
		return
	}

	w.mu.Lock()
	if _, still := w.watching[abs]; still {
		w.watching[abs] = content
	}
	w.mu.Unlock()

	if w.onChange != nil {
		w.onChange(abs, content)
	}
}
