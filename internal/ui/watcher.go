package ui

import (
	"sync"
)

// WatchOptions tune when an observed item counts as visible.
type WatchOptions struct {
	RootMargin string  `json:"margin"`
	Threshold  float64 `json:"threshold"`
}

// DefaultWatchOptions preload slightly ahead of the viewport.
var DefaultWatchOptions = WatchOptions{RootMargin: "50px", Threshold: 0.1}

// Watcher reports when observed items come into view. Callers are
// responsible for unobserving an item once it has been handled.
type Watcher interface {
	Observe(id string, opts WatchOptions)
	Unobserve(id string)
	// OnVisible registers fn for visibility reports; the returned function
	// cancels the registration.
	OnVisible(fn func(id string)) (cancel func())
}

// ManualWatcher is a Watcher driven by explicit Reveal calls. It backs the
// terminal renderer and tests.
type ManualWatcher struct {
	mu        sync.Mutex
	observed  map[string]WatchOptions
	callbacks map[int]func(string)
	nextID    int
}

// NewManualWatcher returns a watcher with nothing observed.
func NewManualWatcher() *ManualWatcher {
	return &ManualWatcher{
		observed:  make(map[string]WatchOptions),
		callbacks: make(map[int]func(string)),
	}
}

func (w *ManualWatcher) Observe(id string, opts WatchOptions) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observed[id] = opts
}

func (w *ManualWatcher) Unobserve(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.observed, id)
}

func (w *ManualWatcher) OnVisible(fn func(id string)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.callbacks[id] = fn
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.callbacks, id)
	}
}

// Observed reports whether id is currently tracked.
func (w *ManualWatcher) Observed(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.observed[id]
	return ok
}

// Pending returns the number of tracked items.
func (w *ManualWatcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.observed)
}

// Reveal reports id as visible. Items that are not observed are ignored,
// matching a real observer that has stopped tracking them.
func (w *ManualWatcher) Reveal(id string) bool {
	w.mu.Lock()
	if _, ok := w.observed[id]; !ok {
		w.mu.Unlock()
		return false
	}
	fns := make([]func(string), 0, len(w.callbacks))
	for _, fn := range w.callbacks {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
	return true
}

// RevealAll reports every observed item as visible.
func (w *ManualWatcher) RevealAll() {
	w.mu.Lock()
	ids := make([]string, 0, len(w.observed))
	for id := range w.observed {
		ids = append(ids, id)
	}
	w.mu.Unlock()

	for _, id := range ids {
		w.Reveal(id)
	}
}
