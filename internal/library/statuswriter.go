package library

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hedgepod-dev/hedgepod/internal/store"
)

// StatusWriter coalesces playback-position updates for one episode. A
// player reports its position roughly once a second; writing every one
// of those to SQLite would mean a transaction a second for the whole
// duration of playback, so only the most recent status within each
// flush window actually reaches the store.
type StatusWriter struct {
	lib *Library
	id  store.EpisodeID

	mu      sync.Mutex
	pending *store.EpisodeStatus
	timer   *time.Timer
}

// NewStatusWriter returns a StatusWriter for one episode's playback
// session. It is not safe to share across episodes.
func NewStatusWriter(lib *Library, id store.EpisodeID) *StatusWriter {
	return &StatusWriter{lib: lib, id: id}
}

func (w *StatusWriter) SetPosition(pos time.Duration) { w.set(store.Started(pos)) }
func (w *StatusWriter) SetFinished()                  { w.set(store.Finished()) }
func (w *StatusWriter) SetError(pos time.Duration)    { w.set(store.StatusErr(pos)) }

func (w *StatusWriter) set(status store.EpisodeStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = &status
	if w.timer == nil {
		w.timer = time.AfterFunc(time.Second, w.flush)
	}
}

// Flush writes any pending status immediately, bypassing the debounce
// window; callers use this on clean shutdown so the last known position
// isn't lost to an in-flight timer.
func (w *StatusWriter) Flush() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	w.flush()
}

func (w *StatusWriter) flush() {
	w.mu.Lock()
	status := w.pending
	w.pending = nil
	w.timer = nil
	w.mu.Unlock()
	if status == nil {
		return
	}
	if err := w.lib.SetStatus(context.Background(), w.id, *status); err != nil {
		log.Printf("library: status writer: %v", err)
	}
}
