package sync

import (
	stdsync "sync"
	"time"

	"github.com/trainflow/strategy-engine/internal/storage"
)

// Autosaver collapses successive mutations into a single write: one slot,
// one timer, restarted on every Touch. At most one write happens per idle
// gap, and Close cancels anything still pending.
type Autosaver struct {
	store    *Store
	debounce time.Duration

	mu      stdsync.Mutex
	pending *storage.Strategy
	timer   *time.Timer
	closed  bool
}

func NewAutosaver(store *Store, debounce time.Duration) *Autosaver {
	return &Autosaver{store: store, debounce: debounce}
}

// Touch records the latest state of the strategy and restarts the debounce
// timer. Only the most recent state is written when the timer fires.
func (a *Autosaver) Touch(s *storage.Strategy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = s
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.fire)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	s := a.pending
	a.pending = nil
	a.mu.Unlock()
	if s == nil {
		return
	}
	if err := a.store.Save(s); err != nil {
		a.store.logger.Error("autosave write", "id", s.ID, "error", err)
	}
}

// Flush writes any pending state immediately.
func (a *Autosaver) Flush() {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	a.fire()
}

// Close cancels the timer and drops pending state. Touch after Close is a
// no-op; the cancellation contract holds on component teardown.
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.pending = nil
}
