// Package drag turns a pointer drop over a task card into one structural
// action and applies it to a task map.
package drag

import (
	"errors"
	"sync"

	"github.com/alexanderramin/tasklane/internal/domain"
)

var (
	ErrDragInProgress = errors.New("a drag is already in progress")
	ErrNoDrag         = errors.New("no drag in progress")
)

// DragSession is one in-flight gesture. SourceRef identifies the card the
// gesture started from and is opaque to this package.
type DragSession struct {
	Dragged   *domain.Task
	SourceRef string
}

// Tracker holds at most one session. The session is cleared when its drop
// handler returns or the gesture is cancelled.
type Tracker struct {
	mu  sync.Mutex
	cur *DragSession
}

func (t *Tracker) Begin(s DragSession) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur != nil {
		return ErrDragInProgress
	}
	t.cur = &s
	return nil
}

// Current returns the active session, if any.
func (t *Tracker) Current() (DragSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cur == nil {
		return DragSession{}, false
	}
	return *t.cur, true
}

// Drop runs handle with the active session and clears it afterwards, even
// when handle fails. A second gesture cannot begin while handle runs.
func (t *Tracker) Drop(handle func(DragSession) error) error {
	t.mu.Lock()
	cur := t.cur
	t.mu.Unlock()
	if cur == nil {
		return ErrNoDrag
	}
	defer t.Cancel()
	return handle(*cur)
}

// Cancel clears the active session. It is safe to call with none active.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	t.cur = nil
	t.mu.Unlock()
}
