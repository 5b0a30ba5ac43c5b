package cli

import (
	"context"
	"sync"

	"github.com/alexanderramin/tasklane/internal/reload"
)

// Refresher is the reload target. It starts as a no-op; board watch points
// it at a board redraw for as long as it runs.
type Refresher struct {
	mu sync.Mutex
	fn reload.Func
}

func NewRefresher() *Refresher {
	return &Refresher{}
}

// Set replaces the target. nil restores the no-op.
func (r *Refresher) Set(fn reload.Func) {
	r.mu.Lock()
	r.fn = fn
	r.mu.Unlock()
}

// Reload runs the current target.
func (r *Refresher) Reload(ctx context.Context) error {
	r.mu.Lock()
	fn := r.fn
	r.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
