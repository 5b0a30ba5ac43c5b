// Package reload coalesces reload requests. Requests arriving within the
// quiet window share one pending result and trigger a single reload on the
// trailing edge.
package reload

import (
	"context"
	"sync"
	"time"
)

// DefaultQuiet is the quiet window used when none is configured.
const DefaultQuiet = 250 * time.Millisecond

// Func performs one reload.
type Func func(ctx context.Context) error

// Pending is the shared result of one coalesced reload.
type Pending struct {
	done chan struct{}
	err  error
}

// Done is closed once the reload has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Err returns the reload error. It is valid only after Done is closed.
func (p *Pending) Err() error { return p.err }

// Queue debounces calls to a reload function. The zero value is not usable;
// construct with New.
type Queue struct {
	fn    Func
	quiet time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
	cur   *Pending
	runs  int
}

// New returns a queue calling fn after quiet has passed with no new request.
// A non-positive quiet uses DefaultQuiet.
func New(fn Func, quiet time.Duration) *Queue {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Queue{fn: fn, quiet: quiet}
}

// Request schedules a reload and restarts the quiet window. Every request
// made before the reload starts gets the same Pending.
func (q *Queue) Request() *Pending {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.cur == nil {
		q.cur = &Pending{done: make(chan struct{})}
	}
	if q.timer != nil {
		q.timer.Stop()
	}
	q.gen++
	gen := q.gen
	q.timer = time.AfterFunc(q.quiet, func() { q.fire(gen) })
	return q.cur
}

// Wait requests a reload and blocks until it has run or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	p := q.Request()
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush runs a scheduled reload now instead of at the end of its window and
// waits for it. It returns nil when nothing is scheduled.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	p := q.take()
	q.mu.Unlock()
	if p == nil {
		return nil
	}
	go q.run(p)
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop cancels a scheduled reload. Its waiters see context.Canceled.
func (q *Queue) Stop() {
	q.mu.Lock()
	p := q.take()
	q.mu.Unlock()
	if p != nil {
		p.err = context.Canceled
		close(p.done)
	}
}

// Runs returns how many reloads have started.
func (q *Queue) Runs() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.runs
}

func (q *Queue) fire(gen uint64) {
	q.mu.Lock()
	if gen != q.gen {
		q.mu.Unlock()
		return
	}
	p := q.take()
	q.mu.Unlock()
	if p != nil {
		q.run(p)
	}
}

// take detaches the scheduled reload. Callers hold mu.
func (q *Queue) take() *Pending {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.gen++
	p := q.cur
	q.cur = nil
	return p
}

func (q *Queue) run(p *Pending) {
	q.mu.Lock()
	q.runs++
	q.mu.Unlock()
	p.err = q.fn(context.Background())
	close(p.done)
}
