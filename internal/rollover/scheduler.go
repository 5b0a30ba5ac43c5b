// Package rollover drives board refreshes that do not come from a local
// mutation: the daily date change and writes made by another process.
package rollover

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alexanderramin/tasklane/internal/config"
)

// Scheduler wraps cron jobs for a watched board.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New returns a scheduler evaluating specs in loc. A nil logger discards.
func New(loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		logger: logger,
	}
}

// ScheduleDaily registers job at the given HH:MM.
func (s *Scheduler) ScheduleDaily(at string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(at)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers job every interval, rounded down to whole
// seconds with a floor of one.
func (s *Scheduler) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
}

// WatchRevision polls src every interval and calls onChange when the store
// revision moved since the previous poll.
func (s *Scheduler) WatchRevision(src RevisionSource, interval time.Duration, onChange func()) (cron.EntryID, error) {
	p := NewPoller(src)
	if _, err := p.Check(context.Background()); err != nil {
		return 0, err
	}
	return s.ScheduleInterval(interval, func() {
		changed, err := p.Check(context.Background())
		if err != nil {
			s.logger.Warn("revision poll failed", "error", err)
			return
		}
		if changed {
			onChange()
		}
	})
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// RevisionSource reports the store write counter.
type RevisionSource interface {
	Revision(ctx context.Context) (int64, error)
}

// Poller remembers the last seen revision.
type Poller struct {
	src RevisionSource

	mu   sync.Mutex
	seen bool
	last int64
}

func NewPoller(src RevisionSource) *Poller {
	return &Poller{src: src}
}

// Check reads the revision and reports whether it differs from the last
// one read. The first successful read only records the baseline.
func (p *Poller) Check(ctx context.Context) (bool, error) {
	rev, err := p.src.Revision(ctx)
	if err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.seen {
		p.seen = true
		p.last = rev
		return false, nil
	}
	if rev == p.last {
		return false, nil
	}
	p.last = rev
	return true, nil
}

func buildDailySpec(at string) (string, error) {
	hour, minute, err := config.ParseClock(at)
	if err != nil {
		return "", err
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
