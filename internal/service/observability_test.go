package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/domain"
)

func TestLogUseCaseObserver_WritesEvents(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf, slog.LevelInfo)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name:     "task.create",
		Duration: 3 * time.Millisecond,
		Fields:   map[string]any{"task_id": "T", "project_id": "P"},
	})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name: "task.delete",
		Err:  errors.New("disk full"),
	})

	out := buf.String()
	assert.Contains(t, out, "use_case=task.create")
	assert.Contains(t, out, "success=true")
	assert.Regexp(t, `project_id=P task_id=T`, out, "fields are sorted")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="disk full"`)
}

func TestLogUseCaseObserver_RejectedInputLogsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf, slog.LevelInfo)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{
		Name: "task.parent",
		Err:  &domain.CycleError{ChildID: "A", ParentID: "B"},
	})
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLogUseCaseObserver_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf, slog.LevelError)

	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "board.load"})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "task.get", Err: domain.ErrNotFound})
	assert.Empty(t, buf.String())

	assert.IsType(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil, slog.LevelInfo))
	assert.IsType(t, NoopUseCaseObserver{}, NewSlogUseCaseObserver(nil))
}

func TestCombineObservers(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, combineObservers(nil))
	assert.IsType(t, NoopUseCaseObserver{}, combineObservers([]UseCaseObserver{nil}))

	var got []string
	record := func(prefix string) UseCaseObserver {
		return ObserverFunc(func(_ context.Context, e UseCaseEvent) {
			got = append(got, prefix+e.Name)
		})
	}
	obs := combineObservers([]UseCaseObserver{record("a:"), nil, record("b:")})
	obs.ObserveUseCase(context.Background(), UseCaseEvent{Name: "x"})
	assert.Equal(t, []string{"a:x", "b:x"}, got)
}

func TestServices_ObserveUseCases(t *testing.T) {
	f := newFixture(t)
	seedBoard(t, f)

	_, err := f.board.LoadBoard(context.Background(), app.NewBoardRequest(domain.ModeStatus))
	require.NoError(t, err)

	var load *UseCaseEvent
	f.observer.mu.Lock()
	defer f.observer.mu.Unlock()
	for i := range f.observer.events {
		if f.observer.events[i].Name == "board.load" {
			load = &f.observer.events[i]
		}
	}
	require.NotNil(t, load)
	assert.True(t, load.Succeeded())
	assert.False(t, load.StartedAt.IsZero())
}
