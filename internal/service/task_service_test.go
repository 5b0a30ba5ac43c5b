package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_CreateAssignsDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := &domain.Task{Title: "Water plants", Date: "2025-01-12"}
	require.NoError(t, f.tasks.Create(ctx, task))

	assert.NotEmpty(t, task.ID, "service should assign UUID")
	stored, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityNone, stored.Priority)
	assert.True(t, testutil.FixedNow.Equal(stored.CreatedTime))
	assert.Equal(t, 10, stored.Sort)
	assert.Equal(t, 1, f.reloader.Count())
	assert.Contains(t, f.observer.names(), "task.create")
}

func TestTaskService_CreateValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.tasks.Create(ctx, &domain.Task{Title: "Loose"})
	assert.ErrorIs(t, err, domain.ErrValidation, "date is required outside a project")

	err = f.tasks.Create(ctx, &domain.Task{Title: "  ", ProjectID: "p"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.tasks.Create(ctx, &domain.Task{Title: "Scoped", ProjectID: "p"}))

	err = f.tasks.Create(ctx, &domain.Task{Title: "Orphan", ParentID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Len(t, f.snapshot(t), 1)
	assert.Equal(t, 1, f.reloader.Count(), "failed writes do not reload")
}

func TestTaskService_CreateSubtaskInherits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := testutil.NewTestTask("Trip", testutil.WithGroup("travel"), testutil.WithProject("p1"), testutil.WithKanban(domain.KanbanDoing))
	f.seed(t, parent)

	child := &domain.Task{Title: "Pack", ParentID: parent.ID}
	require.NoError(t, f.tasks.Create(ctx, child))

	stored := f.snapshot(t)[child.ID]
	assert.Equal(t, "travel", stored.CustomGroupID)
	assert.Equal(t, "p1", stored.ProjectID)
	assert.Equal(t, domain.KanbanDoing, stored.KanbanStatus)
}

func TestTaskService_DeleteCascadesInOneWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	parent := testutil.NewTestTask("Parent", testutil.WithID("p"))
	c1 := testutil.NewTestTask("C1", testutil.WithID("c1"), testutil.WithParent("p"))
	c2 := testutil.NewTestTask("C2", testutil.WithID("c2"), testutil.WithParent("p"))
	g1 := testutil.NewTestTask("G1", testutil.WithID("g1"), testutil.WithParent("c1"))
	other := testutil.NewTestTask("Other", testutil.WithID("o"))
	f.seed(t, parent, c1, c2, g1, other)
	before := f.revision(t)

	removed, err := f.tasks.Delete(ctx, "p")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"p", "c1", "c2", "g1"}, removed)
	assert.Equal(t, before+1, f.revision(t), "one write batch")
	remaining := f.snapshot(t)
	assert.Len(t, remaining, 1)
	assert.Contains(t, remaining, "o")
}

func TestTaskService_DeleteRollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		testutil.NewTestTask("Parent", testutil.WithID("p")),
		testutil.NewTestTask("C1", testutil.WithID("c1"), testutil.WithParent("p")),
		testutil.NewTestTask("C2", testutil.WithID("c2"), testutil.WithParent("p")),
	)
	failing := &testutil.FailOnNthExecUoW{DB: f.db, FailOn: 2, Err: fmt.Errorf("injected delete failure")}
	svc := NewTaskService(f.store, failing, f.opts)

	_, err := svc.Delete(ctx, "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected delete failure")
	assert.Len(t, f.snapshot(t), 3, "stored map unchanged after rollback")
	assert.Equal(t, 0, f.reloader.Count())
}

func TestTaskService_CompleteSharesStamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		testutil.NewTestTask("Parent", testutil.WithID("p")),
		testutil.NewTestTask("C1", testutil.WithID("c1"), testutil.WithParent("p")),
		testutil.NewTestTask("G1", testutil.WithID("g1"), testutil.WithParent("c1")),
	)

	changed, err := f.tasks.Complete(ctx, "p")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p", "c1", "g1"}, changed)

	tasks := f.snapshot(t)
	for _, id := range []string{"p", "c1", "g1"} {
		require.True(t, tasks[id].Completed, id)
		assert.True(t, testutil.FixedNow.Equal(*tasks[id].CompletedTime), id)
	}

	require.NoError(t, f.tasks.Reopen(ctx, "p"))
	tasks = f.snapshot(t)
	assert.False(t, tasks["p"].Completed)
	assert.Nil(t, tasks["p"].CompletedTime)
	assert.True(t, tasks["c1"].Completed, "reopening does not cascade")
}

func TestTaskService_SetParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		testutil.NewTestTask("A", testutil.WithID("a")),
		testutil.NewTestTask("B", testutil.WithID("b"), testutil.WithParent("a")),
		testutil.NewTestTask("C", testutil.WithID("c"), testutil.WithDate("2025-03-01")),
	)

	err := f.tasks.SetParent(ctx, "a", "b")
	assert.ErrorIs(t, err, domain.ErrCycle)
	err = f.tasks.SetParent(ctx, "a", "a")
	assert.ErrorIs(t, err, domain.ErrCycle)

	before := f.revision(t)
	require.NoError(t, f.tasks.SetParent(ctx, "b", "a"))
	assert.Equal(t, before, f.revision(t), "same parent writes nothing")

	require.NoError(t, f.tasks.SetParent(ctx, "c", "a"))
	tasks := f.snapshot(t)
	assert.Equal(t, "a", tasks["c"].ParentID)
	assert.Equal(t, domain.KanbanDoing, tasks["c"].KanbanStatus, "joins a doing subtree")
	assert.Greater(t, tasks["c"].Sort, tasks["b"].Sort, "appended after existing children")

	require.NoError(t, f.tasks.UnsetParent(ctx, "c"))
	assert.True(t, f.snapshot(t)["c"].IsTopLevel())
}

func TestTaskService_SetGroupCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		testutil.NewTestTask("A", testutil.WithID("a"), testutil.WithGroup("old")),
		testutil.NewTestTask("B", testutil.WithID("b"), testutil.WithParent("a"), testutil.WithGroup("old")),
		testutil.NewTestTask("C", testutil.WithID("c"), testutil.WithParent("a"), testutil.WithGroup("mine")),
	)

	changed, err := f.tasks.SetGroup(ctx, "a", "new")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, changed)
	assert.Equal(t, "mine", f.snapshot(t)["c"].CustomGroupID)
}

func TestTaskService_SetGroupToCurrentGroupWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t,
		testutil.NewTestTask("A", testutil.WithID("a"), testutil.WithGroup("g")),
		testutil.NewTestTask("B", testutil.WithID("b"), testutil.WithParent("a"), testutil.WithGroup("g")),
	)
	before := f.revision(t)

	changed, err := f.tasks.SetGroup(context.Background(), "a", "g")
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, before, f.revision(t))
	assert.Zero(t, f.reloader.Count())
}

func TestTaskService_UpdateStoredAndOccurrence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rule := testutil.NewTestTask("Stretch", testutil.WithID("rule"), testutil.WithDate("2025-01-01"), testutil.WithRepeat(domain.RepeatDaily))
	plain := testutil.NewTestTask("Plain", testutil.WithID("plain"))
	f.seed(t, rule, plain)

	title := "Renamed"
	got, err := f.tasks.Update(ctx, "plain", app.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	note := "light session"
	got, err = f.tasks.Update(ctx, "rule_2025-01-11", app.TaskPatch{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, "rule_2025-01-11", got.ID)
	assert.Equal(t, "light session", got.Note)
	mod, ok := f.snapshot(t)["rule"].Repeat.Modification("2025-01-11")
	require.True(t, ok)
	assert.Equal(t, "light session", *mod.Note)

	_, err = f.tasks.Update(ctx, "rule_2025-01-11", app.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.tasks.Update(ctx, "plain", app.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.tasks.Update(ctx, "ghost", app.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskService_OccurrenceCompleteAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, testutil.NewTestTask("Stretch", testutil.WithID("rule"), testutil.WithDate("2025-01-01"), testutil.WithRepeat(domain.RepeatDaily)))

	changed, err := f.tasks.Complete(ctx, "rule_2025-01-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"rule"}, changed)

	removed, err := f.tasks.Delete(ctx, "rule_2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, []string{"rule_2025-01-06"}, removed)

	rule := f.snapshot(t)["rule"]
	require.NotNil(t, rule, "deleting an occurrence keeps the rule")
	assert.True(t, rule.Repeat.CompletedInstances.Has("2025-01-05"))
	assert.True(t, rule.Repeat.ExcludeDates.Has("2025-01-06"))

	require.NoError(t, f.tasks.Reopen(ctx, "rule_2025-01-05"))
	assert.False(t, f.snapshot(t)["rule"].Repeat.CompletedInstances.Has("2025-01-05"))

	_, err = f.tasks.Complete(ctx, "ghost_2025-01-05")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskService_ListAndRollUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t,
		testutil.NewTestTask("Low", testutil.WithID("low"), testutil.WithPriority(domain.PriorityLow), testutil.WithProject("p")),
		testutil.NewTestTask("High", testutil.WithID("high"), testutil.WithPriority(domain.PriorityHigh), testutil.WithProject("p"), testutil.WithCounters(2, 50)),
		testutil.NewTestTask("Sub", testutil.WithID("sub"), testutil.WithParent("high"), testutil.WithCounters(1, 25), testutil.WithCompleted(testutil.FixedNow)),
		testutil.NewTestTask("Else", testutil.WithID("else"), testutil.WithProject("q")),
	)

	list, err := f.tasks.List(ctx, app.TaskFilter{ProjectID: "p", TopLevelOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "high", list[0].ID)
	assert.Equal(t, "low", list[1].ID)

	open, err := f.tasks.List(ctx, app.TaskFilter{ParentID: "high"})
	require.NoError(t, err)
	assert.Empty(t, open)
	all, err := f.tasks.List(ctx, app.TaskFilter{ParentID: "high", IncludeCompleted: true})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	m, err := f.tasks.RollUp(ctx, "high")
	require.NoError(t, err)
	assert.Equal(t, 3, m.PomodoroCount)
	assert.Equal(t, 75, m.FocusMinutes)
	assert.Equal(t, 1, m.Descendants)
	assert.Equal(t, 1, m.Completed)
}

type mapResolver map[string]string

func (m mapResolver) ResolveBlock(_ context.Context, id string) (*BlockInfo, error) {
	content, ok := m[id]
	if !ok {
		return nil, nil
	}
	return &BlockInfo{ID: id, Content: content}, nil
}

func TestTaskService_PasteCreatesTreeInOneWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, testutil.NewTestTask("Existing", testutil.WithProject("p"), testutil.WithSort(30)))
	before := f.revision(t)

	res, err := f.tasks.Paste(ctx, app.PasteRequest{
		Text:      "- Plan @priority=high\n  - [x] Book\n  - Pack\n- Travel\n",
		ProjectID: "p",
		GroupID:   "trip",
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 4)
	assert.Equal(t, before+1, f.revision(t))

	tasks := f.snapshot(t)
	plan := tasks[res.Created[0].ID]
	book := tasks[res.Created[1].ID]
	assert.Equal(t, 40, plan.Sort, "continues after the project's highest sort")
	assert.Equal(t, plan.ID, book.ParentID)
	assert.Equal(t, domain.PriorityHigh, book.Priority)
	assert.True(t, book.Completed)
	assert.Equal(t, "trip", book.CustomGroupID)
	assert.Equal(t, domain.KanbanDoing, plan.KanbanStatus)
}

func TestTaskService_PasteValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tasks.Paste(ctx, app.PasteRequest{Text: "\n  \n"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.tasks.Paste(ctx, app.PasteRequest{Text: "- undated\n"})
	assert.ErrorIs(t, err, domain.ErrValidation, "loose top-level tasks need a date")
	assert.Empty(t, f.snapshot(t), "nothing is written when one task is invalid")

	res, err := f.tasks.Paste(ctx, app.PasteRequest{Text: "- dated\n", DefaultDate: "2025-01-10"})
	require.NoError(t, err)
	assert.Equal(t, domain.DateKey("2025-01-10"), res.Created[0].Date)
}

func TestTaskService_PasteDropsUnresolvedBlocks(t *testing.T) {
	f := newFixture(t)
	known := "20250101120000-aaaaaaa"
	unknown := "20250101120000-bbbbbbb"
	opts := f.opts
	opts.Blocks = mapResolver{known: "note"}
	svc := NewTaskService(f.store, testutil.NewTestUoW(f.db), opts)

	res, err := svc.Paste(context.Background(), app.PasteRequest{
		Text:      fmt.Sprintf("- ((%s 'Known'))\n- ((%s 'Unknown'))\n", known, unknown),
		ProjectID: "p",
	})
	require.NoError(t, err)
	require.Len(t, res.Created, 2)
	assert.Equal(t, known, res.Created[0].BlockID)
	assert.Empty(t, res.Created[1].BlockID)
	assert.Equal(t, []string{unknown}, res.Unbound)

	err = svc.Create(context.Background(), &domain.Task{Title: "x", ProjectID: "p", BlockID: unknown})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
