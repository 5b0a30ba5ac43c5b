package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/drag"
	"github.com/alexanderramin/tasklane/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDrag(t *testing.T, f *fixture) {
	t.Helper()
	later := testutil.WithDate("2025-02-01")
	f.seed(t,
		testutil.NewTestTask("P1", testutil.WithID("P1"), later),
		testutil.NewTestTask("X", testutil.WithID("X"), testutil.WithParent("P1"), later),
		testutil.NewTestTask("P2", testutil.WithID("P2"), later, testutil.WithGroup("g2")),
		testutil.NewTestTask("Y", testutil.WithID("Y"), testutil.WithParent("P2"), later, testutil.WithGroup("g2")),
		testutil.NewTestTask("A", testutil.WithID("A"), later),
	)
}

func TestDropService_MiddleZoneNests(t *testing.T) {
	f := newFixture(t)
	seedDrag(t, f)

	res, err := f.drops.Drop(context.Background(), app.DropRequest{DraggedID: "X", TargetID: "Y", Offset: 0.5})
	require.NoError(t, err)

	assert.Equal(t, "nest", res.Kind)
	assert.True(t, res.Applied())
	assert.Equal(t, "Y", f.snapshot(t)["X"].ParentID)
	assert.Equal(t, 1, f.reloader.Count())
}

func TestDropService_TopZoneBecomesSibling(t *testing.T) {
	f := newFixture(t)
	seedDrag(t, f)

	res, err := f.drops.Drop(context.Background(), app.DropRequest{DraggedID: "X", TargetID: "Y", Offset: 0.1})
	require.NoError(t, err)
	assert.Equal(t, "become-sibling", res.Kind)
	assert.Equal(t, "move X under P2 before Y", res.Summary)

	tasks := f.snapshot(t)
	assert.Equal(t, "P2", tasks["X"].ParentID)
	assert.Equal(t, "g2", tasks["X"].CustomGroupID)
	assert.Less(t, tasks["X"].Sort, tasks["Y"].Sort)
}

func TestDropService_ColumnDropChangesLane(t *testing.T) {
	f := newFixture(t)
	seedDrag(t, f)

	res, err := f.drops.Drop(context.Background(), app.DropRequest{DraggedID: "P1", Lane: domain.LaneDone})
	require.NoError(t, err)
	assert.Equal(t, "change-lane", res.Kind)

	tasks := f.snapshot(t)
	assert.True(t, tasks["P1"].Completed)
	assert.True(t, tasks["X"].Completed, "subtree completes with its root")
	assert.True(t, testutil.FixedNow.Equal(*tasks["X"].CompletedTime))
}

func TestDropService_OccurrenceLaneChangeWritesOverlay(t *testing.T) {
	f := newFixture(t)
	f.seed(t, testutil.NewTestTask("Stretch", testutil.WithID("rule"), testutil.WithDate("2025-01-01"), testutil.WithRepeat(domain.RepeatDaily)))

	res, err := f.drops.Drop(context.Background(), app.DropRequest{DraggedID: "rule_2025-01-11", Lane: domain.LaneLongTerm})
	require.NoError(t, err)
	assert.Equal(t, []string{"rule"}, res.Changed)

	mod, ok := f.snapshot(t)["rule"].Repeat.Modification("2025-01-11")
	require.True(t, ok)
	assert.Equal(t, domain.TermLong, *mod.TermType)
}

func TestDropService_IneligibleDropWritesNothing(t *testing.T) {
	f := newFixture(t)
	seedDrag(t, f)
	before := f.revision(t)

	res, err := f.drops.Drop(context.Background(), app.DropRequest{DraggedID: "P2", TargetID: "Y", Offset: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "noop", res.Kind)
	assert.False(t, res.Applied())
	assert.Equal(t, before, f.revision(t))
	assert.Equal(t, 0, f.reloader.Count())
}

func TestDropService_PreviewDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	seedDrag(t, f)
	before := f.revision(t)

	res, err := f.drops.Preview(context.Background(), app.DropRequest{DraggedID: "X", TargetID: "Y", Offset: 0.9})
	require.NoError(t, err)
	assert.Equal(t, "become-sibling", res.Kind)
	assert.Equal(t, before, f.revision(t))
	assert.Equal(t, "P1", f.snapshot(t)["X"].ParentID)

	_, err = f.drops.Preview(context.Background(), app.DropRequest{DraggedID: "ghost", TargetID: "Y"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDropService_SingleGestureInFlight(t *testing.T) {
	f := newFixture(t)
	seedDrag(t, f)
	ctx := context.Background()

	require.NoError(t, f.drops.Begin(ctx, "A", "card-A"))
	assert.ErrorIs(t, f.drops.Begin(ctx, "X", "card-X"), drag.ErrDragInProgress)

	_, err := f.drops.Drop(ctx, app.DropRequest{DraggedID: "X", TargetID: "Y", Offset: 0.5})
	assert.ErrorIs(t, err, drag.ErrDragInProgress)

	res, err := f.drops.Drop(ctx, app.DropRequest{DraggedID: "A", TargetID: "Y", Offset: 0.5})
	require.NoError(t, err)
	assert.Equal(t, "nest", res.Kind)

	require.NoError(t, f.drops.Begin(ctx, "X", "card-X"), "drop clears the gesture")
	f.drops.Cancel()
	require.NoError(t, f.drops.Begin(ctx, "X", "card-X"))
}
