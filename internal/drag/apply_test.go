package drag

import (
	"testing"
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)

func TestApply_NoOpChangesNothing(t *testing.T) {
	tasks := board()
	before := tasks.Clone()
	changed, err := Apply(Action{Kind: NoOp}, tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Equal(t, before, tasks)
}

func TestApply_BecomeSibling(t *testing.T) {
	tasks := board()
	tasks["P2"].KanbanStatus = domain.KanbanDoing

	a := Action{Kind: BecomeSibling, DraggedID: "X", TargetID: "Y", NewParentID: "P2", Before: true}
	changed, err := Apply(a, tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)

	x := tasks["X"]
	assert.Equal(t, "P2", x.ParentID)
	assert.Equal(t, "g2", x.CustomGroupID, "group follows the new parent")
	assert.Equal(t, domain.KanbanDoing, x.KanbanStatus)
	assert.Equal(t, []string{"X", "Y", "Y2"}, changed)
	assert.Equal(t, 0, x.Sort)
	assert.Equal(t, 10, tasks["Y"].Sort)
	assert.Equal(t, 20, tasks["Y2"].Sort)
}

func TestApply_NestAppendsLastChild(t *testing.T) {
	tasks := board()
	tasks["Yc"] = &domain.Task{ID: "Yc", ParentID: "Y", Sort: 0}

	a := Action{Kind: Nest, DraggedID: "X", TargetID: "Y", NewParentID: "Y"}
	changed, err := Apply(a, tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)

	assert.Equal(t, "Y", tasks["X"].ParentID)
	assert.Empty(t, tasks["X"].CustomGroupID, "nesting alone leaves the group")
	assert.Equal(t, 10, tasks["X"].Sort)
	assert.Equal(t, []string{"X", "Yc"}, changed)
}

func TestApply_NestRejectsCycle(t *testing.T) {
	tasks := board()
	_, err := Apply(Action{Kind: Nest, DraggedID: "P2", NewParentID: "Y"}, tasks, domain.ModeStatus, today, now)
	assert.ErrorIs(t, err, domain.ErrCycle)
}

func TestApply_ReorderTopLevel(t *testing.T) {
	tasks := board()
	tasks["A"].Sort = 0
	tasks["B"].Sort = 10
	tasks["C"] = &domain.Task{ID: "C", ProjectID: "proj", Sort: 20}

	a := Action{Kind: Reorder, DraggedID: "C", TargetID: "A", Before: true}
	changed, err := Apply(a, tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)

	assert.Equal(t, 0, tasks["C"].Sort)
	assert.Equal(t, 10, tasks["A"].Sort)
	assert.Greater(t, tasks["B"].Sort, tasks["A"].Sort)
	assert.Equal(t, 0, tasks["H"].Sort, "other priority bucket untouched")
	assert.NotContains(t, changed, "H")
	assert.NotContains(t, changed, "D", "doing lane is another scope")
}

func TestApply_ChangeLaneToDoneCascades(t *testing.T) {
	tasks := board()
	a := Action{Kind: ChangeLane, DraggedID: "P2", Lane: LaneRef{Status: domain.LaneDone}}

	changed, err := Apply(a, tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)

	for _, id := range []string{"P2", "Y", "Y2"} {
		assert.True(t, tasks[id].Completed, id)
		assert.Equal(t, now, *tasks[id].CompletedTime, id)
		assert.Contains(t, changed, id)
	}
}

func TestApply_ChangeLaneDetachesSubtask(t *testing.T) {
	tasks := board()
	a := Action{Kind: ChangeLane, DraggedID: "X", Lane: LaneRef{Status: domain.LaneLongTerm}}

	_, err := Apply(a, tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)

	x := tasks["X"]
	assert.Empty(t, x.ParentID)
	assert.Equal(t, domain.TermLong, x.TermType)
	assert.Equal(t, domain.KanbanTodo, x.KanbanStatus)
	assert.Equal(t, domain.LaneLongTerm, NewClassifier(tasks, today).LaneOf(x, domain.ModeStatus).Status)
}

func TestApply_ChangeLaneReopens(t *testing.T) {
	tasks := board()
	done := now.Add(-time.Hour)
	tasks["A"].Completed = true
	tasks["A"].CompletedTime = &done

	a := Action{Kind: ChangeLane, DraggedID: "A", Lane: LaneRef{Status: domain.LaneDoing}}
	_, err := Apply(a, tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)

	assert.False(t, tasks["A"].Completed)
	assert.Nil(t, tasks["A"].CompletedTime)
	assert.Equal(t, domain.KanbanDoing, tasks["A"].KanbanStatus)
}

func TestApply_ChangeGroupLaneCascadesGroup(t *testing.T) {
	tasks := board()
	a := Action{Kind: ChangeLane, DraggedID: "P1", Lane: LaneRef{Group: "g9", Status: domain.LaneShortTerm}}

	changed, err := Apply(a, tasks, domain.ModeGroup, today, now)
	require.NoError(t, err)

	assert.Equal(t, "g9", tasks["P1"].CustomGroupID)
	assert.Equal(t, "g9", tasks["X"].CustomGroupID)
	assert.Contains(t, changed, "X")
}

func TestApply_InstanceLaneWritesOverlay(t *testing.T) {
	tasks := board()
	tasks["R"] = &domain.Task{ID: "R", Title: "R", Date: "2025-01-01",
		Repeat: &domain.RepeatConfig{Enabled: true, Type: domain.RepeatDaily}}

	changed, err := Apply(Action{Kind: ChangeLane, DraggedID: "R_2025-01-12", Lane: LaneRef{Status: domain.LaneLongTerm}},
		tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"R"}, changed)
	mod, ok := tasks["R"].Repeat.Modification("2025-01-12")
	require.True(t, ok)
	assert.Equal(t, domain.TermLong, *mod.TermType)
	assert.Nil(t, mod.CustomGroupID, "status boards leave the group alone")

	_, err = Apply(Action{Kind: ChangeLane, DraggedID: "R_2025-01-12", Lane: LaneRef{Status: domain.LaneDone}},
		tasks, domain.ModeStatus, today, now)
	require.NoError(t, err)
	assert.True(t, tasks["R"].Repeat.CompletedInstances.Has("2025-01-12"))
	assert.Equal(t, domain.DateKey("2025-01-01"), tasks["R"].Date, "stored rule keeps its anchor")

	_, err = Apply(Action{Kind: ChangeLane, DraggedID: "ghost", Lane: LaneRef{Status: domain.LaneDone}},
		tasks, domain.ModeStatus, today, now)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApply_InstanceLaneToUngroupedColumn(t *testing.T) {
	tasks := board()
	tasks["R"] = &domain.Task{ID: "R", Title: "R", Date: "2025-01-01", CustomGroupID: "g1",
		Repeat: &domain.RepeatConfig{Enabled: true, Type: domain.RepeatDaily}}
	tasks["S"] = &domain.Task{ID: "S", Title: "S", Date: "2025-01-12", CustomGroupID: "g1"}
	ungrouped := LaneRef{Group: "", Status: domain.LaneDoing}

	changed, err := Apply(Action{Kind: ChangeLane, DraggedID: "R_2025-01-12", Lane: ungrouped},
		tasks, domain.ModeGroup, today, now)
	require.NoError(t, err)
	assert.Equal(t, []string{"R"}, changed)

	mod, ok := tasks["R"].Repeat.Modification("2025-01-12")
	require.True(t, ok)
	require.NotNil(t, mod.CustomGroupID)
	assert.Empty(t, *mod.CustomGroupID)
	assert.Empty(t, recurrence.Build(tasks["R"], "2025-01-12").CustomGroupID, "occurrence leaves g1")
	assert.Equal(t, "g1", tasks["R"].CustomGroupID, "rule keeps its group")

	_, err = Apply(Action{Kind: ChangeLane, DraggedID: "S", Lane: ungrouped}, tasks, domain.ModeGroup, today, now)
	require.NoError(t, err)
	assert.Empty(t, tasks["S"].CustomGroupID, "stored task moves the same way")
}
