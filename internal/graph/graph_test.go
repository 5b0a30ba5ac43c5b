package graph

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const today = domain.DateKey("2025-01-10")

var testNow = time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)

// tree builds: root -> (a -> (a1, a2), b), plus an unrelated task.
func tree() domain.TaskMap {
	return domain.TaskMap{
		"root":  {ID: "root", Title: "Root"},
		"a":     {ID: "a", ParentID: "root"},
		"a1":    {ID: "a1", ParentID: "a"},
		"a2":    {ID: "a2", ParentID: "a", Completed: true},
		"b":     {ID: "b", ParentID: "root"},
		"other": {ID: "other"},
	}
}

func TestDescendants_ExcludesSelf(t *testing.T) {
	tasks := tree()
	got := Descendants("root", tasks)
	assert.ElementsMatch(t, []string{"a", "a1", "a2", "b"}, got)
	assert.NotContains(t, got, "root")
	assert.Empty(t, Descendants("other", tasks))
}

func TestDescendants_TerminatesOnCycles(t *testing.T) {
	tasks := domain.TaskMap{
		"self": {ID: "self", ParentID: "self"},
		"x":    {ID: "x", ParentID: "z"},
		"y":    {ID: "y", ParentID: "x"},
		"z":    {ID: "z", ParentID: "y"},
	}
	assert.Empty(t, Descendants("self", tasks))
	got := Descendants("x", tasks)
	assert.ElementsMatch(t, []string{"y", "z"}, got)
	assert.False(t, IsDescendant("x", "self", tasks))
	assert.True(t, IsDescendant("y", "z", tasks))
	assert.False(t, IsDescendant("x", "missing", tasks))
}

func TestIsDescendant(t *testing.T) {
	tasks := tree()
	assert.True(t, IsDescendant("a1", "root", tasks))
	assert.True(t, IsDescendant("a1", "a", tasks))
	assert.False(t, IsDescendant("root", "a1", tasks))
	assert.False(t, IsDescendant("b", "a", tasks))
	assert.False(t, IsDescendant("a", "a", tasks))
}

func TestRoot(t *testing.T) {
	tasks := tree()
	r, err := Root("a1", tasks)
	require.NoError(t, err)
	assert.Equal(t, "root", r.ID)

	r, err = Root("other", tasks)
	require.NoError(t, err)
	assert.Equal(t, "other", r.ID)

	_, err = Root("missing", tasks)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetParent_RejectsSelfAndCycles(t *testing.T) {
	tasks := tree()

	err := SetParent("a", "a", tasks, today)
	assert.ErrorIs(t, err, domain.ErrCycle)

	err = SetParent("root", "a1", tasks, today)
	assert.ErrorIs(t, err, domain.ErrCycle)
	assert.Empty(t, tasks["root"].ParentID, "rejected call must not mutate")

	err = SetParent("a1", "a", tasks, today)
	assert.ErrorIs(t, err, ErrNoop)

	err = SetParent("a1", "missing", tasks, today)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetParent_NeverCreatesMutualDescendants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	ids := []string{"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7"}
	tasks := domain.TaskMap{}
	for _, id := range ids {
		tasks[id] = &domain.Task{ID: id}
	}
	for trial := 0; trial < 500; trial++ {
		child := ids[rng.Intn(len(ids))]
		parent := ids[rng.Intn(len(ids))]
		_ = SetParent(child, parent, tasks, today)
		for _, a := range ids {
			for _, b := range ids {
				both := IsDescendant(a, b, tasks) && IsDescendant(b, a, tasks)
				require.False(t, both, "trial %d: %s and %s are mutual descendants", trial, a, b)
			}
		}
	}
}

func TestSetParent_InheritsDoingStatus(t *testing.T) {
	tasks := domain.TaskMap{
		"top":    {ID: "top", KanbanStatus: domain.KanbanDoing},
		"mid":    {ID: "mid", ParentID: "top"},
		"mover":  {ID: "mover", TermType: domain.TermLong, CustomGroupID: "g1"},
		"closed": {ID: "closed", Completed: true},
	}
	require.NoError(t, SetParent("mover", "mid", tasks, today))
	assert.Equal(t, "mid", tasks["mover"].ParentID)
	assert.Equal(t, domain.KanbanDoing, tasks["mover"].KanbanStatus)
	assert.Equal(t, "g1", tasks["mover"].CustomGroupID, "group is not changed by SetParent")

	require.NoError(t, SetParent("closed", "mid", tasks, today))
	assert.Empty(t, tasks["closed"].KanbanStatus, "completed children keep their status")
}

func TestSetParent_NoInheritanceOutsideDoing(t *testing.T) {
	tasks := domain.TaskMap{
		"top":   {ID: "top", TermType: domain.TermLong},
		"mover": {ID: "mover"},
	}
	require.NoError(t, SetParent("mover", "top", tasks, today))
	assert.Empty(t, tasks["mover"].KanbanStatus)
}

func TestUnsetParent(t *testing.T) {
	tasks := tree()
	a := tasks["a"]
	a.KanbanStatus = domain.KanbanDoing
	UnsetParent(a)
	assert.Empty(t, a.ParentID)
	assert.Equal(t, domain.KanbanDoing, a.KanbanStatus)
}

func TestCascadeComplete_SharedStamp(t *testing.T) {
	tasks := tree()
	earlier := testNow.Add(-24 * time.Hour)
	tasks["a2"].CompletedTime = &earlier

	changed, err := CascadeComplete("root", tasks, testNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"root", "a", "a1", "b"}, changed)
	for _, id := range []string{"root", "a", "a1", "b"} {
		assert.True(t, tasks[id].Completed, id)
		assert.Equal(t, testNow, *tasks[id].CompletedTime, id)
	}
	assert.Equal(t, earlier, *tasks["a2"].CompletedTime, "already completed tasks are skipped")
	assert.False(t, tasks["other"].Completed)
}

func TestCascadeDelete_RemovesSubtreeInOneBatch(t *testing.T) {
	tasks := tree()
	tasks["a2"].Completed = false
	removed, err := CascadeDelete("a", tasks)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "a1", "a2"}, removed)
	assert.Len(t, tasks, 3)

	tasks = tree()
	removed, err = CascadeDelete("root", tasks)
	require.NoError(t, err)
	assert.Len(t, removed, 5)
	assert.Len(t, tasks, 1)

	_, err = CascadeDelete("missing", tasks)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCascadeGroup_SkipsConflictingGroups(t *testing.T) {
	tasks := tree()
	tasks["root"].CustomGroupID = "old"
	tasks["a"].CustomGroupID = "old"
	tasks["b"].CustomGroupID = "mine"

	changed, err := CascadeGroup("root", "new", tasks)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"root", "a", "a1", "a2"}, changed)
	assert.Equal(t, "new", tasks["a1"].CustomGroupID)
	assert.Equal(t, "mine", tasks["b"].CustomGroupID)
}

func TestCascadeGroup_SameGroupReportsOnlyMovedDescendants(t *testing.T) {
	tasks := tree()
	for _, id := range []string{"root", "a", "a1", "a2", "b"} {
		tasks[id].CustomGroupID = "g"
	}

	changed, err := CascadeGroup("root", "g", tasks)
	require.NoError(t, err)
	assert.Empty(t, changed)

	tasks["b"].CustomGroupID = ""
	changed, err = CascadeGroup("root", "g", tasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, changed)
}

func TestRollUp(t *testing.T) {
	tasks := tree()
	tasks["root"].PomodoroCount = 1
	tasks["a1"].PomodoroCount = 2
	tasks["a1"].FocusMinutes = 50
	tasks["b"].FocusMinutes = 25

	m, err := RollUp("root", tasks)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Descendants)
	assert.Equal(t, 1, m.Completed)
	assert.Equal(t, 3, m.PomodoroCount)
	assert.Equal(t, 75, m.FocusMinutes)
	assert.InDelta(t, 0.25, m.Progress(), 1e-9)
}
