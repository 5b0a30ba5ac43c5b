package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/tasklane/internal/domain"
	"github.com/alexanderramin/tasklane/internal/graph"
)

// FormatTaskList renders tasks as a table.
func FormatTaskList(tasks []*domain.Task, today domain.DateKey) string {
	if len(tasks) == 0 {
		return Dim("No tasks.") + "\n"
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		title := t.Title
		if t.Completed {
			title = StyleGreen.Render("✔ ") + Dim(title)
		}
		if t.IsRecurring() {
			title += " " + StylePurple.Render("↻")
		}
		rows = append(rows, []string{
			TruncID(t.ID),
			title,
			PriorityBadge(t.Priority),
			RelativeDayStyled(t.Date, today, t.Completed),
			t.ProjectID,
			t.CustomGroupID,
			strconv.Itoa(t.Sort),
		})
	}
	return RenderTable([]string{"ID", "TITLE", "PRI", "DATE", "PROJECT", "GROUP", "SORT"}, rows)
}

// FormatTaskDetail renders one task with its subtasks and roll-up.
func FormatTaskDetail(t *domain.Task, children []*domain.Task, m graph.Metrics, today domain.DateKey) string {
	var b strings.Builder
	b.WriteString(Header(t.Title))
	b.WriteString("\n")

	field := func(name, value string) {
		if value == "" {
			return
		}
		b.WriteString(Dim(fmt.Sprintf("%-10s", name)) + " " + value + "\n")
	}
	field("id", t.ID)
	if t.Completed {
		field("status", StyleGreen.Render("done"))
	} else {
		field("status", "open")
	}
	field("priority", string(t.Priority.Normalize()))
	if !t.Date.IsZero() {
		field("date", fmt.Sprintf("%s %s", t.Date, RelativeDayStyled(t.Date, today, t.Completed)))
	}
	field("end", string(t.EndDate))
	field("time", strings.TrimSpace(t.Time+" "+t.EndTime))
	field("project", t.ProjectID)
	field("group", t.CustomGroupID)
	field("parent", t.ParentID)
	field("term", string(t.TermType))
	field("kanban", string(t.KanbanStatus))
	field("block", t.BlockID)
	if t.IsRecurring() {
		field("repeat", DescribeRule(t.Repeat))
	}
	field("note", t.Note)

	if m.Descendants > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s\n", Dim("progress"), RenderProgress(m.Progress(), 20)))
		if s := RollUpSummary(m); s != "" {
			b.WriteString(Dim("          "+s) + "\n")
		}
	}
	if len(children) > 0 {
		b.WriteString("\n")
		items := make([]TreeItem, len(children))
		for i, c := range children {
			items[i] = TreeItem{
				Title:  c.Title + " " + TruncID(c.ID),
				Level:  1,
				IsLast: i == len(children)-1,
				Done:   c.Completed,
				Badge:  PriorityBadge(c.Priority),
			}
		}
		b.WriteString(RenderTree(items))
	}
	return b.String()
}

// DescribeRule renders a repeat rule in one line, e.g. "every 2 weeks on
// mon,wed until 2025-06-01".
func DescribeRule(cfg *domain.RepeatConfig) string {
	if cfg == nil {
		return ""
	}
	interval := max(cfg.Interval, 1)
	var s string
	switch cfg.Type {
	case domain.RepeatDaily:
		s = every(interval, "day")
	case domain.RepeatWeekly:
		s = every(interval, "week")
		if len(cfg.WeekDays) > 0 {
			s += " on " + weekdayList(cfg.WeekDays)
		}
	case domain.RepeatMonthly:
		s = every(interval, "month")
		if len(cfg.MonthDays) > 0 {
			s += " on day " + intList(cfg.MonthDays)
		}
	case domain.RepeatYearly:
		s = every(interval, "year")
		if len(cfg.Months) > 0 {
			s += " in month " + intList(cfg.Months)
		}
	case domain.RepeatLunarMonthly:
		s = fmt.Sprintf("lunar day %d every %s", cfg.LunarDay, plural(interval, "month"))
	case domain.RepeatLunarYearly:
		s = fmt.Sprintf("lunar %d/%d every %s", cfg.LunarMonth, cfg.LunarDay, plural(interval, "year"))
	default:
		s = string(cfg.Type)
	}
	switch cfg.EndType {
	case domain.EndDate:
		s += " until " + string(cfg.EndDate)
	case domain.EndCount:
		s += fmt.Sprintf(" for %d times", cfg.EndCount)
	}
	if !cfg.Enabled {
		s += " (disabled)"
	}
	return s
}

// FormatInstances renders occurrences with their completion state.
func FormatInstances(instances []domain.Instance, today domain.DateKey) string {
	if len(instances) == 0 {
		return Dim("No occurrences.") + "\n"
	}
	rows := make([][]string, 0, len(instances))
	for _, inst := range instances {
		state := "open"
		switch {
		case inst.Completed:
			state = StyleGreen.Render("done")
		case inst.Date.Compare(today) < 0:
			state = StyleRed.Render("overdue")
		}
		moved := ""
		if inst.Date != inst.DateKey {
			moved = Dim("from " + string(inst.DateKey))
		}
		rows = append(rows, []string{inst.ID, string(inst.Date), RelativeDayStyled(inst.Date, today, inst.Completed), state, moved})
	}
	return RenderTable([]string{"ID", "DATE", "WHEN", "STATE", ""}, rows)
}

func every(n int, unit string) string {
	if n == 1 {
		return "every " + unit
	}
	return "every " + plural(n, unit)
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

var weekdayNames = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

func weekdayList(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(weekdayNames) {
			names = append(names, weekdayNames[d])
		}
	}
	return strings.Join(names, ",")
}

func intList(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
