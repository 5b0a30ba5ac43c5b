package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/domain"
)

// taskFlags are the editable task fields shared by add and edit.
type taskFlags struct {
	title, note          string
	date, endDate        string
	startTime, endTime   string
	priority, category   string
	project, block, term string
	kanban               string
}

func (f *taskFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "Task title")
	fs.StringVar(&f.note, "note", "", "Free-form note")
	fs.StringVar(&f.date, "date", "", "Start date (YYYY-MM-DD)")
	fs.StringVar(&f.endDate, "end-date", "", "End date (YYYY-MM-DD)")
	fs.StringVar(&f.startTime, "time", "", "Start time (HH:MM)")
	fs.StringVar(&f.endTime, "end-time", "", "End time (HH:MM)")
	fs.StringVar(&f.priority, "priority", "", "Priority (high|medium|low|none)")
	fs.StringVar(&f.category, "category", "", "Category ID")
	fs.StringVar(&f.project, "project", "", "Project ID")
	fs.StringVar(&f.block, "block", "", "Bound note block ID")
	fs.StringVar(&f.term, "term", "", "Term (short_term|long_term|doing)")
	fs.StringVar(&f.kanban, "kanban", "", "Kanban status (todo|doing)")
}

// apply copies every flag onto t.
func (f *taskFlags) apply(t *domain.Task) error {
	p, err := f.patch(nil)
	if err != nil {
		return err
	}
	p.Apply(t)
	return nil
}

// patch builds a patch of the flags set on cmd. A nil cmd takes every
// non-empty flag.
func (f *taskFlags) patch(cmd *cobra.Command) (app.TaskPatch, error) {
	var p app.TaskPatch
	set := func(name, value string) bool {
		if cmd == nil {
			return value != ""
		}
		return cmd.Flags().Changed(name)
	}
	if set("title", f.title) {
		p.Title = &f.title
	}
	if set("note", f.note) {
		p.Note = &f.note
	}
	if set("date", f.date) {
		d, err := parseOptionalDate(f.date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	if set("end-date", f.endDate) {
		d, err := parseOptionalDate(f.endDate)
		if err != nil {
			return p, err
		}
		p.EndDate = &d
	}
	if set("time", f.startTime) {
		p.Time = &f.startTime
	}
	if set("end-time", f.endTime) {
		p.EndTime = &f.endTime
	}
	if set("priority", f.priority) {
		prio := domain.Priority(f.priority)
		p.Priority = &prio
	}
	if set("category", f.category) {
		p.CategoryID = &f.category
	}
	if set("project", f.project) {
		p.ProjectID = &f.project
	}
	if set("block", f.block) {
		p.BlockID = &f.block
	}
	if set("term", f.term) {
		term := domain.TermType(f.term)
		p.TermType = &term
	}
	if set("kanban", f.kanban) {
		k := domain.KanbanStatus(f.kanban)
		p.KanbanStatus = &k
	}
	return p, nil
}

// parseOptionalDate accepts "" to clear a date.
func parseOptionalDate(s string) (domain.DateKey, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParseDateKey(s)
}

func parseTodayFlag(s string) (*domain.DateKey, error) {
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDateKey(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseMode(s string) (domain.BoardMode, error) {
	if !domain.ValidBoardModes[s] {
		return "", fmt.Errorf("invalid board mode %q (want status|group|list)", s)
	}
	return domain.BoardMode(s), nil
}

// parseIntList parses "1,3,5".
func parseIntList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in list %q", part, s)
		}
		out = append(out, n)
	}
	return out, nil
}

var weekdayIndex = map[string]int{
	"sun": 0, "mon": 1, "tue": 2, "wed": 3, "thu": 4, "fri": 5, "sat": 6,
}

// parseWeekdays accepts numbers (0 = Sunday) or three-letter names.
func parseWeekdays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if n, ok := weekdayIndex[part]; ok {
			out = append(out, n)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}
