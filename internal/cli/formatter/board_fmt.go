package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasklane/internal/app"
	"github.com/alexanderramin/tasklane/internal/domain"
)

// FormatBoard renders every column as a headed tree of cards. Empty columns
// are shown with a placeholder so the lane layout stays stable.
func FormatBoard(b *app.Board) string {
	var out strings.Builder
	out.WriteString(StyleHeader.Render(fmt.Sprintf("BOARD · %s", strings.ToUpper(string(b.Mode)))))
	out.WriteString(Dim(fmt.Sprintf("  %s  rev %d", b.Today, b.Revision)))
	out.WriteString("\n\n")

	for i, col := range b.Columns {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(columnHeading(col))
		out.WriteString("\n")
		if len(col.Cards) == 0 {
			out.WriteString(Dim("  (empty)") + "\n")
			continue
		}
		out.WriteString(RenderTree(CardTree(col.Cards, b.Today)))
	}
	return out.String()
}

func columnHeading(col app.Column) string {
	title := strings.ToUpper(col.Title())
	count := Dim(fmt.Sprintf(" (%d)", len(col.Cards)))
	if col.Lane == "" {
		return StyleHeader.Render(title) + count
	}
	return LaneStyle(col.Lane).Render(title) + count
}

// CardTree flattens cards and their subtasks into tree lines.
func CardTree(cards []*app.Card, today domain.DateKey) []TreeItem {
	var items []TreeItem
	var walk func(cs []*app.Card, level int)
	walk = func(cs []*app.Card, level int) {
		for i, c := range cs {
			items = append(items, TreeItem{
				Title:  cardTitle(c),
				Level:  level,
				IsLast: i == len(cs)-1,
				Done:   c.Task.Completed,
				Badge:  cardBadge(c, today),
				Detail: RollUpSummary(c.Metrics),
			})
			walk(c.Children, level+1)
		}
	}
	walk(cards, 0)
	return items
}

func cardTitle(c *app.Card) string {
	title := c.Task.Title
	if c.IsInstance() {
		title = StylePurple.Render("↻ ") + title
	}
	return title + " " + TruncID(c.Task.ID)
}

func cardBadge(c *app.Card, today domain.DateKey) string {
	var parts []string
	if p := PriorityBadge(c.Task.Priority); p != "" {
		parts = append(parts, p)
	}
	if RelativeDay(c.Task.Date, today) != "" {
		parts = append(parts, RelativeDayStyled(c.Task.Date, today, c.Task.Completed))
	}
	if c.Task.ProjectID != "" {
		parts = append(parts, StylePurple.Render("#"+c.Task.ProjectID))
	}
	return strings.Join(parts, " ")
}

// FormatDropResult summarizes the outcome of a drop or its preview.
func FormatDropResult(r *app.DropResult, preview bool) string {
	kind := StyleBlue.Render(r.Kind)
	switch {
	case preview:
		return fmt.Sprintf("%s %s\n", kind, r.Summary)
	case !r.Applied():
		return fmt.Sprintf("%s %s %s\n", kind, r.Summary, Dim("(nothing changed)"))
	default:
		return fmt.Sprintf("%s %s %s\n", StyleGreen.Render("✔"), kind, r.Summary) +
			Dim(fmt.Sprintf("  %d record(s) updated", len(r.Changed))) + "\n"
	}
}
