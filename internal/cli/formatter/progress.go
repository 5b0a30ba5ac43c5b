package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tasklane/internal/graph"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress draws a bar such as [████░░░░]  45%. The bar is red under
// a third, yellow under two thirds, green above.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)
	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct < 0.33:
		style = StyleRed
	case pct < 0.66:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// RollUpSummary renders "3/5" with optional focus counters, for card badges.
func RollUpSummary(m graph.Metrics) string {
	if m.Descendants == 0 {
		return ""
	}
	s := fmt.Sprintf("%d/%d", m.Completed, m.Descendants)
	if m.PomodoroCount > 0 {
		s += fmt.Sprintf(" · %d🍅", m.PomodoroCount)
	}
	if m.FocusMinutes > 0 {
		s += " · " + FormatMinutes(m.FocusMinutes)
	}
	return s
}
