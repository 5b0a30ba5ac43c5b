package formatter

import (
	"fmt"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// RelativeDay describes date relative to today: "Today", "Tomorrow",
// "In 3d", "2w ago" and so on. An empty date is "".
func RelativeDay(date, today domain.DateKey) string {
	if date.IsZero() || !date.Valid() || !today.Valid() {
		return ""
	}
	days := domain.DaysBetween(today, date)
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// RelativeDayStyled colors RelativeDay by urgency. Overdue open work is red.
func RelativeDayStyled(date, today domain.DateKey, done bool) string {
	text := RelativeDay(date, today)
	if text == "" || done {
		return Dim(text)
	}
	days := domain.DaysBetween(today, date)
	switch {
	case days < 0:
		return StyleRed.Render(text)
	case days <= 2:
		return StyleYellow.Render(text)
	default:
		return StyleFg.Render(text)
	}
}

// TruncID returns the first 8 characters of an id, dimmed. Occurrence ids
// keep their date suffix so they stay unambiguous.
func TruncID(id string) string {
	if orig, key, ok := domain.SplitInstanceID(id); ok {
		if len(orig) > 8 {
			orig = orig[:8]
		}
		return StyleDim.Render(orig + "_" + string(key))
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatMinutes converts raw minutes into "1h 30m" form.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h, m := min/60, min%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
