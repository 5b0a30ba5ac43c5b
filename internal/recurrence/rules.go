package recurrence

import (
	"slices"
	"time"

	"github.com/6tail/lunar-go/calendar"

	"github.com/alexanderramin/tasklane/internal/domain"
)

// maxScanDays bounds a single candidate scan (about 60 years).
const maxScanDays = 366 * 60

// Candidates returns the generated date keys of task's repeat rule inside
// [windowStart, windowEnd], before exclusions. Scanning is day by day from
// the anchor date so count-limited rules number their occurrences from the
// first one, not from the window start.
func Candidates(task *domain.Task, windowStart, windowEnd domain.DateKey) []domain.DateKey {
	cfg := task.Repeat
	if !cfg.Usable() {
		return nil
	}
	winStart, ok1 := windowStart.Time()
	winEnd, ok2 := windowEnd.Time()
	if !ok1 || !ok2 || winEnd.Before(winStart) {
		return nil
	}

	anchor, ok := task.Date.Time()
	if !ok {
		if !cfg.Type.IsLunar() {
			return nil
		}
		anchor = winStart
	}

	end := winEnd
	if cfg.EndType == domain.EndDate {
		if until, ok := cfg.EndDate.Time(); ok && until.Before(end) {
			end = until
		}
	}
	countLimited := cfg.EndType == domain.EndCount && cfg.EndCount > 0

	start := anchor
	if !countLimited && winStart.After(start) {
		start = winStart
	}

	var out []domain.DateKey
	generated := 0
	for d, n := start, 0; !d.After(end) && n < maxScanDays; d, n = d.AddDate(0, 0, 1), n+1 {
		if !matches(cfg, anchor, d) {
			continue
		}
		generated++
		if countLimited && generated > cfg.EndCount {
			break
		}
		if !d.Before(winStart) {
			out = append(out, domain.NewDateKey(d))
		}
	}
	return out
}

// matches reports whether d is an occurrence of cfg anchored at anchor.
// Both times are midnight UTC.
func matches(cfg *domain.RepeatConfig, anchor, d time.Time) bool {
	if d.Before(anchor) {
		return false
	}
	step := cfg.Step()
	days := int(d.Sub(anchor).Hours() / 24)

	switch cfg.Type {
	case domain.RepeatDaily:
		return days%step == 0

	case domain.RepeatWeekly:
		if len(cfg.WeekDays) > 0 {
			// Weeks are counted from the Sunday-started week holding the anchor.
			week := (days + int(anchor.Weekday())) / 7
			return slices.Contains(cfg.WeekDays, int(d.Weekday())) && week%step == 0
		}
		return d.Weekday() == anchor.Weekday() && (days/7)%step == 0

	case domain.RepeatMonthly:
		months := (d.Year()-anchor.Year())*12 + int(d.Month()) - int(anchor.Month())
		if months%step != 0 {
			return false
		}
		if len(cfg.MonthDays) > 0 {
			return slices.Contains(cfg.MonthDays, d.Day())
		}
		return d.Day() == anchor.Day()

	case domain.RepeatYearly:
		if (d.Year()-anchor.Year())%step != 0 {
			return false
		}
		if len(cfg.Months) > 0 && len(cfg.MonthDays) > 0 {
			return slices.Contains(cfg.Months, int(d.Month())) && slices.Contains(cfg.MonthDays, d.Day())
		}
		return d.Month() == anchor.Month() && d.Day() == anchor.Day()

	case domain.RepeatLunarMonthly:
		_, day := lunarOf(d)
		return day == cfg.LunarDay

	case domain.RepeatLunarYearly:
		// Leap months come back negative and never match a configured month.
		month, day := lunarOf(d)
		return month == cfg.LunarMonth && day == cfg.LunarDay
	}
	return false
}

// lunarOf converts a solar date to its lunar month and day. Leap months are
// reported as negative months.
func lunarOf(d time.Time) (int, int) {
	l := calendar.NewSolarFromYmd(d.Year(), int(d.Month()), d.Day()).GetLunar()
	return l.GetMonth(), l.GetDay()
}
