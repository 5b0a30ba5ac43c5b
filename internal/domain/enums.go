package domain

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityNone   Priority = "none"
)

// Rank orders priorities for sorting; unknown and empty values rank as none.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Normalize maps empty or unknown values to PriorityNone.
func (p Priority) Normalize() Priority {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p
	default:
		return PriorityNone
	}
}

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[string]bool{
	"high": true, "medium": true, "low": true, "none": true,
}

type TermType string

const (
	TermShort TermType = "short_term"
	TermLong  TermType = "long_term"
	TermDoing TermType = "doing"
)

type KanbanStatus string

const (
	KanbanTodo  KanbanStatus = "todo"
	KanbanDoing KanbanStatus = "doing"
)

// Lane is the status column a task is displayed in. It is always derived,
// never stored.
type Lane string

const (
	LaneDoing     Lane = "doing"
	LaneShortTerm Lane = "short_term"
	LaneLongTerm  Lane = "long_term"
	LaneDone      Lane = "done"
)

// Lanes lists the status lanes in board order.
var Lanes = []Lane{LaneDoing, LaneShortTerm, LaneLongTerm, LaneDone}

type BoardMode string

const (
	ModeStatus BoardMode = "status"
	ModeGroup  BoardMode = "group"
	ModeList   BoardMode = "list"
)

// ValidBoardModes is the canonical set of accepted board mode strings.
var ValidBoardModes = map[string]bool{
	"status": true, "group": true, "list": true,
}

type RepeatType string

const (
	RepeatDaily        RepeatType = "daily"
	RepeatWeekly       RepeatType = "weekly"
	RepeatMonthly      RepeatType = "monthly"
	RepeatYearly       RepeatType = "yearly"
	RepeatLunarMonthly RepeatType = "lunar-monthly"
	RepeatLunarYearly  RepeatType = "lunar-yearly"
)

// IsLunar reports whether the rule is evaluated on the lunar calendar.
func (t RepeatType) IsLunar() bool {
	return t == RepeatLunarMonthly || t == RepeatLunarYearly
}

type RepeatEnd string

const (
	EndNever RepeatEnd = "never"
	EndDate  RepeatEnd = "date"
	EndCount RepeatEnd = "count"
)
