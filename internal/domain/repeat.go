package domain

import (
	"sort"
	"strings"

	"github.com/bytedance/sonic"
)

// RepeatConfig is the repeat rule of a recurring task together with its
// per-occurrence overlays.
type RepeatConfig struct {
	Enabled  bool       `json:"enabled"`
	Type     RepeatType `json:"type"`
	Interval int        `json:"interval,omitempty"`
	EndType  RepeatEnd  `json:"endType,omitempty"`
	EndDate  DateKey    `json:"endDate,omitempty"`
	EndCount int        `json:"endCount,omitempty"`

	WeekDays   []int `json:"weekDays,omitempty"` // 0 = Sunday
	MonthDays  []int `json:"monthDays,omitempty"`
	Months     []int `json:"months,omitempty"`
	LunarMonth int   `json:"lunarMonth,omitempty"`
	LunarDay   int   `json:"lunarDay,omitempty"`

	CompletedInstances    DateSet                          `json:"completedInstances,omitempty"`
	ExcludeDates          DateSet                          `json:"excludeDates,omitempty"`
	InstanceModifications map[DateKey]InstanceModification `json:"instanceModifications,omitempty"`

	// raw holds the stored bytes of a rule that failed to decode, so a
	// rewrite of the map does not lose them.
	raw []byte
}

type plainRepeatConfig RepeatConfig

// UnmarshalJSON never fails: an undecodable rule is kept verbatim and
// behaves as disabled.
func (r *RepeatConfig) UnmarshalJSON(data []byte) error {
	var p plainRepeatConfig
	if err := sonic.ConfigStd.Unmarshal(data, &p); err != nil {
		*r = RepeatConfig{raw: append([]byte(nil), data...)}
		return nil
	}
	*r = RepeatConfig(p)
	r.raw = nil
	return nil
}

func (r RepeatConfig) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return sonic.ConfigStd.Marshal(plainRepeatConfig(r))
}

// Malformed reports whether the stored rule could not be decoded.
func (r *RepeatConfig) Malformed() bool {
	return r != nil && r.raw != nil
}

// Usable reports whether the rule is enabled and complete enough to expand.
func (r *RepeatConfig) Usable() bool {
	if r == nil || !r.Enabled || r.raw != nil {
		return false
	}
	switch r.Type {
	case RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	case RepeatLunarMonthly:
		return r.LunarDay >= 1 && r.LunarDay <= 30
	case RepeatLunarYearly:
		return r.LunarMonth >= 1 && r.LunarMonth <= 12 && r.LunarDay >= 1 && r.LunarDay <= 30
	default:
		return false
	}
}

// Step returns the interval, treating zero or negative values as 1.
func (r *RepeatConfig) Step() int {
	if r == nil || r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// Modification returns the overlay for key, if any.
func (r *RepeatConfig) Modification(key DateKey) (InstanceModification, bool) {
	if r == nil || r.InstanceModifications == nil {
		return InstanceModification{}, false
	}
	m, ok := r.InstanceModifications[key]
	return m, ok
}

func (r *RepeatConfig) Clone() *RepeatConfig {
	if r == nil {
		return nil
	}
	c := *r
	c.WeekDays = append([]int(nil), r.WeekDays...)
	c.MonthDays = append([]int(nil), r.MonthDays...)
	c.Months = append([]int(nil), r.Months...)
	c.CompletedInstances = append(DateSet(nil), r.CompletedInstances...)
	c.ExcludeDates = append(DateSet(nil), r.ExcludeDates...)
	if r.raw != nil {
		c.raw = append([]byte(nil), r.raw...)
	}
	if r.InstanceModifications != nil {
		c.InstanceModifications = make(map[DateKey]InstanceModification, len(r.InstanceModifications))
		for k, v := range r.InstanceModifications {
			c.InstanceModifications[k] = v.clone()
		}
	}
	return &c
}

// DateSet is a sorted set of date keys, stored as a JSON array.
type DateSet []DateKey

func (s DateSet) Has(d DateKey) bool {
	// Stored sets are not guaranteed to be sorted.
	for _, v := range s {
		if v == d {
			return true
		}
	}
	return false
}

// Add inserts d and reports whether the set changed.
func (s *DateSet) Add(d DateKey) bool {
	if s.Has(d) {
		return false
	}
	*s = append(*s, d)
	sort.Slice(*s, func(i, j int) bool { return (*s)[i] < (*s)[j] })
	return true
}

// Remove deletes d and reports whether the set changed.
func (s *DateSet) Remove(d DateKey) bool {
	out := (*s)[:0]
	removed := false
	for _, v := range *s {
		if v == d {
			removed = true
			continue
		}
		out = append(out, v)
	}
	*s = out
	return removed
}

// InstanceModification overrides fields of a single occurrence. A nil field
// falls back to the parent task.
type InstanceModification struct {
	Date          *DateKey      `json:"date,omitempty"`
	EndDate       *DateKey      `json:"endDate,omitempty"`
	Time          *string       `json:"time,omitempty"`
	EndTime       *string       `json:"endTime,omitempty"`
	Note          *string       `json:"note,omitempty"`
	Priority      *Priority     `json:"priority,omitempty"`
	CategoryID    *string       `json:"categoryId,omitempty"`
	ProjectID     *string       `json:"projectId,omitempty"`
	CustomGroupID *string       `json:"customGroupId,omitempty"`
	TermType      *TermType     `json:"termType,omitempty"`
	KanbanStatus  *KanbanStatus `json:"kanbanStatus,omitempty"`
}

// Merge layers the non-nil fields of o over m.
func (m InstanceModification) Merge(o InstanceModification) InstanceModification {
	if o.Date != nil {
		m.Date = o.Date
	}
	if o.EndDate != nil {
		m.EndDate = o.EndDate
	}
	if o.Time != nil {
		m.Time = o.Time
	}
	if o.EndTime != nil {
		m.EndTime = o.EndTime
	}
	if o.Note != nil {
		m.Note = o.Note
	}
	if o.Priority != nil {
		m.Priority = o.Priority
	}
	if o.CategoryID != nil {
		m.CategoryID = o.CategoryID
	}
	if o.ProjectID != nil {
		m.ProjectID = o.ProjectID
	}
	if o.CustomGroupID != nil {
		m.CustomGroupID = o.CustomGroupID
	}
	if o.TermType != nil {
		m.TermType = o.TermType
	}
	if o.KanbanStatus != nil {
		m.KanbanStatus = o.KanbanStatus
	}
	return m
}

func (m InstanceModification) IsEmpty() bool {
	return m == InstanceModification{}
}

func (m InstanceModification) clone() InstanceModification {
	return InstanceModification{
		Date:          copyPtr(m.Date),
		EndDate:       copyPtr(m.EndDate),
		Time:          copyPtr(m.Time),
		EndTime:       copyPtr(m.EndTime),
		Note:          copyPtr(m.Note),
		Priority:      copyPtr(m.Priority),
		CategoryID:    copyPtr(m.CategoryID),
		ProjectID:     copyPtr(m.ProjectID),
		CustomGroupID: copyPtr(m.CustomGroupID),
		TermType:      copyPtr(m.TermType),
		KanbanStatus:  copyPtr(m.KanbanStatus),
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Instance is one materialized occurrence of a recurring task. The embedded
// Task is the merged view; its ID is the instance id and its Repeat is nil.
type Instance struct {
	Task
	OriginalID string
	DateKey    DateKey
}

func (i *Instance) IsRepeatInstance() bool { return true }

const instanceSeparator = "_"

// InstanceID builds "{originalId}_{dateKey}".
func InstanceID(originalID string, key DateKey) string {
	return originalID + instanceSeparator + string(key)
}

// SplitInstanceID recovers the original id and the originally generated
// date key by splitting on the last separator.
func SplitInstanceID(id string) (string, DateKey, bool) {
	i := strings.LastIndex(id, instanceSeparator)
	if i <= 0 || i == len(id)-1 {
		return "", "", false
	}
	key := DateKey(id[i+1:])
	if !key.Valid() {
		return "", "", false
	}
	return id[:i], key, true
}
