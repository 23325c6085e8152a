// Package status classifies tasks along two independent axes: how far along
// the work is (progress tier) and how urgent its deadline is (deadline tier).
package status

import "time"

// Tier is the progress tier of a task.
type Tier int

const (
	Blocked Tier = iota
	Planned
	Active
	Advanced
	Completing
)

// Gradient is a two-stop color descriptor for progress bars.
type Gradient struct {
	From string
	To   string
}

// TierInfo is the fixed display descriptor for a progress tier.
type TierInfo struct {
	Tier     Tier
	Key      string
	Label    string
	Gradient Gradient
}

var tierTable = map[Tier]TierInfo{
	Blocked:    {Blocked, "blocked", "Blocked", Gradient{"#f87171", "#b91c1c"}},
	Planned:    {Planned, "planned", "Planned", Gradient{"#cbd5e1", "#64748b"}},
	Active:     {Active, "active", "Active", Gradient{"#fcd34d", "#d97706"}},
	Advanced:   {Advanced, "advanced", "Advanced", Gradient{"#93c5fd", "#2563eb"}},
	Completing: {Completing, "completing", "Completing", Gradient{"#86efac", "#16a34a"}},
}

// ClassifyProgress maps a progress value and blocked flag to a tier.
// Blocked wins regardless of status.
func ClassifyProgress(status int, blocked bool) Tier {
	if blocked {
		return Blocked
	}
	switch {
	case status >= 75:
		return Completing
	case status >= 50:
		return Advanced
	case status >= 25:
		return Active
	default:
		return Planned
	}
}

// Info returns the display descriptor for t.
func (t Tier) Info() TierInfo {
	return tierTable[t]
}

// Label returns the human-readable tier name.
func (t Tier) Label() string {
	return tierTable[t].Label
}

// Gradient returns the progress-bar gradient for t.
func (t Tier) Gradient() Gradient {
	return tierTable[t].Gradient
}

func (t Tier) String() string {
	if info, ok := tierTable[t]; ok {
		return info.Key
	}
	return "unknown"
}

// Deadline is the urgency tier of a task's due date.
type Deadline int

const (
	DeadlineBlocked Deadline = iota
	Done
	NoLabel
	Overdue
	DeadlineSoon
	Approaching
	InProgress
)

// DeadlineInfo is the fixed badge descriptor for a deadline tier.
// NoLabel has an empty Label: the badge is suppressed.
type DeadlineInfo struct {
	Deadline Deadline
	Key      string
	Label    string
	Accent   string
}

var deadlineTable = map[Deadline]DeadlineInfo{
	DeadlineBlocked: {DeadlineBlocked, "blocked", "Blocked", "#dc2626"},
	Done:            {Done, "done", "Done", "#16a34a"},
	NoLabel:         {NoLabel, "no_label", "", ""},
	Overdue:         {Overdue, "overdue", "Overdue", "#b91c1c"},
	DeadlineSoon:    {DeadlineSoon, "deadline_soon", "Deadline soon", "#ea580c"},
	Approaching:     {Approaching, "approaching", "Approaching", "#ca8a04"},
	InProgress:      {InProgress, "in_progress", "In progress", "#2563eb"},
}

// Soon and approaching windows, in whole days before the due date.
const (
	SoonWindow        = 7
	ApproachingWindow = 14
)

// ClassifyDeadline evaluates the urgency of a task. Checks run in priority
// order: blocked, done, not started, then the due date. Only the calendar
// date of due and today is compared. A task without a due date that is in
// progress has no urgency and reports InProgress.
func ClassifyDeadline(status int, blocked bool, due *time.Time, today time.Time) Deadline {
	switch {
	case blocked:
		return DeadlineBlocked
	case status >= 100:
		return Done
	case status <= 0:
		return NoLabel
	case due == nil || due.IsZero():
		return InProgress
	}

	days := DaysUntil(*due, today)
	switch {
	case days < 0:
		return Overdue
	case days <= SoonWindow:
		return DeadlineSoon
	case days > ApproachingWindow:
		return InProgress
	default:
		return Approaching
	}
}

// DaysUntil returns the number of calendar days from today until due.
// Negative values mean due is in the past.
func DaysUntil(due, today time.Time) int {
	d := dateOnly(due)
	t := dateOnly(today)
	return int(d.Sub(t).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Info returns the badge descriptor for d.
func (d Deadline) Info() DeadlineInfo {
	return deadlineTable[d]
}

// Label returns the badge text; empty for NoLabel.
func (d Deadline) Label() string {
	return deadlineTable[d].Label
}

func (d Deadline) String() string {
	if info, ok := deadlineTable[d]; ok {
		return info.Key
	}
	return "unknown"
}
