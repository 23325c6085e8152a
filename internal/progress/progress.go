// Package progress computes roll-up progress for the section outline and the
// plan. Sections use the bottleneck policy (minimum of owned task progress);
// groups use the mean of their linked tasks. Neither policy recurses into
// child nodes.
package progress

import (
	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/hierarchy"
)

// Complete is the status value of a finished task.
const Complete = 100

// Stats are the derived counters of a group.
type Stats struct {
	TaskCount      int `json:"task_count"`
	CompletedCount int `json:"completed_count"`
	BlockedCount   int `json:"blocked_count"`
	Progress       int `json:"progress"`
}

// Plan is the top-line figure for the plan hierarchy.
type Plan struct {
	CompletedCount int `json:"completed_count"`
	TaskCount      int `json:"task_count"`
	Progress       int `json:"progress"`
}

// SectionProgress returns the lowest status among tasks owned directly by
// section, or 0 when it owns none.
func SectionProgress(section domain.Section, tasks []domain.Task) int {
	lowest, found := 0, false
	for _, t := range tasks {
		if t.SectionID != section.ID {
			continue
		}
		s := ClampStatus(t.Status)
		if !found || s < lowest {
			lowest, found = s, true
		}
	}
	return lowest
}

// GroupStats computes the counters of a group from the tasks linked to it.
func GroupStats(linked []domain.Task) Stats {
	var st Stats
	sum := 0
	for _, t := range linked {
		s := ClampStatus(t.Status)
		st.TaskCount++
		sum += s
		if s == Complete {
			st.CompletedCount++
		}
		if t.Blocked {
			st.BlockedCount++
		}
	}
	st.Progress = RoundDiv(sum, st.TaskCount)
	return st
}

// ComputeGroupStats computes the counters of g from the links that name it.
// Links to other groups and to unknown tasks are ignored, and the result is
// clamped.
func ComputeGroupStats(g domain.Group, links []domain.Link, tasks []domain.Task) Stats {
	own := make([]domain.Link, 0, len(links))
	for _, l := range links {
		if l.GroupID == g.ID {
			own = append(own, l)
		}
	}
	return GroupStats(LinkedByGroup(own, tasks)[g.ID]).Clamp()
}

// Clamp returns s with negative counters reset to zero and progress held in
// [0,100].
func (s Stats) Clamp() Stats {
	return Stats{
		TaskCount:      nonNegative(s.TaskCount),
		CompletedCount: nonNegative(s.CompletedCount),
		BlockedCount:   nonNegative(s.BlockedCount),
		Progress:       ClampStatus(s.Progress),
	}
}

// ReportProgress is the unweighted mean of the level-1 sections' progress.
func ReportProgress(roots []*hierarchy.Node[domain.Section], tasks []domain.Task) int {
	sum := 0
	for _, r := range roots {
		sum += SectionProgress(r.Item, tasks)
	}
	return RoundDiv(sum, len(roots))
}

// PlanProgress sums the completed and total counters of the level-1 groups
// only; nested groups' links are not folded in.
func PlanProgress(level1 []Stats) Plan {
	var p Plan
	for _, s := range level1 {
		s = s.Clamp()
		p.CompletedCount += s.CompletedCount
		p.TaskCount += s.TaskCount
	}
	p.Progress = RoundDiv(Complete*p.CompletedCount, p.TaskCount)
	return p
}

// LinkedByGroup resolves links to tasks keyed by group id. Links to unknown
// tasks are dropped.
func LinkedByGroup(links []domain.Link, tasks []domain.Task) map[string][]domain.Task {
	byID := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	out := make(map[string][]domain.Task)
	for _, l := range links {
		if t, ok := byID[l.TaskID]; ok {
			out[l.GroupID] = append(out[l.GroupID], t)
		}
	}
	return out
}

// RoundDiv divides num by den rounding half up. It returns 0 when den is
// not positive and never returns a negative value.
func RoundDiv(num, den int) int {
	if den <= 0 || num <= 0 {
		return 0
	}
	return (2*num + den) / (2 * den)
}

// ClampStatus holds a progress value in [0,100].
func ClampStatus(s int) int {
	switch {
	case s < 0:
		return 0
	case s > Complete:
		return Complete
	}
	return s
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
