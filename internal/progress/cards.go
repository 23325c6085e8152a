package progress

import (
	"time"

	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/hierarchy"
	"github.com/zulandar/accreditrack/internal/status"
)

// SectionCard is a section annotated for display.
type SectionCard struct {
	domain.Section
	Progress     int            `json:"progress"`
	Tier         string         `json:"tier"`
	TaskCount    int            `json:"task_count"`
	OpenTasks    int            `json:"open_tasks"`
	NextDeadline *time.Time     `json:"next_deadline,omitempty"`
	Children     []*SectionCard `json:"children,omitempty"`
}

// GroupCard is a group annotated with its linked-task statistics.
type GroupCard struct {
	domain.Group
	Stats
	Tier     string       `json:"tier"`
	Children []*GroupCard `json:"children,omitempty"`
}

// AnnotateSections computes a card for every section in the outline. Each
// card reflects only tasks owned directly by that section.
func AnnotateSections(roots []*hierarchy.Node[domain.Section], tasks []domain.Task) []*SectionCard {
	owned := make(map[string][]domain.Task)
	for _, t := range tasks {
		owned[t.SectionID] = append(owned[t.SectionID], t)
	}

	cards := make(map[*hierarchy.Node[domain.Section]]*SectionCard)
	hierarchy.Walk(roots, func(n *hierarchy.Node[domain.Section], _ int) bool {
		cards[n] = sectionCard(n.Item, owned[n.Item.ID])
		return true
	})

	out := make([]*SectionCard, 0, len(roots))
	hierarchy.Walk(roots, func(n *hierarchy.Node[domain.Section], depth int) bool {
		card := cards[n]
		if depth == 0 {
			out = append(out, card)
		}
		for _, c := range n.Children {
			card.Children = append(card.Children, cards[c])
		}
		return true
	})
	return out
}

func sectionCard(s domain.Section, owned []domain.Task) *SectionCard {
	p := SectionProgress(s, owned)
	card := &SectionCard{
		Section:   s,
		Progress:  p,
		Tier:      status.ClassifyProgress(p, false).String(),
		TaskCount: len(owned),
	}
	for _, t := range owned {
		if ClampStatus(t.Status) >= Complete {
			continue
		}
		card.OpenTasks++
		if t.DueDate != nil && (card.NextDeadline == nil || t.DueDate.Before(*card.NextDeadline)) {
			d := *t.DueDate
			card.NextDeadline = &d
		}
	}
	return card
}

// AnnotateGroups computes a card for every group in the plan from the tasks
// linked directly to it.
func AnnotateGroups(roots []*hierarchy.Node[domain.Group], linked map[string][]domain.Task) []*GroupCard {
	cards := make(map[*hierarchy.Node[domain.Group]]*GroupCard)
	hierarchy.Walk(roots, func(n *hierarchy.Node[domain.Group], _ int) bool {
		st := GroupStats(linked[n.Item.ID])
		cards[n] = &GroupCard{
			Group: n.Item,
			Stats: st,
			Tier:  status.ClassifyProgress(st.Progress, false).String(),
		}
		return true
	})

	out := make([]*GroupCard, 0, len(roots))
	hierarchy.Walk(roots, func(n *hierarchy.Node[domain.Group], depth int) bool {
		card := cards[n]
		if depth == 0 {
			out = append(out, card)
		}
		for _, c := range n.Children {
			card.Children = append(card.Children, cards[c])
		}
		return true
	})
	return out
}

// TopLevelStats returns the stats of the root cards, in order.
func TopLevelStats(cards []*GroupCard) []Stats {
	out := make([]Stats, len(cards))
	for i, c := range cards {
		out[i] = c.Stats
	}
	return out
}
