package progress

import (
	"testing"
	"time"

	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/hierarchy"
)

func tasksIn(section string, statuses ...int) []domain.Task {
	out := make([]domain.Task, len(statuses))
	for i, s := range statuses {
		out[i] = domain.Task{ID: section + "-t" + string(rune('a'+i)), SectionID: section, Status: s}
	}
	return out
}

func TestSectionProgress_NoTasks(t *testing.T) {
	sec := domain.Section{ID: "s1"}
	if got := SectionProgress(sec, nil); got != 0 {
		t.Errorf("SectionProgress(no tasks) = %d, want 0", got)
	}
	// Tasks belonging to other sections do not count.
	if got := SectionProgress(sec, tasksIn("s2", 80)); got != 0 {
		t.Errorf("SectionProgress(foreign tasks) = %d, want 0", got)
	}
}

func TestSectionProgress_Bottleneck(t *testing.T) {
	sec := domain.Section{ID: "s1"}
	tasks := append(tasksIn("s1", 10, 80, 100), tasksIn("s2", 0)...)
	if got := SectionProgress(sec, tasks); got != 10 {
		t.Errorf("SectionProgress = %d, want 10", got)
	}
}

func TestSectionProgress_ClampsStatus(t *testing.T) {
	sec := domain.Section{ID: "s1"}
	if got := SectionProgress(sec, tasksIn("s1", 150, 120)); got != 100 {
		t.Errorf("SectionProgress = %d, want 100", got)
	}
	if got := SectionProgress(sec, tasksIn("s1", -5, 40)); got != 0 {
		t.Errorf("SectionProgress = %d, want 0", got)
	}
}

func TestGroupStats_Example(t *testing.T) {
	linked := tasksIn("s1", 0, 50, 100, 100)
	linked[1].Blocked = true

	st := GroupStats(linked)
	want := Stats{TaskCount: 4, CompletedCount: 2, BlockedCount: 1, Progress: 63}
	if st != want {
		t.Errorf("GroupStats = %+v, want %+v", st, want)
	}
}

func TestGroupStats_Empty(t *testing.T) {
	if st := GroupStats(nil); st != (Stats{}) {
		t.Errorf("GroupStats(nil) = %+v, want zero", st)
	}
}

func TestGroupStats_MeanRounding(t *testing.T) {
	tests := []struct {
		statuses []int
		want     int
	}{
		{[]int{33, 34}, 34},     // 33.5 rounds up
		{[]int{10, 10, 11}, 10}, // 10.33
		{[]int{0, 1}, 1},        // 0.5 rounds up
		{[]int{100}, 100},
	}
	for _, tt := range tests {
		if got := GroupStats(tasksIn("s", tt.statuses...)).Progress; got != tt.want {
			t.Errorf("GroupStats(%v).Progress = %d, want %d", tt.statuses, got, tt.want)
		}
	}
}

func TestComputeGroupStats_FiltersByGroup(t *testing.T) {
	tasks := tasksIn("s1", 0, 50, 100, 100, 20)
	tasks[1].Blocked = true
	links := []domain.Link{
		{GroupID: "g1", TaskID: "s1-ta"},
		{GroupID: "g1", TaskID: "s1-tb"},
		{GroupID: "g1", TaskID: "s1-tc"},
		{GroupID: "g1", TaskID: "s1-td"},
		{GroupID: "g2", TaskID: "s1-te"},
		{GroupID: "g1", TaskID: "gone"},
	}

	st := ComputeGroupStats(domain.Group{ID: "g1"}, links, tasks)
	want := Stats{TaskCount: 4, CompletedCount: 2, BlockedCount: 1, Progress: 63}
	if st != want {
		t.Errorf("ComputeGroupStats(g1) = %+v, want %+v", st, want)
	}
	if st := ComputeGroupStats(domain.Group{ID: "g3"}, links, tasks); st != (Stats{}) {
		t.Errorf("ComputeGroupStats(unlinked) = %+v, want zero", st)
	}
}

func TestStats_Clamp(t *testing.T) {
	got := Stats{TaskCount: -3, CompletedCount: -1, BlockedCount: 2, Progress: 140}.Clamp()
	want := Stats{TaskCount: 0, CompletedCount: 0, BlockedCount: 2, Progress: 100}
	if got != want {
		t.Errorf("Clamp = %+v, want %+v", got, want)
	}
}

func TestRoundDiv(t *testing.T) {
	tests := []struct{ num, den, want int }{
		{250, 4, 63},
		{0, 0, 0},
		{5, 0, 0},
		{-5, 2, 0},
		{200, 3, 67},
		{100, 3, 33},
	}
	for _, tt := range tests {
		if got := RoundDiv(tt.num, tt.den); got != tt.want {
			t.Errorf("RoundDiv(%d, %d) = %d, want %d", tt.num, tt.den, got, tt.want)
		}
	}
}

func sectionTree() []*hierarchy.Node[domain.Section] {
	return hierarchy.Build([]domain.Section{
		{ID: "s1", Number: "1", Level: 1, SortOrder: 1},
		{ID: "s2", Number: "2", Level: 1, SortOrder: 2},
		{ID: "s11", Number: "1.1", Level: 2, ParentID: "s1", SortOrder: 1},
		{ID: "s111", Number: "1.1.1", Level: 3, ParentID: "s11", SortOrder: 1},
	})
}

func TestReportProgress(t *testing.T) {
	roots := sectionTree()
	tasks := append(tasksIn("s1", 40, 90), tasksIn("s2", 81)...)
	// Child section tasks do not roll up into s1.
	tasks = append(tasks, tasksIn("s11", 0)...)

	// mean(40, 81) = 60.5 → 61
	if got := ReportProgress(roots, tasks); got != 61 {
		t.Errorf("ReportProgress = %d, want 61", got)
	}
	if got := ReportProgress(nil, tasks); got != 0 {
		t.Errorf("ReportProgress(no sections) = %d, want 0", got)
	}
}

func TestPlanProgress(t *testing.T) {
	p := PlanProgress([]Stats{
		{TaskCount: 4, CompletedCount: 2},
		{TaskCount: 2, CompletedCount: 0},
		{TaskCount: -1, CompletedCount: -1},
	})
	if p.TaskCount != 6 || p.CompletedCount != 2 || p.Progress != 33 {
		t.Errorf("PlanProgress = %+v, want 2/6 → 33", p)
	}
	if p := PlanProgress(nil); p != (Plan{}) {
		t.Errorf("PlanProgress(nil) = %+v, want zero", p)
	}
}

func TestAnnotateSections(t *testing.T) {
	due1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	due2 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	doneDue := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{ID: "a", SectionID: "s1", Status: 30, DueDate: &due1},
		{ID: "b", SectionID: "s1", Status: 60, DueDate: &due2},
		{ID: "c", SectionID: "s1", Status: 100, DueDate: &doneDue},
		{ID: "d", SectionID: "s111", Status: 75},
	}
	cards := AnnotateSections(sectionTree(), tasks)

	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2", len(cards))
	}
	s1 := cards[0]
	if s1.Progress != 30 || s1.TaskCount != 3 || s1.OpenTasks != 2 {
		t.Errorf("s1 card = progress %d, tasks %d, open %d", s1.Progress, s1.TaskCount, s1.OpenTasks)
	}
	if s1.NextDeadline == nil || !s1.NextDeadline.Equal(due2) {
		t.Errorf("s1 NextDeadline = %v, want %v", s1.NextDeadline, due2)
	}
	if s1.Tier != "active" {
		t.Errorf("s1 Tier = %q, want active", s1.Tier)
	}
	if len(s1.Children) != 1 || len(s1.Children[0].Children) != 1 {
		t.Fatalf("s1 subtree shape wrong: %+v", s1.Children)
	}
	leaf := s1.Children[0].Children[0]
	if leaf.ID != "s111" || leaf.Progress != 75 {
		t.Errorf("leaf = %s/%d, want s111/75", leaf.ID, leaf.Progress)
	}
	if s1.Children[0].Progress != 0 {
		t.Errorf("s11 progress = %d, want 0 (no own tasks)", s1.Children[0].Progress)
	}
	if cards[1].Progress != 0 || cards[1].NextDeadline != nil {
		t.Errorf("s2 card = %+v, want empty", cards[1])
	}
}

func TestAnnotateGroups(t *testing.T) {
	roots := hierarchy.Build([]domain.Group{
		{ID: "g1", Level: 1, SortOrder: 1},
		{ID: "g2", Level: 1, SortOrder: 2},
		{ID: "g11", Level: 2, ParentID: "g1", SortOrder: 1},
	})
	tasks := []domain.Task{
		{ID: "t1", Status: 100},
		{ID: "t2", Status: 50, Blocked: true},
		{ID: "t3", Status: 100},
		{ID: "t4", Status: 0},
	}
	links := []domain.Link{
		{GroupID: "g1", TaskID: "t1"},
		{GroupID: "g1", TaskID: "t2"},
		{GroupID: "g11", TaskID: "t3"},
		{GroupID: "g2", TaskID: "t4"},
		{GroupID: "g2", TaskID: "missing"},
	}
	cards := AnnotateGroups(roots, LinkedByGroup(links, tasks))

	if len(cards) != 2 {
		t.Fatalf("len(cards) = %d, want 2", len(cards))
	}
	g1 := cards[0]
	if g1.TaskCount != 2 || g1.CompletedCount != 1 || g1.BlockedCount != 1 || g1.Progress != 75 {
		t.Errorf("g1 stats = %+v", g1.Stats)
	}
	if len(g1.Children) != 1 || g1.Children[0].TaskCount != 1 || g1.Children[0].Progress != 100 {
		t.Errorf("g11 card = %+v", g1.Children)
	}
	if cards[1].TaskCount != 1 {
		t.Errorf("g2 TaskCount = %d, want 1 (dangling link dropped)", cards[1].TaskCount)
	}

	// Top line only counts level-1 cards: g1 (1/2) + g2 (0/1); g11 excluded.
	plan := PlanProgress(TopLevelStats(cards))
	if plan.CompletedCount != 1 || plan.TaskCount != 3 || plan.Progress != 33 {
		t.Errorf("plan = %+v, want 1/3 → 33", plan)
	}
}
