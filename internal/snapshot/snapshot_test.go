package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/zulandar/accreditrack/internal/testutil"
)

func TestNextDelay(t *testing.T) {
	now := time.Date(2026, 10, 16, 5, 30, 0, 0, time.UTC)

	tests := []struct {
		expr string
		want time.Duration
	}{
		{"0 6 * * *", 30 * time.Minute},
		{"* * * * *", time.Minute},
		{"30 5 * * *", 24 * time.Hour},
		{"@daily", 18*time.Hour + 30*time.Minute},
		{"@every 90m", 90 * time.Minute},
	}
	for _, tt := range tests {
		got, err := NextDelay(tt.expr, now)
		if err != nil {
			t.Fatalf("NextDelay(%q): %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("NextDelay(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestNextDelay_Invalid(t *testing.T) {
	if _, err := NextDelay("not a cron expr", time.Now()); err == nil {
		t.Error("expected parse error")
	}
}

func TestTake(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Profile(t, db, "p1", "Ada")
	testutil.Section(t, db, "s1", "1", 1, "")
	testutil.Section(t, db, "s2", "2", 1, "")
	testutil.Group(t, db, "g1", "1", 1, "", true)
	past := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	testutil.Task(t, db, "t1", "a", "s1", testutil.TaskOpts{OwnerID: "p1", Status: 100})
	testutil.Task(t, db, "t2", "b", "s2", testutil.TaskOpts{OwnerID: "p1", Status: 50, Due: &past})
	testutil.Task(t, db, "t3", "c", "s2", testutil.TaskOpts{OwnerID: "p1", Status: 70, Blocked: true})
	testutil.Link(t, db, "g1", "t1")
	testutil.Link(t, db, "g1", "t2")

	now := time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC)
	snap, err := Take(db, now)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if snap.ID == 0 {
		t.Error("snapshot not persisted")
	}
	// s1 = 100, s2 = min(50, 70) = 50 → 75. Plan: 1 of 2 → 50.
	if snap.ReportProgress != 75 || snap.PlanProgress != 50 {
		t.Errorf("progress = report %d plan %d, want 75 / 50", snap.ReportProgress, snap.PlanProgress)
	}
	if snap.TaskCount != 3 || snap.CompletedCount != 1 || snap.BlockedCount != 1 || snap.OverdueCount != 1 {
		t.Errorf("counts = %+v", snap)
	}
	if snap.SectionCount != 2 || snap.GroupCount != 1 {
		t.Errorf("structure counts = %d sections, %d groups", snap.SectionCount, snap.GroupCount)
	}
}

func TestList_NewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	base := time.Date(2026, 10, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := Take(db, base.AddDate(0, 0, i)); err != nil {
			t.Fatalf("Take: %v", err)
		}
	}

	snaps, err := List(db, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("len = %d, want 2", len(snaps))
	}
	if !snaps[0].TakenAt.Equal(base.AddDate(0, 0, 2)) {
		t.Errorf("first = %v, want newest", snaps[0].TakenAt)
	}

	all, err := List(db, 0)
	if err != nil || len(all) != 3 {
		t.Errorf("List(0) = %d, %v; want 3", len(all), err)
	}
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	db := testutil.NewDB(t)
	s := &Scheduler{DB: db, Schedule: "0 6 * * *"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_BadSchedule(t *testing.T) {
	s := &Scheduler{DB: testutil.NewDB(t), Schedule: "whenever"}
	if err := s.Run(context.Background()); err == nil {
		t.Error("expected error for bad schedule")
	}
}
