// Package snapshot records the headline progress figures over time so the
// trend toward submission can be charted.
package snapshot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/overview"
	"gorm.io/gorm"
)

// FromBoard extracts the persisted figures from a recompute.
func FromBoard(b *overview.Board, at time.Time) models.ProgressSnapshot {
	return models.ProgressSnapshot{
		TakenAt:        at,
		ReportProgress: b.ReportProgress,
		PlanProgress:   b.Plan.Progress,
		SectionCount:   b.Counts.Sections,
		GroupCount:     b.Counts.Groups,
		TaskCount:      b.Counts.Tasks,
		CompletedCount: b.Counts.Completed,
		BlockedCount:   b.Counts.Blocked,
		OverdueCount:   b.Counts.Overdue,
	}
}

// Take recomputes the board as of now and stores a snapshot of it.
func Take(db *gorm.DB, now time.Time) (*models.ProgressSnapshot, error) {
	board, err := overview.Load(overview.DBSource{DB: db}, now)
	if err != nil {
		return nil, fmt.Errorf("snapshot: load board: %w", err)
	}
	snap := FromBoard(board, now)
	if err := db.Create(&snap).Error; err != nil {
		return nil, fmt.Errorf("snapshot: save: %w", err)
	}
	return &snap, nil
}

// List returns the most recent snapshots, newest first. limit <= 0 returns
// all of them.
func List(db *gorm.DB, limit int) ([]models.ProgressSnapshot, error) {
	q := db.Order("taken_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	snaps := []models.ProgressSnapshot{}
	if err := q.Find(&snaps).Error; err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	return snaps, nil
}

// Scheduler takes a snapshot each time Schedule fires.
type Scheduler struct {
	DB       *gorm.DB
	Schedule string

	// OnTake, when set, is called after each successful snapshot.
	OnTake func(*models.ProgressSnapshot)
}

// NextDelay returns how long until expr next fires after now.
func NextDelay(expr string, now time.Time) (time.Duration, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return 0, fmt.Errorf("snapshot: parse schedule %q: %w", expr, err)
	}
	d := sched.Next(now).Sub(now)
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// Run blocks until ctx is cancelled, taking a snapshot on every tick.
// Failed snapshots are logged and the schedule continues.
func (s *Scheduler) Run(ctx context.Context) error {
	d, err := NextDelay(s.Schedule, time.Now())
	if err != nil {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	log.Printf("snapshot: scheduled %q, next in %s", s.Schedule, d.Round(time.Second))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			s.fire()
			d, err := NextDelay(s.Schedule, time.Now())
			if err != nil {
				return err
			}
			timer.Reset(d)
		}
	}
}

func (s *Scheduler) fire() {
	snap, err := Take(s.DB, time.Now())
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	log.Printf("snapshot: report %d%%, plan %d%%, %d/%d tasks complete",
		snap.ReportProgress, snap.PlanProgress, snap.CompletedCount, snap.TaskCount)
	if s.OnTake != nil {
		s.OnTake(snap)
	}
}
