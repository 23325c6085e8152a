// Package overview runs the full recompute: it reads every collection,
// rebuilds both trees and derives all progress figures from scratch. Nothing
// is cached between loads.
package overview

import (
	"fmt"
	"time"

	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/hierarchy"
	"github.com/zulandar/accreditrack/internal/link"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/progress"
	"github.com/zulandar/accreditrack/internal/status"
	"github.com/zulandar/accreditrack/internal/task"
	"gorm.io/gorm"
)

// Source supplies the flat collections a board is built from.
type Source interface {
	ListSections() ([]domain.Section, error)
	ListGroups() ([]domain.Group, error)
	ListTasks() ([]domain.Task, error)
	ListLinks() ([]domain.Link, error)
}

// DBSource reads the collections from the database.
type DBSource struct {
	DB *gorm.DB
}

func (s DBSource) ListSections() ([]domain.Section, error) {
	var rows []models.Section
	if err := s.DB.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("overview: list sections: %w", err)
	}
	return domain.Sections(rows), nil
}

func (s DBSource) ListGroups() ([]domain.Group, error) {
	var rows []models.Group
	if err := s.DB.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("overview: list groups: %w", err)
	}
	return domain.Groups(rows), nil
}

func (s DBSource) ListTasks() ([]domain.Task, error) {
	var rows []models.Task
	if err := task.Preloaded(s.DB).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("overview: list tasks: %w", err)
	}
	return domain.Tasks(rows), nil
}

func (s DBSource) ListLinks() ([]domain.Link, error) {
	return link.Links(s.DB)
}

// TaskView is a task with both classifications applied.
type TaskView struct {
	domain.Task
	Tier          string `json:"tier"`
	TierLabel     string `json:"tier_label"`
	Deadline      string `json:"deadline"`
	DeadlineLabel string `json:"deadline_label,omitempty"`
	DaysUntilDue  *int   `json:"days_until_due,omitempty"`
	GroupID       string `json:"group_id,omitempty"`
}

// Counts are headline totals across the whole tracker.
type Counts struct {
	Sections  int `json:"sections"`
	Groups    int `json:"groups"`
	Tasks     int `json:"tasks"`
	Completed int `json:"completed"`
	Blocked   int `json:"blocked"`
	Overdue   int `json:"overdue"`
	Unlinked  int `json:"unlinked"`
}

// Board is one complete recompute.
type Board struct {
	GeneratedAt    time.Time               `json:"generated_at"`
	Today          time.Time               `json:"today"`
	ReportProgress int                     `json:"report_progress"`
	Plan           progress.Plan           `json:"plan"`
	Sections       []*progress.SectionCard `json:"sections"`
	Groups         []*progress.GroupCard   `json:"groups"`
	Tasks          []TaskView              `json:"tasks"`
	Counts         Counts                  `json:"counts"`
}

// Load fetches every collection from src and derives a Board as of today.
func Load(src Source, today time.Time) (*Board, error) {
	sections, err := src.ListSections()
	if err != nil {
		return nil, err
	}
	groups, err := src.ListGroups()
	if err != nil {
		return nil, err
	}
	tasks, err := src.ListTasks()
	if err != nil {
		return nil, err
	}
	links, err := src.ListLinks()
	if err != nil {
		return nil, err
	}
	return Compute(sections, groups, tasks, links, today), nil
}

// Compute derives a Board from already-loaded collections.
func Compute(sections []domain.Section, groups []domain.Group, tasks []domain.Task, links []domain.Link, today time.Time) *Board {
	sectionRoots := hierarchy.Build(sections)
	groupRoots := hierarchy.Build(groups)

	linked := progress.LinkedByGroup(links, tasks)
	groupCards := progress.AnnotateGroups(groupRoots, linked)

	b := &Board{
		GeneratedAt:    time.Now(),
		Today:          today,
		ReportProgress: progress.ReportProgress(sectionRoots, tasks),
		Plan:           progress.PlanProgress(progress.TopLevelStats(groupCards)),
		Sections:       progress.AnnotateSections(sectionRoots, tasks),
		Groups:         groupCards,
		Tasks:          make([]TaskView, 0, len(tasks)),
		Counts: Counts{
			Sections: hierarchy.Count(sectionRoots),
			Groups:   hierarchy.Count(groupRoots),
			Tasks:    len(tasks),
		},
	}

	groupOf := make(map[string]string, len(links))
	for _, l := range links {
		groupOf[l.TaskID] = l.GroupID
	}
	for _, t := range tasks {
		v := View(t, today)
		v.GroupID = groupOf[t.ID]
		b.Tasks = append(b.Tasks, v)

		if progress.ClampStatus(t.Status) == progress.Complete {
			b.Counts.Completed++
		}
		if t.Blocked {
			b.Counts.Blocked++
		}
		if t.Deadline(today) == status.Overdue {
			b.Counts.Overdue++
		}
		if v.GroupID == "" {
			b.Counts.Unlinked++
		}
	}
	return b
}

// View classifies a single task as of today.
func View(t domain.Task, today time.Time) TaskView {
	tier := t.ProgressTier()
	dl := t.Deadline(today)
	v := TaskView{
		Task:          t,
		Tier:          tier.String(),
		TierLabel:     tier.Label(),
		Deadline:      dl.String(),
		DeadlineLabel: dl.Label(),
	}
	if t.DueDate != nil {
		days := status.DaysUntil(*t.DueDate, today)
		v.DaysUntilDue = &days
	}
	return v
}
