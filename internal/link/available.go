package link

import (
	"fmt"
	"strings"

	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/hierarchy"
	"github.com/zulandar/accreditrack/internal/models"
	"github.com/zulandar/accreditrack/internal/status"
	"github.com/zulandar/accreditrack/internal/task"
	"gorm.io/gorm"
)

// Filter narrows the available pool. Zero fields match everything; set
// fields AND together.
type Filter struct {
	// Search matches task title, section number or section title,
	// case-insensitively.
	Search string
	Bucket status.Bucket
	// SectionID must name a level-1 section. Tasks anywhere in its subtree
	// match.
	SectionID string
}

// Scope returns the ids of the level-1 section sectionID and every section
// below it.
func Scope(roots []*hierarchy.Node[domain.Section], sectionID string) (map[string]struct{}, error) {
	var root *hierarchy.Node[domain.Section]
	for _, r := range roots {
		if r.Item.ID == sectionID {
			root = r
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotTopLevel, sectionID)
	}
	scope := map[string]struct{}{sectionID: {}}
	for _, id := range hierarchy.Descendants(roots, sectionID) {
		scope[id] = struct{}{}
	}
	return scope, nil
}

// FilterAvailable returns the tasks not in linked that pass f. scope
// restricts to tasks owned by those sections; nil means every section.
// Input order is preserved.
func FilterAvailable(tasks []domain.Task, linked map[string]struct{}, f Filter, scope map[string]struct{}) []domain.Task {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	var out []domain.Task
	for _, t := range tasks {
		if _, ok := linked[t.ID]; ok {
			continue
		}
		if !f.Bucket.Contains(t.Status) {
			continue
		}
		if scope != nil {
			if _, ok := scope[t.SectionID]; !ok {
				continue
			}
		}
		if needle != "" && !matches(t, needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matches(t domain.Task, needle string) bool {
	for _, field := range []string{t.Title, t.Section.Number, t.Section.Title} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Available loads every task and returns those in no group that pass f.
func Available(db *gorm.DB, f Filter) ([]domain.Task, error) {
	var scope map[string]struct{}
	if f.SectionID != "" {
		var sections []models.Section
		if err := db.Find(&sections).Error; err != nil {
			return nil, fmt.Errorf("link: load sections: %w", err)
		}
		var err error
		scope, err = Scope(hierarchy.Build(domain.Sections(sections)), f.SectionID)
		if err != nil {
			return nil, err
		}
	}

	linked, err := AllLinkedTaskIDs(db)
	if err != nil {
		return nil, err
	}
	var rows []models.Task
	if err := task.Preloaded(db).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("link: load tasks: %w", err)
	}
	return FilterAvailable(domain.Tasks(rows), linked, f, scope), nil
}
