// Package export writes a board to an XLSX workbook for committee review.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/zulandar/accreditrack/internal/overview"
	"github.com/zulandar/accreditrack/internal/progress"
)

// Sheet names, in workbook order.
const (
	SectionsSheet = "Sections"
	PlanSheet     = "Plan"
	TasksSheet    = "Tasks"
)

const dateLayout = "2006-01-02"

var (
	sectionHeaders = []string{"Number", "Title", "Level", "Progress", "Tier", "Tasks", "Open", "Next deadline", "Documents"}
	planHeaders    = []string{"Number", "Title", "Level", "Fixed", "Progress", "Tasks", "Completed", "Blocked"}
	taskHeaders    = []string{"ID", "Title", "Section", "Owner", "Status", "Tier", "Deadline", "Due", "Blocked reason", "Group"}
)

// Workbook builds the three-sheet workbook for b. The caller closes it.
func Workbook(b *overview.Board) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SectionsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: rename default sheet: %w", err)
	}
	for _, name := range []string{PlanSheet, TasksSheet} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("export: create sheet %s: %w", name, err)
		}
	}

	if err := writeRows(f, SectionsSheet, header, sectionHeaders, sectionRows(b.Sections)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, PlanSheet, header, planHeaders, planRows(b)); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, TasksSheet, header, taskHeaders, taskRows(b.Tasks)); err != nil {
		f.Close()
		return nil, err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Bytes renders the complete workbook for b in memory, so callers can
// report a failure before sending any of it.
func Bytes(b *overview.Board) ([]byte, error) {
	f, err := Workbook(b)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile saves the workbook for b at path.
func WriteFile(b *overview.Board, path string) error {
	f, err := Workbook(b)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, style int, headers []string, rows [][]interface{}) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("export: %s header: %w", sheet, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("export: %s header style: %w", sheet, err)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("export: %s row %d: %w", sheet, r+2, err)
			}
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
		return fmt.Errorf("export: %s widths: %w", sheet, err)
	}
	return nil
}

// sectionRows flattens the outline in display order; titles are indented by
// depth.
func sectionRows(roots []*progress.SectionCard) [][]interface{} {
	type item struct {
		card  *progress.SectionCard
		depth int
	}
	stack := make([]item, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{roots[i], 0})
	}

	var rows [][]interface{}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := it.card

		next := ""
		if c.NextDeadline != nil {
			next = c.NextDeadline.Format(dateLayout)
		}
		rows = append(rows, []interface{}{
			c.Number,
			strings.Repeat("  ", it.depth) + c.Title,
			c.Level,
			c.Progress,
			c.Tier,
			c.TaskCount,
			c.OpenTasks,
			next,
			fmt.Sprintf("%d/%d", c.DocumentsUploaded, c.DocumentsRequired),
		})
		for i := len(c.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{c.Children[i], it.depth + 1})
		}
	}
	return rows
}

// planRows flattens the plan and appends the top-line summary.
func planRows(b *overview.Board) [][]interface{} {
	type item struct {
		card  *progress.GroupCard
		depth int
	}
	stack := make([]item, 0, len(b.Groups))
	for i := len(b.Groups) - 1; i >= 0; i-- {
		stack = append(stack, item{b.Groups[i], 0})
	}

	var rows [][]interface{}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := it.card
		fixed := ""
		if c.IsFixed {
			fixed = "yes"
		}
		rows = append(rows, []interface{}{
			c.Number,
			strings.Repeat("  ", it.depth) + c.Title,
			c.Level,
			fixed,
			c.Progress,
			c.TaskCount,
			c.CompletedCount,
			c.BlockedCount,
		})
		for i := len(c.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{c.Children[i], it.depth + 1})
		}
	}
	rows = append(rows, nil, []interface{}{
		"", "Overall", "", "", b.Plan.Progress, b.Plan.TaskCount, b.Plan.CompletedCount, "",
	})
	return rows
}

func taskRows(tasks []overview.TaskView) [][]interface{} {
	rows := make([][]interface{}, 0, len(tasks))
	for _, t := range tasks {
		owner := t.OwnerID
		if t.Owner != nil {
			owner = t.Owner.Name
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format(dateLayout)
		}
		section := t.Section.Number
		if t.Section.Title != "" {
			section += " " + t.Section.Title
		}
		rows = append(rows, []interface{}{
			t.ID,
			t.Title,
			section,
			owner,
			t.Status,
			t.TierLabel,
			t.DeadlineLabel,
			due,
			t.BlockedReason,
			t.GroupID,
		})
	}
	return rows
}
