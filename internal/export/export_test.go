package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/overview"
)

func board() *overview.Board {
	today := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	return overview.Compute(
		[]domain.Section{
			{ID: "s1", Number: "1", Title: "Mission", Level: 1, SortOrder: 1, DocumentsRequired: 4, DocumentsUploaded: 1},
			{ID: "s11", Number: "1.1", Title: "Goals", Level: 2, ParentID: "s1", SortOrder: 1},
			{ID: "s2", Number: "2", Title: "Governance", Level: 1, SortOrder: 2},
		},
		[]domain.Group{
			{ID: "g1", Number: "1", Title: "Planning", Level: 1, SortOrder: 1, IsFixed: true},
		},
		[]domain.Task{
			{ID: "t1", Title: "Draft statement", SectionID: "s1", Section: domain.SectionRef{ID: "s1", Number: "1", Title: "Mission"}, Status: 40, DueDate: &due, Owner: &domain.Profile{ID: "p1", Name: "Ada"}},
			{ID: "t2", Title: "Board minutes", SectionID: "s2", Section: domain.SectionRef{ID: "s2", Number: "2"}, Status: 100, OwnerID: "p2"},
		},
		[]domain.Link{{GroupID: "g1", TaskID: "t1"}},
		today,
	)
}

func TestWorkbook_Sheets(t *testing.T) {
	f, err := Workbook(board())
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	got := f.GetSheetList()
	want := []string{SectionsSheet, PlanSheet, TasksSheet}
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestWorkbook_SectionsOutlineOrder(t *testing.T) {
	f, err := Workbook(board())
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SectionsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if rows[0][0] != "Number" {
		t.Errorf("header = %v", rows[0])
	}
	order := []string{rows[1][0], rows[2][0], rows[3][0]}
	if order[0] != "1" || order[1] != "1.1" || order[2] != "2" {
		t.Errorf("outline order = %v, want 1, 1.1, 2", order)
	}
	if rows[2][1] != "  Goals" {
		t.Errorf("child title = %q, want indented", rows[2][1])
	}
	if rows[1][3] != "40" || rows[1][7] != "2026-10-20" || rows[1][8] != "1/4" {
		t.Errorf("s1 row = %v", rows[1])
	}
}

func TestWorkbook_PlanAndTasks(t *testing.T) {
	f, err := Workbook(board())
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	plan, err := f.GetRows(PlanSheet)
	if err != nil {
		t.Fatalf("GetRows plan: %v", err)
	}
	if plan[1][1] != "Planning" || plan[1][3] != "yes" || plan[1][4] != "40" {
		t.Errorf("g1 row = %v", plan[1])
	}
	last := plan[len(plan)-1]
	if last[1] != "Overall" || last[4] != "0" || last[5] != "1" {
		t.Errorf("summary row = %v", last)
	}

	tasks, err := f.GetRows(TasksSheet)
	if err != nil {
		t.Fatalf("GetRows tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("task rows = %d, want 3", len(tasks))
	}
	if tasks[1][2] != "1 Mission" || tasks[1][3] != "Ada" || tasks[1][6] != "Deadline soon" || tasks[1][9] != "g1" {
		t.Errorf("t1 row = %v", tasks[1])
	}
	if tasks[2][3] != "p2" || tasks[2][5] != "Completing" {
		t.Errorf("t2 row = %v", tasks[2])
	}
}

func TestBytesAndWriteFile(t *testing.T) {
	data, err := Bytes(board())
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	rendered, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer rendered.Close()
	if got := rendered.GetSheetList(); len(got) != 3 || got[0] != SectionsSheet {
		t.Errorf("rendered sheets = %v", got)
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := WriteFile(board(), path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) != 3 {
		t.Errorf("sheets = %v", f.GetSheetList())
	}
}
