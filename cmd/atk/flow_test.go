package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

// writeTestConfig writes a sqlite-backed config into a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := `institution: acme
report_title: Acme Self-Study
database:
  driver: sqlite
  path: ` + filepath.Join(dir, "atk.db") + `
groups:
  - number: "1"
    title: Planning
`
	path := filepath.Join(dir, "accreditrack.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args, appending --config.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append(args, "--config", cfgPath))
	err := cmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func capture(t *testing.T, re, s string) string {
	t.Helper()
	m := regexp.MustCompile(re).FindStringSubmatch(s)
	if m == nil {
		t.Fatalf("no match for %s in:\n%s", re, s)
	}
	return m[1]
}

func fixClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })
}

func TestFlow(t *testing.T) {
	fixClock(t)
	cfg := writeTestConfig(t)

	out := mustRun(t, cfg, "db", "init")
	if !strings.Contains(out, "Migrated 8 tables") || !strings.Contains(out, "Seeded 1 fixed groups (1 new): 1") {
		t.Fatalf("db init output:\n%s", out)
	}

	out = mustRun(t, cfg, "profile", "add", "--name", "Dana Reyes", "--email", "dana@acme.edu")
	owner := capture(t, `\(([0-9a-f-]{36})\)`, out)

	out = mustRun(t, cfg, "section", "create", "--title", "Mission")
	mission := capture(t, `Created section 1 Mission \((sec-[0-9a-f]{5})\)`, out)
	out = mustRun(t, cfg, "section", "create", "--title", "Purpose", "--parent", mission)
	purpose := capture(t, `Created section 1\.1 Purpose \((sec-[0-9a-f]{5})\)`, out)

	out = mustRun(t, cfg, "task", "create", "--title", "Draft mission statement",
		"--section", purpose, "--owner", owner, "--status", "40", "--due", "2026-10-20")
	tsk := capture(t, `Created task (tsk-[0-9a-f]{5})`, out)
	if !strings.Contains(out, "Due: 2026-10-20") {
		t.Errorf("task create output:\n%s", out)
	}

	out = mustRun(t, cfg, "task", "list", "--status", "in_progress")
	if !strings.Contains(out, tsk) || !strings.Contains(out, "Dana Reyes") || !strings.Contains(out, "Deadline soon") {
		t.Errorf("task list output:\n%s", out)
	}
	out = mustRun(t, cfg, "task", "list", "--status", "completed")
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("completed list output:\n%s", out)
	}

	out = mustRun(t, cfg, "section", "tree")
	if !strings.Contains(out, "1.1 Purpose") || !strings.Contains(out, "40%") {
		t.Errorf("section tree output:\n%s", out)
	}

	out = mustRun(t, cfg, "report")
	if !strings.Contains(out, "Acme Self-Study") || !strings.Contains(out, "Needs attention") {
		t.Errorf("report output:\n%s", out)
	}

	out = mustRun(t, cfg, "group", "create", "--title", "Outreach")
	grp := capture(t, `Created group 2 Outreach \((grp-[0-9a-f]{5})\)`, out)

	out = mustRun(t, cfg, "link", "available", "--search", "mission")
	if !strings.Contains(out, tsk) {
		t.Errorf("available before link:\n%s", out)
	}
	mustRun(t, cfg, "link", "add", grp, tsk)
	out = mustRun(t, cfg, "link", "available")
	if !strings.Contains(out, "No available tasks.") {
		t.Errorf("available after link:\n%s", out)
	}
	out = mustRun(t, cfg, "link", "list", grp)
	if !strings.Contains(out, "Draft mission statement") {
		t.Errorf("link list output:\n%s", out)
	}

	out = mustRun(t, cfg, "task", "status", tsk, "100")
	if !strings.Contains(out, "100%") {
		t.Errorf("task status output:\n%s", out)
	}

	out = mustRun(t, cfg, "group", "tree")
	if !strings.Contains(out, "Plan: 1/1 tasks complete") {
		t.Errorf("group tree output:\n%s", out)
	}

	out = mustRun(t, cfg, "report", "--json")
	var board struct {
		ReportProgress int `json:"report_progress"`
		Counts         struct {
			Tasks     int `json:"tasks"`
			Completed int `json:"completed"`
		} `json:"counts"`
	}
	if err := json.Unmarshal([]byte(out), &board); err != nil {
		t.Fatalf("report --json: %v\n%s", err, out)
	}
	if board.Counts.Tasks != 1 || board.Counts.Completed != 1 {
		t.Errorf("counts = %+v", board.Counts)
	}

	out = mustRun(t, cfg, "snapshot", "take")
	if !strings.Contains(out, "1/1 tasks complete") {
		t.Errorf("snapshot take output:\n%s", out)
	}
	out = mustRun(t, cfg, "snapshot", "list")
	if !strings.Contains(out, "TAKEN") {
		t.Errorf("snapshot list output:\n%s", out)
	}

	xlsx := filepath.Join(t.TempDir(), "out.xlsx")
	out = mustRun(t, cfg, "export", "--out", xlsx)
	if !strings.Contains(out, "2 sections, 2 groups, 1 tasks") {
		t.Errorf("export output:\n%s", out)
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("export file: %v", err)
	}
}

func TestFlow_TaskBlockAndCollaborators(t *testing.T) {
	fixClock(t)
	cfg := writeTestConfig(t)
	mustRun(t, cfg, "db", "init")

	owner := capture(t, `\(([0-9a-f-]{36})\)`, mustRun(t, cfg, "profile", "add", "--name", "Dana Reyes"))
	helper := capture(t, `\(([0-9a-f-]{36})\)`, mustRun(t, cfg, "profile", "add", "--name", "Lee Park"))
	sec := capture(t, `\((sec-[0-9a-f]{5})\)`, mustRun(t, cfg, "section", "create", "--title", "Governance"))
	tsk := capture(t, `(tsk-[0-9a-f]{5})`, mustRun(t, cfg, "task", "create",
		"--title", "Board minutes", "--section", sec, "--owner", owner))

	if _, err := run(t, cfg, "task", "block", tsk); err == nil {
		t.Error("block without --reason should fail")
	}
	out := mustRun(t, cfg, "task", "block", tsk, "--reason", "waiting on the registrar")
	if !strings.Contains(out, "blocked: waiting on the registrar") {
		t.Errorf("block output:\n%s", out)
	}

	if _, err := run(t, cfg, "task", "collab", "add", tsk, owner); err == nil {
		t.Error("adding the owner as collaborator should fail")
	}
	mustRun(t, cfg, "task", "collab", "add", tsk, helper)

	out = mustRun(t, cfg, "task", "show", tsk)
	for _, want := range []string{"Board minutes", "Blocked:     waiting on the registrar", "Team:        Lee Park"} {
		if !strings.Contains(out, want) {
			t.Errorf("task show missing %q:\n%s", want, out)
		}
	}

	mustRun(t, cfg, "task", "unblock", tsk)
	out = mustRun(t, cfg, "task", "list", "--blocked", "true")
	if !strings.Contains(out, "No tasks found.") {
		t.Errorf("blocked list after unblock:\n%s", out)
	}

	if _, err := run(t, cfg, "task", "status", tsk, "high"); err == nil {
		t.Error("non-numeric status should fail")
	}
	if _, err := run(t, cfg, "task", "status", tsk, "101"); err == nil {
		t.Error("status above 100 should fail")
	}
}

func TestFlow_GroupRules(t *testing.T) {
	cfg := writeTestConfig(t)
	mustRun(t, cfg, "db", "init")

	out := mustRun(t, cfg, "group", "list")
	fixed := capture(t, `Planning.*(grp-[0-9a-f]{5})`, out)

	out, err := run(t, cfg, "group", "delete", fixed)
	if err == nil || !strings.Contains(err.Error(), "fixed") {
		t.Errorf("delete fixed: err = %v\n%s", err, out)
	}

	out = mustRun(t, cfg, "group", "update", fixed, "--title", "Planning and scoping")
	if !strings.Contains(out, "Planning and scoping") {
		t.Errorf("update output:\n%s", out)
	}
	if _, err := run(t, cfg, "group", "update", fixed); err == nil {
		t.Error("update with no flags should fail")
	}

	child := capture(t, `Created group 1\.1 .*\((grp-[0-9a-f]{5})\)`,
		mustRun(t, cfg, "group", "create", "--title", "Steering committee", "--parent", fixed))
	out = mustRun(t, cfg, "group", "delete", child)
	if !strings.Contains(out, "Deleted group "+child) {
		t.Errorf("delete output:\n%s", out)
	}
}

func TestFlow_SectionDepthAndDelete(t *testing.T) {
	cfg := writeTestConfig(t)
	mustRun(t, cfg, "db", "init")

	l1 := capture(t, `\((sec-[0-9a-f]{5})\)`, mustRun(t, cfg, "section", "create", "--title", "One"))
	l2 := capture(t, `\((sec-[0-9a-f]{5})\)`, mustRun(t, cfg, "section", "create", "--title", "Two", "--parent", l1))
	l3 := capture(t, `\((sec-[0-9a-f]{5})\)`, mustRun(t, cfg, "section", "create", "--title", "Three", "--parent", l2))
	if _, err := run(t, cfg, "section", "create", "--title", "Four", "--parent", l3); err == nil {
		t.Error("fourth level should be rejected")
	}

	out := mustRun(t, cfg, "section", "list")
	if !strings.Contains(out, "1.1.1") {
		t.Errorf("section list output:\n%s", out)
	}

	mustRun(t, cfg, "section", "delete", l1)
	out = mustRun(t, cfg, "section", "list")
	if !strings.Contains(out, "No sections found.") {
		t.Errorf("after delete:\n%s", out)
	}
}

func TestFlow_DBReset(t *testing.T) {
	cfg := writeTestConfig(t)
	mustRun(t, cfg, "db", "init")
	mustRun(t, cfg, "section", "create", "--title", "Mission")

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("no\n"))
	cmd.SetArgs([]string{"db", "reset", "--config", cfg})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !strings.Contains(buf.String(), "Aborted.") {
		t.Errorf("declined reset output:\n%s", buf.String())
	}

	out := mustRun(t, cfg, "db", "reset", "--yes")
	if !strings.Contains(out, "Dropped all tables") || !strings.Contains(out, "re-initialized successfully") {
		t.Errorf("reset output:\n%s", out)
	}
	out = mustRun(t, cfg, "section", "list")
	if !strings.Contains(out, "No sections found.") {
		t.Errorf("sections after reset:\n%s", out)
	}
}
