package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
institution: acme-college
report_title: Self-Study 2027

database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  user: tracker
  name: acme_selfstudy

dashboard:
  port: 9090

snapshot:
  schedule: "30 7 * * 1"

groups:
  - number: "1"
    title: Planning
    description: Scope and committees
  - number: "2"
    title: Evidence collection
`

const minimalYAML = `
institution: beta-institute
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Institution != "acme-college" {
		t.Errorf("Institution = %q, want %q", cfg.Institution, "acme-college")
	}
	if cfg.ReportTitle != "Self-Study 2027" {
		t.Errorf("ReportTitle = %q, want %q", cfg.ReportTitle, "Self-Study 2027")
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("Database.Driver = %q, want mysql", cfg.Database.Driver)
	}
	if cfg.Database.Host != "10.0.0.5" || cfg.Database.Port != 3307 {
		t.Errorf("Database = %s:%d, want 10.0.0.5:3307", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Database.User != "tracker" {
		t.Errorf("Database.User = %q, want tracker", cfg.Database.User)
	}
	if cfg.Database.Name != "acme_selfstudy" {
		t.Errorf("Database.Name = %q, want acme_selfstudy", cfg.Database.Name)
	}
	if cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard.Port = %d, want 9090", cfg.Dashboard.Port)
	}
	if cfg.Snapshot.Schedule != "30 7 * * 1" {
		t.Errorf("Snapshot.Schedule = %q", cfg.Snapshot.Schedule)
	}
	if len(cfg.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(cfg.Groups))
	}
	if cfg.Groups[0].Title != "Planning" || cfg.Groups[0].Description != "Scope and committees" {
		t.Errorf("Groups[0] = %+v", cfg.Groups[0])
	}
}

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ReportTitle != "Accreditation Report" {
		t.Errorf("ReportTitle = %q, want default", cfg.ReportTitle)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite (default)", cfg.Database.Driver)
	}
	if cfg.Database.Path != "accreditrack.db" {
		t.Errorf("Database.Path = %q, want accreditrack.db (default)", cfg.Database.Path)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080 (default)", cfg.Dashboard.Port)
	}
	if cfg.Snapshot.Schedule != "0 6 * * *" {
		t.Errorf("Snapshot.Schedule = %q, want default", cfg.Snapshot.Schedule)
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
institution: gamma-u
database:
  driver: mysql
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "127.0.0.1" || cfg.Database.Port != 3306 || cfg.Database.User != "root" {
		t.Errorf("Database = %+v, want local defaults", cfg.Database)
	}
	if cfg.Database.Name != "accreditrack_gamma_u" {
		t.Errorf("Database.Name = %q, want %q (derived from institution)", cfg.Database.Name, "accreditrack_gamma_u")
	}
}

func TestParse_PasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "s3cret")
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Password != "s3cret" {
		t.Errorf("Database.Password = %q, want value from %s", cfg.Database.Password, PasswordEnv)
	}
}

func TestParse_PasswordNotReadFromYAML(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	cfg, err := Parse([]byte(`
institution: acme
database:
  password: leaked
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Password != "" {
		t.Errorf("Database.Password = %q, want empty", cfg.Database.Password)
	}
}

func TestParse_MissingInstitution(t *testing.T) {
	_, err := Parse([]byte("report_title: x\n"))
	if err == nil {
		t.Fatal("expected error for missing institution")
	}
	if !strings.Contains(err.Error(), "institution is required") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "institution is required")
	}
}

func TestParse_UnsupportedDriver(t *testing.T) {
	_, err := Parse([]byte(`
institution: acme
database:
  driver: postgres
`))
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("error = %q, want to mention unsupported driver", err.Error())
	}
}

func TestParse_BadSchedule(t *testing.T) {
	_, err := Parse([]byte(`
institution: acme
snapshot:
  schedule: "every morning"
`))
	if err == nil {
		t.Fatal("expected error for bad cron schedule")
	}
	if !strings.Contains(err.Error(), "snapshot.schedule") {
		t.Errorf("error = %q, want to mention snapshot.schedule", err.Error())
	}
}

func TestParse_DescriptorSchedule(t *testing.T) {
	cfg, err := Parse([]byte(`
institution: acme
snapshot:
  schedule: "@daily"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Snapshot.Schedule != "@daily" {
		t.Errorf("Snapshot.Schedule = %q, want @daily", cfg.Snapshot.Schedule)
	}
}

func TestParse_GroupValidation(t *testing.T) {
	_, err := Parse([]byte(`
institution: acme
groups:
  - number: "1"
    title: Planning
  - number: "1"
    title: Duplicate
  - title: No number
  - number: "3"
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{`groups[1].number "1" is duplicated`, "groups[2].number is required", "groups[3].title is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %q, want to contain %q", err.Error(), want)
		}
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("institution: [unterminated"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "accreditrack.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Institution != "acme-college" {
		t.Errorf("Institution = %q", cfg.Institution)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: read")
	}
}
