// Package config provides YAML-based configuration loading for accreditrack.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// PasswordEnv names the environment variable holding the MySQL password.
const PasswordEnv = "ACCREDITRACK_DB_PASSWORD"

// Config is the top-level configuration, loaded from accreditrack.yaml.
type Config struct {
	Institution string          `yaml:"institution"`
	ReportTitle string          `yaml:"report_title"`
	Database    DatabaseConfig  `yaml:"database"`
	Dashboard   DashboardConfig `yaml:"dashboard"`
	Snapshot    SnapshotConfig  `yaml:"snapshot"`
	Groups      []GroupConfig   `yaml:"groups"`
}

// DatabaseConfig selects and addresses the backing store.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	Name     string `yaml:"name"`
}

// DashboardConfig holds HTTP API settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// SnapshotConfig controls the scheduled progress snapshots.
type SnapshotConfig struct {
	Schedule string `yaml:"schedule"`
}

// GroupConfig is a fixed top-level plan phase seeded at init.
type GroupConfig struct {
	Number      string `yaml:"number"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.ReportTitle == "" {
		c.ReportTitle = "Accreditation Report"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "accreditrack.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Name == "" && c.Institution != "" {
			c.Database.Name = "accreditrack_" + strings.ReplaceAll(c.Institution, "-", "_")
		}
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
	if c.Snapshot.Schedule == "" {
		c.Snapshot.Schedule = "0 6 * * *"
	}
}

// applyEnv pulls secrets that never live in the YAML file.
func (c *Config) applyEnv() {
	if pw := os.Getenv(PasswordEnv); pw != "" {
		c.Database.Password = pw
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Institution == "" {
		errs = append(errs, "institution is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.Name == "" {
		errs = append(errs, "database.name is required for mysql")
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d is out of range", c.Dashboard.Port))
	}
	if _, err := cron.ParseStandard(c.Snapshot.Schedule); err != nil {
		errs = append(errs, fmt.Sprintf("snapshot.schedule %q: %v", c.Snapshot.Schedule, err))
	}
	seen := make(map[string]bool)
	for i, g := range c.Groups {
		if g.Title == "" {
			errs = append(errs, fmt.Sprintf("groups[%d].title is required", i))
		}
		if g.Number == "" {
			errs = append(errs, fmt.Sprintf("groups[%d].number is required", i))
		} else if seen[g.Number] {
			errs = append(errs, fmt.Sprintf("groups[%d].number %q is duplicated", i, g.Number))
		}
		seen[g.Number] = true
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
