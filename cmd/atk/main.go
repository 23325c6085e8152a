package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/config"
	"github.com/zulandar/accreditrack/internal/db"
	"gorm.io/gorm"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// defaultConfig is the config path every command falls back to.
const defaultConfig = "accreditrack.yaml"

// now is the clock deadline classification runs against.
var now = time.Now

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atk",
		Short: "Accreditrack: accreditation report tracker",
		Long: `Accreditrack tracks an accreditation self-study report: the section outline,
the tasks that complete it, and the action plan those tasks are grouped under.`,
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newSectionCmd())
	cmd.AddCommand(newGroupCmd())
	cmd.AddCommand(newTaskCmd())
	cmd.AddCommand(newLinkCmd())
	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newSnapshotCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "atk %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// loadEnv reads a .env file into the environment. A missing file is not an
// error; variables already set are left alone.
func loadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", describeDB(cfg.Database), err)
	}

	return cfg, gormDB, nil
}

// describeDB names the configured store for messages.
func describeDB(c config.DatabaseConfig) string {
	if c.Driver == "mysql" {
		return fmt.Sprintf("mysql %s:%d/%s", c.Host, c.Port, c.Name)
	}
	return "sqlite " + c.Path
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	if err := loadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	os.Exit(execute(newRootCmd()))
}
