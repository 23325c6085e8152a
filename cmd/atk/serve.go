package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/dashboard"
	"github.com/zulandar/accreditrack/internal/snapshot"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		snapshots  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard JSON API",
		Long: `Serves the dashboard API under /api. With --snapshots, also takes progress
snapshots on the configured schedule while the server runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, snapshots)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default dashboard.port from config)")
	cmd.Flags().BoolVar(&snapshots, "snapshots", false, "run the snapshot scheduler alongside the server")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, snapshots bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.Dashboard.Port
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if snapshots {
		if _, err := snapshot.NextDelay(cfg.Snapshot.Schedule, time.Now()); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		s := &snapshot.Scheduler{DB: gormDB, Schedule: cfg.Snapshot.Schedule}
		go func() {
			if err := s.Run(ctx); err != nil {
				log.Printf("serve: snapshot scheduler: %v", err)
			}
		}()
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:          gormDB,
		Port:        port,
		Out:         cmd.OutOrStdout(),
		ReportTitle: cfg.ReportTitle,
	})
}
