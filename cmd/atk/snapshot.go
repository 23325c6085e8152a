package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/snapshot"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Progress snapshot commands",
		Long:  "Snapshots record the headline progress figures so the trend toward submission can be followed.",
	}

	cmd.AddCommand(newSnapshotTakeCmd())
	cmd.AddCommand(newSnapshotListCmd())
	cmd.AddCommand(newSnapshotRunCmd())
	return cmd
}

func newSnapshotTakeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "take",
		Short: "Record a snapshot now",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			snap, err := snapshot.Take(gormDB, now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %d: report %d%%, plan %d%%, %d/%d tasks complete\n",
				snap.ID, snap.ReportProgress, snap.PlanProgress, snap.CompletedCount, snap.TaskCount)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func newSnapshotListCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			snaps, err := snapshot.List(gormDB, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(snaps) == 0 {
				fmt.Fprintln(out, "No snapshots found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TAKEN\tREPORT\tPLAN\tTASKS\tDONE\tBLOCKED\tOVERDUE")
			for _, s := range snaps {
				fmt.Fprintf(w, "%s\t%d%%\t%d%%\t%d\t%d\t%d\t%d\n",
					s.TakenAt.Format("2006-01-02 15:04"), s.ReportProgress, s.PlanProgress,
					s.TaskCount, s.CompletedCount, s.BlockedCount, s.OverdueCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of snapshots to show (0 for all)")
	return cmd
}

func newSnapshotRunCmd() *cobra.Command {
	var (
		configPath string
		schedule   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Take snapshots on a cron schedule",
		Long:  "Runs in the foreground, taking a snapshot each time the schedule fires. Defaults to snapshot.schedule from config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if schedule == "" {
				schedule = cfg.Snapshot.Schedule
			}

			ctx, cancel := signalContext(cmd)
			defer cancel()

			fmt.Fprintf(cmd.OutOrStdout(), "Taking snapshots on %q. Press Ctrl-C to stop.\n", schedule)
			s := &snapshot.Scheduler{DB: gormDB, Schedule: schedule}
			return s.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&schedule, "schedule", "", "5-field cron expression (overrides config)")
	return cmd
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}
