package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/overview"
	"github.com/zulandar/accreditrack/internal/status"
)

func newReportCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show overall report and plan progress",
		Long: `Recomputes every figure and prints the headline progress of the report and
the action plan, the top-level sections, and the tasks that need attention.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, configPath, asJSON)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full board as JSON")
	return cmd
}

func runReport(cmd *cobra.Command, configPath string, asJSON bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	board, err := overview.Load(overview.DBSource{DB: gormDB}, now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(board)
	}
	printReport(out, cfg.ReportTitle, board)
	return nil
}

func printReport(out io.Writer, title string, b *overview.Board) {
	fmt.Fprintln(out, titleStyle.Render(title))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Report  %s\n", progressBar(b.ReportProgress, status.ClassifyProgress(b.ReportProgress, false)))
	fmt.Fprintf(out, "Plan    %s  %d/%d linked tasks complete\n",
		progressBar(b.Plan.Progress, status.ClassifyProgress(b.Plan.Progress, false)),
		b.Plan.CompletedCount, b.Plan.TaskCount)
	fmt.Fprintln(out)

	c := b.Counts
	fmt.Fprintf(out, "%d sections, %d groups, %d tasks (%d complete, %d blocked, %d overdue, %d unlinked)\n",
		c.Sections, c.Groups, c.Tasks, c.Completed, c.Blocked, c.Overdue, c.Unlinked)

	if len(b.Sections) > 0 {
		fmt.Fprintln(out)
		for _, s := range b.Sections {
			line := fmt.Sprintf("%s %s", s.Number, truncate(s.Title, 40))
			fmt.Fprintf(out, "%-48s %s\n", line, progressBar(s.Progress, status.ClassifyProgress(s.Progress, false)))
		}
	}

	attention := needsAttention(b.Tasks)
	if len(attention) == 0 {
		return
	}
	fmt.Fprintln(out, "\nNeeds attention:")
	for _, v := range attention {
		badge := deadlineBadge(v.Task.Deadline(b.Today))
		detail := formatDays(v.DaysUntilDue)
		if v.Blocked {
			detail = v.BlockedReason
		}
		fmt.Fprintf(out, "  %-14s %s %s  %s\n", badge, v.Section.Number, truncate(v.Title, 48), dimStyle.Render(detail))
	}
}

// needsAttention returns blocked, overdue and soon-due tasks, most urgent
// first.
func needsAttention(views []overview.TaskView) []overview.TaskView {
	rank := map[string]int{
		status.DeadlineBlocked.String(): 0,
		status.Overdue.String():         1,
		status.DeadlineSoon.String():    2,
	}
	var out []overview.TaskView
	for _, v := range views {
		if _, ok := rank[v.Deadline]; ok {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank[out[i].Deadline], rank[out[j].Deadline]
		if ri != rj {
			return ri < rj
		}
		return days(out[i]) < days(out[j])
	})
	return out
}

func days(v overview.TaskView) int {
	if v.DaysUntilDue == nil {
		return 0
	}
	return *v.DaysUntilDue
}
