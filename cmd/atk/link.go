package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/group"
	"github.com/zulandar/accreditrack/internal/link"
	"github.com/zulandar/accreditrack/internal/status"
)

func newLinkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link tasks into the action plan",
		Long:  "A task is linked to at most one plan group. Linking never changes the task's owning section.",
	}

	cmd.AddCommand(newLinkAddCmd())
	cmd.AddCommand(newLinkRemoveCmd())
	cmd.AddCommand(newLinkListCmd())
	cmd.AddCommand(newLinkAvailableCmd())
	return cmd
}

func newLinkAddCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "add <group-id> <task-id>",
		Short: "Link a task to a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := link.Link(gormDB, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked task %s to group %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func newLinkRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <group-id> <task-id>",
		Short: "Unlink a task from a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := link.Unlink(gormDB, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unlinked task %s from group %s\n", args[1], args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func newLinkListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <group-id>",
		Short: "List the tasks linked to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinkList(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runLinkList(cmd *cobra.Command, configPath, groupID string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	g, err := group.Get(gormDB, groupID)
	if err != nil {
		return err
	}
	tasks, err := link.TasksOf(gormDB, groupID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Group %s %s\n", g.Number, g.Title)
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No linked tasks.")
		return nil
	}
	return printTaskTable(out, tasks)
}

func newLinkAvailableCmd() *cobra.Command {
	var (
		configPath string
		search     string
		bucket     string
		sectionID  string
	)

	cmd := &cobra.Command{
		Use:   "available",
		Short: "List tasks not yet linked to any group",
		Long: `Lists unlinked tasks. --search matches the task title or its section's
number or title. --section takes a top-level section and includes everything
beneath it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := status.ParseBucket(bucket)
			if err != nil {
				return err
			}
			return runLinkAvailable(cmd, configPath, link.Filter{Search: search, Bucket: b, SectionID: sectionID})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive text search")
	cmd.Flags().StringVar(&bucket, "status", "", "status bucket: not_started, in_progress, completed or all")
	cmd.Flags().StringVar(&sectionID, "section", "", "top-level section ID")
	return cmd
}

func runLinkAvailable(cmd *cobra.Command, configPath string, f link.Filter) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	tasks, err := link.Available(gormDB, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No available tasks.")
		return nil
	}
	return printTaskTable(out, tasks)
}

func printTaskTable(out io.Writer, tasks []domain.Task) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSECTION\tTITLE\tOWNER\tSTATUS\tDUE")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
			t.ID, t.Section.Number, truncate(t.Title, 40), ownerName(t), t.Status, formatDate(t.DueDate))
	}
	return w.Flush()
}
