package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/domain"
	"github.com/zulandar/accreditrack/internal/link"
	"github.com/zulandar/accreditrack/internal/overview"
	"github.com/zulandar/accreditrack/internal/status"
	"github.com/zulandar/accreditrack/internal/task"
	"gorm.io/gorm"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskUpdateCmd())
	cmd.AddCommand(newTaskStatusCmd())
	cmd.AddCommand(newTaskBlockCmd())
	cmd.AddCommand(newTaskUnblockCmd())
	cmd.AddCommand(newTaskCollabCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var (
		configPath string
		opts       task.CreateOpts
		start, due string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Long:  "Creates a task owned by --section and assigned to --owner. Dates use YYYY-MM-DD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.StartDate, err = task.ParseDate(start); err != nil {
				return err
			}
			if opts.DueDate, err = task.ParseDate(due); err != nil {
				return err
			}
			return runTaskCreate(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&opts.Title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "task description")
	cmd.Flags().StringVar(&opts.SectionID, "section", "", "owning section ID (required)")
	cmd.Flags().StringVar(&opts.OwnerID, "owner", "", "owner profile ID (required)")
	cmd.Flags().StringVar(&opts.SupervisorID, "supervisor", "", "supervisor profile ID")
	cmd.Flags().IntVar(&opts.Status, "status", 0, "initial status, 0-100")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("section")
	cmd.MarkFlagRequired("owner")
	return cmd
}

func runTaskCreate(cmd *cobra.Command, configPath string, opts task.CreateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := task.Create(gormDB, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created task %s\n", t.ID)
	if opts.DueDate != nil {
		fmt.Fprintf(out, "Due: %s\n", formatDate(opts.DueDate))
	}
	return nil
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		sectionID  string
		ownerID    string
		bucket     string
		blocked    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `Lists tasks soonest due first. --status takes a bucket: not_started,
in_progress, completed or all. --blocked takes true or false.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := status.ParseBucket(bucket)
			if err != nil {
				return err
			}
			filters := task.ListFilters{SectionID: sectionID, OwnerID: ownerID, Bucket: b}
			if blocked != "" {
				v, err := strconv.ParseBool(blocked)
				if err != nil {
					return fmt.Errorf("invalid --blocked value %q", blocked)
				}
				filters.Blocked = &v
			}
			return runTaskList(cmd, configPath, filters)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&sectionID, "section", "", "filter by owning section ID")
	cmd.Flags().StringVar(&ownerID, "owner", "", "filter by owner profile ID")
	cmd.Flags().StringVar(&bucket, "status", "", "filter by status bucket")
	cmd.Flags().StringVar(&blocked, "blocked", "", "filter by blocked flag (true/false)")
	return cmd
}

func runTaskList(cmd *cobra.Command, configPath string, filters task.ListFilters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	rows, err := task.List(gormDB, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No tasks found.")
		return nil
	}

	today := now()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSECTION\tTITLE\tOWNER\tSTATUS\tDUE\tDEADLINE")
	for _, r := range rows {
		t := domain.TaskFromRow(r)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%% %s\t%s\t%s\n",
			t.ID, t.Section.Number, truncate(t.Title, 40), ownerName(t),
			t.Status, t.ProgressTier().Label(), formatDate(t.DueDate), t.Deadline(today).Label())
	}
	return w.Flush()
}

// ownerName prefers the owner's display name over the raw ID.
func ownerName(t domain.Task) string {
	if t.Owner != nil && t.Owner.Name != "" {
		return t.Owner.Name
	}
	if t.OwnerID == "" {
		return "-"
	}
	return t.OwnerID
}

func newTaskShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runTaskShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	row, err := task.Get(gormDB, id)
	if err != nil {
		return err
	}
	links, err := link.Links(gormDB)
	if err != nil {
		return err
	}

	v := overview.View(domain.TaskFromRow(*row), now())
	for _, l := range links {
		if l.TaskID == id {
			v.GroupID = l.GroupID
			break
		}
	}
	supervisor := ""
	if row.Supervisor != nil {
		supervisor = row.Supervisor.Name
	}
	printTask(cmd.OutOrStdout(), v, supervisor)
	return nil
}

func printTask(out io.Writer, v overview.TaskView, supervisor string) {
	t := v.Task
	fmt.Fprintln(out, titleStyle.Render(t.Title))
	fmt.Fprintf(out, "ID:          %s\n", t.ID)
	fmt.Fprintf(out, "Section:     %s %s\n", t.Section.Number, t.Section.Title)
	fmt.Fprintf(out, "Owner:       %s\n", ownerName(t))
	if supervisor != "" {
		fmt.Fprintf(out, "Supervisor:  %s\n", supervisor)
	}
	if len(t.Collaborators) > 0 {
		names := make([]string, len(t.Collaborators))
		for i, c := range t.Collaborators {
			names[i] = c.Name
		}
		fmt.Fprintf(out, "Team:        %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(out, "Progress:    %s %s\n", progressBar(t.Status, t.ProgressTier()), v.TierLabel)
	if t.Blocked {
		fmt.Fprintf(out, "Blocked:     %s\n", t.BlockedReason)
	}
	fmt.Fprintf(out, "Start:       %s\n", formatDate(t.StartDate))
	fmt.Fprintf(out, "Due:         %s", formatDate(t.DueDate))
	if days := formatDays(v.DaysUntilDue); days != "" {
		fmt.Fprintf(out, " (%s)", days)
	}
	fmt.Fprintln(out)
	if v.DeadlineLabel != "" {
		fmt.Fprintf(out, "Deadline:    %s\n", v.DeadlineLabel)
	}
	if v.GroupID != "" {
		fmt.Fprintf(out, "Plan group:  %s\n", v.GroupID)
	}
	if t.Description != "" {
		fmt.Fprintf(out, "\n%s\n", t.Description)
	}
}

func newTaskUpdateCmd() *cobra.Command {
	var (
		configPath string
		title      string
		desc       string
		sectionID  string
		ownerID    string
		supervisor string
		start, due string
	)

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update task fields",
		Long:  "Updates only the fields whose flags are passed. An empty --start, --due or --supervisor clears it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p task.Patch
			set := func(name string, dst **string, v *string) {
				if cmd.Flags().Changed(name) {
					*dst = v
				}
			}
			set("title", &p.Title, &title)
			set("description", &p.Description, &desc)
			set("section", &p.SectionID, &sectionID)
			set("owner", &p.OwnerID, &ownerID)
			set("supervisor", &p.SupervisorID, &supervisor)
			set("start", &p.StartDate, &start)
			set("due", &p.DueDate, &due)
			return runTaskUpdate(cmd, configPath, args[0], p)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&desc, "description", "", "new description")
	cmd.Flags().StringVar(&sectionID, "section", "", "move to section ID")
	cmd.Flags().StringVar(&ownerID, "owner", "", "new owner profile ID")
	cmd.Flags().StringVar(&supervisor, "supervisor", "", "new supervisor profile ID")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func runTaskUpdate(cmd *cobra.Command, configPath, id string, p task.Patch) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := task.Update(gormDB, id, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", t.ID)
	return nil
}

func newTaskStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status <task-id> <0-100>",
		Short: "Set a task's progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid status %q: want an integer 0-100", args[1])
			}
			return runTaskStatus(cmd, configPath, args[0], value)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runTaskStatus(cmd *cobra.Command, configPath, id string, value int) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := task.SetStatus(gormDB, id, value)
	if err != nil {
		return err
	}
	tier := status.ClassifyProgress(t.Status, t.Blocked)
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s: %s %s\n", t.ID, progressBar(t.Status, tier), tier.Label())
	return nil
}

func newTaskBlockCmd() *cobra.Command {
	var (
		configPath string
		reason     string
	)

	cmd := &cobra.Command{
		Use:   "block <task-id>",
		Short: "Mark a task blocked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskBlock(cmd, configPath, args[0], reason)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&reason, "reason", "", "why the task is blocked (required)")
	cmd.MarkFlagRequired("reason")
	return cmd
}

func runTaskBlock(cmd *cobra.Command, configPath, id, reason string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := task.Block(gormDB, id, reason)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s blocked: %s\n", t.ID, t.BlockedReason)
	return nil
}

func newTaskUnblockCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "unblock <task-id>",
		Short: "Clear a task's blocked flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaskUnblock(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runTaskUnblock(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := task.Unblock(gormDB, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s unblocked\n", t.ID)
	return nil
}

func newTaskCollabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collab",
		Short: "Manage task collaborators",
	}

	cmd.AddCommand(newTaskCollabEditCmd("add", "Add a collaborator to a task", task.AddCollaborator))
	cmd.AddCommand(newTaskCollabEditCmd("remove", "Remove a collaborator from a task", task.RemoveCollaborator))
	return cmd
}

func newTaskCollabEditCmd(verb, short string, apply func(gormDB *gorm.DB, taskID, profileID string) error) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   verb + " <task-id> <profile-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := apply(gormDB, args[0], args[1]); err != nil {
				return err
			}
			past := map[string]string{"add": "Added", "remove": "Removed"}[verb]
			fmt.Fprintf(cmd.OutOrStdout(), "%s collaborator %s on task %s\n", past, args[1], args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Long:  "Deletes the task together with its plan link and collaborators.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			if err := task.Delete(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}
