package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/group"
	"github.com/zulandar/accreditrack/internal/overview"
	"github.com/zulandar/accreditrack/internal/progress"
	"github.com/zulandar/accreditrack/internal/status"
)

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Action plan group commands",
	}

	cmd.AddCommand(newGroupCreateCmd())
	cmd.AddCommand(newGroupListCmd())
	cmd.AddCommand(newGroupTreeCmd())
	cmd.AddCommand(newGroupUpdateCmd())
	cmd.AddCommand(newGroupDeleteCmd())
	return cmd
}

func newGroupCreateCmd() *cobra.Command {
	var (
		configPath string
		opts       group.CreateOpts
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a plan group",
		Long:  "Creates a group under --parent (or at the top level). Its number continues after the existing siblings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroupCreate(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&opts.Title, "title", "", "group title (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "group description")
	cmd.Flags().StringVar(&opts.ParentID, "parent", "", "parent group ID")
	cmd.Flags().StringVar(&opts.OwnerID, "owner", "", "owner profile ID")
	cmd.MarkFlagRequired("title")
	return cmd
}

func runGroupCreate(cmd *cobra.Command, configPath string, opts group.CreateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	g, err := group.Create(gormDB, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created group %s %s (%s)\n", g.Number, g.Title, g.ID)
	return nil
}

func newGroupListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plan groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroupList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runGroupList(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	groups, err := group.List(gormDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(groups) == 0 {
		fmt.Fprintln(out, "No groups found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTITLE\tLEVEL\tFIXED\tOWNER\tID")
	for _, g := range groups {
		owner := "-"
		if g.OwnerID != nil {
			owner = *g.OwnerID
		}
		fixed := ""
		if g.IsFixed {
			fixed = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			g.Number, truncate(g.Title, 48), g.Level, fixed, owner, g.ID)
	}
	return w.Flush()
}

func newGroupTreeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the action plan with progress",
		Long:  "Prints the plan hierarchy. Each bar is the share of directly linked tasks that are complete.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroupTree(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runGroupTree(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	board, err := overview.Load(overview.DBSource{DB: gormDB}, now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(board.Groups) == 0 {
		fmt.Fprintln(out, "No groups found.")
		return nil
	}
	printGroupCards(out, board.Groups, 0)
	fmt.Fprintf(out, "\nPlan: %d/%d tasks complete  %s\n",
		board.Plan.CompletedCount, board.Plan.TaskCount,
		progressBar(board.Plan.Progress, status.ClassifyProgress(board.Plan.Progress, false)))
	return nil
}

func printGroupCards(out io.Writer, cards []*progress.GroupCard, depth int) {
	for _, c := range cards {
		line := fmt.Sprintf("%s%s %s", indent(depth), c.Number, truncate(c.Title, 40))
		if c.IsFixed {
			line += " *"
		}
		fmt.Fprintf(out, "%-52s %s", line, progressBar(c.Progress, status.ClassifyProgress(c.Progress, false)))
		if c.TaskCount > 0 {
			summary := fmt.Sprintf("  %d/%d done", c.CompletedCount, c.TaskCount)
			if c.BlockedCount > 0 {
				summary += fmt.Sprintf(", %d blocked", c.BlockedCount)
			}
			fmt.Fprint(out, dimStyle.Render(summary))
		}
		fmt.Fprintln(out)
		printGroupCards(out, c.Children, depth+1)
	}
}

func newGroupUpdateCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		description string
		owner       string
	)

	cmd := &cobra.Command{
		Use:   "update <group-id>",
		Short: "Update a plan group",
		Long:  "Updates the title, description or owner of a group. Fixed groups can be edited. Pass --owner \"\" to clear the owner.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts group.UpdateOpts
			if cmd.Flags().Changed("title") {
				opts.Title = &title
			}
			if cmd.Flags().Changed("description") {
				opts.Description = &description
			}
			if cmd.Flags().Changed("owner") {
				opts.OwnerID = &owner
			}
			return runGroupUpdate(cmd, configPath, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&owner, "owner", "", "new owner profile ID")
	return cmd
}

func runGroupUpdate(cmd *cobra.Command, configPath, id string, opts group.UpdateOpts) error {
	if opts.Title == nil && opts.Description == nil && opts.OwnerID == nil {
		return fmt.Errorf("nothing to update: pass --title, --description or --owner")
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	g, err := group.Update(gormDB, id, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated group %s %s (%s)\n", g.Number, g.Title, g.ID)
	return nil
}

func newGroupDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <group-id>",
		Short: "Delete a plan group and its subgroups",
		Long:  "Deletes the group and its subgroups. Their task links are removed; the tasks themselves are kept. Fixed groups cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroupDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runGroupDelete(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := group.Delete(gormDB, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted group %s\n", id)
	return nil
}
