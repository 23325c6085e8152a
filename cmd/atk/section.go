package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/overview"
	"github.com/zulandar/accreditrack/internal/progress"
	"github.com/zulandar/accreditrack/internal/section"
	"github.com/zulandar/accreditrack/internal/status"
)

func newSectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Report outline commands",
	}

	cmd.AddCommand(newSectionCreateCmd())
	cmd.AddCommand(newSectionListCmd())
	cmd.AddCommand(newSectionTreeCmd())
	cmd.AddCommand(newSectionDeleteCmd())
	return cmd
}

func newSectionCreateCmd() *cobra.Command {
	var (
		configPath string
		opts       section.CreateOpts
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a report section",
		Long:  "Creates a section under --parent (or at the top level). Its number continues after the existing siblings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSectionCreate(cmd, configPath, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&opts.Title, "title", "", "section title (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "section description")
	cmd.Flags().StringVar(&opts.ParentID, "parent", "", "parent section ID")
	cmd.Flags().IntVar(&opts.DocumentsRequired, "documents", 0, "number of evidence documents required")
	cmd.MarkFlagRequired("title")
	return cmd
}

func runSectionCreate(cmd *cobra.Command, configPath string, opts section.CreateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	s, err := section.Create(gormDB, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created section %s %s (%s)\n", s.Number, s.Title, s.ID)
	return nil
}

func newSectionListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List report sections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSectionList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runSectionList(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	sections, err := section.List(gormDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sections) == 0 {
		fmt.Fprintln(out, "No sections found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTITLE\tLEVEL\tDOCS\tID")
	for _, s := range sections {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%s\n",
			s.Number, truncate(s.Title, 48), s.Level, s.DocumentsUploaded, s.DocumentsRequired, s.ID)
	}
	return w.Flush()
}

func newSectionTreeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the report outline with progress",
		Long:  "Prints the section outline. Each bar shows the lowest status among the tasks a section owns directly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSectionTree(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runSectionTree(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	board, err := overview.Load(overview.DBSource{DB: gormDB}, now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(board.Sections) == 0 {
		fmt.Fprintln(out, "No sections found.")
		return nil
	}
	printSectionCards(out, board.Sections, 0)
	return nil
}

func printSectionCards(out io.Writer, cards []*progress.SectionCard, depth int) {
	for _, c := range cards {
		line := fmt.Sprintf("%s%s %s", indent(depth), c.Number, truncate(c.Title, 40))
		fmt.Fprintf(out, "%-52s %s", line, progressBar(c.Progress, status.ClassifyProgress(c.Progress, false)))
		if c.TaskCount > 0 {
			fmt.Fprint(out, dimStyle.Render(fmt.Sprintf("  %d tasks, %d open", c.TaskCount, c.OpenTasks)))
		}
		if c.NextDeadline != nil {
			fmt.Fprint(out, dimStyle.Render(", next due "+formatDate(c.NextDeadline)))
		}
		fmt.Fprintln(out)
		printSectionCards(out, c.Children, depth+1)
	}
}

func newSectionDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <section-id>",
		Short: "Delete a section and everything beneath it",
		Long:  "Deletes the section, its subsections, and every task they own along with those tasks' plan links.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSectionDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}

func runSectionDelete(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := section.Delete(gormDB, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted section %s\n", id)
	return nil
}
