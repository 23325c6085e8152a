package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/export"
	"github.com/zulandar/accreditrack/internal/overview"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the outline, plan and tasks to a spreadsheet",
		Long:  "Writes an XLSX workbook with Sections, Plan and Tasks sheets computed as of today.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, outPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default accreditation_<date>.xlsx)")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, outPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	today := now()
	board, err := overview.Load(overview.DBSource{DB: gormDB}, today)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = fmt.Sprintf("accreditation_%s.xlsx", today.Format("20060102"))
	}
	if err := export.WriteFile(board, outPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d sections, %d groups, %d tasks to %s\n",
		board.Counts.Sections, board.Counts.Groups, board.Counts.Tasks, outPath)
	return nil
}
