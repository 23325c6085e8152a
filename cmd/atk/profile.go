package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/accreditrack/internal/profile"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Contributor profile commands",
	}

	cmd.AddCommand(newProfileAddCmd())
	cmd.AddCommand(newProfileListCmd())
	return cmd
}

func newProfileAddCmd() *cobra.Command {
	var (
		configPath string
		opts       profile.CreateOpts
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a contributor profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			p, err := profile.Create(gormDB, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added profile %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Role, "role", "", "contributor, supervisor or admin (default contributor)")
	cmd.Flags().BoolVar(&opts.IsUser, "user", false, "profile can sign in")
	cmd.Flags().BoolVar(&opts.CanEdit, "can-edit", false, "profile may edit tasks")
	cmd.Flags().BoolVar(&opts.CanAdmin, "can-admin", false, "profile may administer the tracker")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newProfileListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contributor profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			profiles, err := profile.List(gormDB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No profiles found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tEMAIL\tROLE\tID")
			for _, p := range profiles {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Email, p.Role, p.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to accreditrack config file")
	return cmd
}
