package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/planably/quartermaster/internal/quarter"
	"github.com/spf13/cobra"
)

func newQuarterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quarter",
		Short: "Quarter lifecycle commands",
	}

	cmd.AddCommand(newQuarterCreateCmd())
	cmd.AddCommand(newQuarterListCmd())
	cmd.AddCommand(newQuarterStartCmd())
	cmd.AddCommand(newQuarterCompleteCmd())
	cmd.AddCommand(newQuarterDeleteCmd())
	return cmd
}

func newQuarterCreateCmd() *cobra.Command {
	var (
		configPath  string
		teamID      string
		name        string
		workingDays int
		startDate   string
		endDate     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new quarter",
		Long:  "Creates a quarter in planning status, appended after the team's existing quarters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := quarter.CreateOpts{
				Name:        name,
				WorkingDays: workingDays,
			}
			var err error
			if opts.StartDate, err = parseDateFlag(startDate); err != nil {
				return err
			}
			if opts.EndDate, err = parseDateFlag(endDate); err != nil {
				return err
			}
			return runQuarterCreate(cmd, configPath, teamID, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&teamID, "team", "", "team ID (optional when only one team exists)")
	cmd.Flags().StringVar(&name, "name", "", "quarter name, e.g. \"Q3 2026\" (required)")
	cmd.Flags().IntVar(&workingDays, "working-days", 0, "informational working-day override for this quarter")
	cmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func parseDateFlag(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
	}
	return &t, nil
}

func runQuarterCreate(cmd *cobra.Command, configPath, teamID string, opts quarter.CreateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	opts.TeamID, err = resolveTeamID(gormDB, teamID)
	if err != nil {
		return err
	}

	q, err := quarter.Create(gormDB, opts, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created quarter %s (%s)\n", q.Name, q.ID)
	return nil
}

func newQuarterListCmd() *cobra.Command {
	var (
		configPath string
		teamID     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a team's quarters in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuarterList(cmd, configPath, teamID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&teamID, "team", "", "team ID (optional when only one team exists)")
	return cmd
}

func runQuarterList(cmd *cobra.Command, configPath, teamID string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	teamID, err = resolveTeamID(gormDB, teamID)
	if err != nil {
		return err
	}

	quarters, err := quarter.List(gormDB, teamID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(quarters) == 0 {
		fmt.Fprintln(out, "No quarters found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTART\tEND")
	for _, q := range quarters {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			q.ID, truncate(q.Name, 30), q.Status, formatDate(q.StartDate), formatDate(q.EndDate))
	}
	w.Flush()
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func newQuarterStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a quarter",
		Long:  "Marks the quarter active. Any other active quarter for the same team reverts to planning.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuarterStart(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runQuarterStart(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	q, err := quarter.Start(gormDB, id, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Quarter %s is now %s\n", q.Name, q.Status)
	return nil
}

func newQuarterCompleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a quarter",
		Long:  "Marks the quarter completed and moves its planned epics to in_progress.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuarterComplete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runQuarterComplete(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	q, err := quarter.Complete(gormDB, id, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Quarter %s is now %s\n", q.Name, q.Status)
	return nil
}

func newQuarterDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quarter",
		Long:  "Deletes the quarter. Its epics are not deleted; they return to the backlog.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuarterDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runQuarterDelete(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := quarter.Delete(gormDB, id, osUser()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted quarter %s\n", id)
	return nil
}
