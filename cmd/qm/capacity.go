package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/planably/quartermaster/internal/epic"
	"github.com/planably/quartermaster/internal/planning"
	"github.com/planably/quartermaster/internal/quarter"
	"github.com/planably/quartermaster/internal/team"
	"github.com/spf13/cobra"
)

func newCapacityCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "capacity <quarter-id>",
		Short: "Show a quarter's capacity breakdown",
		Long: `Computes the quarter's available capacity from the team roster, on-call
load, and buffer, then shows how much the planned epics consume.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapacity(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runCapacity(cmd *cobra.Command, configPath, quarterID string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	q, err := quarter.Get(gormDB, quarterID)
	if err != nil {
		return err
	}
	t, err := team.Get(gormDB, q.TeamID)
	if err != nil {
		return err
	}
	epics, err := epic.List(gormDB, epic.ListFilters{TeamID: q.TeamID, QuarterID: q.ID})
	if err != nil {
		return err
	}

	calc := planning.ComputeCapacity(*t, epics)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Quarter: %s (%s)\n", q.Name, q.Status)
	fmt.Fprintf(out, "Team:    %s\n\n", t.Name)

	if len(calc.IndividualCapacities) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MEMBER\tWORKING\tVACATION\tCAPACITY")
		for _, m := range calc.IndividualCapacities {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", m.Name, t.QuarterWorkingDays, m.VacationDays, m.Capacity)
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Total team capacity:   %4d days\n", calc.TotalTeamCapacity)
	fmt.Fprintf(out, "On-call deduction:    -%4d days\n", calc.OncallDeduction)
	fmt.Fprintf(out, "After on-call:         %4d days\n", calc.CapacityAfterOncall)
	fmt.Fprintf(out, "Buffer (%.0f%%):        -%4d days\n", t.BufferPercentage*100, calc.BufferAmount)
	fmt.Fprintf(out, "Final capacity:        %4d days\n\n", calc.FinalCapacity)

	fmt.Fprintf(out, "Used by planned epics: %4d days\n", calc.UsedCapacity)
	fmt.Fprintf(out, "Remaining:             %4d days\n", calc.RemainingCapacity)
	fmt.Fprintf(out, "Utilization:           %4d%%\n", calc.UtilizationPercentage)
	return nil
}
