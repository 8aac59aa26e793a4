package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/planably/quartermaster/internal/team"
	"github.com/spf13/cobra"
)

func newTeamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team and roster management commands",
	}

	cmd.AddCommand(newTeamCreateCmd())
	cmd.AddCommand(newTeamListCmd())
	cmd.AddCommand(newTeamShowCmd())
	cmd.AddCommand(newTeamUpdateCmd())
	cmd.AddCommand(newTeamMemberCmd())
	return cmd
}

func newTeamCreateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		workingDays int
		buffer      float64
		oncall      int
		sprints     int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new team",
		Long:  "Creates a team with its capacity parameters. Unset parameters fall back to the standard defaults.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeamCreate(cmd, configPath, team.CreateOpts{
				Name:               name,
				QuarterWorkingDays: workingDays,
				BufferPercentage:   buffer,
				OncallPerSprint:    oncall,
				SprintsInQuarter:   sprints,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&name, "name", "", "team name (required)")
	cmd.Flags().IntVar(&workingDays, "working-days", 0, "working days per person per quarter")
	cmd.Flags().Float64Var(&buffer, "buffer", 0, "buffer fraction reserved for unplanned work (0-1)")
	cmd.Flags().IntVar(&oncall, "oncall", 0, "people on call per sprint")
	cmd.Flags().IntVar(&sprints, "sprints", 0, "sprints per quarter")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runTeamCreate(cmd *cobra.Command, configPath string, opts team.CreateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := team.Create(gormDB, opts, osUser())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created team %s (%s)\n", t.Name, t.ID)
	fmt.Fprintf(out, "Working days: %d  Buffer: %.0f%%  On-call/sprint: %d  Sprints: %d\n",
		t.QuarterWorkingDays, t.BufferPercentage*100, t.OncallPerSprint, t.SprintsInQuarter)
	return nil
}

func newTeamListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeamList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runTeamList(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	teams, err := team.List(gormDB)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(teams) == 0 {
		fmt.Fprintln(out, "No teams found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tDAYS\tBUFFER\tONCALL\tSPRINTS")
	for _, t := range teams {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f%%\t%d\t%d\n",
			t.ID, truncate(t.Name, 30), len(t.Members), t.QuarterWorkingDays,
			t.BufferPercentage*100, t.OncallPerSprint, t.SprintsInQuarter)
	}
	w.Flush()
	return nil
}

func newTeamShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show team details",
		Long:  "Displays a team's capacity parameters and full roster.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTeamShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runTeamShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := team.Get(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:             %s\n", t.ID)
	fmt.Fprintf(out, "Name:           %s\n", t.Name)
	fmt.Fprintf(out, "Working days:   %d\n", t.QuarterWorkingDays)
	fmt.Fprintf(out, "Buffer:         %.0f%%\n", t.BufferPercentage*100)
	fmt.Fprintf(out, "On-call/sprint: %d\n", t.OncallPerSprint)
	fmt.Fprintf(out, "Sprints:        %d\n", t.SprintsInQuarter)
	fmt.Fprintf(out, "Created:        %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(t.Members) == 0 {
		fmt.Fprintln(out, "\nNo members.")
		return nil
	}

	fmt.Fprintln(out, "\nRoster:")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVACATION\tSKILLS")
	for _, m := range t.Members {
		skills := strings.Join(m.SkillList(), ", ")
		if skills == "" {
			skills = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.ID, m.Name, m.VacationDays, skills)
	}
	w.Flush()
	return nil
}

func newTeamUpdateCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		workingDays int
		buffer      float64
		oncall      int
		sprints     int
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a team's capacity parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch team.Patch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("working-days") {
				patch.QuarterWorkingDays = &workingDays
			}
			if cmd.Flags().Changed("buffer") {
				patch.BufferPercentage = &buffer
			}
			if cmd.Flags().Changed("oncall") {
				patch.OncallPerSprint = &oncall
			}
			if cmd.Flags().Changed("sprints") {
				patch.SprintsInQuarter = &sprints
			}
			return runTeamUpdate(cmd, configPath, args[0], patch)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&name, "name", "", "team name")
	cmd.Flags().IntVar(&workingDays, "working-days", 0, "working days per person per quarter")
	cmd.Flags().Float64Var(&buffer, "buffer", 0, "buffer fraction reserved for unplanned work (0-1)")
	cmd.Flags().IntVar(&oncall, "oncall", 0, "people on call per sprint")
	cmd.Flags().IntVar(&sprints, "sprints", 0, "sprints per quarter")
	return cmd
}

func runTeamUpdate(cmd *cobra.Command, configPath, id string, patch team.Patch) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	t, err := team.Update(gormDB, id, patch, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated team %s\n", t.ID)
	return nil
}

func newTeamMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Roster management commands",
	}

	cmd.AddCommand(newMemberAddCmd())
	cmd.AddCommand(newMemberUpdateCmd())
	cmd.AddCommand(newMemberRemoveCmd())
	return cmd
}

func newMemberAddCmd() *cobra.Command {
	var (
		configPath string
		teamID     string
		name       string
		vacation   int
		skills     []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member to a team's roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemberAdd(cmd, configPath, teamID, team.MemberOpts{
				Name:         name,
				VacationDays: vacation,
				Skills:       skills,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&teamID, "team", "", "team ID (optional when only one team exists)")
	cmd.Flags().StringVar(&name, "name", "", "member name (required)")
	cmd.Flags().IntVar(&vacation, "vacation", 0, "planned absence days this quarter")
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "skill tag (repeatable)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runMemberAdd(cmd *cobra.Command, configPath, teamID string, opts team.MemberOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	teamID, err = resolveTeamID(gormDB, teamID)
	if err != nil {
		return err
	}

	m, err := team.AddMember(gormDB, teamID, opts, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added member %s (%s)\n", m.Name, m.ID)
	return nil
}

func newMemberUpdateCmd() *cobra.Command {
	var (
		configPath string
		name       string
		vacation   int
		skills     []string
	)

	cmd := &cobra.Command{
		Use:   "update <member-id>",
		Short: "Update a roster entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch team.MemberPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("vacation") {
				patch.VacationDays = &vacation
			}
			if cmd.Flags().Changed("skill") {
				patch.Skills = &skills
			}
			return runMemberUpdate(cmd, configPath, args[0], patch)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&name, "name", "", "member name")
	cmd.Flags().IntVar(&vacation, "vacation", 0, "planned absence days this quarter")
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "skill tag (repeatable, replaces the full set)")
	return cmd
}

func runMemberUpdate(cmd *cobra.Command, configPath, id string, patch team.MemberPatch) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	m, err := team.UpdateMember(gormDB, id, patch, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated member %s\n", m.ID)
	return nil
}

func newMemberRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <member-id>",
		Short: "Remove a member from the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMemberRemove(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runMemberRemove(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := team.RemoveMember(gormDB, id, osUser()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed member %s\n", id)
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
