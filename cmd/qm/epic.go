package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/planably/quartermaster/internal/epic"
	"github.com/planably/quartermaster/internal/planning"
	"github.com/spf13/cobra"
)

func newEpicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Epic management commands",
	}

	cmd.AddCommand(newEpicCreateCmd())
	cmd.AddCommand(newEpicListCmd())
	cmd.AddCommand(newEpicShowCmd())
	cmd.AddCommand(newEpicUpdateCmd())
	cmd.AddCommand(newEpicMoveCmd())
	cmd.AddCommand(newEpicSplitCmd())
	cmd.AddCommand(newEpicDeleteCmd())
	return cmd
}

func newEpicCreateCmd() *cobra.Command {
	var (
		configPath  string
		teamID      string
		title       string
		size        string
		priority    string
		description string
		owner       string
		skills      []string
		deps        []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new backlog epic",
		Long:  "Creates an epic in the backlog. Size must be one of XS, S, M, L, XL.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpicCreate(cmd, configPath, teamID, epic.CreateOpts{
				Title:          title,
				Size:           size,
				Priority:       priority,
				Description:    description,
				Owner:          owner,
				RequiredSkills: skills,
				Dependencies:   deps,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&teamID, "team", "", "team ID (optional when only one team exists)")
	cmd.Flags().StringVar(&title, "title", "", "epic title (required)")
	cmd.Flags().StringVar(&size, "size", "", "t-shirt size: XS, S, M, L, XL (required)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority: P0, P1, P2, P3 (default P2)")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.Flags().StringVar(&owner, "owner", "", "owner name")
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "required skill tag (repeatable)")
	cmd.Flags().StringSliceVar(&deps, "dep", nil, "dependency epic ID (repeatable)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("size")
	return cmd
}

func runEpicCreate(cmd *cobra.Command, configPath, teamID string, opts epic.CreateOpts) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	opts.TeamID, err = resolveTeamID(gormDB, teamID)
	if err != nil {
		return err
	}

	e, err := epic.Create(gormDB, opts, osUser())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created epic %s (%s)\n", e.Title, e.ID)
	fmt.Fprintf(out, "Size: %s (%d days)  Priority: %s\n", e.Size, e.EstimatedDays, e.Priority)
	return nil
}

func newEpicListCmd() *cobra.Command {
	var (
		configPath string
		teamID     string
		status     string
		quarterID  string
		priority   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List epics",
		Long:  "Lists epics with optional filters. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpicList(cmd, configPath, teamID, epic.ListFilters{
				Status:    status,
				QuarterID: quarterID,
				Priority:  priority,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&teamID, "team", "", "team ID (optional when only one team exists)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (backlog, planned, in_progress, completed)")
	cmd.Flags().StringVar(&quarterID, "quarter", "", "filter by quarter ID")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	return cmd
}

func runEpicList(cmd *cobra.Command, configPath, teamID string, filters epic.ListFilters) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	filters.TeamID, err = resolveTeamID(gormDB, teamID)
	if err != nil {
		return err
	}

	epics, err := epic.List(gormDB, filters)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(epics) == 0 {
		fmt.Fprintln(out, "No epics found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSIZE\tDAYS\tPRI\tSTATUS\tQUARTER")
	for _, e := range epics {
		q := "-"
		if e.QuarterID != nil {
			q = *e.QuarterID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ID, truncate(e.Title, 40), e.Size, e.EstimatedDays, e.Priority, e.Status, q)
	}
	w.Flush()
	return nil
}

func newEpicShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show epic details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpicShow(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runEpicShow(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	e, err := epic.Get(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:        %s\n", e.ID)
	fmt.Fprintf(out, "Title:     %s\n", e.Title)
	fmt.Fprintf(out, "Size:      %s (%d days)\n", e.Size, e.EstimatedDays)
	fmt.Fprintf(out, "Priority:  %s\n", e.Priority)
	fmt.Fprintf(out, "Status:    %s\n", e.Status)
	if e.QuarterID != nil {
		fmt.Fprintf(out, "Quarter:   %s\n", *e.QuarterID)
	}
	if e.Position != nil {
		fmt.Fprintf(out, "Position:  %d\n", *e.Position)
	}
	if e.Owner != "" {
		fmt.Fprintf(out, "Owner:     %s\n", e.Owner)
	}
	if e.ParentEpicID != nil {
		fmt.Fprintf(out, "Parent:    %s\n", *e.ParentEpicID)
	}
	fmt.Fprintf(out, "Created:   %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Updated:   %s\n", e.UpdatedAt.Format("2006-01-02 15:04:05"))
	if e.Description != "" {
		fmt.Fprintf(out, "\nDescription:\n%s\n", e.Description)
	}
	return nil
}

func newEpicUpdateCmd() *cobra.Command {
	var (
		configPath  string
		title       string
		size        string
		priority    string
		description string
		owner       string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an epic's fields",
		Long:  "Updates editable fields. Resizing re-derives the epic's estimated days.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch epic.Patch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("size") {
				patch.Size = &size
			}
			if cmd.Flags().Changed("priority") {
				patch.Priority = &priority
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("owner") {
				patch.Owner = &owner
			}
			return runEpicUpdate(cmd, configPath, args[0], patch)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&title, "title", "", "epic title")
	cmd.Flags().StringVar(&size, "size", "", "t-shirt size: XS, S, M, L, XL")
	cmd.Flags().StringVar(&priority, "priority", "", "priority: P0, P1, P2, P3")
	cmd.Flags().StringVar(&description, "description", "", "detailed description")
	cmd.Flags().StringVar(&owner, "owner", "", "owner name")
	return cmd
}

func runEpicUpdate(cmd *cobra.Command, configPath, id string, patch epic.Patch) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	e, err := epic.Update(gormDB, id, patch, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated epic %s\n", e.ID)
	return nil
}

func newEpicMoveCmd() *cobra.Command {
	var (
		configPath string
		quarterID  string
		backlog    bool
	)

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an epic to a quarter or back to the backlog",
		Long:  "Moves an epic. Quarter targets are capacity-gated: a move that does not fit is rejected.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !backlog && quarterID == "" {
				return fmt.Errorf("pass --quarter <id> or --backlog")
			}
			if backlog {
				quarterID = ""
			}
			return runEpicMove(cmd, configPath, args[0], quarterID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&quarterID, "quarter", "", "target quarter ID")
	cmd.Flags().BoolVar(&backlog, "backlog", false, "move to the backlog")
	return cmd
}

func runEpicMove(cmd *cobra.Command, configPath, id, quarterID string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	e, err := epic.Move(gormDB, id, quarterID, osUser())
	if err != nil {
		var capErr *planning.CapacityError
		if errors.As(err, &capErr) {
			fmt.Fprintf(out, "Rejected: epic needs %d days but only %d remain in the target quarter.\n",
				capErr.Attempted, capErr.Available)
			return fmt.Errorf("insufficient capacity")
		}
		return err
	}

	if e.QuarterID == nil {
		fmt.Fprintf(out, "Moved epic %s to the backlog\n", e.ID)
	} else {
		fmt.Fprintf(out, "Moved epic %s to quarter %s\n", e.ID, *e.QuarterID)
	}
	return nil
}

func newEpicSplitCmd() *cobra.Command {
	var (
		configPath string
		children   []string
	)

	cmd := &cobra.Command{
		Use:   "split <id>",
		Short: "Split an epic into child epics",
		Long: `Splits an epic into children that keep the parent's priority, description,
and metadata. Each --child is "title:size" or "title:size:quarter-id"; children
without a quarter start in the backlog. The parent epic is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, err := parseSplitSpecs(children)
			if err != nil {
				return err
			}
			return runEpicSplit(cmd, configPath, args[0], specs)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringArrayVar(&children, "child", nil, "child spec \"title:size[:quarter-id]\" (repeatable, at least 2)")
	cmd.MarkFlagRequired("child")
	return cmd
}

func parseSplitSpecs(raw []string) ([]epic.SplitSpec, error) {
	specs := make([]epic.SplitSpec, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid child spec %q, expected \"title:size[:quarter-id]\"", r)
		}
		spec := epic.SplitSpec{Title: parts[0], Size: parts[1]}
		if len(parts) == 3 {
			spec.QuarterID = parts[2]
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func runEpicSplit(cmd *cobra.Command, configPath, id string, specs []epic.SplitSpec) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	children, err := epic.Split(gormDB, id, specs, osUser())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Split epic %s into %d children:\n", id, len(children))
	for _, c := range children {
		fmt.Fprintf(out, "  %s  %s (%s, %d days)\n", c.ID, c.Title, c.Size, c.EstimatedDays)
	}
	return nil
}

func newEpicDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpicDelete(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runEpicDelete(cmd *cobra.Command, configPath, id string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := epic.Delete(gormDB, id, osUser()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted epic %s\n", id)
	return nil
}
