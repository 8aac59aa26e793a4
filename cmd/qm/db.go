package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/planably/quartermaster/internal/config"
	"github.com/planably/quartermaster/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

const defaultConfigPath = "quartermaster.yaml"

// connectFromConfig loads config and returns a GORM DB connection.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Quartermaster database",
		Long:  "Migrates all tables and seeds the configured team with its roster.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to %s database\n", cfg.Database.Driver)

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	t, err := db.SeedTeam(gormDB, cfg)
	if err != nil {
		return err
	}
	if t != nil {
		fmt.Fprintf(out, "Seeded team %q with %d members\n", t.Name, len(t.Members))
	}

	fmt.Fprintln(out, "\nQuartermaster database initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop all planning data and re-initialize",
		Long: `Drops every Quartermaster table, then re-creates the schema and re-seeds
the configured team. All teams, quarters, epics, and audit history are lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if !skipConfirm && !confirmReset(cmd) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	for _, m := range db.AllModels() {
		if err := gormDB.Migrator().DropTable(m); err != nil {
			return fmt.Errorf("drop table for %T: %w", m, err)
		}
	}
	fmt.Fprintf(out, "Dropped %d tables\n", len(db.AllModels()))

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	t, err := db.SeedTeam(gormDB, cfg)
	if err != nil {
		return err
	}
	if t != nil {
		fmt.Fprintf(out, "Seeded team %q with %d members\n", t.Name, len(t.Members))
	}

	fmt.Fprintln(out, "\nQuartermaster database reset successfully.")
	return nil
}

func confirmReset(cmd *cobra.Command) bool {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "WARNING: This will permanently delete all planning data.")
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}

// resolveTeamID returns the explicit ID when given, otherwise the only team
// in the database. Ambiguity is an error rather than a guess.
func resolveTeamID(gormDB *gorm.DB, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	var ids []string
	if err := gormDB.Table("teams").Order("name ASC").Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("list teams: %w", err)
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("no teams found, run \"qm db init\" or \"qm team create\" first")
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%d teams found, pass --team to choose one", len(ids))
	}
}

// osUser names the CLI actor for the audit trail.
func osUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "cli"
}
