package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/planably/quartermaster/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		teamID     string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a team's full planning state to JSON",
		Long:  "Writes the team, its quarters, and its epics as a single JSON document.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, teamID, outPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	cmd.Flags().StringVar(&teamID, "team", "", "team ID (optional when only one team exists)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, teamID, outPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	teamID, err = resolveTeamID(gormDB, teamID)
	if err != nil {
		return err
	}

	doc, err := export.Export(gormDB, teamID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export: encode: %w", err)
	}
	data = append(data, '\n')

	if outPath == "" {
		cmd.OutOrStdout().Write(data)
		return nil
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported team %s to %s\n", teamID, outPath)
	return nil
}

func newImportCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a previously exported planning state",
		Long: `Reads an export document and recreates the team, quarters, and epics with
their original IDs. Fails if a team with the same ID already exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Quartermaster config file")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, path string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("import: read %s: %w", path, err)
	}
	var doc export.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("import: decode %s: %w", path, err)
	}

	t, err := export.Import(gormDB, &doc, osUser())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported team %s (%s): %d quarters, %d epics\n",
		t.Name, t.ID, len(doc.Quarters), len(doc.Epics))
	return nil
}
