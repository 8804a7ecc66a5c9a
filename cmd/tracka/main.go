package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"tracka/internal/config"
	"tracka/internal/db"
	"tracka/internal/models"
	"tracka/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var dbPath string

func openDB(seed bool) (*db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := cfg.DBPath
	if dbPath != "" {
		path = dbPath
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(seed && cfg.SeedExamples); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "tracka",
		Short:   "Terminal project and task tracker",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB(true)
			if err != nil {
				return err
			}
			defer database.Close()

			app := ui.NewApp(database)
			p := tea.NewProgram(app, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides config)")
	root.AddCommand(newExportCmd(), newImportCmd(), newStatsCmd())
	return root
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write a JSON snapshot of the whole store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := openDB(false)
			if err != nil {
				return err
			}
			defer database.Close()

			snap, err := database.ExportAll()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')

			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(args[0], out, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported snapshot %s to %s\n", snap.ID, args[0])
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSON snapshot into the store",
		Long: "Load a JSON snapshot into the store. Rows keep the identifiers " +
			"they were exported with, so importing into a store that already " +
			"holds any of them fails without changing anything.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var snap models.Snapshot
			if err := json.Unmarshal(b, &snap); err != nil {
				return fmt.Errorf("parse snapshot: %w", err)
			}

			database, err := openDB(false)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.ImportAll(&snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d projects, %d tasks\n",
				len(snap.Projects), len(snap.Tasks))
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <project-id>",
		Short: "Show task counts for a project and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}

			database, err := openDB(false)
			if err != nil {
				return err
			}
			defer database.Close()

			project, err := database.GetProject(id)
			if err != nil {
				return err
			}
			stats, err := database.SubtreeStats(id, time.Now())
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(stats, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", project.Name)
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Total", "Done", "Overdue", "Due Soon"})
			table.Append([]string{
				strconv.Itoa(stats.Total),
				strconv.Itoa(stats.Done),
				strconv.Itoa(stats.Overdue),
				strconv.Itoa(stats.DueSoon),
			})
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
