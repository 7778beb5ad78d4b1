package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/iksnae/agent-transcript/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	dbPath  string
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agent-transcript",
	Short: "Inspect and export streaming agent transcripts",
	Long: `A CLI tool to inspect transcripts recorded by the agent backend.

The backend streams heterogeneous step records (thoughts, tool calls, tool
results, final answers, errors) into its SQLite database. This tool loads a
session's step sequence, classifies and parses it, aggregates file changes
across apply-patch calls, and renders the result as a structured view.

Quick Start:
  agent-transcript list                  # List recorded sessions
  agent-transcript show <session-id>     # View an assembled transcript
  agent-transcript export --format md    # Export as Markdown

For detailed usage, see: https://github.com/iksnae/agent-transcript`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Custom database path (defaults to the agent backend's data directory)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// openDatabase resolves the database location and opens it read-only.
func openDatabase() (string, *sql.DB, error) {
	path, err := internal.DetectDatabasePath(dbPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to locate database: %w", err)
	}
	db, err := internal.OpenDatabase(path)
	if err != nil {
		return path, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return path, db, nil
}
