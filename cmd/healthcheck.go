package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-transcript/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if agent-transcript can locate and read the agent database",
	Long: `Check the health of agent-transcript by verifying:
  • Database path detection
  • Database accessibility
  • Expected schema (chat_sessions, chat_messages, agent_steps)
  • Session count

This command is useful for debugging storage issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("Agent Transcript Health Check"))
		fmt.Println()

		path, err := internal.DetectDatabasePath(dbPath)
		if err != nil {
			fmt.Println(errorStyle.Render("✗ Database path detection failed: " + err.Error()))
			return err
		}
		fmt.Println(successStyle.Render("✓ Database path: " + path))

		if !internal.DatabaseExists(path) {
			fmt.Println(errorStyle.Render("✗ Database file not found"))
			return fmt.Errorf("database file not found: %s", path)
		}

		db, err := internal.OpenDatabase(path)
		if err != nil {
			fmt.Println(errorStyle.Render("✗ Failed to open database: " + err.Error()))
			return err
		}
		defer func() { _ = db.Close() }()
		fmt.Println(successStyle.Render("✓ Database opens read-only"))

		if err := internal.VerifySchema(db); err != nil {
			fmt.Println(errorStyle.Render("✗ Schema check failed: " + err.Error()))
			return err
		}
		fmt.Println(successStyle.Render("✓ Expected tables present"))

		sessions, err := internal.ListSessions(db)
		if err != nil {
			fmt.Println(errorStyle.Render("✗ Failed to list sessions: " + err.Error()))
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("✓ %d session(s) found", len(sessions))))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
