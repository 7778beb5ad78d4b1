package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-transcript/internal"
	"github.com/spf13/cobra"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	workPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	Long:  `List all chat sessions recorded in the agent database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		internal.LogDebug("Using database at %s", path)

		sessions, err := internal.ListSessions(db)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found.")
			return nil
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("Sessions (%d)", len(sessions))))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, session := range sessions {
			title := session.Title
			if title == "" {
				title = "(untitled)"
			}
			updated := ""
			if t := session.GetUpdatedAt(); !t.IsZero() {
				updated = t.Format(time.DateTime)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				titleStyle.Render(title),
				idStyle.Render(session.ID),
				countStyle.Render(fmt.Sprintf("%d msgs", session.MessageCount)),
				dateStyle.Render(updated),
				workPathStyle.Render(session.WorkPath),
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
