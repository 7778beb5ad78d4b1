package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/agent-transcript/internal"
	"github.com/spf13/cobra"
)

var (
	expandAll  bool
	noCoalesce bool
)

var (
	// Styles for show command
	roundHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1)

	thoughtLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	toolLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	finalLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	otherLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	failedBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	collapsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	bodyStyle = lipgloss.NewStyle().
			Padding(0, 2)

	diffAddStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	diffDelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

const collapsedPreviewLines = 3

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the assembled transcript for a session",
	Long: `Load a session's step sequence, run the transcript processing core over
it, and render the grouped result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		transcript, err := internal.LoadTranscript(db, sessionID, !noCoalesce)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}

		cache := internal.NewFileExistenceCache(nil)
		assembler := internal.NewTranscriptAssembler(cache, transcript.WorkPath)
		view := assembler.Assemble(transcript)

		// Let outstanding existence probes settle so references to real
		// files render as links on the first paint.
		cache.Wait(2 * time.Second)
		assembler.Reannotate()

		renderTranscript(view)
		return nil
	},
}

func renderTranscript(view *internal.TranscriptView) {
	for _, pending := range view.Pending {
		reason := pending.Reason
		if reason != "" {
			reason = ": " + reason
		}
		fmt.Println(bannerStyle.Render(fmt.Sprintf("⚠ Pending permission: %s%s", pending.Path, reason)))
	}
	if view.Streaming {
		fmt.Println(bannerStyle.Render("⏳ Session is still streaming; showing steps received so far"))
	}
	if len(view.Pending) > 0 || view.Streaming {
		fmt.Println()
	}

	for _, group := range view.Groups {
		if group.Iteration != nil {
			fmt.Println(roundHeaderStyle.Render(fmt.Sprintf("Round %d", *group.Iteration+1)))
		}
		for _, step := range group.Steps {
			renderStep(step)
		}
	}

	if view.Aggregate != nil {
		renderAggregate(view.Aggregate)
	}
}

func renderStep(step *internal.StepView) {
	label := categoryLabel(step)
	if step.Failed {
		label += " " + failedBadgeStyle.Render("✗ failed")
	}
	fmt.Println(label)

	body := stepBody(step)
	if body == "" {
		fmt.Println()
		return
	}

	if step.Collapsed && !expandAll {
		lines := strings.Split(body, "\n")
		if len(lines) > collapsedPreviewLines {
			preview := strings.Join(lines[:collapsedPreviewLines], "\n")
			fmt.Println(bodyStyle.Render(preview))
			fmt.Println(bodyStyle.Render(collapsedStyle.Render(
				fmt.Sprintf("… %d more lines (collapsed)", len(lines)-collapsedPreviewLines))))
			fmt.Println()
			return
		}
	}

	fmt.Println(bodyStyle.Render(body))
	fmt.Println()
}

func categoryLabel(step *internal.StepView) string {
	switch step.Category {
	case internal.CategoryThought:
		return thoughtLabelStyle.Render("Thought")
	case internal.CategoryTool:
		name := step.Step.ToolName()
		if name == "" {
			name = "tool"
		}
		if step.Step.Type == internal.StepObservation {
			return toolLabelStyle.Render(fmt.Sprintf("Observation [%s]", name))
		}
		return toolLabelStyle.Render(fmt.Sprintf("Action [%s]", name))
	case internal.CategoryFinal:
		return finalLabelStyle.Render("Answer")
	case internal.CategoryError:
		return errorLabelStyle.Render("Error")
	default:
		return otherLabelStyle.Render(string(step.Step.Type))
	}
}

// stepBody renders the decorated content of one step, substituting link
// styling for actionable references.
func stepBody(step *internal.StepView) string {
	switch step.Format {
	case internal.FormatPatch:
		return patchBody(step.Patch)
	case internal.FormatAst:
		return astBody(step.Ast)
	case internal.FormatDiff:
		return colorizeDiff(step.DisplayContent)
	}

	if len(step.Tokens) > 0 {
		var b strings.Builder
		for _, tv := range step.Tokens {
			if tv.Actionable && tv.Token.Kind != internal.TokenText {
				b.WriteString(linkStyle.Render(tv.Token.Text))
			} else {
				b.WriteString(tv.Token.Text)
			}
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return strings.TrimRight(step.DisplayContent, "\n")
}

func patchBody(patch *internal.PatchResult) string {
	if patch == nil {
		return ""
	}
	if !patch.OK {
		message := patch.Error
		if message == "" {
			message = "patch failed"
		}
		return failedBadgeStyle.Render(message)
	}

	var b strings.Builder
	for _, change := range patch.Summary {
		fmt.Fprintf(&b, "%s %s/%s\n", change.Path,
			diffAddStyle.Render(fmt.Sprintf("+%d", change.Added)),
			diffDelStyle.Render(fmt.Sprintf("-%d", change.Removed)))
	}
	if patch.Diff != "" {
		b.WriteString(colorizeDiff(patch.Diff))
	}
	return strings.TrimRight(b.String(), "\n")
}

func astBody(payload map[string]interface{}) string {
	var b strings.Builder
	for _, key := range sortedKeys(payload) {
		fmt.Fprintf(&b, "%s: %v\n", key, payload[key])
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(payload map[string]interface{}) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func colorizeDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(line)
		case strings.HasPrefix(line, "+"):
			b.WriteString(diffAddStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(diffDelStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAggregate(aggregate *internal.PatchAggregate) {
	fmt.Println(roundHeaderStyle.Render("Files changed"))
	for _, path := range aggregate.Order {
		totals := aggregate.PerFile[path]
		fmt.Println(bodyStyle.Render(fmt.Sprintf("%s %s/%s", path,
			diffAddStyle.Render(fmt.Sprintf("+%d", totals.Added)),
			diffDelStyle.Render(fmt.Sprintf("-%d", totals.Removed)))))
	}
	fmt.Println()
}

func init() {
	showCmd.Flags().BoolVar(&expandAll, "expand-all", false, "Expand all collapsed observation bodies")
	showCmd.Flags().BoolVar(&noCoalesce, "no-coalesce", false, "Keep streaming delta steps as separate entries")
	rootCmd.AddCommand(showCmd)
}
