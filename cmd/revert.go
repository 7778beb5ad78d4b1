package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/agent-transcript/internal"
	"github.com/spf13/cobra"
)

var revertDryRun bool

// revertCmd represents the revert command
var revertCmd = &cobra.Command{
	Use:   "revert <session-id>",
	Short: "Apply a session's cumulative revert patch",
	Long: `Compose the revert patch from all successful apply-patch calls in a
session (latest call first, so edits are undone in reverse order) and apply
it to the files under the session's work path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		transcript, err := internal.LoadTranscript(db, args[0], true)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", args[0], err)
		}
		if transcript.WorkPath == "" {
			return fmt.Errorf("session %s has no work path; cannot resolve patch targets", args[0])
		}

		assembler := internal.NewTranscriptAssembler(nil, transcript.WorkPath)
		view := assembler.Assemble(transcript)
		if view.Aggregate == nil || view.Aggregate.RevertPatch == "" {
			fmt.Println("Nothing to revert: no successful apply-patch calls in this session.")
			return nil
		}

		if revertDryRun {
			fmt.Println(view.Aggregate.RevertPatch)
			return nil
		}

		// The composed revert patch is one envelope per reverted call,
		// newest first; each applies independently.
		var applied []internal.AppliedFile
		for _, envelope := range internal.SplitPatchEnvelopes(view.Aggregate.RevertPatch) {
			files, err := internal.ApplyPatchEnvelope(envelope, transcript.WorkPath)
			applied = append(applied, files...)
			if err != nil {
				for _, file := range applied {
					fmt.Printf("%s %s\n", revertVerb(file.Kind), file.Path)
				}
				return fmt.Errorf("revert incomplete: %w", err)
			}
		}
		for _, file := range applied {
			fmt.Printf("%s %s\n", revertVerb(file.Kind), file.Path)
			renderRevertDiff(file)
		}

		fmt.Printf("Reverted %d file(s).\n", len(applied))
		return nil
	},
}

func revertVerb(kind internal.PatchKind) string {
	switch kind {
	case internal.PatchAdd:
		return "restored"
	case internal.PatchDelete:
		return "removed"
	default:
		return "reverted"
	}
}

// renderRevertDiff shows what the revert changed in a file, colorized per
// line.
func renderRevertDiff(file internal.AppliedFile) {
	if file.Kind != internal.PatchUpdate {
		return
	}
	var b strings.Builder
	for _, line := range internal.ComputeDiffLines(file.Before, file.After) {
		switch line.Type {
		case internal.DiffAdded:
			b.WriteString(diffAddStyle.Render("+" + line.Text))
		case internal.DiffRemoved:
			b.WriteString(diffDelStyle.Render("-" + line.Text))
		default:
			continue
		}
		b.WriteByte('\n')
	}
	if b.Len() > 0 {
		fmt.Print(bodyStyle.Render(strings.TrimRight(b.String(), "\n")))
		fmt.Println()
	}
}

func init() {
	revertCmd.Flags().BoolVar(&revertDryRun, "dry-run", false, "Print the composed revert patch without applying it")
	rootCmd.AddCommand(revertCmd)
}
