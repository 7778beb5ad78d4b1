package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iksnae/agent-transcript/internal"
	"github.com/spf13/cobra"
)

var inspectRaw bool

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Dump the raw step sequence for a session",
	Long: `Print the undecoded step records of a session as JSON, one per line.
Useful for debugging classification and parser behavior.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		steps, err := internal.LoadSteps(db, args[0])
		if err != nil {
			return fmt.Errorf("failed to load steps: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		for _, step := range steps {
			if inspectRaw {
				if err := enc.Encode(step); err != nil {
					return err
				}
				continue
			}
			obj := map[string]interface{}{
				"type":     step.Type,
				"category": internal.Categorize(step.Type),
				"sequence": step.Sequence,
				"length":   len(step.Content),
			}
			if tool := step.ToolName(); tool != "" {
				obj["tool"] = tool
			}
			if iteration := step.Iteration(); iteration != nil {
				obj["iteration"] = *iteration
			}
			if err := enc.Encode(obj); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "Dump full step records including content and metadata")
	rootCmd.AddCommand(inspectCmd)
}
