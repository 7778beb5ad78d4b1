package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/agent-transcript/internal"
	"github.com/iksnae/agent-transcript/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
	sessionID string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export assembled transcripts to file",
	Long: `Export assembled transcripts to various formats (jsonl, md, yaml, json).

You can export all sessions or a specific session by ID.
Use 'agent-transcript list' to see available session IDs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		var sessions []internal.SessionInfo
		if sessionID != "" {
			session, err := internal.GetSession(db, sessionID)
			if err != nil {
				return fmt.Errorf("session %s not found: %w", sessionID, err)
			}
			sessions = []internal.SessionInfo{*session}
		} else {
			sessions, err = internal.ListSessions(db)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions to export.")
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		for i := range sessions {
			session := &sessions[i]
			if err := exportSession(db, session, exporter); err != nil {
				internal.LogWarn("Skipping session %s: %v", session.ID, err)
				continue
			}
			exported++
		}

		fmt.Printf("Exported %d of %d session(s) to %s\n", exported, len(sessions), outputDir)
		return nil
	},
}

func exportSession(db *sql.DB, session *internal.SessionInfo, exporter export.Exporter) error {
	transcript, err := internal.LoadTranscript(db, session.ID, true)
	if err != nil {
		return err
	}

	assembler := internal.NewTranscriptAssembler(nil, transcript.WorkPath)
	doc := export.BuildDocument(session, assembler.Assemble(transcript))

	outPath := filepath.Join(outputDir, fmt.Sprintf("transcript_%s.%s", session.ID, exporter.Extension()))
	file, err := os.Create(outPath)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: outPath, Err: err}
	}
	defer func() { _ = file.Close() }()

	if err := exporter.Export(doc, file); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: outPath, Err: err}
	}

	internal.LogDebug("Exported session %s to %s", session.ID, outPath)
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory")
	exportCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Export a single session by ID")
	rootCmd.AddCommand(exportCmd)
}
