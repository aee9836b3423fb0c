package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hnakamura/examdeck/internal/deck"
	"github.com/hnakamura/examdeck/internal/snapshot"
)

func newExportCommand() *cobra.Command {
	var output string
	formatFlag := FormatFlag(snapshot.FormatJSON)
	var examID string
	var difficulty string
	var status string
	var tagID string

	command := &cobra.Command{
		Use:   "export",
		Short: "Export a portable snapshot with all images inlined",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts := snapshot.ExportOptions{ExamID: examID, TagID: tagID}
			var err error
			if difficulty != "" {
				if opts.Difficulty, err = deck.ParseDifficulty(difficulty); err != nil {
					return err
				}
			}
			if status != "" {
				if opts.Status, err = deck.ParseStatus(status); err != nil {
					return err
				}
			}

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			encoded, result, err := lib.ExportSnapshot(ctx, opts, snapshot.Format(formatFlag))
			if err != nil {
				return fmt.Errorf("ExportSnapshot() > %w", err)
			}

			if output == "" || output == "-" {
				if _, err := cmd.OutOrStdout().Write(encoded); err != nil {
					return fmt.Errorf("failed to write snapshot: %w", err)
				}
			} else if err := os.WriteFile(output, encoded, 0644); err != nil {
				return fmt.Errorf("failed to write snapshot file: %w", err)
			}

			fmt.Fprintln(os.Stderr)
			fmt.Fprintln(os.Stderr, "Export Summary:")
			fmt.Fprintf(os.Stderr, "  Exams:     %d\n", result.Exams)
			fmt.Fprintf(os.Stderr, "  Questions: %d\n", result.Questions)
			fmt.Fprintf(os.Stderr, "  Tags:      %d\n", result.Tags)
			if result.MissingImages > 0 {
				color.Yellow("  %d image(s) could not be resolved and were dropped", result.MissingImages)
			}
			return nil
		},
	}

	command.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	command.Flags().Var(&formatFlag, "format", "Snapshot format. Options: json, yaml")
	command.Flags().StringVar(&examID, "exam", "", "Export a single exam instead of the whole dataset")
	command.Flags().StringVar(&difficulty, "difficulty", "", "Only export questions with this difficulty")
	command.Flags().StringVar(&status, "status", "", "Only export questions with this status")
	command.Flags().StringVar(&tagID, "tag", "", "Only export questions carrying this tag")
	return command
}

func newImportCommand() *cobra.Command {
	modeFlag := ModeFlag(snapshot.ModeMerge)

	command := &cobra.Command{
		Use:   "import <snapshot-file>",
		Short: "Import a portable snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read snapshot file: %w", err)
			}

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			result, err := lib.ImportSnapshot(ctx, data, snapshot.ImportMode(modeFlag))
			if err != nil {
				return fmt.Errorf("ImportSnapshot() > %w", err)
			}

			fmt.Println("Import Summary:")
			fmt.Printf("  Mode:      %s\n", modeFlag)
			fmt.Printf("  Exams:     %d\n", result.Exams)
			fmt.Printf("  Questions: %d\n", result.Questions)
			fmt.Printf("  Tags:      %d\n", result.Tags)
			if result.FailedImages > 0 {
				color.Yellow("  %d image(s) failed to store and were dropped", result.FailedImages)
			} else {
				color.Green("  All images stored")
			}
			return nil
		},
	}

	command.Flags().Var(&modeFlag, "mode", "Import mode. Options: merge, replace")
	return command
}
