package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hnakamura/examdeck/internal/deck"
)

func newInfoCommand() *cobra.Command {
	var sweep bool
	var purge bool

	command := &cobra.Command{
		Use:   "info",
		Short: "Show dataset statistics and optionally sweep orphaned images",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			stats := lib.Stats(ctx)
			fmt.Printf("Exams:     %d\n", stats.Exams)
			fmt.Printf("Questions: %d\n", stats.Questions)
			fmt.Printf("Tags:      %d\n", stats.Tags)

			if stats.Questions > 0 {
				fmt.Println("\nBy status:")
				for _, status := range []deck.Status{deck.StatusNew, deck.StatusSeen, deck.StatusInProgress, deck.StatusMastered} {
					if n := stats.ByStatus[status]; n > 0 {
						fmt.Printf("  %-12s %d\n", status, n)
					}
				}
				fmt.Println("\nBy difficulty:")
				for _, difficulty := range []deck.Difficulty{deck.DifficultyNormal, deck.DifficultyHard, deck.DifficultyNightBefore} {
					if n := stats.ByDifficulty[difficulty]; n > 0 {
						fmt.Printf("  %-12s %d\n", difficulty, n)
					}
				}
			}
			if len(stats.PerExam) > 0 {
				fmt.Println("\nPer exam:")
				for _, examStats := range stats.PerExam {
					fmt.Printf("  %-30s %d question(s), %d tag(s)\n", examStats.Exam.Name, examStats.Questions, examStats.Tags)
				}
			}

			if !sweep && !purge {
				return nil
			}

			orphans, err := lib.SweepOrphans(ctx, purge)
			if err != nil {
				return fmt.Errorf("SweepOrphans() > %w", err)
			}
			fmt.Println()
			if len(orphans) == 0 {
				color.Green("No orphaned images.")
				return nil
			}
			if purge {
				color.Yellow("Deleted %d orphaned image(s)", len(orphans))
			} else {
				color.Yellow("%d orphaned image(s) found (re-run with --purge to delete):", len(orphans))
				for _, ref := range orphans {
					fmt.Printf("  %s\n", ref)
				}
			}
			return nil
		},
	}

	command.Flags().BoolVar(&sweep, "sweep", false, "List blob entries no question references")
	command.Flags().BoolVar(&purge, "purge", false, "Delete orphaned blob entries (implies --sweep)")
	return command
}
