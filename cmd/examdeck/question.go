package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hnakamura/examdeck/internal/deck"
	"github.com/hnakamura/examdeck/internal/library"
)

func newQuestionCommand() *cobra.Command {
	questionCommand := &cobra.Command{
		Use:   "question",
		Short: "Manage questions within an exam",
	}

	questionCommand.AddCommand(newQuestionAddCommand())
	questionCommand.AddCommand(newQuestionListCommand())
	questionCommand.AddCommand(newQuestionDeleteCommand())
	questionCommand.AddCommand(newQuestionReviewCommand())

	return questionCommand
}

func newQuestionAddCommand() *cobra.Command {
	var examID string
	var text string
	var imageFiles []string
	var answerText string
	var difficulty string
	var status string

	command := &cobra.Command{
		Use:   "add",
		Short: "Add questions to an exam (duplicate images are skipped)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if text == "" && len(imageFiles) == 0 {
				return fmt.Errorf("either --text or --image is required")
			}

			var parsedDifficulty deck.Difficulty
			var err error
			if difficulty != "" {
				if parsedDifficulty, err = deck.ParseDifficulty(difficulty); err != nil {
					return err
				}
			}
			var parsedStatus deck.Status
			if status != "" {
				if parsedStatus, err = deck.ParseStatus(status); err != nil {
					return err
				}
			}

			var inputs []library.QuestionInput
			if text != "" {
				input := library.QuestionInput{
					Kind:       deck.KindText,
					Text:       text,
					Difficulty: parsedDifficulty,
					Status:     parsedStatus,
				}
				if answerText != "" {
					input.Answer = &deck.Answer{Text: answerText}
				}
				inputs = append(inputs, input)
			}
			for _, file := range imageFiles {
				payload, err := readImageFile(file)
				if err != nil {
					return err
				}
				inputs = append(inputs, library.QuestionInput{
					Kind:       deck.KindImage,
					Image:      payload,
					Difficulty: parsedDifficulty,
					Status:     parsedStatus,
				})
			}

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			result, err := lib.AddQuestions(ctx, examID, inputs)
			if err != nil {
				return fmt.Errorf("AddQuestions() > %w", err)
			}

			color.Green("Added %d question(s)", len(result.Created))
			if result.Skipped > 0 {
				color.Yellow("Skipped %d duplicate image(s)", result.Skipped)
			}
			return nil
		},
	}

	command.Flags().StringVar(&examID, "exam", "", "Exam id to add questions to")
	command.Flags().StringVar(&text, "text", "", "Question text")
	command.Flags().StringArrayVar(&imageFiles, "image", nil, "Image file to add as a question (repeatable)")
	command.Flags().StringVar(&answerText, "answer", "", "Answer text for a text question")
	command.Flags().StringVar(&difficulty, "difficulty", "", "Difficulty (normal, hard, night-before)")
	command.Flags().StringVar(&status, "status", "", "Status (new, seen, in-progress, mastered)")
	_ = command.MarkFlagRequired("exam")
	return command
}

func newQuestionListCommand() *cobra.Command {
	var examID string
	var difficulty string
	var status string

	command := &cobra.Command{
		Use:   "list",
		Short: "List questions of an exam",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			state := lib.State()
			if state.ExamByID(examID) == nil {
				return fmt.Errorf("exam %s not found", examID)
			}

			count := 0
			for _, q := range state.QuestionsByExam(examID) {
				if difficulty != "" && string(q.Difficulty) != difficulty {
					continue
				}
				if status != "" && string(q.Status) != status {
					continue
				}
				count++

				label := q.Text
				if q.Kind == deck.KindImage {
					label = "(image)"
				}
				fmt.Printf("%s  %-12s %-12s %s\n", q.ID, q.Difficulty, q.Status, label)
			}
			if count == 0 {
				fmt.Println("No matching questions.")
			}
			return nil
		},
	}

	command.Flags().StringVar(&examID, "exam", "", "Exam id to list questions of")
	command.Flags().StringVar(&difficulty, "difficulty", "", "Only show questions with this difficulty")
	command.Flags().StringVar(&status, "status", "", "Only show questions with this status")
	_ = command.MarkFlagRequired("exam")
	return command
}

func newQuestionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <question-id>...",
		Short: "Delete questions and reclaim their images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			if err := lib.DeleteQuestions(ctx, args); err != nil {
				return fmt.Errorf("DeleteQuestions() > %w", err)
			}
			fmt.Printf("Deleted %d question(s)\n", len(args))
			return nil
		},
	}
}

func newQuestionReviewCommand() *cobra.Command {
	var status string

	command := &cobra.Command{
		Use:   "review <question-id>",
		Short: "Record a review pass over a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			parsedStatus, err := deck.ParseStatus(status)
			if err != nil {
				return err
			}

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			if lib.State().QuestionByID(args[0]) == nil {
				return fmt.Errorf("question %s not found", args[0])
			}
			if err := lib.MarkReviewed(ctx, args[0], parsedStatus); err != nil {
				return fmt.Errorf("MarkReviewed() > %w", err)
			}
			fmt.Printf("Marked question %s as %s\n", args[0], parsedStatus)
			return nil
		},
	}

	command.Flags().StringVar(&status, "status", string(deck.StatusSeen), "Status after the review (new, seen, in-progress, mastered)")
	return command
}
