package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hnakamura/examdeck/internal/deck"
	"github.com/hnakamura/examdeck/internal/library"
)

func newExamCommand() *cobra.Command {
	examCommand := &cobra.Command{
		Use:   "exam",
		Short: "Manage exams",
	}

	examCommand.AddCommand(newExamAddCommand())
	examCommand.AddCommand(newExamListCommand())
	examCommand.AddCommand(newExamUpdateCommand())
	examCommand.AddCommand(newExamDeleteCommand())

	return examCommand
}

func newExamAddCommand() *cobra.Command {
	var subject string
	var targetDate string

	command := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new exam",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			input := library.CreateExamInput{
				Name:    args[0],
				Subject: subject,
			}
			if targetDate != "" {
				date, err := time.Parse("2006-01-02", targetDate)
				if err != nil {
					return fmt.Errorf("invalid target date %q (expected YYYY-MM-DD): %w", targetDate, err)
				}
				input.TargetDate = &date
			}

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			exam, err := lib.CreateExam(ctx, input)
			if err != nil {
				return fmt.Errorf("CreateExam() > %w", err)
			}
			fmt.Printf("Created exam %s (%s)\n", exam.Name, exam.ID)
			return nil
		},
	}

	command.Flags().StringVar(&subject, "subject", "", "Subject of the exam")
	command.Flags().StringVar(&targetDate, "target-date", "", "Target date (YYYY-MM-DD)")
	return command
}

func newExamListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all exams",
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
			if len(state.Exams) == 0 {
				fmt.Println("No exams yet.")
				return nil
			}
			for _, exam := range state.Exams {
				line := fmt.Sprintf("%s  %s", exam.ID, exam.Name)
				if exam.Subject != "" {
					line += "  [" + exam.Subject + "]"
				}
				if exam.TargetDate != nil {
					line += "  due " + exam.TargetDate.Format("2006-01-02")
				}
				fmt.Printf("%s  (%d questions)\n", line, len(state.QuestionsByExam(exam.ID)))
			}
			return nil
		},
	}
}

func newExamUpdateCommand() *cobra.Command {
	var name string
	var subject string
	var targetDate string

	command := &cobra.Command{
		Use:   "update <exam-id>",
		Short: "Update an exam's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var patch deck.ExamPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("subject") {
				patch.Subject = &subject
			}
			if targetDate != "" {
				date, err := time.Parse("2006-01-02", targetDate)
				if err != nil {
					return fmt.Errorf("invalid target date %q (expected YYYY-MM-DD): %w", targetDate, err)
				}
				patch.TargetDate = &date
			}

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			if lib.State().ExamByID(args[0]) == nil {
				return fmt.Errorf("exam %s not found", args[0])
			}
			if err := lib.UpdateExam(ctx, args[0], patch); err != nil {
				return fmt.Errorf("UpdateExam() > %w", err)
			}
			fmt.Printf("Updated exam %s\n", args[0])
			return nil
		},
	}

	command.Flags().StringVar(&name, "name", "", "New exam name")
	command.Flags().StringVar(&subject, "subject", "", "New subject")
	command.Flags().StringVar(&targetDate, "target-date", "", "New target date (YYYY-MM-DD)")
	return command
}

func newExamDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <exam-id>",
		Short: "Delete an exam, its questions and its tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			questions := len(lib.State().QuestionsByExam(args[0]))
			if err := lib.DeleteExam(ctx, args[0]); err != nil {
				return fmt.Errorf("DeleteExam() > %w", err)
			}
			fmt.Printf("Deleted exam %s and %d question(s)\n", args[0], questions)
			return nil
		},
	}
}
