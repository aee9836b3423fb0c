package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTagCommand() *cobra.Command {
	tagCommand := &cobra.Command{
		Use:   "tag",
		Short: "Manage exam-scoped tags",
	}

	tagCommand.AddCommand(newTagAddCommand())
	tagCommand.AddCommand(newTagListCommand())
	tagCommand.AddCommand(newTagDeleteCommand())
	tagCommand.AddCommand(newTagApplyCommand())
	tagCommand.AddCommand(newTagRemoveCommand())

	return tagCommand
}

func newTagAddCommand() *cobra.Command {
	var examID string
	var tagColor string

	command := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a tag to an exam",
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

			tag, err := lib.CreateTag(ctx, examID, args[0], tagColor)
			if err != nil {
				return fmt.Errorf("CreateTag() > %w", err)
			}
			fmt.Printf("Created tag %s (%s)\n", tag.Name, tag.ID)
			return nil
		},
	}

	command.Flags().StringVar(&examID, "exam", "", "Exam id the tag belongs to")
	command.Flags().StringVar(&tagColor, "color", "", "Display color, e.g. #ff8800")
	_ = command.MarkFlagRequired("exam")
	return command
}

func newTagListCommand() *cobra.Command {
	var examID string

	command := &cobra.Command{
		Use:   "list",
		Short: "List tags of an exam, including global ones",
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
			tags := state.TagsForExam(examID)
			if len(tags) == 0 {
				fmt.Println("No tags yet.")
				return nil
			}
			for _, tag := range tags {
				tagged := 0
				for _, q := range state.Questions {
					if q.HasTag(tag.ID) {
						tagged++
					}
				}
				scope := tag.ExamID
				if scope == "" {
					scope = "global"
				}
				fmt.Printf("%s  %-20s %-10s (%d questions, scope %s)\n", tag.ID, tag.Name, tag.Color, tagged, scope)
			}
			return nil
		},
	}

	command.Flags().StringVar(&examID, "exam", "", "Exam id to list tags of")
	_ = command.MarkFlagRequired("exam")
	return command
}

func newTagDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag-id>",
		Short: "Delete a tag and remove it from every question",
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

			if lib.State().TagByID(args[0]) == nil {
				return fmt.Errorf("tag %s not found", args[0])
			}
			if err := lib.DeleteTag(ctx, args[0]); err != nil {
				return fmt.Errorf("DeleteTag() > %w", err)
			}
			fmt.Printf("Deleted tag %s\n", args[0])
			return nil
		},
	}
}

func newTagApplyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <tag-id> <question-id>...",
		Short: "Apply a tag to questions of its exam",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			if err := lib.AddTagToQuestions(ctx, args[1:], args[0]); err != nil {
				return fmt.Errorf("AddTagToQuestions() > %w", err)
			}
			fmt.Printf("Applied tag %s to %d question(s)\n", args[0], len(args)-1)
			return nil
		},
	}
}

func newTagRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <tag-id> <question-id>...",
		Short: "Remove a tag from questions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			lib, err := openLibrary(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = lib.Close()
			}()

			if err := lib.RemoveTagFromQuestions(ctx, args[1:], args[0]); err != nil {
				return fmt.Errorf("RemoveTagFromQuestions() > %w", err)
			}
			fmt.Printf("Removed tag %s from %d question(s)\n", args[0], len(args)-1)
			return nil
		},
	}
}
