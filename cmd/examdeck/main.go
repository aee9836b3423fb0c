package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func newRootCommand() *cobra.Command {
	var debugMode bool

	rootCommand := &cobra.Command{
		Use:           "examdeck",
		Short:         "Organize exam questions, triage them, and keep everything portable",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(debugMode)
		},
	}
	rootCommand.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the configuration file")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCommand.AddCommand(newExamCommand())
	rootCommand.AddCommand(newQuestionCommand())
	rootCommand.AddCommand(newTagCommand())
	rootCommand.AddCommand(newExportCommand())
	rootCommand.AddCommand(newImportCommand())
	rootCommand.AddCommand(newInfoCommand())

	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
