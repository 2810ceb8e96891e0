// Package cmd provides the CLI commands for indexlog.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/indexlog/internal/errors"
	"github.com/manav03panchal/indexlog/internal/logging"
	"github.com/manav03panchal/indexlog/internal/output"
	"github.com/manav03panchal/indexlog/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat    string
	flagColor     string
	flagDebug     bool
	flagStructure string
	flagScript    string
	flagCapacity  int
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "indexlog",
	Short: "Review and export the edit history of an indicator structure",
	Long: `indexlog replays an edit script over an indicator structure and shows
the resulting change log, newest first. Changes can be filtered, exported,
archived, and submitted for scoring.

Examples:
  indexlog --structure index.yaml --script edits.yaml
  indexlog changes --structure index.yaml --script edits.yaml --category add
  indexlog changes --structure index.yaml --script edits.yaml --since "last hour"
  indexlog export --structure index.yaml --script edits.yaml -o changes.json
  indexlog browse --structure index.yaml --script edits.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return err
		}

		if flagDebug {
			logging.InitDebug()
		}

		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug
		opts.StructurePath = flagStructure
		opts.ScriptPath = flagScript
		opts.Capacity = flagCapacity
		opts.Stdout = cmd.OutOrStdout()
		opts.Stderr = cmd.ErrOrStderr()

		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show session status
		return runStatus(cmd, args)
	},
}

// statusCmd shows the session status.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show cursor position and change counts",
	Long: `Show where the history cursor sits after replaying the script, how many
changes are committed or redoable, and how the structure compares to its
baseline.

Examples:
  indexlog status --structure index.yaml --script edits.yaml
  indexlog st --structure index.yaml --script edits.yaml --format json`,
	RunE: runStatus,
}

// runStatus shows the current session status.
func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := ctx.Session()
	if err != nil {
		return err
	}

	st := sess.Status()
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintStatus(st)
	}

	ctx.CLIFormatter().PrintStatus(st)
	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It prints any error and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		if ctx != nil {
			ctx.Close()
		}
		return runtime.ExitCode(err)
	}
	return runtime.ExitOK
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVarP(&flagStructure, "structure", "s", "",
		"Baseline structure file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&flagScript, "script", "",
		"Edit script replayed over the structure")
	rootCmd.PersistentFlags().IntVar(&flagCapacity, "capacity", 0,
		"Undo history capacity (default from INDEXLOG_HISTORY_CAPACITY)")

	rootCmd.RegisterFlagCompletionFunc("format", fixedCompletions("cli", "json", "plain"))
	rootCmd.RegisterFlagCompletionFunc("color", fixedCompletions("auto", "always", "never"))
	rootCmd.MarkPersistentFlagFilename("structure", "yaml", "yml", "json")
	rootCmd.MarkPersistentFlagFilename("script", "yaml", "yml", "json")

	// Add commands
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("indexlog %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}

// printError writes err to stderr, or as a JSON error document when the
// output format is JSON.
func printError(err error) {
	if ctx != nil && ctx.IsJSON() {
		status := "error"
		if runtime.ExitCode(err) == runtime.ExitSystemError {
			status = "system_error"
		}
		ctx.JSONFormatter().PrintError(status, err.Error(), "", runtime.GetSuggestion(err))
		return
	}
	msg := runtime.FormatError(err)
	if flagDebug {
		msg = strings.TrimRight(errors.FormatDebugError(err), "\n")
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error: "+msg)
}
