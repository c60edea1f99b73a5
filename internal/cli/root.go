// Package cli implements the cobra-based CLI commands for doctumcfg.
//
// Each subcommand (show, render, files, env, run, serve, watch) is defined
// in its own file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags,
// logging setup, and error-to-exit-code translation.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/doctumcfg/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose lowers the log level to debug.
	verbose bool

	// settingsPath is an explicit project settings file. When empty, the
	// working directory is searched for .doctum.jsonc / .doctum.json.
	settingsPath string
)

// log is the CLI logger. It writes to stderr so stdout stays clean for
// command output that may be piped into other tools.
var log = logrus.New()

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
//
// The root command itself does not perform any action. It only provides
// help text and global flags. Actual functionality is provided by
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "doctumcfg",
		Short: "Build and apply Doctum API documentation settings",
		Long: `doctumcfg builds the configuration for the Doctum API documentation
generator from DOCTUM_* environment variables.

Unset or empty variables fall back to their defaults; the build and cache
directories are always resolved to absolute paths. The configuration can be
printed, rendered as a Doctum PHP config file, exported as shell settings,
or used directly to run Doctum in a container and serve the result.`,

		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "",
		"Project settings file (default: .doctum.jsonc or .doctum.json in the working directory)")

	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewRenderCommand())
	rootCmd.AddCommand(NewFilesCommand())
	rootCmd.AddCommand(NewEnvCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewWatchCommand())

	return rootCmd
}

// configureLogging applies the --verbose flag to the CLI logger.
func configureLogging(w io.Writer) {
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// The command context is cancelled on SIGINT/SIGTERM so long-running
// commands (run, serve, watch) can clean up. CLIError types carry their own
// exit codes; other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(os.Stderr, cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(os.Stderr, err.Error(), nil)
		os.Exit(int(model.ExitGeneralError))
	}
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"message": message,
		}
		if underlying != nil {
			errObj["detail"] = underlying.Error()
		}
		data, _ := json.MarshalIndent(map[string]interface{}{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog prints a debug message when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v as indented JSON to w.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
