// Package main provides the cicd command-line tool. It renders CI workflow
// documents from a small declarative project configuration, reconciles them
// against what a repository currently holds, and drives manually triggered
// workflow runs.
//
// # Basic Usage
//
// Render the workflow locally:
//
//	cicd init --config project.yaml
//
// Show what would change without writing:
//
//	cicd plan --config project.yaml
//
// Commit the workflow to a branch and keep a pull request open for it:
//
//	cicd push --config project.yaml
//
// Trigger a run and watch it to completion:
//
//	cicd run --config project.yaml --watch
//
// # Environment Variables
//
//   - GITHUB_TOKEN: authentication token, required for push, run, and status
//   - CICD_TEMPLATE_DIR: overrides the template lookup directory
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := buildRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func buildRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:     "cicd",
		Short:   "Generate and synchronize CI workflow definitions",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Long: `cicd renders a CI workflow document from a small YAML project
configuration, compares it against the document a repository currently holds,
and applies the difference locally or through a branch and pull request.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(debug)
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		buildInitCmd(),
		buildPlanCmd(),
		buildPushCmd(),
		buildRunCmd(),
		buildStatusCmd(),
	)
	return root
}

// configureLogging sets the process-wide logger. Logs go to stderr so
// command output on stdout stays scriptable.
func configureLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
