// commands.go contains the cobra command definitions and their flag
// configurations. Each builder creates a command and wires it to its handler.
package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "project.yaml"

func buildInitCmd() *cobra.Command {
	var (
		configPath  string
		outputPath  string
		templateDir string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Render the workflow document to a local file",
		Long: `Render the workflow document from the project configuration and write
it to the canonical local path, creating parent directories as needed. The
write is atomic: a failed write never leaves a partial file behind.`,
		Example: `  cicd init --config project.yaml
  cicd init --config project.yaml --output build/ci.yml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, configPath, outputPath, templateDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the project configuration file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", workflowPath, "Path the rendered document is written to")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Directory overriding the template lookup")
	return cmd
}

func buildPlanCmd() *cobra.Command {
	var (
		configPath  string
		templateDir string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the diff between the rendered and the current document",
		Long: `Render the workflow document and compare it against the local workflow
file. Nothing is written. The exit code distinguishes a pending change (3)
from no change (0).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, configPath, templateDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the project configuration file")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Directory overriding the template lookup")
	return cmd
}

func buildPushCmd() *cobra.Command {
	var (
		configPath  string
		templateDir string
		branch      string
		base        string
	)

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Commit the workflow document to a branch and open a pull request",
		Long: `Render the workflow document, compare it against the base branch of the
remote repository, and synchronize a difference through a working branch with
an open pull request. Re-running with unchanged configuration is a no-op:
no new commit is made and the existing pull request is reused.

Requires GITHUB_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd, configPath, templateDir, branch, base)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the project configuration file")
	cmd.Flags().StringVar(&templateDir, "template-dir", "", "Directory overriding the template lookup")
	cmd.Flags().StringVar(&branch, "branch", defaultWorkBranch, "Working branch the document is committed to")
	cmd.Flags().StringVar(&base, "base", "", "Base branch for the pull request (default: the repository's default branch)")
	return cmd
}

func buildRunCmd() *cobra.Command {
	var (
		configPath string
		ref        string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger the workflow and optionally watch it to completion",
		Long: `Dispatch a workflow_dispatch event for the generated workflow. With
--watch, the triggered run is discovered and polled until it reaches a
terminal state or the deadline passes; a failed or timed-out run exits
with code 4.

Requires GITHUB_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, configPath, ref, watch)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the project configuration file")
	cmd.Flags().StringVar(&ref, "ref", "", "Branch to run the workflow on (default: the first configured branch)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll the triggered run until it completes")
	return cmd
}

func buildStatusCmd() *cobra.Command {
	var (
		configPath string
		last       int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List recent workflow runs",
		Long: `Perform a single lookup of the workflow's most recent runs and print
their status, conclusion, and link.

Requires GITHUB_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, configPath, last)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Path to the project configuration file")
	cmd.Flags().IntVar(&last, "last", 5, "Number of runs to list")
	return cmd
}
