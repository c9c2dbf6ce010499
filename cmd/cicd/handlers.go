// handlers.go contains the command implementations. Each handler loads the
// configuration, wires the engine components, and maps the outcome onto the
// documented exit codes.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amanverma-wsu/cicd-tool/internal/config"
	"github.com/amanverma-wsu/cicd-tool/internal/diff"
	"github.com/amanverma-wsu/cicd-tool/internal/errors"
	"github.com/amanverma-wsu/cicd-tool/internal/fsys"
	"github.com/amanverma-wsu/cicd-tool/internal/notify"
	"github.com/amanverma-wsu/cicd-tool/internal/provider"
	githubprovider "github.com/amanverma-wsu/cicd-tool/internal/provider/github"
	"github.com/amanverma-wsu/cicd-tool/internal/render"
	"github.com/amanverma-wsu/cicd-tool/internal/run"
	"github.com/amanverma-wsu/cicd-tool/internal/sync"
)

const (
	// workflowPath is the canonical in-repository path of the generated document.
	workflowPath = ".github/workflows/ci.yml"

	// workflowFile is the workflow file name used by the Actions API.
	workflowFile = "ci.yml"

	// defaultWorkBranch is the branch push commits to.
	defaultWorkBranch = "cicd-bootstrap"

	// tokenEnv is the environment variable holding the authentication token.
	tokenEnv = "GITHUB_TOKEN"

	// templateDirEnv overrides template lookup when --template-dir is unset.
	templateDirEnv = "CICD_TEMPLATE_DIR"
)

// osFS returns a filesystem rooted at / so absolute paths resolve as-is.
func osFS() *fsys.FS {
	return fsys.NewOS("/")
}

// absPath makes path absolute relative to the working directory.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CodePersistFailed, "failed to resolve path")
	}
	return abs, nil
}

// loadAndRender loads and validates the configuration, then renders the
// workflow document. This is the shared front half of init, plan, and push.
func loadAndRender(configPath, templateDir string) (*config.Project, *render.Document, error) {
	path, err := absPath(configPath)
	if err != nil {
		return nil, nil, err
	}

	project, err := config.Load(osFS(), path)
	if err != nil {
		return nil, nil, err
	}

	if templateDir == "" {
		templateDir = os.Getenv(templateDirEnv)
	}
	store := &render.Store{OverrideDir: templateDir}
	tpl, err := store.Resolve(project.Provider)
	if err != nil {
		return nil, nil, err
	}

	doc, err := render.Render(project, tpl)
	if err != nil {
		return nil, nil, err
	}
	return project, doc, nil
}

// newClient builds the provider client for the project, failing immediately
// when the authentication token is absent.
func newClient(project *config.Project) (provider.Client, error) {
	token := os.Getenv(tokenEnv)
	if token == "" {
		return nil, errors.Newf(errors.CodeUnauthorized, "%s is required for remote operations", tokenEnv)
	}
	return githubprovider.New(project.Owner(), project.Name(), token)
}

func runInit(cmd *cobra.Command, configPath, outputPath, templateDir string) error {
	_, doc, err := loadAndRender(configPath, templateDir)
	if err != nil {
		return err
	}

	out, err := absPath(outputPath)
	if err != nil {
		return err
	}

	outcome, err := sync.New(slog.Default()).Apply(cmd.Context(), diff.Compute(nil, doc.Text), sync.LocalTarget{
		FS:   osFS(),
		Path: out,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Rendered -> %s\n", outcome.Path)
	return nil
}

func runPlan(cmd *cobra.Command, configPath, templateDir string) error {
	_, doc, err := loadAndRender(configPath, templateDir)
	if err != nil {
		return err
	}

	fs := osFS()
	path, err := absPath(workflowPath)
	if err != nil {
		return err
	}

	var existing *string
	if ok, existsErr := fs.Exists(path); existsErr != nil {
		return errors.Wrap(existsErr, errors.CodePersistFailed, "failed to inspect current workflow file")
	} else if ok {
		data, readErr := fs.ReadFile(path)
		if readErr != nil {
			return errors.Wrap(readErr, errors.CodePersistFailed, "failed to read current workflow file")
		}
		text := string(data)
		existing = &text
	}

	result := diff.Compute(existing, doc.Text)
	if result.Kind == diff.NoChange {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), result.Unified("current", "rendered"))
	return &exitError{code: exitChangePending, err: stderrors.New("changes pending")}
}

func runPush(cmd *cobra.Command, configPath, templateDir, branch, base string) error {
	project, doc, err := loadAndRender(configPath, templateDir)
	if err != nil {
		return err
	}

	client, err := newClient(project)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	existing, err := remoteWorkflow(ctx, client, base)
	if err != nil {
		return err
	}

	result := diff.Compute(existing, doc.Text)
	if result.Kind == diff.NoChange {
		fmt.Fprintln(cmd.OutOrStdout(), "Workflow already up to date.")
		return nil
	}

	outcome, err := sync.New(slog.Default()).Apply(ctx, result, sync.RemoteTarget{
		Client:        client,
		Branch:        branch,
		Base:          base,
		Path:          workflowPath,
		CommitMessage: fmt.Sprintf("chore: manage CI workflow for %s", project.Service),
		PRTitle:       fmt.Sprintf("Manage CI workflow for %s", project.Service),
		PRBody: fmt.Sprintf("Synchronizes `%s` with the `%s` project configuration. Generated by cicd.",
			workflowPath, project.Service),
	})
	if err != nil {
		return err
	}

	action := "reused"
	if outcome.PRCreated {
		action = "created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Committed %s to %s, pull request %s: %s\n",
		workflowPath, outcome.Branch, action, outcome.PullRequestURL)
	return nil
}

// remoteWorkflow reads the workflow document at the base branch (or the
// default branch when base is empty). A missing file yields nil.
func remoteWorkflow(ctx context.Context, client provider.Client, base string) (*string, error) {
	if base == "" {
		resolved, err := client.DefaultBranch(ctx)
		if err != nil {
			return nil, err
		}
		base = resolved
	}

	content, err := client.GetFile(ctx, base, workflowPath)
	if err != nil {
		if stderrors.Is(err, provider.ErrFileMissing) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

func runRun(cmd *cobra.Command, configPath, ref string, watch bool) error {
	path, err := absPath(configPath)
	if err != nil {
		return err
	}
	project, err := config.Load(osFS(), path)
	if err != nil {
		return err
	}

	client, err := newClient(project)
	if err != nil {
		return err
	}

	if ref == "" {
		ref = project.Branches[0]
	}

	ctx := cmd.Context()
	ctrl := run.New(client, slog.Default(), run.DefaultOptions())

	handle, err := ctrl.Dispatch(ctx, project.Repository, workflowFile, ref)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Triggered workflow_dispatch.")

	if !watch {
		return nil
	}

	final, err := ctrl.Watch(ctx, handle)
	if err != nil {
		if errors.GetCode(err) == errors.CodeTimeout {
			fmt.Fprintf(cmd.OutOrStdout(), "Timed out waiting for run %d, last status: %s\n", final.ID, final.State)
			return &exitError{code: exitRunFailed, err: err}
		}
		return err
	}

	notify.NewSlack(project.Notifications.SlackWebhook, slog.Default()).
		RunCompleted(ctx, project.Repository, final)

	fmt.Fprintf(cmd.OutOrStdout(), "Run %d completed: %s (%s)\n", final.ID, final.Conclusion, final.URL)
	if final.Conclusion != provider.ConclusionSuccess {
		return &exitError{code: exitRunFailed, err: fmt.Errorf("run concluded with %s", final.Conclusion)}
	}
	return nil
}

func runStatus(cmd *cobra.Command, configPath string, last int) error {
	path, err := absPath(configPath)
	if err != nil {
		return err
	}
	project, err := config.Load(osFS(), path)
	if err != nil {
		return err
	}

	client, err := newClient(project)
	if err != nil {
		return err
	}

	ctrl := run.New(client, slog.Default(), run.DefaultOptions())
	runs, err := ctrl.Recent(cmd.Context(), workflowFile, last)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
		return nil
	}
	for _, r := range runs {
		conclusion := string(r.Conclusion)
		if conclusion == "" {
			conclusion = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d  %s/%s  %s\n", r.ID, r.State, conclusion, r.URL)
	}
	return nil
}
