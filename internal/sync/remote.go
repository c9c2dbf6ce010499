package sync

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/amanverma-wsu/cicd-tool/internal/diff"
	"github.com/amanverma-wsu/cicd-tool/internal/errors"
	"github.com/amanverma-wsu/cicd-tool/internal/provider"
)

// Stage names reported on sync failures.
const (
	StageEnsureBranch = "ensure-branch"
	StageCommit       = "commit"
	StageEnsurePR     = "ensure-pr"
)

// RemoteTarget synchronizes the rendered document into a repository branch
// and keeps a pull request open for it.
type RemoteTarget struct {
	// Client is the provider capability client for the repository.
	Client provider.Client

	// Branch is the working branch the document is committed to.
	Branch string

	// Base is the branch the pull request targets. Empty means the
	// repository's default branch.
	Base string

	// Path is the canonical in-repository path of the workflow document.
	Path string

	// CommitMessage, PRTitle, and PRBody are used when committing and when
	// opening a new pull request.
	CommitMessage string
	PRTitle       string
	PRBody        string
}

// apply runs the three remote stages in strict order. Each stage failure is
// reported with CodeSyncFailed and the failing stage; later stages never run
// after a failure.
func (t RemoteTarget) apply(ctx context.Context, log *slog.Logger, res diff.Result) (Outcome, error) {
	base := t.Base
	if base == "" {
		resolved, err := t.Client.DefaultBranch(ctx)
		if err != nil {
			return Outcome{}, stageError(err, StageEnsureBranch, "failed to resolve default branch")
		}
		base = resolved
	}

	if err := t.ensureBranch(ctx, log, base); err != nil {
		return Outcome{}, err
	}

	commitSHA, err := t.commit(ctx, log, res)
	if err != nil {
		return Outcome{}, err
	}

	pr, created, err := t.ensurePullRequest(ctx, log, base)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Kind:           CommittedAndPR,
		Branch:         t.Branch,
		CommitSHA:      commitSHA,
		PullRequestURL: pr.URL,
		PRCreated:      created,
	}, nil
}

// ensureBranch makes the working branch exist, creating it from the head of
// base when absent. A conflict on creation means another invocation created
// the branch concurrently; the branch is re-checked and reused.
func (t RemoteTarget) ensureBranch(ctx context.Context, log *slog.Logger, base string) error {
	_, err := t.Client.BranchSHA(ctx, t.Branch)
	if err == nil {
		log.Debug("working branch exists", "branch", t.Branch)
		return nil
	}
	if !stderrors.Is(err, provider.ErrBranchMissing) {
		return stageError(err, StageEnsureBranch, "failed to look up working branch")
	}

	baseSHA, err := t.Client.BranchSHA(ctx, base)
	if err != nil {
		return stageError(err, StageEnsureBranch, "failed to resolve base branch head")
	}

	if err := t.Client.CreateBranch(ctx, t.Branch, baseSHA); err != nil {
		if errors.GetCode(err) == errors.CodeConflict {
			if _, lookupErr := t.Client.BranchSHA(ctx, t.Branch); lookupErr == nil {
				log.Debug("working branch created concurrently, reusing", "branch", t.Branch)
				return nil
			}
		}
		return stageError(err, StageEnsureBranch, "failed to create working branch")
	}

	log.Info("working branch created", "branch", t.Branch, "from", base)
	return nil
}

// commit puts the rendered document at its canonical path on the working
// branch. When the branch already holds byte-identical content no new commit
// is made and the current branch head is reported instead.
func (t RemoteTarget) commit(ctx context.Context, log *slog.Logger, res diff.Result) (string, error) {
	existing, err := t.Client.GetFile(ctx, t.Branch, t.Path)
	if err != nil && !stderrors.Is(err, provider.ErrFileMissing) {
		return "", stageError(err, StageCommit, "failed to read document on working branch")
	}

	if err == nil && existing == res.New {
		head, headErr := t.Client.BranchSHA(ctx, t.Branch)
		if headErr != nil {
			return "", stageError(headErr, StageCommit, "failed to resolve working branch head")
		}
		log.Info("document on working branch already up to date", "branch", t.Branch)
		return head, nil
	}

	sha, err := t.Client.CommitFile(ctx, t.Branch, t.Path, res.New, t.CommitMessage)
	if err != nil {
		return "", stageError(err, StageCommit, "failed to commit workflow document")
	}

	log.Info("workflow document committed", "branch", t.Branch, "commit", sha)
	return sha, nil
}

// ensurePullRequest finds the open pull request from the working branch to
// base, opening one when none exists. Reuse is reported with created=false.
func (t RemoteTarget) ensurePullRequest(ctx context.Context, log *slog.Logger, base string) (*provider.PullRequest, bool, error) {
	pr, err := t.Client.FindOpenPullRequest(ctx, t.Branch, base)
	if err != nil {
		return nil, false, stageError(err, StageEnsurePR, "failed to look up open pull request")
	}
	if pr != nil {
		log.Info("reusing open pull request", "url", pr.URL)
		return pr, false, nil
	}

	pr, err = t.Client.CreatePullRequest(ctx, t.Branch, base, t.PRTitle, t.PRBody)
	if err != nil {
		return nil, false, stageError(err, StageEnsurePR, "failed to open pull request")
	}

	log.Info("pull request opened", "url", pr.URL)
	return pr, true, nil
}

// stageError wraps a stage failure with CodeSyncFailed and the stage name.
func stageError(err error, stage, message string) error {
	return errors.Wrap(err, errors.CodeSyncFailed, message).WithStage(stage)
}
