// Package sync applies a computed diff to a target: a local file written
// atomically, or a remote repository driven through branch, commit, and pull
// request stages.
//
// The remote path is a single logical operation with a strict stage order:
// ensure-branch, then commit, then ensure-pr. A failing stage aborts before
// the next stage runs. Partial progress is safe to leave behind because each
// stage is idempotent by name: retrying re-enters the sequence without
// duplicating effect.
package sync

import (
	"context"
	"log/slog"
	"os"

	"github.com/amanverma-wsu/cicd-tool/internal/diff"
)

// OutcomeKind tags the authoritative result of an orchestration call.
type OutcomeKind int

const (
	// Unchanged means the diff was empty and nothing was written.
	Unchanged OutcomeKind = iota

	// WrittenLocally means the document was written to a local path.
	WrittenLocally

	// CommittedAndPR means the document was synchronized to a remote branch
	// with an open pull request.
	CommittedAndPR
)

// Outcome reports what an Apply call did. It is consumed by the caller for
// reporting, not retained.
type Outcome struct {
	Kind OutcomeKind

	// Path is the local path written. Set for WrittenLocally.
	Path string

	// Branch, CommitSHA, and PullRequestURL describe the remote result.
	// Set for CommittedAndPR.
	Branch         string
	CommitSHA      string
	PullRequestURL string

	// PRCreated is true when a new pull request was opened, false when an
	// existing open pull request was reused.
	PRCreated bool
}

// Target is the destination of an Apply call: a LocalTarget or a RemoteTarget.
type Target interface {
	apply(ctx context.Context, log *slog.Logger, res diff.Result) (Outcome, error)
}

// Orchestrator applies diffs to targets.
type Orchestrator struct {
	log *slog.Logger
}

// New creates an Orchestrator. A nil logger disables logging.
func New(log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
	}
	return &Orchestrator{log: log}
}

// Apply applies a non-empty diff to the target. A NoChange diff returns
// Unchanged without any write, local or remote.
func (o *Orchestrator) Apply(ctx context.Context, res diff.Result, target Target) (Outcome, error) {
	if res.Kind == diff.NoChange {
		return Outcome{Kind: Unchanged}, nil
	}
	return target.apply(ctx, o.log, res)
}
