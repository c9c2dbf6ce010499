// Package provider defines the capability interface the sync orchestrator
// and run controller compose into higher-level operations. One implementation
// exists per CI provider; selecting a provider is a variant selection, not a
// code path.
package provider

import (
	"context"
	"errors"
	"time"
)

// ErrFileMissing is returned by GetFile when the file does not exist at the
// given ref.
var ErrFileMissing = errors.New("file does not exist at ref")

// ErrBranchMissing is returned by BranchSHA when the branch does not exist.
var ErrBranchMissing = errors.New("branch does not exist")

// PullRequest describes an open pull request.
type PullRequest struct {
	Number int
	URL    string
}

// RunState is the provider-reported lifecycle state of a workflow run.
type RunState string

const (
	// StateQueued means the run is waiting to start.
	StateQueued RunState = "queued"

	// StateInProgress means the run is executing.
	StateInProgress RunState = "in_progress"

	// StateCompleted means the run reached a terminal state.
	StateCompleted RunState = "completed"
)

// Conclusion is the terminal outcome of a completed run.
type Conclusion string

const (
	ConclusionSuccess   Conclusion = "success"
	ConclusionFailure   Conclusion = "failure"
	ConclusionCancelled Conclusion = "cancelled"
	ConclusionTimedOut  Conclusion = "timed_out"
)

// Run is a snapshot of a workflow run.
type Run struct {
	ID         int64
	State      RunState
	Conclusion Conclusion
	Branch     string
	URL        string
	CreatedAt  time.Time
}

// Terminal reports whether the run has reached a state from which no further
// transition occurs.
func (r Run) Terminal() bool {
	return r.State == StateCompleted
}

// Client is the set of primitive provider operations. Implementations
// classify transport failures into the engine's error codes and retry
// transient ones with bounded backoff; permanent failures propagate
// immediately.
type Client interface {
	// DefaultBranch returns the repository's default branch name.
	DefaultBranch(ctx context.Context) (string, error)

	// GetFile returns the content of the file at the given ref, or
	// ErrFileMissing when it does not exist there.
	GetFile(ctx context.Context, ref, path string) (string, error)

	// BranchSHA returns the head commit SHA of the branch, or
	// ErrBranchMissing when the branch does not exist.
	BranchSHA(ctx context.Context, branch string) (string, error)

	// CreateBranch creates a branch pointing at the given commit SHA.
	CreateBranch(ctx context.Context, branch, sha string) error

	// CommitFile creates or updates the file on the branch with the given
	// content and commit message, returning the new commit SHA.
	CommitFile(ctx context.Context, branch, path, content, message string) (string, error)

	// FindOpenPullRequest returns the open pull request from head to base,
	// or nil when none exists.
	FindOpenPullRequest(ctx context.Context, head, base string) (*PullRequest, error)

	// CreatePullRequest opens a pull request from head to base.
	CreatePullRequest(ctx context.Context, head, base, title, body string) (*PullRequest, error)

	// DispatchWorkflow triggers a workflow_dispatch event for the workflow
	// file on the given ref. The provider does not return a run id; the run
	// must be discovered afterwards.
	DispatchWorkflow(ctx context.Context, workflowFile, ref string) error

	// ListRuns returns runs of the workflow file on the branch triggered by
	// workflow_dispatch and created at or after since, newest first.
	ListRuns(ctx context.Context, workflowFile, branch string, since time.Time) ([]Run, error)

	// GetRun returns a snapshot of the run with the given id.
	GetRun(ctx context.Context, runID int64) (Run, error)

	// ListRecentRuns returns the most recent runs of the workflow regardless
	// of trigger event, newest first, up to limit.
	ListRecentRuns(ctx context.Context, workflowFile string, limit int) ([]Run, error)
}
