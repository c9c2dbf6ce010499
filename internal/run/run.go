// Package run drives the asynchronous dispatch-and-poll lifecycle of a
// triggered workflow run.
//
// The provider's dispatch API is fire-and-forget: it admits the request
// without returning a run id. The controller therefore moves a run through
// Requested -> Queued -> InProgress -> Completed by first discovering the run
// id within a bounded window and then polling to a terminal state under an
// overall deadline. Transitions only move forward and polling always
// terminates. Cancellation affects only local observation; the remote run is
// never touched.
package run

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
	"github.com/amanverma-wsu/cicd-tool/internal/provider"
)

// Handle identifies a triggered workflow run.
type Handle struct {
	// Repository is the "owner/name" repository the run belongs to.
	Repository string

	// WorkflowRef is the workflow file the run executes.
	WorkflowRef string

	// Ref is the branch the dispatch targeted.
	Ref string

	// RunID is the provider-assigned run id. Zero until discovery succeeds.
	RunID int64

	// RequestedAt is when the dispatch call returned success.
	RequestedAt time.Time
}

// Options configures the controller's polling behavior.
type Options struct {
	// PollInterval is the fixed interval between status polls.
	PollInterval time.Duration

	// DiscoveryWindow bounds how long the controller looks for the run id
	// after a dispatch before failing with CodeRunNotFound.
	DiscoveryWindow time.Duration

	// DiscoveryInterval is the initial interval between discovery lookups.
	// It backs off geometrically up to ten seconds.
	DiscoveryInterval time.Duration

	// Deadline bounds the overall watch loop. Exceeding it reports
	// CodeTimeout with the last observed status.
	Deadline time.Duration
}

// DefaultOptions returns the polling policy used by the CLI.
func DefaultOptions() Options {
	return Options{
		PollInterval:      5 * time.Second,
		DiscoveryWindow:   2 * time.Minute,
		DiscoveryInterval: 3 * time.Second,
		Deadline:          30 * time.Minute,
	}
}

// clockSkew widens the discovery window backwards to tolerate drift between
// the local clock and the provider's timestamps.
const clockSkew = 30 * time.Second

// Controller drives workflow runs through their lifecycle.
type Controller struct {
	client provider.Client
	log    *slog.Logger
	opts   Options
	now    func() time.Time
}

// New creates a Controller. A nil logger disables logging; zero option
// fields take their defaults.
func New(client provider.Client, log *slog.Logger, opts Options) *Controller {
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 4}))
	}
	def := DefaultOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = def.PollInterval
	}
	if opts.DiscoveryWindow <= 0 {
		opts.DiscoveryWindow = def.DiscoveryWindow
	}
	if opts.DiscoveryInterval <= 0 {
		opts.DiscoveryInterval = def.DiscoveryInterval
	}
	if opts.Deadline <= 0 {
		opts.Deadline = def.Deadline
	}
	return &Controller{client: client, log: log, opts: opts, now: time.Now}
}

// Dispatch triggers a workflow_dispatch event for the workflow file on ref.
// The returned handle has no run id yet; the provider assigns it
// asynchronously.
func (c *Controller) Dispatch(ctx context.Context, repository, workflowFile, ref string) (Handle, error) {
	requestedAt := c.now().UTC()
	if err := c.client.DispatchWorkflow(ctx, workflowFile, ref); err != nil {
		return Handle{}, err
	}

	c.log.Info("workflow dispatched", "workflow", workflowFile, "ref", ref)
	return Handle{
		Repository:  repository,
		WorkflowRef: workflowFile,
		Ref:         ref,
		RequestedAt: requestedAt,
	}, nil
}

// Discover finds the run created by the handle's dispatch and returns a
// handle carrying the run id. Among runs of the workflow on the dispatched
// branch triggered by workflow_dispatch and created within the window, the
// earliest one wins. If no matching run appears within the discovery window
// the controller fails with CodeRunNotFound rather than polling indefinitely.
func (c *Controller) Discover(ctx context.Context, h Handle) (Handle, error) {
	if h.RunID != 0 {
		return h, nil
	}

	deadline := c.now().Add(c.opts.DiscoveryWindow)
	interval := c.opts.DiscoveryInterval
	cutoff := h.RequestedAt.Add(-clockSkew)

	for {
		runs, err := c.client.ListRuns(ctx, h.WorkflowRef, h.Ref, cutoff)
		if err != nil {
			return Handle{}, err
		}

		if match := earliestSince(runs, cutoff); match != nil {
			c.log.Info("run discovered", "run_id", match.ID, "url", match.URL)
			h.RunID = match.ID
			return h, nil
		}

		if c.now().After(deadline) {
			return Handle{}, errors.Newf(
				errors.CodeRunNotFound,
				"dispatched run of %s on %s did not become observable within %s",
				h.WorkflowRef, h.Ref, c.opts.DiscoveryWindow,
			)
		}

		select {
		case <-ctx.Done():
			return Handle{}, ctx.Err()
		case <-time.After(interval):
		}

		interval = time.Duration(float64(interval) * 1.5)
		if interval > 10*time.Second {
			interval = 10 * time.Second
		}
	}
}

// earliestSince returns the earliest-created run at or after cutoff, or nil.
func earliestSince(runs []provider.Run, cutoff time.Time) *provider.Run {
	var match *provider.Run
	for i := range runs {
		r := &runs[i]
		if r.CreatedAt.Before(cutoff) {
			continue
		}
		if match == nil || r.CreatedAt.Before(match.CreatedAt) {
			match = r
		}
	}
	return match
}

// Watch polls the run at a fixed interval until it reaches a terminal state
// or the overall deadline passes. On timeout the last observed snapshot is
// returned alongside a CodeTimeout error; the remote run is not cancelled.
// Context cancellation exits promptly with the context's error.
func (c *Controller) Watch(ctx context.Context, h Handle) (provider.Run, error) {
	h, err := c.Discover(ctx, h)
	if err != nil {
		return provider.Run{}, err
	}

	deadline := c.now().Add(c.opts.Deadline)
	var last provider.Run
	observed := false

	for {
		snapshot, err := c.client.GetRun(ctx, h.RunID)
		if err != nil {
			// The provider client has already exhausted its bounded
			// retries for transient failures.
			return last, err
		}

		if !observed || forward(last.State, snapshot.State) {
			if !observed || snapshot.State != last.State {
				c.log.Info("run status", "run_id", h.RunID, "status", string(snapshot.State), "conclusion", string(snapshot.Conclusion))
			}
			last = snapshot
			observed = true
		}

		if last.Terminal() {
			return last, nil
		}

		if c.now().After(deadline) {
			return last, errors.Newf(
				errors.CodeTimeout,
				"run %d did not reach a terminal state within %s",
				h.RunID, c.opts.Deadline,
			).WithContext("last_status", string(last.State))
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(c.opts.PollInterval):
		}
	}
}

// Check performs a single status lookup for a known run id.
func (c *Controller) Check(ctx context.Context, runID int64) (provider.Run, error) {
	return c.client.GetRun(ctx, runID)
}

// Recent returns the most recent runs of the workflow, newest first.
func (c *Controller) Recent(ctx context.Context, workflowFile string, limit int) ([]provider.Run, error) {
	return c.client.ListRecentRuns(ctx, workflowFile, limit)
}

// rank orders run states so observed transitions only ever move forward.
func rank(s provider.RunState) int {
	switch s {
	case provider.StateQueued:
		return 0
	case provider.StateInProgress:
		return 1
	case provider.StateCompleted:
		return 2
	default:
		return 0
	}
}

// forward reports whether moving from to next is a forward transition.
func forward(from, next provider.RunState) bool {
	return rank(next) >= rank(from)
}
