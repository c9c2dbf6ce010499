package run

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
	"github.com/amanverma-wsu/cicd-tool/internal/provider"
)

// fakeClient scripts run snapshots for controller tests. Each GetRun call
// consumes the next snapshot; the last one repeats.
type fakeClient struct {
	dispatchErr error
	dispatched  int
	listRuns    [][]provider.Run // consumed per ListRuns call; last repeats
	listCalls   int
	script      []provider.Run
	scriptCalls int
	getErr      error
	recentRuns  []provider.Run
}

func (f *fakeClient) DefaultBranch(ctx context.Context) (string, error) { return "main", nil }

func (f *fakeClient) GetFile(ctx context.Context, ref, path string) (string, error) {
	return "", provider.ErrFileMissing
}

func (f *fakeClient) BranchSHA(ctx context.Context, branch string) (string, error) {
	return "", provider.ErrBranchMissing
}

func (f *fakeClient) CreateBranch(ctx context.Context, branch, sha string) error { return nil }

func (f *fakeClient) CommitFile(ctx context.Context, branch, path, content, message string) (string, error) {
	return "", nil
}

func (f *fakeClient) FindOpenPullRequest(ctx context.Context, head, base string) (*provider.PullRequest, error) {
	return nil, nil
}

func (f *fakeClient) CreatePullRequest(ctx context.Context, head, base, title, body string) (*provider.PullRequest, error) {
	return nil, nil
}

func (f *fakeClient) DispatchWorkflow(ctx context.Context, workflowFile, ref string) error {
	f.dispatched++
	return f.dispatchErr
}

func (f *fakeClient) ListRuns(ctx context.Context, workflowFile, branch string, since time.Time) ([]provider.Run, error) {
	if len(f.listRuns) == 0 {
		return nil, nil
	}
	idx := f.listCalls
	if idx >= len(f.listRuns) {
		idx = len(f.listRuns) - 1
	}
	f.listCalls++
	return f.listRuns[idx], nil
}

func (f *fakeClient) GetRun(ctx context.Context, runID int64) (provider.Run, error) {
	if f.getErr != nil {
		return provider.Run{}, f.getErr
	}
	idx := f.scriptCalls
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	f.scriptCalls++
	return f.script[idx], nil
}

func (f *fakeClient) ListRecentRuns(ctx context.Context, workflowFile string, limit int) ([]provider.Run, error) {
	if limit < len(f.recentRuns) {
		return f.recentRuns[:limit], nil
	}
	return f.recentRuns, nil
}

func fastOptions() Options {
	return Options{
		PollInterval:      time.Millisecond,
		DiscoveryWindow:   50 * time.Millisecond,
		DiscoveryInterval: time.Millisecond,
		Deadline:          time.Second,
	}
}

func TestDispatchReturnsHandleWithoutRunID(t *testing.T) {
	client := &fakeClient{}
	ctrl := New(client, nil, fastOptions())

	h, err := ctrl.Dispatch(context.Background(), "org/repo", "ci.yml", "main")
	require.NoError(t, err)

	assert.Equal(t, 1, client.dispatched)
	assert.Zero(t, h.RunID, "the provider does not return a run id synchronously")
	assert.False(t, h.RequestedAt.IsZero())
	assert.Equal(t, "ci.yml", h.WorkflowRef)
}

func TestDispatchFailurePropagates(t *testing.T) {
	client := &fakeClient{dispatchErr: errors.New(errors.CodeUnauthorized, "bad token")}
	ctrl := New(client, nil, fastOptions())

	_, err := ctrl.Dispatch(context.Background(), "org/repo", "ci.yml", "main")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnauthorized, errors.GetCode(err))
}

func TestDiscoverFindsEarliestMatchingRun(t *testing.T) {
	requestedAt := time.Now().UTC()
	client := &fakeClient{
		listRuns: [][]provider.Run{{
			{ID: 99, CreatedAt: requestedAt.Add(-time.Hour)}, // stale run, outside window
			{ID: 42, CreatedAt: requestedAt.Add(2 * time.Second)},
			{ID: 43, CreatedAt: requestedAt.Add(5 * time.Second)},
		}},
	}
	ctrl := New(client, nil, fastOptions())

	h, err := ctrl.Discover(context.Background(), Handle{
		WorkflowRef: "ci.yml",
		Ref:         "main",
		RequestedAt: requestedAt,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), h.RunID, "earliest run in the window wins")
}

func TestDiscoverRetriesUntilRunAppears(t *testing.T) {
	requestedAt := time.Now().UTC()
	client := &fakeClient{
		listRuns: [][]provider.Run{
			nil,
			nil,
			{{ID: 7, CreatedAt: requestedAt.Add(time.Second)}},
		},
	}
	ctrl := New(client, nil, fastOptions())

	h, err := ctrl.Discover(context.Background(), Handle{WorkflowRef: "ci.yml", Ref: "main", RequestedAt: requestedAt})
	require.NoError(t, err)
	assert.Equal(t, int64(7), h.RunID)
	assert.GreaterOrEqual(t, client.listCalls, 3)
}

func TestDiscoverTimesOutWithRunNotFound(t *testing.T) {
	ctrl := New(&fakeClient{}, nil, fastOptions())

	_, err := ctrl.Discover(context.Background(), Handle{
		WorkflowRef: "ci.yml",
		Ref:         "main",
		RequestedAt: time.Now().UTC(),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeRunNotFound, errors.GetCode(err))
}

func TestDiscoverSkipsWhenRunIDKnown(t *testing.T) {
	client := &fakeClient{}
	ctrl := New(client, nil, fastOptions())

	h, err := ctrl.Discover(context.Background(), Handle{RunID: 11})
	require.NoError(t, err)
	assert.Equal(t, int64(11), h.RunID)
	assert.Zero(t, client.listCalls)
}

func TestWatchReachesSuccess(t *testing.T) {
	client := &fakeClient{
		script: []provider.Run{
			{ID: 42, State: provider.StateQueued},
			{ID: 42, State: provider.StateInProgress},
			{ID: 42, State: provider.StateCompleted, Conclusion: provider.ConclusionSuccess},
		},
	}
	ctrl := New(client, nil, fastOptions())

	final, err := ctrl.Watch(context.Background(), Handle{RunID: 42})
	require.NoError(t, err)
	assert.True(t, final.Terminal())
	assert.Equal(t, provider.ConclusionSuccess, final.Conclusion)
	assert.Equal(t, 3, client.scriptCalls)
}

func TestWatchReportsFailureConclusion(t *testing.T) {
	client := &fakeClient{
		script: []provider.Run{
			{ID: 42, State: provider.StateCompleted, Conclusion: provider.ConclusionFailure},
		},
	}
	ctrl := New(client, nil, fastOptions())

	final, err := ctrl.Watch(context.Background(), Handle{RunID: 42})
	require.NoError(t, err)
	assert.Equal(t, provider.ConclusionFailure, final.Conclusion)
}

func TestWatchDeadlineReportsTimeoutWithLastStatus(t *testing.T) {
	client := &fakeClient{
		script: []provider.Run{{ID: 42, State: provider.StateInProgress}},
	}
	opts := fastOptions()
	opts.Deadline = 10 * time.Millisecond
	ctrl := New(client, nil, opts)

	last, err := ctrl.Watch(context.Background(), Handle{RunID: 42})
	require.Error(t, err)
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
	assert.Equal(t, provider.StateInProgress, last.State, "timeout must carry the last observed status")

	var structured *errors.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, "in_progress", structured.Context["last_status"])
}

func TestWatchHonorsCancellation(t *testing.T) {
	client := &fakeClient{
		script: []provider.Run{{ID: 42, State: provider.StateQueued}},
	}
	opts := fastOptions()
	opts.PollInterval = time.Hour
	ctrl := New(client, nil, opts)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := ctrl.Watch(ctx, Handle{RunID: 42})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 10*time.Second, "cancellation must interrupt the poll sleep")
}

func TestWatchPollErrorPropagates(t *testing.T) {
	client := &fakeClient{getErr: errors.New(errors.CodeNetwork, "connection reset")}
	ctrl := New(client, nil, fastOptions())

	_, err := ctrl.Watch(context.Background(), Handle{RunID: 42})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNetwork, errors.GetCode(err))
}

func TestWatchIgnoresBackwardTransitions(t *testing.T) {
	client := &fakeClient{
		script: []provider.Run{
			{ID: 42, State: provider.StateInProgress},
			{ID: 42, State: provider.StateQueued}, // provider hiccup, must not move backward
			{ID: 42, State: provider.StateCompleted, Conclusion: provider.ConclusionSuccess},
		},
	}
	ctrl := New(client, nil, fastOptions())

	final, err := ctrl.Watch(context.Background(), Handle{RunID: 42})
	require.NoError(t, err)
	assert.True(t, final.Terminal())
}

func TestForwardOnlyRanking(t *testing.T) {
	assert.True(t, forward(provider.StateQueued, provider.StateInProgress))
	assert.True(t, forward(provider.StateInProgress, provider.StateCompleted))
	assert.True(t, forward(provider.StateQueued, provider.StateQueued))
	assert.False(t, forward(provider.StateInProgress, provider.StateQueued))
	assert.False(t, forward(provider.StateCompleted, provider.StateInProgress))
}

func TestRecent(t *testing.T) {
	client := &fakeClient{
		recentRuns: []provider.Run{
			{ID: 3, State: provider.StateInProgress},
			{ID: 2, State: provider.StateCompleted, Conclusion: provider.ConclusionSuccess},
			{ID: 1, State: provider.StateCompleted, Conclusion: provider.ConclusionFailure},
		},
	}
	ctrl := New(client, nil, fastOptions())

	runs, err := ctrl.Recent(context.Background(), "ci.yml", 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, int64(3), runs[0].ID)
}
