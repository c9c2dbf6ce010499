// Package github implements the provider capability interface against the
// GitHub REST API. All calls classify transport failures into the engine's
// error codes; transient failures are retried with bounded backoff, permanent
// ones propagate immediately.
package github

import (
	"context"
	"fmt"
	"net/url"
	"time"

	gh "github.com/google/go-github/v75/github"

	"github.com/amanverma-wsu/cicd-tool/internal/errors"
	"github.com/amanverma-wsu/cicd-tool/internal/provider"
	"github.com/amanverma-wsu/cicd-tool/internal/retry"
)

// Client is the GitHub implementation of provider.Client.
type Client struct {
	owner    string
	repo     string
	gh       *gh.Client
	retryCfg retry.Config
}

// Option customizes a Client.
type Option func(*Client) error

// WithRetryConfig overrides the retry policy used for API calls.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Client) error {
		c.retryCfg = cfg
		return nil
	}
}

// WithBaseURL points the client at a different API endpoint. Used for
// GitHub Enterprise installations and tests.
func WithBaseURL(base string) Option {
	return func(c *Client) error {
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("github: parse base URL: %w", err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// New creates a Client for the given "owner/name" repository authenticated
// with the token. The token must not be empty; remote operations without
// credentials fail immediately rather than retrying.
func New(owner, repo, token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New(errors.CodeUnauthorized, "authentication token is required (set GITHUB_TOKEN)")
	}

	c := &Client{
		owner:    owner,
		repo:     repo,
		gh:       gh.NewClient(nil).WithAuthToken(token),
		retryCfg: retry.DefaultConfig(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultBranch implements provider.Client.
func (c *Client) DefaultBranch(ctx context.Context) (string, error) {
	name, result := retry.DoWithValue(ctx, c.retryCfg, func() (string, error) {
		repo, _, err := c.gh.Repositories.Get(ctx, c.owner, c.repo)
		if err != nil {
			return "", classify(err, "get repository")
		}
		return repo.GetDefaultBranch(), nil
	})
	return name, result.Err
}

// GetFile implements provider.Client. A 404 from the contents API is mapped
// to provider.ErrFileMissing rather than an error code, since an absent file
// is an expected condition for the diff engine.
func (c *Client) GetFile(ctx context.Context, ref, path string) (string, error) {
	content, result := retry.DoWithValue(ctx, c.retryCfg, func() (string, error) {
		file, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, &gh.RepositoryContentGetOptions{
			Ref: ref,
		})
		if err != nil {
			if isNotFound(err) {
				return "", provider.ErrFileMissing
			}
			return "", classify(err, "get file contents")
		}
		if file == nil {
			return "", errors.Newf(errors.CodeConflict, "path %q is a directory, not a file", path)
		}
		text, err := file.GetContent()
		if err != nil {
			return "", errors.Wrap(err, errors.CodeNetwork, "failed to decode file contents")
		}
		return text, nil
	})
	return content, result.Err
}

// BranchSHA implements provider.Client.
func (c *Client) BranchSHA(ctx context.Context, branch string) (string, error) {
	sha, result := retry.DoWithValue(ctx, c.retryCfg, func() (string, error) {
		ref, _, err := c.gh.Git.GetRef(ctx, c.owner, c.repo, "heads/"+branch)
		if err != nil {
			if isNotFound(err) {
				return "", provider.ErrBranchMissing
			}
			return "", classify(err, "get branch ref")
		}
		return ref.GetObject().GetSHA(), nil
	})
	return sha, result.Err
}

// CreateBranch implements provider.Client. Creating a branch that already
// exists at the same commit is tolerated so the operation stays idempotent.
func (c *Client) CreateBranch(ctx context.Context, branch, sha string) error {
	result := retry.Do(ctx, c.retryCfg, func() error {
		_, _, err := c.gh.Git.CreateRef(ctx, c.owner, c.repo, gh.CreateRef{
			Ref: "refs/heads/" + branch,
			SHA: sha,
		})
		if err != nil {
			return classify(err, "create branch ref")
		}
		return nil
	})
	return result.Err
}

// CommitFile implements provider.Client. When the file already exists on the
// branch its blob SHA is looked up first, as the contents API requires it for
// updates.
func (c *Client) CommitFile(ctx context.Context, branch, path, content, message string) (string, error) {
	sha, result := retry.DoWithValue(ctx, c.retryCfg, func() (string, error) {
		opts := &gh.RepositoryContentFileOptions{
			Message: gh.Ptr(message),
			Content: []byte(content),
			Branch:  gh.Ptr(branch),
		}

		existing, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, &gh.RepositoryContentGetOptions{
			Ref: branch,
		})
		switch {
		case err == nil && existing != nil:
			opts.SHA = existing.SHA
			resp, _, updateErr := c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, path, opts)
			if updateErr != nil {
				return "", classify(updateErr, "update file")
			}
			return resp.Commit.GetSHA(), nil
		case err != nil && !isNotFound(err):
			return "", classify(err, "get file contents")
		default:
			resp, _, createErr := c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, path, opts)
			if createErr != nil {
				return "", classify(createErr, "create file")
			}
			return resp.Commit.GetSHA(), nil
		}
	})
	return sha, result.Err
}

// FindOpenPullRequest implements provider.Client.
func (c *Client) FindOpenPullRequest(ctx context.Context, head, base string) (*provider.PullRequest, error) {
	pr, result := retry.DoWithValue(ctx, c.retryCfg, func() (*provider.PullRequest, error) {
		prs, _, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, &gh.PullRequestListOptions{
			State: "open",
			Head:  c.owner + ":" + head,
			Base:  base,
			ListOptions: gh.ListOptions{
				PerPage: 1,
			},
		})
		if err != nil {
			return nil, classify(err, "list pull requests")
		}
		if len(prs) == 0 {
			return nil, nil
		}
		return &provider.PullRequest{
			Number: prs[0].GetNumber(),
			URL:    prs[0].GetHTMLURL(),
		}, nil
	})
	return pr, result.Err
}

// CreatePullRequest implements provider.Client.
func (c *Client) CreatePullRequest(ctx context.Context, head, base, title, body string) (*provider.PullRequest, error) {
	pr, result := retry.DoWithValue(ctx, c.retryCfg, func() (*provider.PullRequest, error) {
		created, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, &gh.NewPullRequest{
			Title: gh.Ptr(title),
			Head:  gh.Ptr(head),
			Base:  gh.Ptr(base),
			Body:  gh.Ptr(body),
		})
		if err != nil {
			return nil, classify(err, "create pull request")
		}
		return &provider.PullRequest{
			Number: created.GetNumber(),
			URL:    created.GetHTMLURL(),
		}, nil
	})
	return pr, result.Err
}

// DispatchWorkflow implements provider.Client. The dispatch endpoint is
// fire-and-forget: success means the provider admitted the request, not that
// a run id exists yet.
func (c *Client) DispatchWorkflow(ctx context.Context, workflowFile, ref string) error {
	result := retry.Do(ctx, c.retryCfg, func() error {
		_, err := c.gh.Actions.CreateWorkflowDispatchEventByFileName(ctx, c.owner, c.repo, workflowFile,
			gh.CreateWorkflowDispatchEventRequest{Ref: ref})
		if err != nil {
			return classify(err, "dispatch workflow")
		}
		return nil
	})
	return result.Err
}

// ListRuns implements provider.Client. The created filter is expressed at
// minute granularity because the API accepts date-range qualifiers, not exact
// timestamps; callers re-check CreatedAt on the returned runs.
func (c *Client) ListRuns(ctx context.Context, workflowFile, branch string, since time.Time) ([]provider.Run, error) {
	runs, result := retry.DoWithValue(ctx, c.retryCfg, func() ([]provider.Run, error) {
		listed, _, err := c.gh.Actions.ListWorkflowRunsByFileName(ctx, c.owner, c.repo, workflowFile,
			&gh.ListWorkflowRunsOptions{
				Branch:  branch,
				Event:   "workflow_dispatch",
				Created: ">=" + since.UTC().Truncate(time.Minute).Format("2006-01-02T15:04"),
				ListOptions: gh.ListOptions{
					PerPage: 30,
				},
			})
		if err != nil {
			return nil, classify(err, "list workflow runs")
		}

		out := make([]provider.Run, 0, len(listed.WorkflowRuns))
		for _, r := range listed.WorkflowRuns {
			out = append(out, toRun(r))
		}
		return out, nil
	})
	return runs, result.Err
}

// GetRun implements provider.Client.
func (c *Client) GetRun(ctx context.Context, runID int64) (provider.Run, error) {
	run, result := retry.DoWithValue(ctx, c.retryCfg, func() (provider.Run, error) {
		r, _, err := c.gh.Actions.GetWorkflowRunByID(ctx, c.owner, c.repo, runID)
		if err != nil {
			return provider.Run{}, classify(err, "get workflow run")
		}
		return toRun(r), nil
	})
	return run, result.Err
}

// ListRecentRuns returns the most recent runs of the workflow regardless of
// trigger event, newest first, for status reporting.
func (c *Client) ListRecentRuns(ctx context.Context, workflowFile string, limit int) ([]provider.Run, error) {
	runs, result := retry.DoWithValue(ctx, c.retryCfg, func() ([]provider.Run, error) {
		listed, _, err := c.gh.Actions.ListWorkflowRunsByFileName(ctx, c.owner, c.repo, workflowFile,
			&gh.ListWorkflowRunsOptions{
				ListOptions: gh.ListOptions{
					PerPage: limit,
				},
			})
		if err != nil {
			return nil, classify(err, "list workflow runs")
		}

		out := make([]provider.Run, 0, len(listed.WorkflowRuns))
		for _, r := range listed.WorkflowRuns {
			out = append(out, toRun(r))
		}
		return out, nil
	})
	return runs, result.Err
}

// toRun converts a GitHub workflow run to the provider-neutral snapshot.
func toRun(r *gh.WorkflowRun) provider.Run {
	run := provider.Run{
		ID:        r.GetID(),
		Branch:    r.GetHeadBranch(),
		URL:       r.GetHTMLURL(),
		CreatedAt: r.GetCreatedAt().Time,
	}

	switch r.GetStatus() {
	case "completed":
		run.State = provider.StateCompleted
	case "in_progress":
		run.State = provider.StateInProgress
	default:
		// queued, waiting, requested, pending
		run.State = provider.StateQueued
	}

	switch r.GetConclusion() {
	case "success":
		run.Conclusion = provider.ConclusionSuccess
	case "cancelled":
		run.Conclusion = provider.ConclusionCancelled
	case "timed_out":
		run.Conclusion = provider.ConclusionTimedOut
	case "":
		// not terminal yet
	default:
		// failure, startup_failure, action_required and friends all count
		// as failed for the engine's purposes
		run.Conclusion = provider.ConclusionFailure
	}

	return run
}
