package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/petems/github-pr-review-mcp-server/internal/apierr"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/port/driven"
	"github.com/petems/github-pr-review-mcp-server/internal/locator"
)

// Finder locates open pull requests for a repository so callers can pass a
// branch name instead of a full PR URL.
type Finder struct {
	client *Client
}

var _ driven.PullRequestFinder = (*Finder)(nil)

// NewFinder returns a PullRequestFinder backed by the REST pulls API.
func NewFinder(c *Client) *Finder {
	return &Finder{client: c}
}

// FindOpenPR resolves a repository (and optionally a branch) to the URL of
// one open pull request. With a branch set it looks for the PR whose head
// is that branch; otherwise the selection strategy decides which open PR
// wins when there is more than one.
func (f *Finder) FindOpenPR(ctx context.Context, req model.ResolveRequest) (string, error) {
	c := f.client
	st := &retryState{}

	opts := &gh.PullRequestListOptions{
		State:       "open",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: model.PerPageMax},
	}
	if req.Branch != "" {
		opts.Head = req.Owner + ":" + req.Branch
	}

	prs, err := f.listOpen(ctx, req, st, opts)
	if err != nil {
		return "", err
	}

	if len(prs) == 0 {
		if req.Branch != "" {
			return "", fmt.Errorf("no open pull request for branch %q in %s/%s: %w",
				req.Branch, req.Owner, req.Repo, apierr.ErrNoOpenPR)
		}
		return "", fmt.Errorf("no open pull requests in %s/%s: %w", req.Owner, req.Repo, apierr.ErrNoOpenPR)
	}

	pick := prs[0]
	if req.Branch == "" && len(prs) > 1 {
		switch req.Strategy {
		case model.SelectFirst:
			pick = prs[len(prs)-1]
		case model.SelectError:
			return "", fmt.Errorf("%d open pull requests in %s/%s, pass a PR URL or branch to disambiguate: %w",
				len(prs), req.Owner, req.Repo, apierr.ErrNoOpenPR)
		default:
			// SelectLatest and SelectBranch without a branch both take
			// the newest open PR.
		}
		c.logger.Debug("multiple open pull requests, selection strategy applied",
			"owner", req.Owner, "repo", req.Repo, "open", len(prs),
			"strategy", string(req.Strategy), "picked", pick.GetNumber())
	}

	return locator.PRURL(req.Host, req.Owner, req.Repo, pick.GetNumber()), nil
}

func (f *Finder) listOpen(ctx context.Context, req model.ResolveRequest, st *retryState, opts *gh.PullRequestListOptions) ([]*gh.PullRequest, error) {
	c := f.client
	for {
		client, err := c.restClientFor(req.BaseURL, req.Host, st)
		if err != nil {
			return nil, err
		}

		prs, _, err := client.PullRequests.List(ctx, req.Owner, req.Repo, opts)
		if err == nil {
			return prs, nil
		}

		wait, retry, cerr := c.schedule(st, ClassifyError(err), err, model.DefaultMaxRetries, 0)
		if cerr != nil {
			return nil, cerr
		}
		if !retry {
			return nil, fmt.Errorf("listing open pull requests in %s/%s: %w", req.Owner, req.Repo, apierr.ErrRateLimited)
		}
		if wait > 0 {
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}
		}
	}
}
