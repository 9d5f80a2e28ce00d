package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/petems/github-pr-review-mcp-server/internal/apierr"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/port/driven"
)

// RESTSource retrieves review comments through the paginated REST
// endpoint. Comments arrive flat, so resolution state is unavailable and
// every comment reports IsResolved=false.
type RESTSource struct {
	client *Client
}

var _ driven.CommentSource = (*RESTSource)(nil)

// NewRESTSource returns a CommentSource backed by the REST pulls API.
func NewRESTSource(c *Client) *RESTSource {
	return &RESTSource{client: c}
}

// Walk pages through the pull request's review comments until the natural
// end of the listing or a configured ceiling, whichever comes first.
func (s *RESTSource) Walk(ctx context.Context, req model.RetrievalRequest) (*model.CommentSet, error) {
	req = req.Clamp()

	c := s.client
	st := &retryState{}
	set := &model.CommentSet{Comments: []model.Comment{}}

	for page := 1; ; page++ {
		if page > req.MaxPages {
			c.logger.Warn("page ceiling reached before end of listing",
				"owner", req.Owner, "repo", req.Repo, "pull", req.PullNumber,
				"max_pages", req.MaxPages, "comments", set.Len())
			set.Truncated = true
			return set, nil
		}

		comments, err := c.fetchRESTPage(ctx, req, st, page)
		if err != nil {
			if err == errSecondaryAbort {
				set.Truncated = true
				return set, nil
			}
			return nil, err
		}

		for _, rc := range comments {
			// Checked before appending so a listing that ends exactly at
			// the ceiling still counts as complete.
			if set.Len() >= req.MaxComments {
				c.logger.Warn("comment ceiling reached",
					"owner", req.Owner, "repo", req.Repo, "pull", req.PullNumber,
					"max_comments", req.MaxComments)
				set.Truncated = true
				return set, nil
			}
			set.Comments = append(set.Comments, normalizeREST(rc))
		}

		if len(comments) < req.PerPage {
			return set, nil
		}
	}
}

// fetchRESTPage fetches one page, classifying every failure and applying
// the retry policy. It returns errSecondaryAbort when the secondary-limit
// retry has already been spent for this walk.
func (c *Client) fetchRESTPage(ctx context.Context, req model.RetrievalRequest, st *retryState, page int) ([]*gh.PullRequestComment, error) {
	for {
		client, err := c.restClientFor(req.BaseURL, req.Host, st)
		if err != nil {
			return nil, err
		}

		opts := &gh.PullRequestListCommentsOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: req.PerPage},
		}
		comments, _, err := client.PullRequests.ListComments(ctx, req.Owner, req.Repo, req.PullNumber, opts)
		if err == nil {
			st.attempts = 0
			return comments, nil
		}

		wait, retry, cerr := c.schedule(st, ClassifyError(err), err, req.MaxRetries, req.PullNumber)
		if cerr != nil {
			return nil, cerr
		}
		if !retry {
			return nil, errSecondaryAbort
		}
		if wait > 0 {
			if serr := c.sleep(ctx, wait); serr != nil {
				return nil, serr
			}
		}
	}
}

// schedule translates a classification into the walk's next move: a wait
// followed by a retry, a terminal error, or (retry=false, err=nil) for the
// secondary-limit partial abort.
func (c *Client) schedule(st *retryState, class Classification, cause error, maxRetries, pull int) (wait time.Duration, retry bool, err error) {
	switch class {
	case ClassRetryableServer:
		if st.attempts >= maxRetries {
			return 0, false, fmt.Errorf("request failed after %d retries: %w: %w", st.attempts, apierr.ErrServerError, cause)
		}
		wait = serverErrorDelay(st.attempts)
		st.attempts++
		c.logger.Debug("retrying after server error",
			"pull", pull, "attempt", st.attempts, "wait", wait,
			"request_id", requestIDOf(cause))
		return wait, true, nil

	case ClassPrimaryRateLimited:
		wait = primaryWaitFromError(cause, time.Now())
		c.logger.Warn("primary rate limit hit, waiting for reset",
			"pull", pull, "wait", wait, "request_id", requestIDOf(cause))
		return wait, true, nil

	case ClassSecondaryRateLimited:
		if st.secondaryRetried {
			c.logger.Warn("secondary rate limit persisted after retry, returning partial results",
				"pull", pull, "request_id", requestIDOf(cause))
			return 0, false, nil
		}
		st.secondaryRetried = true
		c.logger.Warn("secondary rate limit hit, retrying once",
			"pull", pull, "wait", c.secondaryWait, "request_id", requestIDOf(cause))
		return c.secondaryWait, true, nil

	case ClassAuthFailure:
		if !st.usedLegacyAuth {
			st.usedLegacyAuth = true
			c.logger.Debug("authentication rejected, retrying with legacy token scheme", "pull", pull)
			return 0, true, nil
		}
		return 0, false, fmt.Errorf("authentication rejected under both schemes: %w", apierr.ErrAuthFailed)

	case ClassNotFound:
		return 0, false, fmt.Errorf("pull request %d: %w", pull, apierr.ErrNotFound)

	default:
		return 0, false, fmt.Errorf("github request failed: %w", cause)
	}
}
