package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/petems/github-pr-review-mcp-server/internal/apierr"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/port/driven"
)

// reviewThreadsQuery pages through a pull request's review threads with
// their comments, resolution state, and diff hunks.
const reviewThreadsQuery = `query($owner: String!, $repo: String!, $pr: Int!, $pageSize: Int!, $cursor: String) {
	repository(owner: $owner, name: $repo) {
		pullRequest(number: $pr) {
			reviewThreads(first: $pageSize, after: $cursor) {
				pageInfo {
					hasNextPage
					endCursor
				}
				nodes {
					isResolved
					isOutdated
					path
					line
					resolvedBy {
						login
					}
					comments(first: 100) {
						nodes {
							author {
								login
							}
							body
							diffHunk
						}
					}
				}
			}
		}
	}
}`

// graphqlRequest is the JSON body sent to the GitHub GraphQL API.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlActor struct {
	Login string `json:"login"`
}

type graphqlThreadComment struct {
	Author   *graphqlActor `json:"author"`
	Body     string        `json:"body"`
	DiffHunk string        `json:"diffHunk"`
}

type graphqlThread struct {
	IsResolved bool          `json:"isResolved"`
	IsOutdated bool          `json:"isOutdated"`
	Path       string        `json:"path"`
	Line       *int          `json:"line"`
	ResolvedBy *graphqlActor `json:"resolvedBy"`
	Comments   struct {
		Nodes []graphqlThreadComment `json:"nodes"`
	} `json:"comments"`
}

type graphqlPageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// graphqlResponse is the shape of a review-threads page response,
// including the top-level errors array GraphQL uses for partial failures.
type graphqlResponse struct {
	Data struct {
		Repository struct {
			PullRequest *struct {
				ReviewThreads struct {
					PageInfo graphqlPageInfo `json:"pageInfo"`
					Nodes    []graphqlThread `json:"nodes"`
				} `json:"reviewThreads"`
			} `json:"pullRequest"`
		} `json:"repository"`
	} `json:"data"`
	Errors []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"errors"`
}

// GraphQLSource retrieves review comments thread by thread through the
// GraphQL API, preserving resolution state and outdated markers the REST
// listing cannot express.
type GraphQLSource struct {
	client *Client
}

var _ driven.CommentSource = (*GraphQLSource)(nil)

// NewGraphQLSource returns a CommentSource backed by the GraphQL
// reviewThreads connection.
func NewGraphQLSource(c *Client) *GraphQLSource {
	return &GraphQLSource{client: c}
}

// Walk pages through review threads by cursor, flattening each thread's
// comments into the result set. A single limit flag governs both loops so
// the comment ceiling observed mid-thread also stops thread pagination.
func (s *GraphQLSource) Walk(ctx context.Context, req model.RetrievalRequest) (*model.CommentSet, error) {
	req = req.Clamp()

	c := s.client
	endpoint := graphqlURLFor(req)
	st := &retryState{}
	set := &model.CommentSet{Comments: []model.Comment{}}

	var cursor string
	limitReached := false

	for pages := 0; ; pages++ {
		if limitReached {
			set.Truncated = true
			return set, nil
		}
		if pages >= req.MaxPages {
			c.logger.Warn("page ceiling reached before end of thread listing",
				"owner", req.Owner, "repo", req.Repo, "pull", req.PullNumber,
				"max_pages", req.MaxPages, "comments", set.Len())
			set.Truncated = true
			return set, nil
		}

		resp, err := c.fetchThreadPage(ctx, endpoint, req, st, cursor)
		if err != nil {
			if err == errSecondaryAbort {
				set.Truncated = true
				return set, nil
			}
			return nil, err
		}

		threads := resp.Data.Repository.PullRequest.ReviewThreads
		for _, thread := range threads.Nodes {
			if limitReached {
				break
			}
			for _, tc := range thread.Comments.Nodes {
				// Checked before appending: the ceiling only counts as hit
				// when a further comment actually exists, so a PR holding
				// exactly MaxComments comments is still a complete result.
				if set.Len() >= req.MaxComments {
					c.logger.Warn("comment ceiling reached",
						"owner", req.Owner, "repo", req.Repo, "pull", req.PullNumber,
						"max_comments", req.MaxComments)
					limitReached = true
					break
				}
				set.Comments = append(set.Comments, normalizeThreadComment(thread, tc))
			}
		}

		if !threads.PageInfo.HasNextPage {
			set.Truncated = set.Truncated || limitReached
			return set, nil
		}
		cursor = threads.PageInfo.EndCursor
	}
}

// fetchThreadPage POSTs one review-threads query, classifying HTTP and
// GraphQL-level failures through the same scheduler as the REST walker.
func (c *Client) fetchThreadPage(ctx context.Context, endpoint string, req model.RetrievalRequest, st *retryState, cursor string) (*graphqlResponse, error) {
	variables := map[string]any{
		"owner":    req.Owner,
		"repo":     req.Repo,
		"pr":       req.PullNumber,
		"pageSize": req.PerPage,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	body, err := json.Marshal(graphqlRequest{Query: reviewThreadsQuery, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encoding graphql request: %w", err)
	}

	for {
		resp, raw, err := c.postGraphQL(ctx, endpoint, body, st)
		if err != nil {
			wait, retry, cerr := c.schedule(st, ClassifyError(err), err, req.MaxRetries, req.PullNumber)
			if cerr != nil {
				return nil, cerr
			}
			if !retry {
				return nil, errSecondaryAbort
			}
			if wait > 0 {
				if werr := c.sleep(ctx, wait); werr != nil {
					return nil, werr
				}
			}
			continue
		}

		class := ClassifyStatus(resp.StatusCode, resp.Header, string(raw))
		if class != ClassSuccess {
			wait, retry, cerr := c.schedule(st, class,
				fmt.Errorf("graphql request returned status %d", resp.StatusCode), req.MaxRetries, req.PullNumber)
			if cerr != nil {
				return nil, cerr
			}
			if !retry {
				return nil, errSecondaryAbort
			}
			if wait > 0 {
				if werr := c.sleep(ctx, wait); werr != nil {
					return nil, werr
				}
			}
			continue
		}
		st.attempts = 0

		var out graphqlResponse
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decoding graphql response: %w", err)
		}
		if len(out.Errors) > 0 {
			if out.Errors[0].Type == "NOT_FOUND" {
				return nil, fmt.Errorf("pull request %d: %w", req.PullNumber, apierr.ErrNotFound)
			}
			return nil, fmt.Errorf("graphql error: %s", out.Errors[0].Message)
		}
		if out.Data.Repository.PullRequest == nil {
			return nil, fmt.Errorf("pull request %d: %w", req.PullNumber, apierr.ErrNotFound)
		}
		return &out, nil
	}
}

// postGraphQL performs one GraphQL POST and returns the response alongside
// its fully read body. Network-level failures come back as errors; HTTP
// error statuses come back in the response for classification.
func (c *Client) postGraphQL(ctx context.Context, endpoint string, body []byte, st *retryState) (*http.Response, []byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("building graphql request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpFor(st).Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading graphql response: %w", err)
	}
	return resp, raw, nil
}
