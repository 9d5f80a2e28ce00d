// Package application wires the retrieval walkers, the finder, and the
// renderer into the operations the CLI exposes.
package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/petems/github-pr-review-mcp-server/internal/adapter/driving/markdown"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
	"github.com/petems/github-pr-review-mcp-server/internal/domain/port/driven"
)

// Result is the output of one retrieval: the normalized comments plus the
// serializations the caller asked for. Truncated reports whether a safety
// ceiling cut the walk short.
type Result struct {
	Comments  []model.Comment
	Truncated bool
	JSON      string
	Markdown  string
}

// FetchService runs retrievals end to end: clamp the request, walk the
// selected source, serialize per output mode.
type FetchService struct {
	graphql driven.CommentSource
	rest    driven.CommentSource
	finder  driven.PullRequestFinder
	logger  *slog.Logger
}

// NewFetchService constructs a FetchService over the two comment sources
// and the open-PR finder.
func NewFetchService(graphql, rest driven.CommentSource, finder driven.PullRequestFinder, logger *slog.Logger) *FetchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchService{graphql: graphql, rest: rest, finder: finder, logger: logger}
}

// Fetch retrieves the pull request's review comments using the chosen
// strategy and renders them per mode. GraphQL is the default strategy
// because only it carries resolution metadata.
func (s *FetchService) Fetch(ctx context.Context, req model.RetrievalRequest, strategy model.FetchStrategy, mode model.OutputMode) (*Result, error) {
	req = req.Clamp()

	source := s.graphql
	if strategy == model.StrategyREST {
		source = s.rest
	}

	set, err := source.Walk(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetching review comments for %s/%s#%d: %w", req.Owner, req.Repo, req.PullNumber, err)
	}

	res := &Result{Comments: set.Comments, Truncated: set.Truncated}
	if set.Truncated {
		s.logger.Warn("retrieval truncated by safety limit",
			"owner", req.Owner, "repo", req.Repo, "pull", req.PullNumber,
			"comments", set.Len())
	}

	if mode == model.OutputJSON || mode == model.OutputBoth {
		raw, err := json.Marshal(set.Comments)
		if err != nil {
			return nil, fmt.Errorf("serializing comments: %w", err)
		}
		res.JSON = string(raw)
	}
	if mode == model.OutputMarkdown || mode == model.OutputBoth || mode == "" {
		res.Markdown = markdown.Render(set.Comments)
	}
	return res, nil
}

// Resolve finds the open pull request matching the given coordinates and
// returns its URL.
func (s *FetchService) Resolve(ctx context.Context, req model.ResolveRequest) (string, error) {
	url, err := s.finder.FindOpenPR(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resolving open pull request in %s/%s: %w", req.Owner, req.Repo, err)
	}
	return url, nil
}
