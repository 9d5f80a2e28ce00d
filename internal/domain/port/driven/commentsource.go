// Package driven defines the ports implemented by driven adapters.
package driven

import (
	"context"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
)

// CommentSource walks every review comment attached to one pull request.
// The REST and GraphQL walkers are two implementations of this capability;
// callers pick one explicitly rather than inspecting types at runtime.
//
// A non-nil CommentSet with Truncated set is a successful partial result,
// not an error. Walk returns an error only for terminal failures (bad
// credentials, missing PR, exhausted retries).
type CommentSource interface {
	Walk(ctx context.Context, req model.RetrievalRequest) (*model.CommentSet, error)
}

// PullRequestFinder resolves the URL of an open pull request from repository
// coordinates and a selection strategy.
type PullRequestFinder interface {
	FindOpenPR(ctx context.Context, req model.ResolveRequest) (string, error)
}
