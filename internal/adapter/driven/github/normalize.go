package github

import (
	gh "github.com/google/go-github/v82/github"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
)

// normalizeREST maps one REST review comment onto the domain shape.
// The flat listing carries no thread metadata, so resolution and outdated
// state default to false.
func normalizeREST(rc *gh.PullRequestComment) model.Comment {
	c := model.Comment{
		Author: model.UnknownAuthor,
		Path:   model.UnknownPath,
	}
	if rc == nil {
		return c
	}
	if user := rc.GetUser(); user != nil && user.GetLogin() != "" {
		c.Author = user.GetLogin()
	}
	if rc.GetPath() != "" {
		c.Path = rc.GetPath()
	}
	if rc.Line != nil {
		c.Line = rc.GetLine()
	}
	c.Body = rc.GetBody()
	c.DiffContext = rc.GetDiffHunk()
	return c
}

// normalizeThreadComment maps one GraphQL thread comment onto the domain
// shape. Path, line, resolution, and outdated state live on the thread and
// are inherited by every comment in it.
func normalizeThreadComment(thread graphqlThread, tc graphqlThreadComment) model.Comment {
	c := model.Comment{
		Author:      model.UnknownAuthor,
		Path:        model.UnknownPath,
		Body:        tc.Body,
		DiffContext: tc.DiffHunk,
		IsResolved:  thread.IsResolved,
		IsOutdated:  thread.IsOutdated,
	}
	if tc.Author != nil && tc.Author.Login != "" {
		c.Author = tc.Author.Login
	}
	if thread.Path != "" {
		c.Path = thread.Path
	}
	if thread.Line != nil {
		c.Line = *thread.Line
	}
	if thread.IsResolved && thread.ResolvedBy != nil {
		c.ResolvedBy = thread.ResolvedBy.Login
	}
	return c
}
