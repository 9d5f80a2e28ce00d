package github

import (
	"testing"

	gh "github.com/google/go-github/v82/github"
	"github.com/stretchr/testify/assert"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
)

func TestNormalizeRESTDefaults(t *testing.T) {
	t.Run("deleted user becomes the sentinel author", func(t *testing.T) {
		c := normalizeREST(&gh.PullRequestComment{Body: gh.Ptr("hi")})
		assert.Equal(t, model.UnknownAuthor, c.Author)
		assert.Equal(t, model.UnknownPath, c.Path)
		assert.Equal(t, 0, c.Line)
		assert.Equal(t, "hi", c.Body)
	})

	t.Run("flat endpoint carries no resolution state", func(t *testing.T) {
		c := normalizeREST(&gh.PullRequestComment{
			User:     &gh.User{Login: gh.Ptr("alice")},
			Path:     gh.Ptr("main.go"),
			Line:     gh.Ptr(42),
			Body:     gh.Ptr("needs a nil check"),
			DiffHunk: gh.Ptr("@@ -1,3 +1,4 @@"),
		})
		assert.Equal(t, "alice", c.Author)
		assert.Equal(t, "main.go", c.Path)
		assert.Equal(t, 42, c.Line)
		assert.Equal(t, "@@ -1,3 +1,4 @@", c.DiffContext)
		assert.False(t, c.IsResolved)
		assert.False(t, c.IsOutdated)
		assert.Empty(t, c.ResolvedBy)
	})

	t.Run("nil record yields all sentinels", func(t *testing.T) {
		c := normalizeREST(nil)
		assert.Equal(t, model.UnknownAuthor, c.Author)
		assert.Equal(t, model.UnknownPath, c.Path)
	})
}

func TestNormalizeThreadCommentInheritance(t *testing.T) {
	line := 7
	thread := graphqlThread{
		IsResolved: true,
		IsOutdated: true,
		Path:       "pkg/a.go",
		Line:       &line,
		ResolvedBy: &graphqlActor{Login: "maintainer"},
	}

	c := normalizeThreadComment(thread, graphqlThreadComment{
		Author: &graphqlActor{Login: "bob"},
		Body:   "done",
	})
	assert.Equal(t, "bob", c.Author)
	assert.Equal(t, "pkg/a.go", c.Path)
	assert.Equal(t, 7, c.Line)
	assert.True(t, c.IsResolved)
	assert.True(t, c.IsOutdated)
	assert.Equal(t, "maintainer", c.ResolvedBy)

	t.Run("resolver only recorded on resolved threads", func(t *testing.T) {
		unresolved := graphqlThread{ResolvedBy: &graphqlActor{Login: "maintainer"}}
		c := normalizeThreadComment(unresolved, graphqlThreadComment{})
		assert.Empty(t, c.ResolvedBy)
	})

	t.Run("null author and missing line fall back to defaults", func(t *testing.T) {
		c := normalizeThreadComment(graphqlThread{Path: "x.go"}, graphqlThreadComment{Body: "orphaned"})
		assert.Equal(t, model.UnknownAuthor, c.Author)
		assert.Equal(t, 0, c.Line)
	})
}
