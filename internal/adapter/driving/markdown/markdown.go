// Package markdown renders a normalized comment list as one deterministic
// Markdown document. Fence widths are computed per emitted block so bodies
// containing fenced code can never close the document's own fences.
package markdown

import (
	"fmt"
	"strings"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
)

const documentHeader = "# Pull Request Review Comments\n\n"

// Render serializes comments grouped by file path in first-seen order,
// preserving input order within each path. Same input produces
// byte-identical output.
func Render(comments []model.Comment) string {
	var b strings.Builder
	b.WriteString(documentHeader)

	if len(comments) == 0 {
		b.WriteString("No comments found.\n")
		return b.String()
	}

	paths, grouped := groupByPath(comments)
	for _, path := range paths {
		fmt.Fprintf(&b, "## `%s`\n\n", path)
		for _, c := range grouped[path] {
			writeComment(&b, c)
		}
	}
	return b.String()
}

func groupByPath(comments []model.Comment) ([]string, map[string][]model.Comment) {
	var paths []string
	grouped := make(map[string][]model.Comment, len(comments))
	for _, c := range comments {
		if _, seen := grouped[c.Path]; !seen {
			paths = append(paths, c.Path)
		}
		grouped[c.Path] = append(grouped[c.Path], c)
	}
	return paths, grouped
}

func writeComment(b *strings.Builder, c model.Comment) {
	if c.Line > 0 {
		fmt.Fprintf(b, "### %s (line %d)\n\n", c.Author, c.Line)
	} else {
		fmt.Fprintf(b, "### %s (file-level)\n\n", c.Author)
	}

	if badge := statusBadge(c); badge != "" {
		fmt.Fprintf(b, "**Status:** %s\n\n", badge)
	}

	if c.DiffContext != "" {
		fence := fenceFor(c.DiffContext)
		fmt.Fprintf(b, "%sdiff\n%s\n%s\n\n", fence, c.DiffContext, fence)
	}

	fence := fenceFor(c.Body)
	fmt.Fprintf(b, "%s\n%s\n%s\n\n---\n\n", fence, c.Body, fence)
}

// statusBadge returns the resolution badge line, empty for a plain
// unresolved comment.
func statusBadge(c model.Comment) string {
	var parts []string
	if c.IsResolved {
		badge := "✓ Resolved"
		if c.ResolvedBy != "" {
			badge += " by " + c.ResolvedBy
		}
		parts = append(parts, badge)
	}
	if c.IsOutdated {
		parts = append(parts, "⚠ Outdated")
	}
	return strings.Join(parts, " | ")
}

// fenceFor picks a backtick fence one longer than the longest backtick run
// in text, never shorter than three. Computed independently per block.
func fenceFor(text string) string {
	longest, current := 0, 0
	for _, r := range text {
		if r == '`' {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	width := longest + 1
	if width < 3 {
		width = 3
	}
	return strings.Repeat("`", width)
}
