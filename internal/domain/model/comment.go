package model

// UnknownAuthor is the sentinel login used when the source API returns a
// null or deleted user reference.
const UnknownAuthor = "unknown"

// UnknownPath is the sentinel path used when a comment carries no file
// association.
const UnknownPath = "unknown"

// Comment is the canonical review comment produced by normalization. Both
// the REST and GraphQL API shapes map into it. A Comment is immutable once
// built and never references another Comment, so each one renders on its own.
type Comment struct {
	Author      string `json:"author"`
	Path        string `json:"path"`
	Line        int    `json:"line"`
	Body        string `json:"body"`
	DiffContext string `json:"diff_context,omitempty"`
	IsResolved  bool   `json:"is_resolved"`
	IsOutdated  bool   `json:"is_outdated"`
	ResolvedBy  string `json:"resolved_by,omitempty"`
}

// CommentSet is the outcome of one retrieval call. Truncated is true when
// an operator ceiling (max pages, max comments) or the secondary-rate-limit
// policy cut the walk short; the comments collected up to that point are
// still valid.
type CommentSet struct {
	Comments  []Comment
	Truncated bool
}

// Len returns the number of collected comments.
func (s *CommentSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Comments)
}
