package model

// Bounds for the per-call tunables. Out-of-range values are clamped to the
// nearest bound rather than rejected, so a caller passing max_pages=500 gets
// 200 pages instead of an error.
const (
	PerPageMin = 1
	PerPageMax = 100

	MaxPagesMin = 1
	MaxPagesMax = 200

	MaxCommentsMin = 100
	MaxCommentsMax = 100000

	MaxRetriesMin = 0
	MaxRetriesMax = 10
)

// Defaults applied when a tunable is left at its zero value.
const (
	DefaultPerPage     = 100
	DefaultMaxPages    = 50
	DefaultMaxComments = 2000
	DefaultMaxRetries  = 3
)

// FetchStrategy selects which API shape a retrieval walks.
type FetchStrategy string

const (
	// StrategyGraphQL walks threaded review comments via the GraphQL API,
	// including resolution and outdated metadata. This is the default.
	StrategyGraphQL FetchStrategy = "graphql"
	// StrategyREST walks flat review comments via the conversational REST
	// endpoint. The flat endpoint carries no resolution concept.
	StrategyREST FetchStrategy = "rest"
)

// OutputMode selects how a retrieval result is serialized for the caller.
type OutputMode string

const (
	OutputMarkdown OutputMode = "markdown"
	OutputJSON     OutputMode = "json"
	OutputBoth     OutputMode = "both"
)

// SelectStrategy picks an open pull request when resolving by coordinates
// instead of an explicit URL.
type SelectStrategy string

const (
	// SelectBranch picks the open PR whose head ref matches the branch,
	// falling back to an error when none matches.
	SelectBranch SelectStrategy = "branch"
	// SelectLatest picks the most recently created open PR.
	SelectLatest SelectStrategy = "latest"
	// SelectFirst picks the open PR with the smallest number.
	SelectFirst SelectStrategy = "first"
	// SelectError requires an exact branch match and fails otherwise.
	SelectError SelectStrategy = "error"
)

// RetrievalRequest is the input envelope for one retrieval call. Host names
// the GitHub deployment ("github.com" or an enterprise host); BaseURL and
// GraphQLURL override the derived API endpoints independently of Host.
type RetrievalRequest struct {
	Host       string
	Owner      string
	Repo       string
	PullNumber int

	PerPage     int
	MaxPages    int
	MaxComments int
	MaxRetries  int

	BaseURL    string
	GraphQLURL string
}

// Clamp returns a copy with every tunable forced into its allowed range.
// Zero values take the defaults. MaxRetries uses an explicit zero-is-valid
// range, so only negative values fall back to the default.
func (r RetrievalRequest) Clamp() RetrievalRequest {
	r.PerPage = clampOrDefault(r.PerPage, PerPageMin, PerPageMax, DefaultPerPage)
	r.MaxPages = clampOrDefault(r.MaxPages, MaxPagesMin, MaxPagesMax, DefaultMaxPages)
	r.MaxComments = clampOrDefault(r.MaxComments, MaxCommentsMin, MaxCommentsMax, DefaultMaxComments)
	if r.MaxRetries < MaxRetriesMin {
		r.MaxRetries = DefaultMaxRetries
	} else if r.MaxRetries > MaxRetriesMax {
		r.MaxRetries = MaxRetriesMax
	}
	return r
}

func clampOrDefault(v, min, max, def int) int {
	if v == 0 {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ResolveRequest carries the coordinates for open-PR resolution.
type ResolveRequest struct {
	Host     string
	Owner    string
	Repo     string
	Branch   string
	Strategy SelectStrategy

	BaseURL string
}
