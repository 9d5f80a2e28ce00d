// Package locator maps pull request URLs and GitHub hosts onto API
// coordinates. It is pure string work; open-PR resolution against the API
// lives in the github adapter.
package locator

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// prURLPattern accepts https://<host>/<owner>/<repo>/pull/<number> with
// optional trailing path segments, query string, or fragment (for example
// ?diff=split or /files).
var prURLPattern = regexp.MustCompile(`^https://([^/]+)/([^/]+)/([^/]+)/pull/(\d+)(?:[/?#].*)?$`)

// PRCoordinates identifies one pull request on one GitHub deployment.
type PRCoordinates struct {
	Host       string
	Owner      string
	Repo       string
	PullNumber int
}

// ParsePRURL extracts the host, owner, repo and pull number from a pull
// request URL.
func ParsePRURL(prURL string) (PRCoordinates, error) {
	m := prURLPattern.FindStringSubmatch(strings.TrimSpace(prURL))
	if m == nil {
		return PRCoordinates{}, fmt.Errorf("invalid PR URL %q: expected https://{host}/{owner}/{repo}/pull/{number}", prURL)
	}

	number, err := strconv.Atoi(m[4])
	if err != nil {
		return PRCoordinates{}, fmt.Errorf("invalid PR number in %q: %w", prURL, err)
	}

	return PRCoordinates{
		Host:       strings.ToLower(m[1]),
		Owner:      m[2],
		Repo:       m[3],
		PullNumber: number,
	}, nil
}

// PRURL builds the canonical HTML URL for a pull request.
func PRURL(host, owner, repo string, number int) string {
	return fmt.Sprintf("https://%s/%s/%s/pull/%d", host, owner, repo, number)
}

// APIBaseForHost returns the REST API base URL for a GitHub host. A
// GITHUB_API_URL override is honored only when its host matches the target
// host, so a CI environment pointing at github.com never hijacks requests
// aimed at an enterprise deployment.
func APIBaseForHost(host string) string {
	if explicit := os.Getenv("GITHUB_API_URL"); explicit != "" {
		if parsed, err := url.Parse(explicit); err == nil && hostsMatch(host, parsed.Host) {
			return strings.TrimRight(explicit, "/")
		}
	}

	if strings.EqualFold(host, "github.com") {
		return "https://api.github.com"
	}
	// GitHub Enterprise default pattern.
	return fmt.Sprintf("https://%s/api/v3", host)
}

// GraphQLURLForHost returns the GraphQL endpoint for a GitHub host.
// Precedence: a host-matching GITHUB_GRAPHQL_URL override, then a GraphQL
// URL derived from GITHUB_API_URL, then the well-known endpoints.
func GraphQLURLForHost(host string) string {
	if explicit := os.Getenv("GITHUB_GRAPHQL_URL"); explicit != "" {
		if parsed, err := url.Parse(explicit); err == nil && hostsMatch(host, parsed.Host) {
			return explicit
		}
	}

	if apiURL := os.Getenv("GITHUB_API_URL"); apiURL != "" {
		if parsed, err := url.Parse(apiURL); err == nil && hostsMatch(host, parsed.Host) {
			return graphqlFromAPIBase(apiURL)
		}
	}

	if strings.EqualFold(host, "github.com") {
		return "https://api.github.com/graphql"
	}
	return fmt.Sprintf("https://%s/api/graphql", host)
}

// graphqlFromAPIBase derives a GraphQL endpoint from a REST base URL,
// special-casing the common "/api/v3" and "/api" enterprise forms.
func graphqlFromAPIBase(apiBase string) string {
	base := strings.TrimRight(apiBase, "/")
	switch {
	case strings.HasSuffix(base, "/api/v3"):
		return strings.TrimSuffix(base, "/v3") + "/graphql"
	case strings.HasSuffix(base, "/api"):
		return base + "/graphql"
	default:
		return base + "/graphql"
	}
}

// hostsMatch reports whether two hosts name the same deployment, treating
// api.github.com and github.com as equivalent for dotcom.
func hostsMatch(target, candidate string) bool {
	target = strings.ToLower(target)
	candidate = strings.ToLower(candidate)

	if target == "github.com" {
		return candidate == "github.com" || candidate == "api.github.com"
	}
	return candidate == target
}
