package github

import (
	"net"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/petems/github-pr-review-mcp-server/internal/version"
)

const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"

	schemeBearer = "Bearer"
	schemeLegacy = "token"
)

// authTransport injects the credential and the versioned GitHub headers on
// every request, for both the REST and GraphQL paths. The scheme is fixed
// per transport; the 401 fallback switches to a sibling transport carrying
// the legacy "token" scheme.
type authTransport struct {
	token  string
	scheme string
	base   http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if t.token != "" {
		req.Header.Set("Authorization", t.scheme+" "+t.token)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", "github-pr-review-mcp-server/"+version.Version)

	return t.base.RoundTrip(req)
}

// newTransportPair builds the Bearer and legacy-scheme HTTP clients over a
// shared stack: dialer with connect timeout → ETag cache → auth headers.
// Both clients share one response cache, so a scheme switch does not lose
// conditional-request state.
func newTransportPair(token string, timeout, connectTimeout time.Duration) (bearer, legacy *http.Client) {
	base := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	cache := httpcache.NewMemoryCacheTransport()
	cache.Transport = base

	mk := func(scheme string) *http.Client {
		return &http.Client{
			Timeout: timeout,
			Transport: &authTransport{
				token:  token,
				scheme: scheme,
				base:   cache,
			},
		}
	}

	return mk(schemeBearer), mk(schemeLegacy)
}
