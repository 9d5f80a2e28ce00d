// Package github implements the comment-retrieval engine against the
// GitHub API: a REST walker built on go-github, a GraphQL walker speaking
// the reviewThreads schema directly, and the shared rate-limit classifier
// and backoff scheduler both walkers run every response through.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
	"github.com/petems/github-pr-review-mcp-server/internal/locator"
)

// Config configures a Client. Zero-value timeouts fall back to the
// transport defaults below.
type Config struct {
	Token          string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	Logger         *slog.Logger
}

const (
	defaultTimeout        = 30 * time.Second
	defaultConnectTimeout = 10 * time.Second
)

// Client owns the HTTP transports and retry policy shared by the REST and
// GraphQL walkers. It holds no per-retrieval state: each Walk call owns its
// own accumulator and retry counters, so one Client is safe to use
// concurrently for different pull requests.
type Client struct {
	token  string
	bearer *http.Client
	legacy *http.Client
	logger *slog.Logger

	secondaryWait time.Duration
	sleep         func(context.Context, time.Duration) error
}

// NewClient builds a Client with the transport stack
// dialer → ETag cache → auth headers (Bearer, with a legacy-scheme sibling
// for the 401 fallback).
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bearer, legacy := newTransportPair(cfg.Token, timeout, connectTimeout)

	return &Client{
		token:         cfg.Token,
		bearer:        bearer,
		legacy:        legacy,
		logger:        logger,
		secondaryWait: secondaryRetryWait,
		sleep:         sleepContext,
	}
}

// httpFor picks the HTTP client matching the walk's current auth scheme.
func (c *Client) httpFor(st *retryState) *http.Client {
	if st.usedLegacyAuth {
		return c.legacy
	}
	return c.bearer
}

// restClientFor builds a go-github client aimed at the request's REST base
// URL: the explicit override when set, otherwise the URL derived from the
// host.
func (c *Client) restClientFor(baseURL, host string, st *retryState) (*gh.Client, error) {
	base := baseURL
	if base == "" {
		base = locator.APIBaseForHost(host)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing API base URL %q: %w", base, err)
	}

	client := gh.NewClient(c.httpFor(st))
	client.BaseURL = u
	return client, nil
}

// graphqlURLFor resolves the GraphQL endpoint for a retrieval request.
func graphqlURLFor(req model.RetrievalRequest) string {
	if req.GraphQLURL != "" {
		return req.GraphQLURL
	}
	return locator.GraphQLURLForHost(req.Host)
}
