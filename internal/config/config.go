// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
)

// Timeout bounds for the HTTP transport.
const (
	TimeoutMin = 1 * time.Second
	TimeoutMax = 300 * time.Second

	ConnectTimeoutMin = 1 * time.Second
	ConnectTimeoutMax = 60 * time.Second
)

// Config holds the application configuration loaded from environment
// variables. The token is optional for REST calls against public
// repositories but required for GraphQL.
type Config struct {
	GitHubToken string `env:"GITHUB_TOKEN"`
	Host        string `env:"GH_HOST" envDefault:"github.com"`

	// APIBaseURL and GraphQLURL override the endpoints derived from Host.
	// Enterprise deployments and tests set these independently.
	APIBaseURL string `env:"GITHUB_API_URL"`
	GraphQLURL string `env:"GITHUB_GRAPHQL_URL"`

	PerPage     int `env:"HTTP_PER_PAGE" envDefault:"100"`
	MaxPages    int `env:"PR_FETCH_MAX_PAGES" envDefault:"50"`
	MaxComments int `env:"PR_FETCH_MAX_COMMENTS" envDefault:"2000"`
	MaxRetries  int `env:"HTTP_MAX_RETRIES" envDefault:"3"`

	Timeout        time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	ConnectTimeout time.Duration `env:"HTTP_CONNECT_TIMEOUT" envDefault:"10s"`

	LogLevel string `env:"PR_REVIEW_LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from environment variables and returns a clamped
// Config. Out-of-range numeric values are forced to the nearest bound, not
// rejected; operators who set PR_FETCH_MAX_PAGES=1000 get 200 pages rather
// than a startup failure.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.PerPage = clampInt(cfg.PerPage, model.PerPageMin, model.PerPageMax)
	cfg.MaxPages = clampInt(cfg.MaxPages, model.MaxPagesMin, model.MaxPagesMax)
	cfg.MaxComments = clampInt(cfg.MaxComments, model.MaxCommentsMin, model.MaxCommentsMax)
	cfg.MaxRetries = clampInt(cfg.MaxRetries, model.MaxRetriesMin, model.MaxRetriesMax)

	cfg.Timeout = clampDuration(cfg.Timeout, TimeoutMin, TimeoutMax)
	cfg.ConnectTimeout = clampDuration(cfg.ConnectTimeout, ConnectTimeoutMin, ConnectTimeoutMax)

	return &cfg, nil
}

// Request builds the retrieval request for one pull request from the loaded
// defaults.
func (c *Config) Request(owner, repo string, pullNumber int) model.RetrievalRequest {
	return model.RetrievalRequest{
		Host:        c.Host,
		Owner:       owner,
		Repo:        repo,
		PullNumber:  pullNumber,
		PerPage:     c.PerPage,
		MaxPages:    c.MaxPages,
		MaxComments: c.MaxComments,
		MaxRetries:  c.MaxRetries,
		BaseURL:     c.APIBaseURL,
		GraphQLURL:  c.GraphQLURL,
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
