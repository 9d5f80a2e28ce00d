// Package cli defines the command-line interface for prreview.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/petems/github-pr-review-mcp-server/internal/adapter/driven/github"
	"github.com/petems/github-pr-review-mcp-server/internal/application"
	"github.com/petems/github-pr-review-mcp-server/internal/config"
	"github.com/petems/github-pr-review-mcp-server/internal/logging"
	"github.com/petems/github-pr-review-mcp-server/internal/version"
)

// Options stores global CLI options shared between commands.
type Options struct {
	EnvFile string

	cfg     *config.Config
	service *application.FetchService
	logger  *slog.Logger
}

// Execute builds the root command, runs it with the provided args and
// logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, slog.LevelInfo)
	}

	opts := &Options{logger: logger}
	rootCmd := newRootCommand(opts)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and
// subcommands.
func newRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prreview",
		Short:   "prreview fetches GitHub pull request review comments",
		Long:    "prreview retrieves every review comment on a pull request, via REST or GraphQL, and renders them as Markdown or JSON.",
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.EnvFile != "" {
				if err := godotenv.Load(opts.EnvFile); err != nil {
					return err
				}
			} else {
				// Best effort: a missing .env is not an error.
				_ = godotenv.Load()
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			level := logging.ParseLevel(cfg.LogLevel)
			if flagLevel := cmd.Flag("log-level").Value.String(); cmd.Flag("log-level").Changed {
				level = logging.ParseLevel(flagLevel)
			}
			opts.logger = logging.NewLogger(os.Stderr, level)

			client := github.NewClient(github.Config{
				Token:          cfg.GitHubToken,
				Timeout:        cfg.Timeout,
				ConnectTimeout: cfg.ConnectTimeout,
				Logger:         opts.logger,
			})
			opts.service = application.NewFetchService(
				github.NewGraphQLSource(client),
				github.NewRESTSource(client),
				github.NewFinder(client),
				opts.logger,
			)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "Path to a .env file to load before reading the environment")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newFetchCommand(opts),
		newResolveCommand(opts),
	)

	return cmd
}
