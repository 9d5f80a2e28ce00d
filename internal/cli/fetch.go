package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
	"github.com/petems/github-pr-review-mcp-server/internal/locator"
)

// newFetchCommand builds the fetch subcommand, which retrieves every review
// comment on one pull request and prints the requested serialization.
func newFetchCommand(opts *Options) *cobra.Command {
	var (
		output      string
		strategy    string
		perPage     int
		maxPages    int
		maxComments int
		maxRetries  int
	)

	cmd := &cobra.Command{
		Use:   "fetch <pr-url>",
		Short: "Fetch review comments for a pull request URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := locator.ParsePRURL(args[0])
			if err != nil {
				return err
			}

			req := opts.cfg.Request(coords.Owner, coords.Repo, coords.PullNumber)
			req.Host = coords.Host
			if cmd.Flag("per-page").Changed {
				req.PerPage = perPage
			}
			if cmd.Flag("max-pages").Changed {
				req.MaxPages = maxPages
			}
			if cmd.Flag("max-comments").Changed {
				req.MaxComments = maxComments
			}
			if cmd.Flag("max-retries").Changed {
				req.MaxRetries = maxRetries
			}

			res, err := opts.service.Fetch(cmd.Context(), req,
				model.FetchStrategy(strategy), model.OutputMode(output))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.JSON != "" {
				fmt.Fprintln(out, res.JSON)
			}
			if res.Markdown != "" {
				fmt.Fprint(out, res.Markdown)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "markdown", "Output mode (markdown, json, both)")
	cmd.Flags().StringVarP(&strategy, "strategy", "s", "graphql", "Fetch strategy (graphql, rest)")
	cmd.Flags().IntVar(&perPage, "per-page", model.DefaultPerPage, "Comments or threads per API page")
	cmd.Flags().IntVar(&maxPages, "max-pages", model.DefaultMaxPages, "Maximum API pages to fetch")
	cmd.Flags().IntVar(&maxComments, "max-comments", model.DefaultMaxComments, "Maximum comments to collect")
	cmd.Flags().IntVar(&maxRetries, "max-retries", model.DefaultMaxRetries, "Maximum retries after server errors")

	return cmd
}
