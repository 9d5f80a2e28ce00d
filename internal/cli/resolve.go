package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petems/github-pr-review-mcp-server/internal/domain/model"
)

// newResolveCommand builds the resolve subcommand, which maps repository
// coordinates (and optionally a branch) to the URL of an open pull request.
func newResolveCommand(opts *Options) *cobra.Command {
	var (
		branch   string
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "resolve <owner>/<repo>",
		Short: "Resolve repository coordinates to an open pull request URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, repo, ok := strings.Cut(args[0], "/")
			if !ok || owner == "" || repo == "" {
				return fmt.Errorf("expected <owner>/<repo>, got %q", args[0])
			}

			url, err := opts.service.Resolve(cmd.Context(), model.ResolveRequest{
				Host:     opts.cfg.Host,
				Owner:    owner,
				Repo:     repo,
				Branch:   branch,
				Strategy: model.SelectStrategy(strategy),
				BaseURL:  opts.cfg.APIBaseURL,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Head branch of the pull request to find")
	cmd.Flags().StringVar(&strategy, "select", "latest", "Selection when several PRs are open (branch, latest, first, error)")

	return cmd
}
