package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issueforge/internal/config"
	forgeerrors "github.com/felixgeelhaar/issueforge/internal/errors"
	"github.com/felixgeelhaar/issueforge/internal/github"
	"github.com/felixgeelhaar/issueforge/internal/tracker"
	"github.com/felixgeelhaar/issueforge/internal/ux"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the issue state of a repository",
	Long: `Summarize a repository's issues grouped by the priority: and phase:
labels that issueforge applies, plus open/closed totals.`,
	RunE: runStatus,
}

var (
	statusRepo   string
	statusFormat string
)

func init() {
	statusCmd.Flags().StringVar(&statusRepo, "repo", "", "target repository as owner/name (required)")
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "output format: text, json, or yaml")

	_ = statusCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	logger := loggerFromFlags(cmd)

	// status only talks to GitHub, so the OpenRouter key is not required
	cfg := config.Load()
	if cfg.GitHubToken == "" {
		return forgeerrors.NewConfigMissingTokenError()
	}

	ghClient, err := github.NewClient(github.Config{
		Token:      cfg.GitHubToken,
		APIURL:     cfg.GitHubAPIURL,
		GraphQLURL: cfg.GitHubGraphQLURL,
	})
	if err != nil {
		return err
	}

	tr := tracker.New(nil, nil, ghClient, logger)

	summary, err := tr.Summarize(cmd.Context(), statusRepo)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ux.RenderError(err))
		return err
	}

	if statusFormat == "text" || statusFormat == "" {
		fmt.Fprint(cmd.OutOrStdout(), ux.RenderSummary(summary))
		return nil
	}

	formatter, err := ux.NewFormatter(statusFormat, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	return formatter.Format(summary)
}
