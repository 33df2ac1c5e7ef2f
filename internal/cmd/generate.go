package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issueforge/internal/builder"
	"github.com/felixgeelhaar/issueforge/internal/config"
	forgeerrors "github.com/felixgeelhaar/issueforge/internal/errors"
	"github.com/felixgeelhaar/issueforge/internal/github"
	"github.com/felixgeelhaar/issueforge/internal/log"
	"github.com/felixgeelhaar/issueforge/internal/openrouter"
	"github.com/felixgeelhaar/issueforge/internal/plan"
	"github.com/felixgeelhaar/issueforge/internal/progress"
	"github.com/felixgeelhaar/issueforge/internal/tracker"
	"github.com/felixgeelhaar/issueforge/internal/ux"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate labels, issues, and a project board from a description",
	Long: `Analyze a free-text project description with an AI model and create the
resulting labels and issues in a GitHub repository. Unless --no-board is
given, a Projects v2 board is created and the issues are added to it.

The description comes from --description or from a file via --file;
exactly one of the two must be given.`,
	RunE: runGenerate,
}

var (
	generateRepo        string
	generateDescription string
	generateFile        string
	generateModel       string
	generateMaxTasks    int
	generateNoBoard     bool
	generateOutput      string
	generateFormat      string
)

func init() {
	generateCmd.Flags().StringVar(&generateRepo, "repo", "", "target repository as owner/name (required)")
	generateCmd.Flags().StringVarP(&generateDescription, "description", "d", "", "project description text")
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "read the project description from a file")
	generateCmd.Flags().StringVarP(&generateModel, "model", "m", "", "OpenRouter model id (defaults to DEFAULT_MODEL)")
	generateCmd.Flags().IntVar(&generateMaxTasks, "max-tasks", plan.DefaultMaxTasks, "maximum number of tasks to generate")
	generateCmd.Flags().BoolVar(&generateNoBoard, "no-board", false, "skip creating the project board")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "write the run result as JSON to a file")
	generateCmd.Flags().StringVar(&generateFormat, "format", "text", "output format: text, json, or yaml")

	_ = generateCmd.MarkFlagRequired("repo")
	generateCmd.MarkFlagsMutuallyExclusive("description", "file")
	generateCmd.MarkFlagsOneRequired("description", "file")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := loggerFromFlags(cmd)
	ctx := cmd.Context()

	description := generateDescription
	if generateFile != "" {
		data, err := os.ReadFile(generateFile)
		if err != nil {
			if os.IsNotExist(err) {
				return forgeerrors.NewFileNotFoundError(generateFile)
			}
			return forgeerrors.Wrap(forgeerrors.ErrCodeFileReadFailed,
				fmt.Sprintf("cannot read %s", generateFile), err)
		}
		description = string(data)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	model := generateModel
	if model == "" {
		model = cfg.Model
	}

	aiClient, err := openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Title:   "issueforge",
	})
	if err != nil {
		return err
	}

	ghClient, err := github.NewClient(github.Config{
		Token:      cfg.GitHubToken,
		APIURL:     cfg.GitHubAPIURL,
		GraphQLURL: cfg.GitHubGraphQLURL,
	})
	if err != nil {
		return err
	}

	ind := progress.NewStepIndicator(progress.Config{
		Writer:  cmd.ErrOrStderr(),
		Animate: generateFormat == "text",
	})
	ind.Start()
	defer ind.Stop()

	builds := builder.New(ghClient, logger)
	if generateFormat == "text" {
		builds.SetBatchProgress(func(total int) builder.BatchProgress {
			return progress.NewBarIndicator(cmd.ErrOrStderr(), total)
		})
	}

	tr := tracker.New(
		plan.NewParser(aiClient, logger),
		builds,
		ghClient,
		logger,
	)
	tr.SetProgress(ind)

	result, err := tr.Run(ctx, tracker.RunOptions{
		Repo:        generateRepo,
		Description: description,
		Model:       model,
		MaxTasks:    generateMaxTasks,
		CreateBoard: !generateNoBoard,
	})
	ind.Stop()
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ux.RenderError(err))
		if generateOutput != "" {
			failed := &tracker.RunResult{Repository: generateRepo, Error: err.Error()}
			_ = writeResultFile(generateOutput, failed)
		}
		return err
	}

	if generateOutput != "" {
		if err := writeResultFile(generateOutput, result); err != nil {
			return err
		}
	}

	return printResult(cmd, generateFormat, result)
}

func writeResultFile(path string, result *tracker.RunResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return forgeerrors.Wrap(forgeerrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("cannot write %s", path), err)
	}
	return nil
}

func printResult(cmd *cobra.Command, format string, result *tracker.RunResult) error {
	if format == "text" || format == "" {
		fmt.Fprint(cmd.OutOrStdout(), ux.RenderRunResult(result))
		return nil
	}

	formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return err
	}
	return formatter.Format(result)
}

func loggerFromFlags(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger := log.Development()
		log.SetDefaultLogger(logger)
		return logger
	}
	return log.DefaultLogger()
}
