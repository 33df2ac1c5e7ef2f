package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/issueforge/internal/config"
	forgeerrors "github.com/felixgeelhaar/issueforge/internal/errors"
	"github.com/felixgeelhaar/issueforge/internal/openrouter"
	"github.com/felixgeelhaar/issueforge/internal/ux"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List OpenRouter models, or check that one exists",
	Long: `List the models available through OpenRouter. With --check, verify that
a specific model id exists in the catalog instead.`,
	RunE: runModels,
}

var (
	modelsCheck  string
	modelsFormat string
)

func init() {
	modelsCmd.Flags().StringVar(&modelsCheck, "check", "", "verify that the given model id exists")
	modelsCmd.Flags().StringVar(&modelsFormat, "format", "text", "output format: text, json, or yaml")

	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.OpenRouterAPIKey == "" {
		return forgeerrors.NewConfigMissingKeyError()
	}

	client, err := openrouter.NewClient(openrouter.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Title:   "issueforge",
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if modelsCheck != "" {
		if client.ValidateModel(ctx, modelsCheck) {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ model available: %s\n", modelsCheck)
			return nil
		}
		return fmt.Errorf("model not found in the OpenRouter catalog: %s", modelsCheck)
	}

	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}

	if modelsFormat != "text" && modelsFormat != "" {
		formatter, err := ux.NewFormatter(modelsFormat, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
		if err != nil {
			return err
		}
		return formatter.Format(models)
	}

	for _, model := range models {
		if model.Name != "" && model.Name != model.ID {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", model.ID, model.Name)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), model.ID)
	}
	return nil
}
