// Package config loads and validates the environment-driven configuration
// for issueforge. Configuration is resolved once at startup and passed
// explicitly into constructors; nothing reads the environment after Load.
package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/felixgeelhaar/issueforge/internal/errors"
)

// Defaults applied when the environment leaves a value unset.
const (
	DefaultModel            = "deepseek/deepseek-r1-distill-llama-70b"
	DefaultOpenRouterURL    = "https://openrouter.ai/api/v1"
	DefaultGitHubAPIURL     = "https://api.github.com"
	DefaultGitHubGraphQLURL = "https://api.github.com/graphql"
)

// Config holds everything issueforge needs to talk to OpenRouter and GitHub.
type Config struct {
	// OpenRouterAPIKey authenticates chat-completion calls. Required.
	OpenRouterAPIKey string

	// GitHubToken authenticates REST and GraphQL calls. Required.
	GitHubToken string

	// Model is the default model used when --model is not given.
	Model string

	// OpenRouterBaseURL is the OpenRouter API root.
	OpenRouterBaseURL string

	// GitHubAPIURL is the GitHub REST API root.
	GitHubAPIURL string

	// GitHubGraphQLURL is the GitHub GraphQL endpoint.
	GitHubGraphQLURL string
}

// Load reads configuration from the environment, consulting a .env file
// first when one exists in the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		GitHubToken:       os.Getenv("GITHUB_TOKEN"),
		Model:             getEnvWithDefault("DEFAULT_MODEL", DefaultModel),
		OpenRouterBaseURL: getEnvWithDefault("OPENROUTER_BASE_URL", DefaultOpenRouterURL),
		GitHubAPIURL:      getEnvWithDefault("GITHUB_API_URL", DefaultGitHubAPIURL),
		GitHubGraphQLURL:  getEnvWithDefault("GITHUB_GRAPHQL_URL", DefaultGitHubGraphQLURL),
	}
}

// Validate checks that required credentials are present. It runs once at
// startup so a misconfigured environment fails before any network call.
func (c *Config) Validate() error {
	if c.OpenRouterAPIKey == "" {
		return errors.NewConfigMissingKeyError()
	}
	if c.GitHubToken == "" {
		return errors.NewConfigMissingTokenError()
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
