package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigMissingKey   ErrorCode = "CONFIG-001"
	ErrCodeConfigMissingToken ErrorCode = "CONFIG-002"
	ErrCodeConfigInvalid      ErrorCode = "CONFIG-003"

	// AI provider errors (AI-001 to AI-099)
	ErrCodeAIRequest        ErrorCode = "AI-001"
	ErrCodeAIProvider       ErrorCode = "AI-002"
	ErrCodeAIResponseFormat ErrorCode = "AI-003"

	// Plan parsing errors (PARSE-001 to PARSE-099)
	ErrCodeParseMissingField ErrorCode = "PARSE-001"
	ErrCodeParseFailed       ErrorCode = "PARSE-002"

	// GitHub errors (GITHUB-001 to GITHUB-099)
	ErrCodeGitHubAPI          ErrorCode = "GITHUB-001"
	ErrCodeGitHubRepoNotFound ErrorCode = "GITHUB-002"
	ErrCodeGitHubOwnerLookup  ErrorCode = "GITHUB-003"

	// Project board errors (BOARD-001 to BOARD-099)
	ErrCodeBoardCreate ErrorCode = "BOARD-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
)

// ForgeError represents an enhanced error with code, suggestions, and documentation
type ForgeError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *ForgeError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ForgeError) Unwrap() error {
	return e.Cause
}

// New creates a new ForgeError
func New(code ErrorCode, message string) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ForgeError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ForgeError {
	return &ForgeError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ForgeError) WithSuggestion(suggestion string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ForgeError) WithSuggestions(suggestions ...string) *ForgeError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *ForgeError) WithDocs(url string) *ForgeError {
	e.DocsURL = url
	return e
}

// Common error constructors for frequently used errors

// NewConfigMissingKeyError creates a missing OpenRouter API key error
func NewConfigMissingKeyError() *ForgeError {
	return New(ErrCodeConfigMissingKey, "OPENROUTER_API_KEY not found in environment").
		WithSuggestion("Set OPENROUTER_API_KEY in your environment or .env file").
		WithSuggestion("Create an API key at https://openrouter.ai/keys")
}

// NewConfigMissingTokenError creates a missing GitHub token error
func NewConfigMissingTokenError() *ForgeError {
	return New(ErrCodeConfigMissingToken, "GITHUB_TOKEN not found in environment").
		WithSuggestion("Set GITHUB_TOKEN in your environment or .env file").
		WithSuggestion("The token needs repo and project scopes")
}

// NewRepoNotFoundError creates a repository not found error
func NewRepoNotFoundError(repo string) *ForgeError {
	return New(ErrCodeGitHubRepoNotFound, fmt.Sprintf("repository not found or not accessible: %s", repo)).
		WithSuggestion("Check the repository name (expected format: owner/name)").
		WithSuggestion("Verify your GITHUB_TOKEN has access to this repository")
}

// NewResponseFormatError creates an unusable-AI-response error
func NewResponseFormatError(detail string, cause error) *ForgeError {
	return Wrap(ErrCodeAIResponseFormat, fmt.Sprintf("AI response is not valid JSON: %s", detail), cause).
		WithSuggestion("Retry the run; model output is not deterministic").
		WithSuggestion("Try a different model with --model")
}

// NewParseMissingFieldError creates a missing-required-field error
func NewParseMissingFieldError(field string) *ForgeError {
	return New(ErrCodeParseMissingField, fmt.Sprintf("missing required field in AI response: %s", field)).
		WithSuggestion("Retry the run; model output is not deterministic").
		WithSuggestion("Try a different model with --model")
}

// NewGitHubAPIError wraps a GitHub API failure with the attempted operation
func NewGitHubAPIError(operation string, cause error) *ForgeError {
	return Wrap(ErrCodeGitHubAPI, fmt.Sprintf("github %s failed", operation), cause)
}

// NewBoardCreateError creates a project board creation error
func NewBoardCreateError(cause error) *ForgeError {
	return Wrap(ErrCodeBoardCreate, "failed to create project board", cause).
		WithSuggestion("Verify your GITHUB_TOKEN has the project scope").
		WithSuggestion("Re-run with --no-board to skip the board")
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *ForgeError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}
