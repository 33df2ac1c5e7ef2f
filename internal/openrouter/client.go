// Package openrouter implements the chat-completion client used to extract
// structured project data from a free-text description.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 8000
)

// Config holds the settings needed to construct a Client
type Config struct {
	// APIKey authenticates against OpenRouter. Required.
	APIKey string

	// BaseURL is the API root (defaults to the public OpenRouter endpoint)
	BaseURL string

	// Referer and Title populate the attribution headers OpenRouter asks
	// clients to send
	Referer string
	Title   string

	// Timeout bounds each request (defaults to 60s)
	Timeout time.Duration
}

// Client is a stateless wrapper over the OpenRouter chat-completions API
type Client struct {
	apiKey  string
	baseURL string
	referer string
	title   string
	client  *http.Client
}

// NewClient creates a Client from the given configuration
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		referer: cfg.Referer,
		title:   cfg.Title,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// ChatCompletion sends a non-streaming chat-completion request.
// Transport faults and provider-reported errors both come back inside the
// ChatResponse; the returned error is reserved for request construction.
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		Stream:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return &ChatResponse{Model: req.Model, Err: fmt.Sprintf("request failed: %v", err)}, nil
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &ChatResponse{Model: req.Model, Err: fmt.Sprintf("read response: %v", err)}, nil
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return &ChatResponse{Model: req.Model, Err: fmt.Sprintf("invalid JSON response: %v", err)}, nil
	}

	if decoded.Error != nil {
		return &ChatResponse{Model: req.Model, Err: decoded.Error.Message}, nil
	}
	if httpResp.StatusCode != http.StatusOK {
		return &ChatResponse{Model: req.Model, Err: fmt.Sprintf("http error %d: %s", httpResp.StatusCode, respBody)}, nil
	}
	if len(decoded.Choices) == 0 {
		return &ChatResponse{Model: req.Model, Err: "response contained no choices"}, nil
	}

	model := decoded.Model
	if model == "" {
		model = req.Model
	}

	return &ChatResponse{
		Content: decoded.Choices[0].Message.Content,
		Model:   model,
		Usage:   decoded.Usage,
		OK:      true,
	}, nil
}

// ListModels returns the OpenRouter model catalog
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(httpReq)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: http error %d", httpResp.StatusCode)
	}

	var decoded modelListResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}

	return decoded.Data, nil
}

// ValidateModel reports whether a model id exists in the catalog.
// When the catalog cannot be fetched the model is assumed valid.
func (c *Client) ValidateModel(ctx context.Context, model string) bool {
	models, err := c.ListModels(ctx)
	if err != nil {
		return true
	}

	for _, m := range models {
		if m.ID == model {
			return true
		}
	}
	return false
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}
}
