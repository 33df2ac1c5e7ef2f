// Package github is a thin, stateless wrapper over the GitHub REST and
// GraphQL APIs: repository lookup, label and issue creation, and Projects
// v2 board creation and linking.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/felixgeelhaar/issueforge/internal/errors"
)

const userAgent = "issueforge"

// Config holds the settings needed to construct a Client
type Config struct {
	// Token is a static personal access token or installation token. Required.
	Token string

	// APIURL is the REST API root (defaults to https://api.github.com)
	APIURL string

	// GraphQLURL is the GraphQL endpoint (defaults to https://api.github.com/graphql)
	GraphQLURL string
}

// Client wraps the GitHub REST and GraphQL APIs.
// Repository calls intentionally carry no client-side timeout; context
// cancellation is the only cutoff.
type Client struct {
	apiURL     string
	graphqlURL string
	client     *http.Client
}

// NewClient creates a Client authenticated with a static token
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.github.com"
	}
	graphqlURL := cfg.GraphQLURL
	if graphqlURL == "" {
		graphqlURL = "https://api.github.com/graphql"
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})

	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		graphqlURL: graphqlURL,
		client:     oauth2.NewClient(context.Background(), src),
	}, nil
}

// GetRepository looks up a repository by "owner/name".
// A missing repository returns (nil, nil); only transport and protocol
// faults are errors.
func (c *Client) GetRepository(ctx context.Context, repo string) (*Repository, error) {
	var decoded repositoryResponse
	status, err := c.rest(ctx, http.MethodGet, "/repos/"+repo, nil, &decoded)
	if err != nil {
		return nil, errors.NewGitHubAPIError("get repository", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, errors.NewGitHubAPIError("get repository", fmt.Errorf("http status %d", status))
	}

	return &Repository{
		Name:          decoded.Name,
		FullName:      decoded.FullName,
		Owner:         decoded.Owner.Login,
		URL:           decoded.HTMLURL,
		DefaultBranch: decoded.DefaultBranch,
		Private:       decoded.Private,
	}, nil
}

// CreateLabel creates a label, reusing the existing one when the provider
// signals a name conflict.
func (c *Client) CreateLabel(ctx context.Context, repo, name, color, description string) (*Label, error) {
	color = strings.TrimPrefix(color, "#")

	var created Label
	status, err := c.rest(ctx, http.MethodPost, "/repos/"+repo+"/labels", createLabelRequest{
		Name:        name,
		Color:       color,
		Description: description,
	}, &created)
	if err != nil {
		return nil, errors.NewGitHubAPIError("create label", err)
	}

	// 422 means the label already exists; fetch and reuse it.
	if status == http.StatusUnprocessableEntity {
		existing, err := c.GetLabel(ctx, repo, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	if status != http.StatusCreated {
		return nil, errors.NewGitHubAPIError("create label", fmt.Errorf("http status %d", status))
	}
	return &created, nil
}

// GetLabel fetches a label by name, returning (nil, nil) when absent
func (c *Client) GetLabel(ctx context.Context, repo, name string) (*Label, error) {
	var decoded Label
	status, err := c.rest(ctx, http.MethodGet, "/repos/"+repo+"/labels/"+url.PathEscape(name), nil, &decoded)
	if err != nil {
		return nil, errors.NewGitHubAPIError("get label", err)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, errors.NewGitHubAPIError("get label", fmt.Errorf("http status %d", status))
	}
	return &decoded, nil
}

// ListLabels returns one page of repository labels
func (c *Client) ListLabels(ctx context.Context, repo string) ([]Label, error) {
	var decoded []Label
	status, err := c.rest(ctx, http.MethodGet, "/repos/"+repo+"/labels", nil, &decoded)
	if err != nil {
		return nil, errors.NewGitHubAPIError("list labels", err)
	}
	if status != http.StatusOK {
		return nil, errors.NewGitHubAPIError("list labels", fmt.Errorf("http status %d", status))
	}
	return decoded, nil
}

// CreateIssue opens an issue with the given labels and assignees
func (c *Client) CreateIssue(ctx context.Context, repo, title, body string, labels, assignees []string) (*Issue, error) {
	var created Issue
	status, err := c.rest(ctx, http.MethodPost, "/repos/"+repo+"/issues", createIssueRequest{
		Title:     title,
		Body:      body,
		Labels:    labels,
		Assignees: assignees,
	}, &created)
	if err != nil {
		return nil, errors.NewGitHubAPIError("create issue", err)
	}
	if status != http.StatusCreated {
		return nil, errors.NewGitHubAPIError("create issue", fmt.Errorf("http status %d", status))
	}
	return &created, nil
}

// ListIssues returns one page of repository issues filtered by state
func (c *Client) ListIssues(ctx context.Context, repo, state string, perPage int) ([]Issue, error) {
	path := fmt.Sprintf("/repos/%s/issues?state=%s&per_page=%d", repo, url.QueryEscape(state), perPage)

	var decoded []Issue
	status, err := c.rest(ctx, http.MethodGet, path, nil, &decoded)
	if err != nil {
		return nil, errors.NewGitHubAPIError("list issues", err)
	}
	if status != http.StatusOK {
		return nil, errors.NewGitHubAPIError("list issues", fmt.Errorf("http status %d", status))
	}
	return decoded, nil
}

// GetAuthenticatedUser returns the user the token belongs to
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*User, error) {
	var decoded User
	status, err := c.rest(ctx, http.MethodGet, "/user", nil, &decoded)
	if err != nil {
		return nil, errors.NewGitHubAPIError("get user", err)
	}
	if status != http.StatusOK {
		return nil, errors.NewGitHubAPIError("get user", fmt.Errorf("http status %d", status))
	}
	return &decoded, nil
}

// rest performs a REST call and decodes the body into out when the status
// has one. It returns the HTTP status so callers can map 404/422 to
// domain outcomes instead of errors.
func (c *Client) rest(ctx context.Context, method, path string, payload, out any) (int, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}
