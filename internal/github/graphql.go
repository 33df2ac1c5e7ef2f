package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/issueforge/internal/errors"
)

const ownerIDQuery = `
query($login: String!) {
    user(login: $login) {
        id
    }
    organization(login: $login) {
        id
    }
}`

const repositoryIDQuery = `
query($owner: String!, $name: String!) {
    repository(owner: $owner, name: $name) {
        id
    }
}`

const createProjectMutation = `
mutation($ownerId: ID!, $title: String!, $description: String) {
    createProjectV2(input: {
        ownerId: $ownerId,
        title: $title,
        description: $description
    }) {
        projectV2 {
            id
            title
            url
        }
    }
}`

const addProjectItemMutation = `
mutation($projectId: ID!, $contentId: ID!) {
    addProjectV2ItemById(input: {
        projectId: $projectId,
        contentId: $contentId
    }) {
        item {
            id
        }
    }
}`

// OwnerID resolves the GraphQL node id of a repository owner, trying a
// user account first and falling back to an organization.
func (c *Client) OwnerID(ctx context.Context, repo string) (string, error) {
	login, _, _ := strings.Cut(repo, "/")

	data, err := c.graphql(ctx, ownerIDQuery, map[string]any{"login": login}, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeGitHubOwnerLookup, "resolve owner id", err)
	}

	if id := nodeID(data, "user"); id != "" {
		return id, nil
	}
	if id := nodeID(data, "organization"); id != "" {
		return id, nil
	}
	return "", errors.New(errors.ErrCodeGitHubOwnerLookup, fmt.Sprintf("no user or organization named %q", login))
}

// RepositoryID resolves the GraphQL node id of a repository
func (c *Client) RepositoryID(ctx context.Context, repo string) (string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		return "", errors.New(errors.ErrCodeGitHubAPI, fmt.Sprintf("invalid repository name %q (expected owner/name)", repo))
	}

	data, err := c.graphql(ctx, repositoryIDQuery, map[string]any{"owner": owner, "name": name}, false)
	if err != nil {
		return "", errors.NewGitHubAPIError("resolve repository id", err)
	}

	if id := nodeID(data, "repository"); id != "" {
		return id, nil
	}
	return "", errors.NewGitHubAPIError("resolve repository id", fmt.Errorf("repository %q not found", repo))
}

// CreateProjectBoard creates a Projects v2 board owned by ownerID
func (c *Client) CreateProjectBoard(ctx context.Context, ownerID, title, description string) (*ProjectBoard, error) {
	data, err := c.graphql(ctx, createProjectMutation, map[string]any{
		"ownerId":     ownerID,
		"title":       title,
		"description": description,
	}, false)
	if err != nil {
		return nil, errors.NewBoardCreateError(err)
	}

	payload, _ := data["createProjectV2"].(map[string]any)
	project, _ := payload["projectV2"].(map[string]any)
	if project == nil {
		return nil, errors.NewBoardCreateError(fmt.Errorf("mutation returned no project"))
	}

	board := &ProjectBoard{}
	board.ID, _ = project["id"].(string)
	board.Title, _ = project["title"].(string)
	board.URL, _ = project["url"].(string)
	return board, nil
}

// AddIssueToProject links one issue to a board. GraphQL errors come back
// inside the result as data — a failed link never aborts a batch.
func (c *Client) AddIssueToProject(ctx context.Context, projectID, contentID string) (*AddItemResult, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     addProjectItemMutation,
		Variables: map[string]any{"projectId": projectID, "contentId": contentID},
	})
	if err != nil {
		return nil, errors.NewGitHubAPIError("add issue to project", err)
	}

	decoded, err := c.post(ctx, body)
	if err != nil {
		return nil, errors.NewGitHubAPIError("add issue to project", err)
	}

	if len(decoded.Errors) > 0 {
		return &AddItemResult{OK: false, Errors: joinGraphQLErrors(decoded.Errors)}, nil
	}

	payload, _ := decoded.Data["addProjectV2ItemById"].(map[string]any)
	item, _ := payload["item"].(map[string]any)
	id, _ := item["id"].(string)
	if id == "" {
		return &AddItemResult{OK: false, Errors: "mutation returned no item"}, nil
	}
	return &AddItemResult{ItemID: id, OK: true}, nil
}

// graphql runs a query and returns the data tree. When tolerateErrors is
// set, GraphQL-level errors are ignored as long as data came back; the
// owner-id query legitimately errors on whichever of user/organization
// does not exist.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, tolerateErrors bool) (map[string]any, error) {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	decoded, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	if len(decoded.Errors) > 0 && !tolerateErrors {
		return nil, fmt.Errorf("graphql errors: %s", joinGraphQLErrors(decoded.Errors))
	}
	if decoded.Data == nil {
		return nil, fmt.Errorf("graphql errors: %s", joinGraphQLErrors(decoded.Errors))
	}

	return decoded.Data, nil
}

func (c *Client) post(ctx context.Context, body []byte) (*graphqlResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var decoded graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &decoded, nil
}

func nodeID(data map[string]any, key string) string {
	node, _ := data[key].(map[string]any)
	id, _ := node["id"].(string)
	return id
}

func joinGraphQLErrors(errs []graphqlError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
