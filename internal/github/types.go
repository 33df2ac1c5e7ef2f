package github

// Repository is the subset of repository metadata issueforge needs
type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Owner         string `json:"owner"`
	URL           string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
}

// Label is a repository label as returned by the REST API
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// Issue is a created or listed repository issue
type Issue struct {
	Number int     `json:"number"`
	NodeID string  `json:"node_id"`
	Title  string  `json:"title"`
	State  string  `json:"state"`
	URL    string  `json:"html_url"`
	Labels []Label `json:"labels"`
}

// User is the authenticated GitHub user
type User struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	URL   string `json:"html_url"`
}

// ProjectBoard is a created Projects v2 board
type ProjectBoard struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// AddItemResult reports the outcome of linking one issue to a board.
// Link failures are data, not errors: the caller counts them and moves on.
type AddItemResult struct {
	ItemID string `json:"item_id,omitempty"`
	OK     bool   `json:"ok"`
	Errors string `json:"errors,omitempty"`
}

// Wire structures

type repositoryResponse struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	HTMLURL       string `json:"html_url"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
}

type createLabelRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type createIssueRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []graphqlError `json:"errors,omitempty"`
}
