// Package builder turns a validated project plan into GitHub artifacts:
// labels, issues, and an optional Projects v2 board. Batch operations are
// best effort; a failing item is recorded and skipped, never fatal.
package builder

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/issueforge/internal/github"
	"github.com/felixgeelhaar/issueforge/internal/log"
	"github.com/felixgeelhaar/issueforge/internal/plan"
)

// API is the slice of the GitHub client the builder needs.
type API interface {
	CreateLabel(ctx context.Context, repo, name, color, description string) (*github.Label, error)
	CreateIssue(ctx context.Context, repo, title, body string, labels, assignees []string) (*github.Issue, error)
	OwnerID(ctx context.Context, repo string) (string, error)
	CreateProjectBoard(ctx context.Context, ownerID, title, description string) (*github.ProjectBoard, error)
	AddIssueToProject(ctx context.Context, projectID, contentID string) (*github.AddItemResult, error)
}

// BatchFailure records one item that could not be created.
type BatchFailure struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// BatchResult holds the outcome of a best-effort batch operation.
type BatchResult[T any] struct {
	Succeeded []T            `json:"succeeded"`
	Failed    []BatchFailure `json:"failed,omitempty"`
}

// CreatedIssue is an issue annotated with the task metadata it was built
// from, so downstream reporting does not have to re-parse labels.
type CreatedIssue struct {
	Issue    github.Issue  `json:"issue"`
	Priority plan.Priority `json:"priority"`
	Effort   plan.Effort   `json:"effort"`
	Phase    string        `json:"phase"`
	Type     plan.TaskType `json:"type"`
}

// BoardResult describes a created Projects v2 board and how many of the
// issues made it onto the board.
type BoardResult struct {
	URL        string `json:"url"`
	ItemsAdded int    `json:"items_added"`
	ItemsTotal int    `json:"items_total"`
}

// BatchProgress receives per-item completion while a batch runs.
// progress.BarIndicator implements it.
type BatchProgress interface {
	Increment(success bool)
	Finish()
}

// Builder creates GitHub artifacts from a plan.
type Builder struct {
	client   API
	logger   *log.Logger
	progress func(total int) BatchProgress
}

// New returns a Builder backed by the given client.
func New(client API, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Builder{client: client, logger: logger}
}

// SetBatchProgress installs a factory that builds a progress sink sized
// for each batch. A nil factory disables per-item progress.
func (b *Builder) SetBatchProgress(f func(total int) BatchProgress) {
	b.progress = f
}

func (b *Builder) batchBar(total int) BatchProgress {
	if b.progress == nil || total == 0 {
		return noopBar{}
	}
	return b.progress(total)
}

type noopBar struct{}

func (noopBar) Increment(bool) {}
func (noopBar) Finish()        {}

// CreateLabels creates every label from the plan in the repository.
// Existing labels are reused by the client, so re-runs are safe.
func (b *Builder) CreateLabels(ctx context.Context, repo string, labels []plan.Label) *BatchResult[github.Label] {
	result := &BatchResult[github.Label]{}
	bar := b.batchBar(len(labels))
	for _, l := range labels {
		created, err := b.client.CreateLabel(ctx, repo, l.Name, l.Color, l.Description)
		bar.Increment(err == nil)
		if err != nil {
			b.logger.Warn("label creation failed, skipping",
				"label", l.Name,
				"error", err.Error())
			result.Failed = append(result.Failed, BatchFailure{Name: l.Name, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, *created)
	}
	bar.Finish()
	return result
}

// CreateIssues creates one issue per task, with a rendered body and the
// task's metadata labels attached.
func (b *Builder) CreateIssues(ctx context.Context, repo string, tasks []plan.Task) *BatchResult[CreatedIssue] {
	result := &BatchResult[CreatedIssue]{}
	bar := b.batchBar(len(tasks))
	for _, task := range tasks {
		issue, err := b.client.CreateIssue(ctx, repo, task.Title, BuildIssueBody(task), IssueLabels(task), nil)
		bar.Increment(err == nil)
		if err != nil {
			b.logger.Warn("issue creation failed, skipping",
				"title", task.Title,
				"error", err.Error())
			result.Failed = append(result.Failed, BatchFailure{Name: task.Title, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, CreatedIssue{
			Issue:    *issue,
			Priority: task.Priority,
			Effort:   task.Effort,
			Phase:    task.Phase,
			Type:     task.Type,
		})
	}
	bar.Finish()
	return result
}

// CreateProjectBoard creates a Projects v2 board on the repository owner
// and links the given issues to it. Linking individual issues is best
// effort; creating the board itself is not.
func (b *Builder) CreateProjectBoard(ctx context.Context, repo, projectName string, issues []CreatedIssue) (*BoardResult, error) {
	ownerID, err := b.client.OwnerID(ctx, repo)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Auto-generated project board for %s", repo)
	board, err := b.client.CreateProjectBoard(ctx, ownerID, projectName, description)
	if err != nil {
		return nil, err
	}

	result := &BoardResult{URL: board.URL, ItemsTotal: len(issues)}
	for _, issue := range issues {
		item, err := b.client.AddIssueToProject(ctx, board.ID, issue.Issue.NodeID)
		if err != nil {
			b.logger.Warn("failed to add issue to project board",
				"issue", issue.Issue.Number,
				"error", err.Error())
			continue
		}
		if !item.OK {
			b.logger.Warn("project board rejected issue",
				"issue", issue.Issue.Number,
				"errors", item.Errors)
			continue
		}
		result.ItemsAdded++
	}

	b.logger.Info("project board populated",
		"added", result.ItemsAdded,
		"total", result.ItemsTotal)
	return result, nil
}
