// Package tracker orchestrates a full generation run: parse the project
// description, validate the repository, then create labels, issues, and
// the optional project board.
package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/issueforge/internal/builder"
	forgeerrors "github.com/felixgeelhaar/issueforge/internal/errors"
	"github.com/felixgeelhaar/issueforge/internal/github"
	"github.com/felixgeelhaar/issueforge/internal/log"
	"github.com/felixgeelhaar/issueforge/internal/plan"
)

// Planner turns a description into a validated project plan.
type Planner interface {
	Parse(ctx context.Context, description, model string, maxTasks int) (*plan.ProjectPlan, error)
}

// Builds creates GitHub artifacts from plan pieces.
type Builds interface {
	CreateLabels(ctx context.Context, repo string, labels []plan.Label) *builder.BatchResult[github.Label]
	CreateIssues(ctx context.Context, repo string, tasks []plan.Task) *builder.BatchResult[builder.CreatedIssue]
	CreateProjectBoard(ctx context.Context, repo, projectName string, issues []builder.CreatedIssue) (*builder.BoardResult, error)
}

// Progress receives step notifications during a run. Implemented by
// progress.StepIndicator; a nil Progress disables reporting.
type Progress interface {
	Step(name string)
	StepDone(detail string)
	StepFailed(err error)
}

// RepoAPI is the slice of the GitHub client the tracker reads from.
type RepoAPI interface {
	GetRepository(ctx context.Context, repo string) (*github.Repository, error)
	ListIssues(ctx context.Context, repo, state string, perPage int) ([]github.Issue, error)
	ListLabels(ctx context.Context, repo string) ([]github.Label, error)
}

// RunOptions configures one generation run.
type RunOptions struct {
	Repo        string
	Description string
	Model       string
	MaxTasks    int
	CreateBoard bool
}

// RunResult is the outcome of a generation run.
type RunResult struct {
	Success       bool                   `json:"success"`
	Repository    string                 `json:"repository"`
	ProjectName   string                 `json:"project_name"`
	Summary       string                 `json:"project_summary"`
	TasksCreated  int                    `json:"tasks_created"`
	TasksFailed   int                    `json:"tasks_failed,omitempty"`
	LabelsCreated int                    `json:"labels_created"`
	PhaseCount    int                    `json:"phase_count"`
	ProjectURL    string                 `json:"project_url,omitempty"`
	Issues        []builder.CreatedIssue `json:"issues"`
	Error         string                 `json:"error,omitempty"`
}

// ProjectSummary is a roll-up of the repository's current issue state,
// derived from the metadata labels issueforge applies.
type ProjectSummary struct {
	Repository        string         `json:"repository"`
	TotalIssues       int            `json:"total_issues"`
	TotalLabels       int            `json:"total_labels"`
	OpenIssues        int            `json:"open_issues"`
	ClosedIssues      int            `json:"closed_issues"`
	PriorityBreakdown map[string]int `json:"priority_breakdown"`
	PhaseBreakdown    map[string]int `json:"phase_breakdown"`
}

// Tracker wires the parser and builder into end-to-end operations.
type Tracker struct {
	planner  Planner
	builds   Builds
	client   RepoAPI
	logger   *log.Logger
	progress Progress
}

// New returns a Tracker.
func New(planner Planner, builds Builds, client RepoAPI, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Tracker{planner: planner, builds: builds, client: client, logger: logger}
}

// SetProgress attaches a step reporter for subsequent runs.
func (t *Tracker) SetProgress(p Progress) {
	t.progress = p
}

func (t *Tracker) step(name string) {
	if t.progress != nil {
		t.progress.Step(name)
	}
}

func (t *Tracker) stepDone(detail string) {
	if t.progress != nil {
		t.progress.StepDone(detail)
	}
}

func (t *Tracker) stepFailed(err error) {
	if t.progress != nil {
		t.progress.StepFailed(err)
	}
}

// Run executes a full generation run. Board creation failures are logged
// and leave ProjectURL empty; everything before the board is fatal.
func (t *Tracker) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	t.logger.Info("analyzing project description", "model", opts.Model)

	t.step(fmt.Sprintf("Analyzing project description with %s", opts.Model))
	projectPlan, err := t.planner.Parse(ctx, opts.Description, opts.Model, opts.MaxTasks)
	if err != nil {
		t.stepFailed(err)
		return nil, err
	}
	t.stepDone(fmt.Sprintf("%d tasks planned", len(projectPlan.Tasks)))

	t.step("Validating repository")
	repo, err := t.client.GetRepository(ctx, opts.Repo)
	if err != nil {
		t.stepFailed(err)
		return nil, err
	}
	if repo == nil {
		err := forgeerrors.NewRepoNotFoundError(opts.Repo)
		t.stepFailed(err)
		return nil, err
	}
	t.stepDone(repo.FullName)

	t.logger.Info("creating labels", "count", len(projectPlan.Labels))
	t.step("Creating labels")
	labels := t.builds.CreateLabels(ctx, opts.Repo, projectPlan.Labels)
	t.stepDone(fmt.Sprintf("%d of %d", len(labels.Succeeded), len(projectPlan.Labels)))

	t.logger.Info("creating issues", "count", len(projectPlan.Tasks))
	t.step("Creating issues")
	issues := t.builds.CreateIssues(ctx, opts.Repo, projectPlan.Tasks)
	t.stepDone(fmt.Sprintf("%d of %d", len(issues.Succeeded), len(projectPlan.Tasks)))

	result := &RunResult{
		Success:       true,
		Repository:    repo.FullName,
		ProjectName:   projectPlan.Name,
		Summary:       projectPlan.Summary,
		TasksCreated:  len(issues.Succeeded),
		TasksFailed:   len(issues.Failed),
		LabelsCreated: len(labels.Succeeded),
		PhaseCount:    len(projectPlan.Phases),
		Issues:        issues.Succeeded,
	}

	if opts.CreateBoard {
		t.step("Creating project board")
		board, err := t.builds.CreateProjectBoard(ctx, opts.Repo, projectPlan.Name, issues.Succeeded)
		if err != nil {
			t.stepFailed(err)
			t.logger.Warn("project board creation failed, issues were still created",
				"error", err.Error())
		} else {
			t.stepDone(fmt.Sprintf("added %d/%d", board.ItemsAdded, board.ItemsTotal))
			result.ProjectURL = board.URL
		}
	}

	return result, nil
}

const summaryPageSize = 100

// Summarize reports the repository's issue state grouped by the
// priority: and phase: labels.
func (t *Tracker) Summarize(ctx context.Context, repoName string) (*ProjectSummary, error) {
	repo, err := t.client.GetRepository(ctx, repoName)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		return nil, forgeerrors.NewRepoNotFoundError(repoName)
	}

	issues, err := t.client.ListIssues(ctx, repoName, "all", summaryPageSize)
	if err != nil {
		return nil, err
	}
	labels, err := t.client.ListLabels(ctx, repoName)
	if err != nil {
		return nil, err
	}

	summary := &ProjectSummary{
		Repository:  repo.FullName,
		TotalIssues: len(issues),
		TotalLabels: len(labels),
		PriorityBreakdown: map[string]int{
			"high":   0,
			"medium": 0,
			"low":    0,
		},
		PhaseBreakdown: map[string]int{},
	}

	for _, issue := range issues {
		switch issue.State {
		case "open":
			summary.OpenIssues++
		case "closed":
			summary.ClosedIssues++
		}
		for _, label := range issue.Labels {
			if priority, ok := strings.CutPrefix(label.Name, "priority:"); ok {
				if _, known := summary.PriorityBreakdown[priority]; known {
					summary.PriorityBreakdown[priority]++
				}
			}
			if phase, ok := strings.CutPrefix(label.Name, "phase:"); ok && phase != "" {
				summary.PhaseBreakdown[phase]++
			}
		}
	}

	return summary, nil
}
