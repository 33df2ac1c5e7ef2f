package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/issueforge/internal/builder"
	forgeerrors "github.com/felixgeelhaar/issueforge/internal/errors"
	"github.com/felixgeelhaar/issueforge/internal/github"
	"github.com/felixgeelhaar/issueforge/internal/plan"
)

type fakePlanner struct {
	plan *plan.ProjectPlan
	err  error

	gotDescription string
	gotModel       string
	gotMaxTasks    int
}

func (f *fakePlanner) Parse(_ context.Context, description, model string, maxTasks int) (*plan.ProjectPlan, error) {
	f.gotDescription = description
	f.gotModel = model
	f.gotMaxTasks = maxTasks
	return f.plan, f.err
}

type fakeBuilds struct {
	issuesFail bool
	boardErr   error
	boardCalls int
}

func (f *fakeBuilds) CreateLabels(_ context.Context, _ string, labels []plan.Label) *builder.BatchResult[github.Label] {
	result := &builder.BatchResult[github.Label]{}
	for _, l := range labels {
		result.Succeeded = append(result.Succeeded, github.Label{Name: l.Name, Color: l.Color})
	}
	return result
}

func (f *fakeBuilds) CreateIssues(_ context.Context, _ string, tasks []plan.Task) *builder.BatchResult[builder.CreatedIssue] {
	result := &builder.BatchResult[builder.CreatedIssue]{}
	if f.issuesFail {
		for _, task := range tasks {
			result.Failed = append(result.Failed, builder.BatchFailure{Name: task.Title})
		}
		return result
	}
	for i, task := range tasks {
		result.Succeeded = append(result.Succeeded, builder.CreatedIssue{
			Issue:    github.Issue{Number: i + 1, NodeID: "n", Title: task.Title, State: "open"},
			Priority: task.Priority,
			Effort:   task.Effort,
			Phase:    task.Phase,
			Type:     task.Type,
		})
	}
	return result
}

func (f *fakeBuilds) CreateProjectBoard(_ context.Context, _, _ string, _ []builder.CreatedIssue) (*builder.BoardResult, error) {
	f.boardCalls++
	if f.boardErr != nil {
		return nil, f.boardErr
	}
	return &builder.BoardResult{URL: "https://github.com/users/o/projects/1", ItemsAdded: 1, ItemsTotal: 1}, nil
}

type fakeRepoAPI struct {
	repo   *github.Repository
	issues []github.Issue
	labels []github.Label
	err    error
}

func (f *fakeRepoAPI) GetRepository(_ context.Context, _ string) (*github.Repository, error) {
	return f.repo, f.err
}

func (f *fakeRepoAPI) ListIssues(_ context.Context, _, _ string, _ int) ([]github.Issue, error) {
	return f.issues, nil
}

func (f *fakeRepoAPI) ListLabels(_ context.Context, _ string) ([]github.Label, error) {
	return f.labels, nil
}

func blogPlan(tasks int) *plan.ProjectPlan {
	p := &plan.ProjectPlan{
		Name:    "Blog Platform",
		Summary: "A software project: Blog Platform",
		Phases:  plan.DefaultPhases(),
		Labels:  plan.EssentialLabels(),
	}
	titles := []string{"Set up repo", "Design schema", "Build API", "Write tests", "Deploy"}
	for i := 0; i < tasks; i++ {
		p.Tasks = append(p.Tasks, plan.Task{
			Title:    titles[i%len(titles)],
			Priority: plan.PriorityMedium,
			Effort:   plan.EffortThreeDay,
			Type:     plan.TypeFeature,
			Phase:    "Development",
		})
	}
	return p
}

func TestRunEndToEnd(t *testing.T) {
	planner := &fakePlanner{plan: blogPlan(5)}
	builds := &fakeBuilds{}
	api := &fakeRepoAPI{repo: &github.Repository{FullName: "owner/blog", Owner: "owner"}}

	tr := New(planner, builds, api, nil)

	result, err := tr.Run(context.Background(), RunOptions{
		Repo:        "owner/blog",
		Description: "Build a blog",
		Model:       "test-model",
		MaxTasks:    5,
		CreateBoard: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !result.Success {
		t.Error("run should succeed")
	}
	if result.Repository != "owner/blog" {
		t.Errorf("repository = %s", result.Repository)
	}
	if result.ProjectName != "Blog Platform" {
		t.Errorf("project name = %s", result.ProjectName)
	}
	if result.TasksCreated != 5 || len(result.Issues) != 5 {
		t.Errorf("tasks created = %d, issues = %d, want 5", result.TasksCreated, len(result.Issues))
	}
	if result.LabelsCreated != 3 {
		t.Errorf("labels created = %d, want 3", result.LabelsCreated)
	}
	if result.PhaseCount != 4 {
		t.Errorf("phase count = %d, want 4", result.PhaseCount)
	}
	if result.ProjectURL == "" {
		t.Error("project URL should be set when the board is created")
	}
	if planner.gotDescription != "Build a blog" || planner.gotModel != "test-model" || planner.gotMaxTasks != 5 {
		t.Errorf("planner called with %q/%q/%d", planner.gotDescription, planner.gotModel, planner.gotMaxTasks)
	}
}

func TestRunRepositoryNotFound(t *testing.T) {
	planner := &fakePlanner{plan: blogPlan(1)}
	tr := New(planner, &fakeBuilds{}, &fakeRepoAPI{repo: nil}, nil)

	_, err := tr.Run(context.Background(), RunOptions{Repo: "owner/missing", Description: "x"})
	if err == nil {
		t.Fatal("expected error for missing repository")
	}

	var forgeErr *forgeerrors.ForgeError
	if !errors.As(err, &forgeErr) || forgeErr.Code != forgeerrors.ErrCodeGitHubRepoNotFound {
		t.Errorf("expected GITHUB-002, got %v", err)
	}
}

func TestRunParseFailureIsFatal(t *testing.T) {
	planner := &fakePlanner{err: errors.New("extraction failed")}
	tr := New(planner, &fakeBuilds{}, &fakeRepoAPI{repo: &github.Repository{FullName: "o/r"}}, nil)

	if _, err := tr.Run(context.Background(), RunOptions{Repo: "o/r", Description: "x"}); err == nil {
		t.Fatal("expected parse failure to abort the run")
	}
}

func TestRunBoardFailureIsWarning(t *testing.T) {
	planner := &fakePlanner{plan: blogPlan(2)}
	builds := &fakeBuilds{boardErr: errors.New("board boom")}
	tr := New(planner, builds, &fakeRepoAPI{repo: &github.Repository{FullName: "o/r"}}, nil)

	result, err := tr.Run(context.Background(), RunOptions{Repo: "o/r", Description: "x", CreateBoard: true})
	if err != nil {
		t.Fatalf("board failure must not fail the run: %v", err)
	}
	if !result.Success || result.TasksCreated != 2 {
		t.Errorf("issues should survive a board failure: %+v", result)
	}
	if result.ProjectURL != "" {
		t.Error("project URL should be empty when the board fails")
	}
}

func TestRunSkipsBoardWhenDisabled(t *testing.T) {
	planner := &fakePlanner{plan: blogPlan(2)}
	builds := &fakeBuilds{}
	tr := New(planner, builds, &fakeRepoAPI{repo: &github.Repository{FullName: "o/r"}}, nil)

	if _, err := tr.Run(context.Background(), RunOptions{Repo: "o/r", Description: "x", CreateBoard: false}); err != nil {
		t.Fatal(err)
	}
	if builds.boardCalls != 0 {
		t.Errorf("board calls = %d, want 0", builds.boardCalls)
	}
}

func TestRunCreatesBoardEvenWithoutIssues(t *testing.T) {
	planner := &fakePlanner{plan: blogPlan(2)}
	builds := &fakeBuilds{issuesFail: true}
	tr := New(planner, builds, &fakeRepoAPI{repo: &github.Repository{FullName: "o/r"}}, nil)

	result, err := tr.Run(context.Background(), RunOptions{Repo: "o/r", Description: "x", CreateBoard: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// the board is created whenever it was requested, empty or not
	if builds.boardCalls != 1 {
		t.Errorf("board calls = %d, want 1", builds.boardCalls)
	}
	if result.TasksCreated != 0 || result.TasksFailed != 2 {
		t.Errorf("tasks created/failed = %d/%d, want 0/2", result.TasksCreated, result.TasksFailed)
	}
	if result.ProjectURL == "" {
		t.Error("expected a project URL for the empty board")
	}
}

func TestSummarize(t *testing.T) {
	api := &fakeRepoAPI{
		repo: &github.Repository{FullName: "owner/blog"},
		issues: []github.Issue{
			{Number: 1, State: "open", Labels: []github.Label{{Name: "priority:high"}, {Name: "phase:development"}}},
			{Number: 2, State: "open", Labels: []github.Label{{Name: "priority:medium"}, {Name: "phase:development"}}},
			{Number: 3, State: "closed", Labels: []github.Label{{Name: "priority:high"}, {Name: "phase:testing"}}},
			{Number: 4, State: "open", Labels: []github.Label{{Name: "enhancement"}}},
		},
		labels: []github.Label{{Name: "priority:high"}, {Name: "priority:medium"}, {Name: "priority:low"}},
	}

	tr := New(&fakePlanner{}, &fakeBuilds{}, api, nil)

	summary, err := tr.Summarize(context.Background(), "owner/blog")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	if summary.TotalIssues != 4 || summary.TotalLabels != 3 {
		t.Errorf("totals = %d issues / %d labels", summary.TotalIssues, summary.TotalLabels)
	}
	if summary.OpenIssues != 3 || summary.ClosedIssues != 1 {
		t.Errorf("open/closed = %d/%d, want 3/1", summary.OpenIssues, summary.ClosedIssues)
	}
	if summary.PriorityBreakdown["high"] != 2 || summary.PriorityBreakdown["medium"] != 1 || summary.PriorityBreakdown["low"] != 0 {
		t.Errorf("priority breakdown = %v", summary.PriorityBreakdown)
	}
	if summary.PhaseBreakdown["development"] != 2 || summary.PhaseBreakdown["testing"] != 1 {
		t.Errorf("phase breakdown = %v", summary.PhaseBreakdown)
	}
}

// stubExtractor feeds a canned AI tree into the real parser.
type stubExtractor struct {
	tree map[string]any
}

func (s *stubExtractor) ExtractStructured(_ context.Context, _, _ string) (map[string]any, error) {
	return s.tree, nil
}

// stubGitHub backs the real builder with in-memory creation.
type stubGitHub struct {
	issueCount int
}

func (s *stubGitHub) CreateLabel(_ context.Context, _, name, color, description string) (*github.Label, error) {
	return &github.Label{Name: name, Color: color, Description: description}, nil
}

func (s *stubGitHub) CreateIssue(_ context.Context, _, title, body string, labels, _ []string) (*github.Issue, error) {
	s.issueCount++
	return &github.Issue{Number: s.issueCount, NodeID: "n", Title: title, State: "open"}, nil
}

func (s *stubGitHub) OwnerID(_ context.Context, _ string) (string, error) { return "OWNER", nil }

func (s *stubGitHub) CreateProjectBoard(_ context.Context, _, title, _ string) (*github.ProjectBoard, error) {
	return &github.ProjectBoard{ID: "PVT", Title: title, URL: "https://github.com/users/o/projects/9"}, nil
}

func (s *stubGitHub) AddIssueToProject(_ context.Context, _, _ string) (*github.AddItemResult, error) {
	return &github.AddItemResult{ItemID: "item", OK: true}, nil
}

func TestRunWithRealParserAndBuilder(t *testing.T) {
	tree := map[string]any{
		"project_name": "Blog",
		"labels": []any{
			map[string]any{"name": "backend", "color": "0000ff"},
			map[string]any{"name": "frontend", "color": "00ff00"},
		},
		"tasks": []any{
			map[string]any{"title": "Set up repository", "priority": "high", "effort": "1-day", "type": "devops", "phase": "Planning"},
			map[string]any{"title": "Design data model", "priority": "high", "effort": "3-days", "type": "feature", "phase": "Planning"},
			map[string]any{"title": "Build post editor", "priority": "medium", "effort": "1-week", "type": "feature", "phase": "Development"},
			map[string]any{"title": "Write integration tests", "priority": "medium", "effort": "3-days", "type": "testing", "phase": "Testing"},
			map[string]any{"title": "Deploy to production", "priority": "low", "effort": "1-day", "type": "devops", "phase": "Deployment"},
		},
	}

	gh := &stubGitHub{}
	tr := New(
		plan.NewParser(&stubExtractor{tree: tree}, nil),
		builder.New(gh, nil),
		&fakeRepoAPI{repo: &github.Repository{FullName: "owner/blog"}},
		nil,
	)

	result, err := tr.Run(context.Background(), RunOptions{
		Repo:        "owner/blog",
		Description: "Build a blog",
		Model:       "test-model",
		MaxTasks:    5,
		CreateBoard: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.TasksCreated != 5 {
		t.Errorf("tasks created = %d, want 5", result.TasksCreated)
	}
	// 2 supplied labels + 3 guaranteed priority labels
	if result.LabelsCreated != 5 {
		t.Errorf("labels created = %d, want 5", result.LabelsCreated)
	}
	if result.PhaseCount != 4 {
		t.Errorf("phase count = %d, want the 4 default phases", result.PhaseCount)
	}
	if result.Summary != "A software project: Blog" {
		t.Errorf("summary = %q", result.Summary)
	}

	for _, issue := range result.Issues {
		if issue.Priority == "" || issue.Effort == "" || issue.Phase == "" || issue.Type == "" {
			t.Errorf("issue #%d missing echoed metadata: %+v", issue.Issue.Number, issue)
		}
	}
	if result.ProjectURL == "" {
		t.Error("project URL should be set")
	}
}

type recordingProgress struct {
	steps  []string
	done   []string
	failed []error
}

func (r *recordingProgress) Step(name string)       { r.steps = append(r.steps, name) }
func (r *recordingProgress) StepDone(detail string) { r.done = append(r.done, detail) }
func (r *recordingProgress) StepFailed(err error)   { r.failed = append(r.failed, err) }

func TestRunReportsProgress(t *testing.T) {
	planner := &fakePlanner{plan: blogPlan(2)}
	tr := New(planner, &fakeBuilds{}, &fakeRepoAPI{repo: &github.Repository{FullName: "o/r"}}, nil)

	rec := &recordingProgress{}
	tr.SetProgress(rec)

	if _, err := tr.Run(context.Background(), RunOptions{Repo: "o/r", Description: "x", CreateBoard: true}); err != nil {
		t.Fatal(err)
	}

	// parse, repo, labels, issues, board
	if len(rec.steps) != 5 {
		t.Errorf("steps = %v, want 5 stages", rec.steps)
	}
	if len(rec.done) != 5 || len(rec.failed) != 0 {
		t.Errorf("done = %v, failed = %v", rec.done, rec.failed)
	}
}

func TestSummarizeRepositoryNotFound(t *testing.T) {
	tr := New(&fakePlanner{}, &fakeBuilds{}, &fakeRepoAPI{repo: nil}, nil)

	if _, err := tr.Summarize(context.Background(), "owner/missing"); err == nil {
		t.Fatal("expected error for missing repository")
	}
}
