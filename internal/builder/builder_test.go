package builder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/issueforge/internal/github"
	"github.com/felixgeelhaar/issueforge/internal/plan"
)

// fakeAPI is a scriptable stand-in for the GitHub client.
type fakeAPI struct {
	failLabels  map[string]bool
	failIssues  map[string]bool
	ownerErr    error
	boardErr    error
	addErr      error
	addRejected bool

	labelCalls []string
	issueCalls []createIssueCall
	addCalls   []string
}

type createIssueCall struct {
	title  string
	body   string
	labels []string
}

func (f *fakeAPI) CreateLabel(_ context.Context, _, name, color, description string) (*github.Label, error) {
	f.labelCalls = append(f.labelCalls, name)
	if f.failLabels[name] {
		return nil, errors.New("label boom")
	}
	return &github.Label{Name: name, Color: color, Description: description}, nil
}

func (f *fakeAPI) CreateIssue(_ context.Context, _, title, body string, labels, _ []string) (*github.Issue, error) {
	f.issueCalls = append(f.issueCalls, createIssueCall{title: title, body: body, labels: labels})
	if f.failIssues[title] {
		return nil, errors.New("issue boom")
	}
	return &github.Issue{
		Number: len(f.issueCalls),
		NodeID: "node-" + title,
		Title:  title,
		State:  "open",
	}, nil
}

func (f *fakeAPI) OwnerID(_ context.Context, _ string) (string, error) {
	if f.ownerErr != nil {
		return "", f.ownerErr
	}
	return "OWNER_ID", nil
}

func (f *fakeAPI) CreateProjectBoard(_ context.Context, _, title, _ string) (*github.ProjectBoard, error) {
	if f.boardErr != nil {
		return nil, f.boardErr
	}
	return &github.ProjectBoard{ID: "PVT_1", Title: title, URL: "https://github.com/users/o/projects/1"}, nil
}

func (f *fakeAPI) AddIssueToProject(_ context.Context, _, contentID string) (*github.AddItemResult, error) {
	f.addCalls = append(f.addCalls, contentID)
	if f.addErr != nil {
		return nil, f.addErr
	}
	if f.addRejected {
		return &github.AddItemResult{OK: false, Errors: "content not found"}, nil
	}
	return &github.AddItemResult{ItemID: "item-" + contentID, OK: true}, nil
}

func TestCreateLabelsBestEffort(t *testing.T) {
	api := &fakeAPI{failLabels: map[string]bool{"bad": true}}
	b := New(api, nil)

	result := b.CreateLabels(context.Background(), "owner/repo", []plan.Label{
		{Name: "good", Color: "ff0000"},
		{Name: "bad", Color: "00ff00"},
		{Name: "also-good", Color: "0000ff"},
	})

	if len(result.Succeeded) != 2 {
		t.Errorf("succeeded = %d, want 2", len(result.Succeeded))
	}
	if len(result.Failed) != 1 || result.Failed[0].Name != "bad" {
		t.Errorf("failed = %+v, want one failure for 'bad'", result.Failed)
	}
	// a failing item must not stop the batch
	if len(api.labelCalls) != 3 {
		t.Errorf("label calls = %d, want 3", len(api.labelCalls))
	}
}

type recordingBar struct {
	total     int
	succeeded int
	failed    int
	finished  bool
}

func (r *recordingBar) Increment(success bool) {
	if success {
		r.succeeded++
	} else {
		r.failed++
	}
}

func (r *recordingBar) Finish() { r.finished = true }

func TestBatchProgressReporting(t *testing.T) {
	api := &fakeAPI{failLabels: map[string]bool{"bad": true}}
	b := New(api, nil)

	var bars []*recordingBar
	b.SetBatchProgress(func(total int) BatchProgress {
		bar := &recordingBar{total: total}
		bars = append(bars, bar)
		return bar
	})

	b.CreateLabels(context.Background(), "owner/repo", []plan.Label{
		{Name: "good", Color: "ff0000"},
		{Name: "bad", Color: "00ff00"},
	})
	b.CreateIssues(context.Background(), "owner/repo", []plan.Task{
		{Title: "First task", Priority: plan.PriorityHigh, Effort: plan.EffortOneDay, Type: plan.TypeFeature, Phase: "Planning"},
	})

	if len(bars) != 2 {
		t.Fatalf("got %d bars, want one per batch", len(bars))
	}
	labels := bars[0]
	if labels.total != 2 || labels.succeeded != 1 || labels.failed != 1 || !labels.finished {
		t.Errorf("label bar = %+v, want total 2, 1 succeeded, 1 failed, finished", labels)
	}
	issues := bars[1]
	if issues.total != 1 || issues.succeeded != 1 || issues.failed != 0 || !issues.finished {
		t.Errorf("issue bar = %+v, want total 1, 1 succeeded, finished", issues)
	}

	// an empty batch must not construct a bar
	b.CreateLabels(context.Background(), "owner/repo", nil)
	if len(bars) != 2 {
		t.Errorf("got %d bars after empty batch, want still 2", len(bars))
	}
}

func TestCreateIssuesBestEffort(t *testing.T) {
	api := &fakeAPI{failIssues: map[string]bool{"Broken task": true}}
	b := New(api, nil)

	tasks := []plan.Task{
		{Title: "First task", Priority: plan.PriorityHigh, Effort: plan.EffortOneDay, Type: plan.TypeFeature, Phase: "Planning"},
		{Title: "Broken task", Priority: plan.PriorityLow, Effort: plan.EffortOneWeek, Type: plan.TypeBug, Phase: "Development"},
		{Title: "Last task", Priority: plan.PriorityMedium, Effort: plan.EffortThreeDay, Type: plan.TypeTesting, Phase: "Testing"},
	}

	result := b.CreateIssues(context.Background(), "owner/repo", tasks)

	if len(result.Succeeded) != 2 {
		t.Fatalf("succeeded = %d, want 2", len(result.Succeeded))
	}
	if len(result.Failed) != 1 || result.Failed[0].Name != "Broken task" {
		t.Errorf("failed = %+v, want one failure for 'Broken task'", result.Failed)
	}

	first := result.Succeeded[0]
	if first.Priority != plan.PriorityHigh || first.Effort != plan.EffortOneDay ||
		first.Phase != "Planning" || first.Type != plan.TypeFeature {
		t.Errorf("task metadata must be echoed onto the created issue: %+v", first)
	}
	if first.Issue.NodeID == "" {
		t.Error("created issue should carry its node ID for board linking")
	}
}

func TestCreateIssuesLabelSet(t *testing.T) {
	api := &fakeAPI{}
	b := New(api, nil)

	b.CreateIssues(context.Background(), "owner/repo", []plan.Task{{
		Title:    "Set up CI",
		Priority: plan.PriorityHigh,
		Effort:   plan.EffortOneDay,
		Type:     plan.TypeDevOps,
		Phase:    "Quality Assurance",
		Labels:   []string{"infra"},
	}})

	want := []string{"priority:high", "effort:1-day", "phase:quality-assurance", "type:devops", "infra"}
	got := api.issueCalls[0].labels
	if len(got) != len(want) {
		t.Fatalf("labels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("labels[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCreateProjectBoard(t *testing.T) {
	api := &fakeAPI{}
	b := New(api, nil)

	issues := []CreatedIssue{
		{Issue: github.Issue{Number: 1, NodeID: "n1"}},
		{Issue: github.Issue{Number: 2, NodeID: "n2"}},
	}

	result, err := b.CreateProjectBoard(context.Background(), "owner/repo", "My Project", issues)
	if err != nil {
		t.Fatalf("CreateProjectBoard() error = %v", err)
	}
	if result.ItemsAdded != 2 || result.ItemsTotal != 2 {
		t.Errorf("items = %d/%d, want 2/2", result.ItemsAdded, result.ItemsTotal)
	}
	if result.URL == "" {
		t.Error("board URL should be returned")
	}
	if len(api.addCalls) != 2 {
		t.Errorf("add calls = %d, want 2", len(api.addCalls))
	}
}

func TestCreateProjectBoardLinkFailuresAreNotFatal(t *testing.T) {
	api := &fakeAPI{addRejected: true}
	b := New(api, nil)

	result, err := b.CreateProjectBoard(context.Background(), "owner/repo", "My Project", []CreatedIssue{
		{Issue: github.Issue{Number: 1, NodeID: "n1"}},
	})
	if err != nil {
		t.Fatalf("link failures must not fail the board: %v", err)
	}
	if result.ItemsAdded != 0 || result.ItemsTotal != 1 {
		t.Errorf("items = %d/%d, want 0/1", result.ItemsAdded, result.ItemsTotal)
	}
}

func TestCreateProjectBoardOwnerLookupFailure(t *testing.T) {
	api := &fakeAPI{ownerErr: errors.New("owner not found")}
	b := New(api, nil)

	if _, err := b.CreateProjectBoard(context.Background(), "owner/repo", "My Project", nil); err == nil {
		t.Fatal("expected error when the owner lookup fails")
	}
}

func TestBuildIssueBody(t *testing.T) {
	task := plan.Task{
		Title:        "Implement auth",
		Description:  "Add session-based login.",
		Phase:        "Development",
		Priority:     plan.PriorityHigh,
		Effort:       plan.EffortOneWeek,
		Type:         plan.TypeFeature,
		Dependencies: []string{"Set up database", "Design schema"},
	}

	body := BuildIssueBody(task)

	for _, want := range []string{
		"Add session-based login.",
		"## 📋 Task Details",
		"**Phase:** Development",
		"**Priority:** 🔴 High",
		"**Estimated Effort:** 📅 1-week",
		"**Type:** ✨ Feature",
		"## 🔗 Dependencies",
		"- [ ] Set up database",
		"- [ ] Design schema",
		"## ✅ Acceptance Criteria",
		"- [ ] Task objective is clearly defined",
		generatedFooter,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}

	if body != BuildIssueBody(task) {
		t.Error("body rendering must be deterministic")
	}
}

func TestBuildIssueBodyOmitsEmptySections(t *testing.T) {
	body := BuildIssueBody(plan.Task{
		Title:    "Bare task",
		Priority: plan.PriorityLow,
		Effort:   plan.EffortOneDay,
		Type:     plan.TypeBug,
	})

	if strings.Contains(body, "## 🔗 Dependencies") {
		t.Error("dependencies section should be omitted when empty")
	}
	if strings.Contains(body, "**Phase:**") {
		t.Error("phase line should be omitted when the task has no phase")
	}
	if !strings.Contains(body, "**Priority:** ⚪ Low") {
		t.Error("low priority should render with its emoji")
	}
	if !strings.Contains(body, "**Type:** 🐛 Bug") {
		t.Error("bug type should render with its emoji")
	}
}
