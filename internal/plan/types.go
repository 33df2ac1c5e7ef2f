// Package plan turns a free-text project description into a validated
// ProjectPlan by prompting an AI model for structured extraction and
// normalizing whatever comes back.
package plan

// Priority is the urgency bucket of a task
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is assigned when the model supplies an invalid priority
const DefaultPriority = PriorityMedium

// Valid reports whether the priority is one of the accepted values
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Effort is a coarse time estimate for a task
type Effort string

const (
	EffortOneDay   Effort = "1-day"
	EffortThreeDay Effort = "3-days"
	EffortOneWeek  Effort = "1-week"
	EffortTwoWeeks Effort = "2-weeks"
)

// DefaultEffort is assigned when the model supplies an invalid effort
const DefaultEffort = EffortThreeDay

// Valid reports whether the effort is one of the accepted values
func (e Effort) Valid() bool {
	switch e {
	case EffortOneDay, EffortThreeDay, EffortOneWeek, EffortTwoWeeks:
		return true
	}
	return false
}

// TaskType categorizes the kind of work a task represents
type TaskType string

const (
	TypeFeature       TaskType = "feature"
	TypeBug           TaskType = "bug"
	TypeDocumentation TaskType = "documentation"
	TypeTesting       TaskType = "testing"
	TypeDevOps        TaskType = "devops"
	TypeResearch      TaskType = "research"
)

// DefaultTaskType is assigned when the model supplies an invalid type
const DefaultTaskType = TypeFeature

// Valid reports whether the task type is one of the accepted values
func (t TaskType) Valid() bool {
	switch t {
	case TypeFeature, TypeBug, TypeDocumentation, TypeTesting, TypeDevOps, TypeResearch:
		return true
	}
	return false
}

// Task is a single unit of work extracted from the project description.
// Dependencies reference other tasks by title and stay advisory; they are
// rendered as a checklist, never resolved into issue references.
type Task struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Phase        string   `json:"phase"`
	Priority     Priority `json:"priority"`
	Effort       Effort   `json:"effort"`
	Type         TaskType `json:"type"`
	Labels       []string `json:"labels"`
	Dependencies []string `json:"dependencies"`
}

// Phase is a logical grouping of tasks within the project lifecycle
type Phase struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// Label is a named, colored tag applied to issues
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// ProjectPlan is the canonical, validated structure produced from raw AI
// output. It lives only for the duration of one run.
type ProjectPlan struct {
	Name    string  `json:"project_name"`
	Summary string  `json:"project_summary"`
	Phases  []Phase `json:"phases"`
	Tasks   []Task  `json:"tasks"`
	Labels  []Label `json:"labels"`
}

// DefaultPhases is the lifecycle used when the model omits phases
func DefaultPhases() []Phase {
	return []Phase{
		{Name: "Planning", Description: "Project planning and requirements gathering", Order: 1},
		{Name: "Development", Description: "Core development and implementation", Order: 2},
		{Name: "Testing", Description: "Testing and quality assurance", Order: 3},
		{Name: "Deployment", Description: "Deployment and release preparation", Order: 4},
	}
}

// EssentialLabels are guaranteed present in every plan, with fixed colors
func EssentialLabels() []Label {
	return []Label{
		{Name: "priority:high", Color: "ff0000", Description: "High priority task"},
		{Name: "priority:medium", Color: "ffa500", Description: "Medium priority task"},
		{Name: "priority:low", Color: "808080", Description: "Low priority task"},
	}
}
