package builder

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/issueforge/internal/plan"
)

const generatedFooter = "*This issue was automatically generated by issueforge*"

var priorityEmoji = map[plan.Priority]string{
	plan.PriorityHigh:   "🔴",
	plan.PriorityMedium: "🟡",
	plan.PriorityLow:    "⚪",
}

var effortEmoji = map[plan.Effort]string{
	plan.EffortOneDay:   "⚡",
	plan.EffortThreeDay: "🔨",
	plan.EffortOneWeek:  "📅",
	plan.EffortTwoWeeks: "📆",
}

var typeEmoji = map[plan.TaskType]string{
	plan.TypeFeature:       "✨",
	plan.TypeBug:           "🐛",
	plan.TypeDocumentation: "📝",
	plan.TypeTesting:       "🧪",
	plan.TypeDevOps:        "⚙️",
	plan.TypeResearch:      "🔬",
}

// BuildIssueBody renders the markdown body for a task's issue. The output
// is deterministic for a given task.
func BuildIssueBody(task plan.Task) string {
	var parts []string

	if task.Description != "" {
		parts = append(parts, task.Description, "")
	}

	parts = append(parts, "## 📋 Task Details", "")
	if task.Phase != "" {
		parts = append(parts, fmt.Sprintf("**Phase:** %s", task.Phase))
	}
	parts = append(parts,
		fmt.Sprintf("**Priority:** %s %s", emojiFor(priorityEmoji, task.Priority, "🟡"), titleCase(string(task.Priority))),
		fmt.Sprintf("**Estimated Effort:** %s %s", emojiFor(effortEmoji, task.Effort, "🔨"), task.Effort),
		fmt.Sprintf("**Type:** %s %s", emojiFor(typeEmoji, task.Type, "✨"), titleCase(string(task.Type))),
	)

	if len(task.Dependencies) > 0 {
		parts = append(parts, "", "## 🔗 Dependencies", "")
		for _, dep := range task.Dependencies {
			parts = append(parts, fmt.Sprintf("- [ ] %s", dep))
		}
	}

	parts = append(parts,
		"",
		"## ✅ Acceptance Criteria",
		"",
		"- [ ] Task objective is clearly defined",
		"- [ ] Implementation meets requirements",
		"- [ ] Code is properly tested",
		"- [ ] Documentation is updated (if needed)",
		"",
		"---",
		generatedFooter,
	)

	return strings.Join(parts, "\n")
}

// IssueLabels is the label set applied to a task's issue: the metadata
// labels derived from the task plus any custom labels it carries. Phase
// names are slugged (lowercased, spaces to hyphens).
func IssueLabels(task plan.Task) []string {
	labels := []string{
		fmt.Sprintf("priority:%s", task.Priority),
		fmt.Sprintf("effort:%s", task.Effort),
	}
	if task.Phase != "" {
		slug := strings.ReplaceAll(strings.ToLower(task.Phase), " ", "-")
		labels = append(labels, fmt.Sprintf("phase:%s", slug))
	}
	labels = append(labels, fmt.Sprintf("type:%s", task.Type))
	labels = append(labels, task.Labels...)
	return labels
}

func emojiFor[K comparable](m map[K]string, key K, fallback string) string {
	if e, ok := m[key]; ok {
		return e
	}
	return fallback
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
