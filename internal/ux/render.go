package ux

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	forgeerrors "github.com/felixgeelhaar/issueforge/internal/errors"
	"github.com/felixgeelhaar/issueforge/internal/tracker"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))
)

// RenderRunResult renders the outcome of a generation run for terminals.
func RenderRunResult(result *tracker.RunResult) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("🚀 "+result.ProjectName) + "\n\n")
	if result.Summary != "" {
		s.WriteString(result.Summary + "\n\n")
	}

	s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Repository:"), result.Repository))
	s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Issues created:"), headerStyle.Render(fmt.Sprintf("%d", result.TasksCreated))))
	if result.TasksFailed > 0 {
		s.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Issues failed:"), errorStyle.Render(fmt.Sprintf("%d", result.TasksFailed))))
	}
	s.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Labels created:"), result.LabelsCreated))
	s.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Phases:"), result.PhaseCount))

	if len(result.Issues) > 0 {
		s.WriteString("\n" + labelStyle.Render("Created issues:") + "\n")
		for _, issue := range result.Issues {
			s.WriteString(fmt.Sprintf("  #%-4d %s [%s]\n", issue.Issue.Number, issue.Issue.Title, issue.Priority))
		}
	}

	if result.ProjectURL != "" {
		s.WriteString("\n" + successStyle.Render("📊 Project board: "+result.ProjectURL) + "\n")
	}

	return s.String()
}

// RenderSummary renders the status roll-up of a repository.
func RenderSummary(summary *tracker.ProjectSummary) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("📊 "+summary.Repository) + "\n\n")

	s.WriteString(fmt.Sprintf("%s %d (%d open, %d closed)\n",
		labelStyle.Render("Issues:"),
		summary.TotalIssues, summary.OpenIssues, summary.ClosedIssues))
	s.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Labels:"), summary.TotalLabels))

	s.WriteString("\n" + labelStyle.Render("Priority breakdown:") + "\n")
	for _, priority := range []string{"high", "medium", "low"} {
		s.WriteString(fmt.Sprintf("  %-8s %d\n", priority+":", summary.PriorityBreakdown[priority]))
	}

	if len(summary.PhaseBreakdown) > 0 {
		phases := make([]string, 0, len(summary.PhaseBreakdown))
		for phase := range summary.PhaseBreakdown {
			phases = append(phases, phase)
		}
		sort.Strings(phases)

		s.WriteString("\n" + labelStyle.Render("Phase breakdown:") + "\n")
		for _, phase := range phases {
			s.WriteString(fmt.Sprintf("  %-14s %d\n", phase+":", summary.PhaseBreakdown[phase]))
		}
	}

	return s.String()
}

// RenderError renders an error with its suggestions for terminals.
func RenderError(err error) string {
	var s strings.Builder

	var forgeErr *forgeerrors.ForgeError
	if errors.As(err, &forgeErr) {
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ [%s] %s", forgeErr.Code, forgeErr.Message)) + "\n")
		if forgeErr.Cause != nil {
			s.WriteString(labelStyle.Render("  cause: "+forgeErr.Cause.Error()) + "\n")
		}
		for _, suggestion := range forgeErr.Suggestions {
			s.WriteString("  💡 " + suggestion + "\n")
		}
		if forgeErr.DocsURL != "" {
			s.WriteString(labelStyle.Render("  docs: "+forgeErr.DocsURL) + "\n")
		}
		return s.String()
	}

	s.WriteString(errorStyle.Render("✗ "+err.Error()) + "\n")
	return s.String()
}
