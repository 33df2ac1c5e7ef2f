package plan

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/issueforge/internal/errors"
	"github.com/felixgeelhaar/issueforge/internal/log"
)

const (
	maxNameLen       = 50
	maxTitleLen      = 100
	maxLabelDescLen  = 100
	defaultTaskPhase = "Development"
	fallbackName     = "Untitled Project"
	fallbackHexColor = "808080"
	DefaultMaxTasks  = 20
)

var (
	nameCleanRE = regexp.MustCompile(`[^\w\s-]`)
	hexColorRE  = regexp.MustCompile(`^[0-9a-f]{6}$`)
)

// Extractor is the AI call Parse depends on; satisfied by the openrouter
// client and by stubs in tests.
type Extractor interface {
	ExtractStructured(ctx context.Context, prompt, model string) (map[string]any, error)
}

// Parser turns project descriptions into validated ProjectPlans
type Parser struct {
	ai     Extractor
	logger *log.Logger
}

// NewParser creates a Parser backed by the given extractor
func NewParser(ai Extractor, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Parser{ai: ai, logger: logger}
}

// Parse prompts the model and normalizes the reply into a ProjectPlan.
// One failed AI call aborts the run; there are no retries.
func (p *Parser) Parse(ctx context.Context, description, model string, maxTasks int) (*ProjectPlan, error) {
	if maxTasks <= 0 {
		maxTasks = DefaultMaxTasks
	}

	tree, err := p.ai.ExtractStructured(ctx, extractionPrompt(description, maxTasks), model)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailed, "failed to parse project", err)
	}

	plan, err := Normalize(tree)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("project parsed",
		"project", plan.Name,
		"tasks", len(plan.Tasks),
		"labels", len(plan.Labels),
		"phases", len(plan.Phases))

	return plan, nil
}

// Normalize converts the loosely-typed JSON tree from the model into a
// ProjectPlan, coercing every field to the documented invariants. Invalid
// values are silently replaced with defaults, never rejected; only the
// absence of a required top-level field fails.
func Normalize(tree map[string]any) (*ProjectPlan, error) {
	for _, field := range []string{"project_name", "tasks", "labels"} {
		if _, ok := tree[field]; !ok {
			return nil, errors.NewParseMissingFieldError(field)
		}
	}

	plan := &ProjectPlan{
		Name:   normalizeName(asString(tree["project_name"])),
		Tasks:  normalizeTasks(asSlice(tree["tasks"])),
		Labels: normalizeLabels(asSlice(tree["labels"])),
		Phases: normalizePhases(asSlice(tree["phases"])),
	}

	plan.Summary = strings.TrimSpace(asString(tree["project_summary"]))
	if plan.Summary == "" {
		plan.Summary = fmt.Sprintf("A software project: %s", plan.Name)
	}

	return plan, nil
}

func normalizeName(name string) string {
	cleaned := strings.TrimSpace(nameCleanRE.ReplaceAllString(strings.TrimSpace(name), ""))
	if cleaned == "" {
		return fallbackName
	}
	return truncate(cleaned, maxNameLen)
}

func normalizeTasks(raw []any) []Task {
	tasks := make([]Task, 0, len(raw))

	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		title := strings.TrimSpace(asString(obj["title"]))
		if title == "" {
			continue
		}

		task := Task{
			Title:        truncate(title, maxTitleLen),
			Description:  strings.TrimSpace(asString(obj["description"])),
			Phase:        strings.TrimSpace(asString(obj["phase"])),
			Priority:     coercePriority(asString(obj["priority"])),
			Effort:       coerceEffort(asString(obj["effort"])),
			Type:         coerceType(asString(obj["type"])),
			Labels:       normalizeStringList(obj["labels"]),
			Dependencies: normalizeStringList(obj["dependencies"]),
		}
		if task.Phase == "" {
			task.Phase = defaultTaskPhase
		}

		tasks = append(tasks, task)
	}

	return tasks
}

func normalizeLabels(raw []any) []Label {
	labels := make([]Label, 0, len(raw)+3)
	seen := make(map[string]bool, len(raw))

	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		name := strings.TrimSpace(asString(obj["name"]))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		labels = append(labels, Label{
			Name:        name,
			Color:       coerceColor(asString(obj["color"])),
			Description: truncate(strings.TrimSpace(asString(obj["description"])), maxLabelDescLen),
		})
	}

	for _, essential := range EssentialLabels() {
		if !seen[essential.Name] {
			labels = append(labels, essential)
		}
	}

	return labels
}

func normalizePhases(raw []any) []Phase {
	phases := make([]Phase, 0, len(raw))

	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		phases = append(phases, Phase{
			Name:        strings.TrimSpace(asString(obj["name"])),
			Description: strings.TrimSpace(asString(obj["description"])),
			Order:       asInt(obj["order"]),
		})
	}

	if len(phases) == 0 {
		return DefaultPhases()
	}
	return phases
}

func normalizeStringList(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, entry := range raw {
		s := strings.TrimSpace(asString(entry))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func coercePriority(s string) Priority {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p
	}
	return DefaultPriority
}

func coerceEffort(s string) Effort {
	e := Effort(strings.ToLower(strings.TrimSpace(s)))
	if e.Valid() {
		return e
	}
	return DefaultEffort
}

func coerceType(s string) TaskType {
	t := TaskType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return DefaultTaskType
}

// coerceColor lowercases, strips an optional leading '#', and falls back
// to gray for anything that is not six hex digits.
func coerceColor(s string) string {
	color := strings.ToLower(strings.TrimSpace(s))
	color = strings.TrimPrefix(color, "#")
	if hexColorRE.MatchString(color) {
		return color
	}
	return fallbackHexColor
}

// truncate caps s at n code points. Slicing runes instead of bytes
// keeps a multi-byte character at the boundary intact.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case float64:
		return fmt.Sprintf("%v", s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
