package plan

import "fmt"

// extractionPrompt builds the natural-language prompt that instructs the
// model to return the project structure as JSON. The schema and the
// constraint list are part of the wire contract with the model: changing
// either changes what Normalize has to tolerate.
func extractionPrompt(description string, maxTasks int) string {
	return fmt.Sprintf(`
Analyze this project description and extract structured information for GitHub project management.

PROJECT DESCRIPTION:
%s

Extract the following information in JSON format:

{
    "project_name": "Concise project name (max 50 chars)",
    "project_summary": "Brief 1-2 sentence summary",
    "phases": [
        {
            "name": "Phase name",
            "description": "Phase description",
            "order": 1
        }
    ],
    "tasks": [
        {
            "title": "Clear, actionable task title",
            "description": "Detailed task description with acceptance criteria",
            "phase": "Phase name this task belongs to",
            "priority": "high|medium|low",
            "effort": "1-day|3-days|1-week|2-weeks",
            "labels": ["label1", "label2"],
            "dependencies": ["task_title_dependency"],
            "type": "feature|bug|documentation|testing|devops|research"
        }
    ],
    "labels": [
        {
            "name": "label-name",
            "color": "hex-color-without-hash",
            "description": "Label description"
        }
    ]
}

REQUIREMENTS:
1. Generate maximum %d tasks
2. Create logical phases (planning, development, testing, deployment, etc.)
3. Assign realistic effort estimates
4. Include comprehensive labels for:
   - Phases (phase:planning, phase:backend, etc.)
   - Priorities (priority:high, priority:medium, priority:low)
   - Effort levels (effort:1-day, effort:3-days, etc.)
   - Task types (type:feature, type:bug, etc.)
   - Technology-specific labels
5. Use semantic colors for labels:
   - Red (ff0000) for high priority/critical
   - Orange (ffa500) for medium priority/warnings
   - Green (00ff00) for completed/success
   - Blue (0000ff) for features/information
   - Purple (800080) for enhancement/nice-to-have
   - Gray (808080) for low priority/maintenance
6. Make tasks specific and actionable
7. Include dependencies where logical
8. Ensure tasks cover the full project lifecycle

Focus on creating a realistic, well-organized project structure that a development team could immediately start working on.
`, description, maxTasks)
}
