package roadmaps

import (
	"strconv"
	"strings"
)

const promptPersona = "You are an expert learning coach."

// roadmapSchema is the literal shape the model is asked to produce. Field names must stay in sync
// with what the frontend renders (title, overview, totalDays, phases, resources, projects, successMetrics).
const roadmapSchema = `{
  "title": string,
  "overview": string,
  "totalDays": number,
  "phases": [
    {
      "name": string,
      "durationDays": number,
      "goals": [string],
      "topics": [
        {
          "name": string,
          "resources": [{"name": string, "url": string}]
        }
      ],
      "milestones": [string]
    }
  ],
  "resources": {
    "websites": [{"name": string, "url": string}],
    "courses": [{"name": string, "url": string}],
    "videos": [{"name": string, "url": string}],
    "books": [{"name": string, "url": string}],
    "githubProjects": [{"name": string, "url": string}]
  },
  "projects": [string],
  "successMetrics": [string]
}`

// BuildPrompt renders the generation prompt for one skill and time frame.
// skillName and numberOfDays are interpolated verbatim; the prompt is only ever sent as text.
func BuildPrompt(skillName string, numberOfDays int) string {
	days := strconv.Itoa(numberOfDays)

	var b strings.Builder
	b.WriteString(promptPersona)
	b.WriteString("\nGenerate a JSON object ONLY (no markdown, no code fences, no commentary) for a beginner-friendly learning roadmap to master \"")
	b.WriteString(skillName)
	b.WriteString("\" in ")
	b.WriteString(days)
	b.WriteString(" days.\n\nStrict JSON schema (all fields required):\n")
	b.WriteString(roadmapSchema)
	b.WriteString("\n\nGuidelines:\n")
	b.WriteString("- Keep it practical and achievable for " + days + " days\n")
	b.WriteString("- Balance theory with hands-on exercises\n")
	b.WriteString("- Ensure every topic includes at least 1-2 specific resources with working URLs\n")
	b.WriteString("- Also include a general resources section for broader learning\n")
	b.WriteString("- Make phase names and goals motivating\n")
	b.WriteString("- Output VALID JSON ONLY.")
	return b.String()
}
