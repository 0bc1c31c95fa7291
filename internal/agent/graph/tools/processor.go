package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/careerpilot/server/internal/agent/model"
)

// ProcessResumeResults consolidates the resume generator's tool results
// into a single assistant message instead of raw per-tool payloads.
// Generated resumes are rendered in full; template listings become a
// readable menu; anything else (errors, skip notices) passes through.
func ProcessResumeResults(calls []model.ValidatedToolCall, userID string, response *schema.Message, results []*schema.Message) string {
	var sections []string

	for i, call := range calls {
		if i >= len(results) || results[i] == nil {
			continue
		}
		raw := results[i].Content

		switch call.Name {
		case "generate_resume":
			var out GenerateResumeOutput
			if err := json.Unmarshal([]byte(raw), &out); err == nil && out.Resume != "" {
				sections = append(sections, fmt.Sprintf(
					"Here is your resume for the %s role (%s template):\n\n%s",
					out.TargetRole, out.TemplateID, strings.TrimSpace(out.Resume)))
				continue
			}
			sections = append(sections, raw)

		case "list_resume_templates":
			var out ListResumeTemplatesOutput
			if err := json.Unmarshal([]byte(raw), &out); err == nil && len(out.Templates) > 0 {
				var b strings.Builder
				b.WriteString("Available resume templates:\n")
				for _, t := range out.Templates {
					b.WriteString(fmt.Sprintf("- %s (%s): %s Best for: %s\n", t.Name, t.ID, t.Description, t.BestFor))
				}
				sections = append(sections, strings.TrimRight(b.String(), "\n"))
				continue
			}
			sections = append(sections, raw)

		default:
			sections = append(sections, raw)
		}
	}

	if len(sections) == 0 {
		return "I couldn't produce a resume result this time. Could you try again?"
	}
	return strings.Join(sections, "\n\n")
}
