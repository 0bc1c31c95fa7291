package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/careerpilot/server/internal/agent/model"
)

//go:embed template/supervisor_prompt.txt
var supervisorSystemPrompt string

// RouteToolName is the routing tool bound to the supervisor model.
const RouteToolName = "route_to_agent"

// destinationDescriptions is what the supervisor prompt says about each agent.
var destinationDescriptions = map[string]string{
	model.AgentDataManager:     "stores and updates the user's resume text and contact details",
	model.AgentResumeGenerator: "generates a resume from the stored profile",
	model.AgentCoverLetter:     "writes a cover letter for a specific job",
	model.AgentProfileReader:   "reports what is currently stored about the user",
	model.AgentJobPosting:      "analyzes and saves job postings",
}

// RenderSupervisorSystem renders the supervisor system prompt via the
// Eino prompt component (enables prompt callbacks).
func RenderSupervisorSystem(ctx context.Context) (string, error) {
	var dests strings.Builder
	for _, name := range model.KnownAgents() {
		dests.WriteString(fmt.Sprintf("- %s: %s\n", name, destinationDescriptions[name]))
	}

	// Safely render known tokens only to avoid interfering with braces in template
	content := strings.NewReplacer(
		"{route_tool}", RouteToolName,
		"{destinations}", strings.TrimRight(dests.String(), "\n"),
	).Replace(supervisorSystemPrompt)

	return renderSystem(ctx, content, "supervisor prompt callbacks")
}

// renderSystem wraps a rendered system prompt through the Eino prompt
// component using a messages placeholder so prompt callbacks fire.
func renderSystem(ctx context.Context, content, label string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("system_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"system_messages": []*schema.Message{schema.SystemMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", label, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("%s: empty result", label)
	}
	return msgs[0].Content, nil
}
