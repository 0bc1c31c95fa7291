package nodes

import (
	"strings"

	"github.com/careerpilot/server/internal/agent/model"
	"github.com/cloudwego/eino/schema"
)

// Graph node names. Specialized agent nodes are named after their
// model.Agent* constants; these are the structural nodes around them.
const (
	NodeTurnInit   = "turn_init"
	NodeSupervisor = "supervisor"
	NodeFinalize   = "finalize"
)

// ===== Small helpers to keep node functions simple/readable =====

// filterModelHistory keeps only the turns the model should see:
// human/ai/tool messages. System messages are re-rendered per node, so
// persisted or accumulated ones are dropped.
func filterModelHistory(msgs []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.User, schema.Assistant, schema.Tool:
			out = append(out, m)
		}
	}
	return out
}

// truncateResult bounds a tool result to a prefix for storage in a
// CompletedAction or a skip-message preview.
func truncateResult(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// toSchemaToolCalls rebuilds provider-shaped tool calls from validated
// ones so the assistant message that requested them stays coherent.
func toSchemaToolCalls(calls []model.ValidatedToolCall) []schema.ToolCall {
	out := make([]schema.ToolCall, 0, len(calls))
	for _, c := range calls {
		args := "{}"
		if len(c.Args) > 0 {
			if b, err := marshalArgs(c.Args); err == nil {
				args = b
			}
		}
		out = append(out, schema.ToolCall{
			ID:   c.ID,
			Type: "function",
			Function: schema.FunctionCall{
				Name:      c.Name,
				Arguments: args,
			},
		})
	}
	return out
}

// lastAssistantContent returns the content of the final assistant
// message, the turn's user-visible outcome.
func lastAssistantContent(msgs []*schema.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m == nil || m.Role != schema.Assistant {
			continue
		}
		if strings.TrimSpace(m.Content) != "" {
			return m.Content
		}
	}
	return ""
}

// LastAssistantContent is the exported form used by the graph runner.
func LastAssistantContent(msgs []*schema.Message) string {
	return lastAssistantContent(msgs)
}
