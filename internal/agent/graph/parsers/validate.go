package parsers

import (
	"encoding/json"
	"strings"

	"github.com/careerpilot/server/internal/agent/model"
	logx "github.com/careerpilot/server/pkg/logger"
	"github.com/cloudwego/eino/schema"
)

// RawToolCall is a tool invocation request before validation, as
// reconstructed from either a structured response or the inline-text
// extractor.
type RawToolCall struct {
	Name string
	Args map[string]any
	ID   string
	Kind string
}

// FromSchemaToolCalls converts provider tool calls into raw calls.
// Argument JSON that fails to parse degrades to an empty bag with a
// warning; it never aborts the conversion. The provider's "function"
// discriminator maps onto the internal tool_call kind.
func FromSchemaToolCalls(calls []schema.ToolCall) []RawToolCall {
	out := make([]RawToolCall, 0, len(calls))
	for _, c := range calls {
		raw := RawToolCall{
			Name: strings.TrimSpace(c.Function.Name),
			ID:   strings.TrimSpace(c.ID),
			Args: map[string]any{},
		}
		switch c.Type {
		case "", "function", model.ToolCallKind:
			raw.Kind = model.ToolCallKind
		default:
			raw.Kind = c.Type
		}
		if args := strings.TrimSpace(c.Function.Arguments); args != "" {
			var m map[string]any
			if err := json.Unmarshal([]byte(args), &m); err != nil {
				logx.Warn().
					Str("tool_name", raw.Name).
					Str("arguments", safeSnippet(args)).
					Msg("unparseable tool arguments; degrading to empty bag")
			} else {
				raw.Args = m
			}
		}
		out = append(out, raw)
	}
	return out
}

// ValidateToolCalls keeps only calls with a non-empty name, a non-empty
// id and the correct kind discriminator. Everything else is dropped with
// a warning, never fatally.
func ValidateToolCalls(raw []RawToolCall) []model.ValidatedToolCall {
	out := make([]model.ValidatedToolCall, 0, len(raw))
	for _, c := range raw {
		if c.Name == "" {
			logx.Warn().Str("tool_call_id", c.ID).Msg("dropping tool call with empty name")
			continue
		}
		if c.ID == "" {
			logx.Warn().Str("tool_name", c.Name).Msg("dropping tool call with empty id")
			continue
		}
		if c.Kind != model.ToolCallKind {
			logx.Warn().Str("tool_name", c.Name).Str("kind", c.Kind).Msg("dropping tool call with unexpected kind")
			continue
		}
		args := c.Args
		if args == nil {
			args = map[string]any{}
		}
		out = append(out, model.ValidatedToolCall{
			Name: c.Name,
			Args: args,
			ID:   c.ID,
			Kind: c.Kind,
		})
	}
	return out
}

const maxErrSnippet = 200

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
