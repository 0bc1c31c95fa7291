package parsers

import (
	"testing"

	"github.com/careerpilot/server/internal/agent/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSchemaToolCallsParsesArguments(t *testing.T) {
	raw := FromSchemaToolCalls([]schema.ToolCall{
		{
			ID:   "call_1",
			Type: "function",
			Function: schema.FunctionCall{
				Name:      "store_resume_text",
				Arguments: `{"resume_text":"ten years of Go"}`,
			},
		},
	})

	require.Len(t, raw, 1)
	assert.Equal(t, "store_resume_text", raw[0].Name)
	assert.Equal(t, model.ToolCallKind, raw[0].Kind)
	assert.Equal(t, "ten years of Go", raw[0].Args["resume_text"])
}

func TestFromSchemaToolCallsMalformedArgsDegradeToEmptyBag(t *testing.T) {
	raw := FromSchemaToolCalls([]schema.ToolCall{
		{
			ID:       "call_1",
			Function: schema.FunctionCall{Name: "generate_resume", Arguments: `{"template": modern`},
		},
	})

	require.Len(t, raw, 1)
	assert.Empty(t, raw[0].Args)
	assert.Equal(t, model.ToolCallKind, raw[0].Kind)
}

func TestValidateToolCallsDropsInvalid(t *testing.T) {
	raw := []RawToolCall{
		{Name: "good", ID: "id-1", Kind: model.ToolCallKind, Args: map[string]any{"a": 1.0}},
		{Name: "", ID: "id-2", Kind: model.ToolCallKind},
		{Name: "no_id", ID: "", Kind: model.ToolCallKind},
		{Name: "wrong_kind", ID: "id-3", Kind: "chat"},
	}

	valid := ValidateToolCalls(raw)

	require.Len(t, valid, 1)
	assert.Equal(t, "good", valid[0].Name)
	assert.Equal(t, "id-1", valid[0].ID)
}

func TestValidateToolCallsNilArgsBecomeEmptyBag(t *testing.T) {
	valid := ValidateToolCalls([]RawToolCall{{Name: "t", ID: "i", Kind: model.ToolCallKind}})
	require.Len(t, valid, 1)
	assert.NotNil(t, valid[0].Args)
	assert.Empty(t, valid[0].Args)
}
