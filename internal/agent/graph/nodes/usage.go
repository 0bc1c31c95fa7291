package nodes

import (
	"github.com/cloudwego/eino/schema"

	logx "github.com/careerpilot/server/pkg/logger"
)

// pricing defines USD cost per 1M tokens for input/output.
type pricing struct {
	inputPerM  float64
	outputPerM float64
}

// defaultPricing provides hardcoded USD pricing per 1M tokens (text tokens).
var defaultPricing = map[string]pricing{
	"gemini-2.5-flash":      {inputPerM: 0.30, outputPerM: 2.50},
	"gemini-2.5-flash-lite": {inputPerM: 0.10, outputPerM: 0.40},
}

// logModelUsage logs token usage and estimated cost for one model
// invocation when the provider reports usage metadata.
func logModelUsage(conversationID, node, modelName string, out *schema.Message) {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	p := defaultPricing[modelName]
	inC := p.inputPerM * float64(usage.PromptTokens) / 1_000_000.0
	outC := p.outputPerM * float64(usage.CompletionTokens) / 1_000_000.0

	logx.Debug().
		Str("conversation_id", conversationID).
		Str("node", node).
		Str("model", modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", inC+outC).
		Msg("LLM usage")
}
