package nodes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/server/internal/agent/model"
)

type echoInput struct {
	Value string `json:"value"`
}

type echoOutput struct {
	Echo string `json:"echo"`
}

func newEchoTool(counter *int) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: "echo_tool",
			Desc: "Echo the value back.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"value": {Type: "string", Required: true},
			}),
		},
		func(ctx context.Context, in *echoInput) (*echoOutput, error) {
			*counter++
			return &echoOutput{Echo: in.Value}, nil
		},
	)
}

func echoRole(counter *int) model.RoleConfig {
	return model.RoleConfig{
		AgentType:     model.AgentProfileReader,
		SystemMessage: "You echo things.",
		GetTools: func(userID string) []tool.BaseTool {
			return []tool.BaseTool{newEchoTool(counter)}
		},
		RequiresUserID: true,
	}
}

func echoCallResponse(id, value string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{{
			ID:   id,
			Type: "function",
			Function: schema.FunctionCall{
				Name:      "echo_tool",
				Arguments: fmt.Sprintf(`{"value":%q}`, value),
			},
		}},
	}
}

func agentDeps(cm *stubChatModel) AgentDeps {
	return AgentDeps{
		Model:         cm,
		ModelName:     "gemini-2.5-flash",
		Orchestration: testOrch(),
		Detector:      NewDuplicateDetector(5 * time.Minute),
	}
}

func TestAgentExecutesToolCall(t *testing.T) {
	var executed int
	cm := &stubChatModel{responses: []*schema.Message{echoCallResponse("call-1", "hi")}}
	node := NewAgentNode(echoRole(&executed), agentDeps(cm))

	out, err := node(context.Background(), freshState("echo hi"))
	require.NoError(t, err)

	assert.Equal(t, 1, executed)
	assert.Equal(t, NodeSupervisor, out.Next)

	// assistant message carrying the call, then the tool result
	require.GreaterOrEqual(t, len(out.Messages), 3)
	toolMsg := out.Messages[len(out.Messages)-1]
	assert.Equal(t, schema.Tool, toolMsg.Role)
	assert.Equal(t, "call-1", toolMsg.ToolCallID)
	assert.Contains(t, toolMsg.Content, `"echo":"hi"`)

	require.Len(t, out.CompletedActions, 1)
	assert.Equal(t, "echo_tool", out.CompletedActions[0].ToolName)

	assert.Equal(t, 1, out.Metrics.ToolCallsPerAgent[model.AgentProfileReader])
	assert.Equal(t, 1, out.Metrics.AgentSwitches)
	assert.Equal(t, model.AgentProfileReader, out.Metrics.LastAgentType)
}

func TestAgentSkipsDuplicateCall(t *testing.T) {
	var executed int
	cm := &stubChatModel{responses: []*schema.Message{echoCallResponse("call-2", "hi")}}
	node := NewAgentNode(echoRole(&executed), agentDeps(cm))

	s := freshState("echo hi again")
	s.CompletedActions = []model.CompletedAction{{
		ID:        "prior",
		AgentType: model.AgentProfileReader,
		ToolName:  "echo_tool",
		Args:      map[string]any{"value": "hi"},
		Result:    `{"echo":"hi"}`,
		Timestamp: time.Now(),
	}}

	out, err := node(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 0, executed)
	assert.Empty(t, out.CompletedActions[1:], "no new action recorded")

	toolMsg := out.Messages[len(out.Messages)-1]
	assert.Equal(t, schema.Tool, toolMsg.Role)
	assert.Contains(t, toolMsg.Content, "already completed")
	assert.Contains(t, toolMsg.Content, `"echo":"hi"`)

	// skipped calls do not consume tool-call budget
	assert.Equal(t, 0, out.Metrics.ToolCallsPerAgent[model.AgentProfileReader])
	assert.Equal(t, NodeSupervisor, out.Next)
}

func TestAgentCeilingBlocksModelCall(t *testing.T) {
	var executed int
	cm := &stubChatModel{responses: []*schema.Message{echoCallResponse("call-3", "hi")}}
	node := NewAgentNode(echoRole(&executed), agentDeps(cm))

	s := freshState("echo once more")
	s.Metrics.ToolCallsPerAgent[model.AgentProfileReader] = 5

	out, err := node(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 0, cm.calls, "ceiling must be checked before any model call")
	assert.Equal(t, 0, executed)
	assert.Equal(t, model.RouteFinish, out.Next)
	last := out.Messages[len(out.Messages)-1]
	assert.Contains(t, last.Content, "limit")
}

func TestAgentMissingUserIDTerminates(t *testing.T) {
	var executed int
	cm := &stubChatModel{responses: []*schema.Message{echoCallResponse("call-4", "hi")}}
	node := NewAgentNode(echoRole(&executed), agentDeps(cm))

	s := freshState("echo")
	s.UserID = ""

	out, err := node(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, 0, cm.calls)
	assert.Equal(t, 0, executed)
	assert.Equal(t, model.RouteFinish, out.Next)
	last := out.Messages[len(out.Messages)-1]
	assert.Equal(t, missingUserIDMessage, last.Content)
}

func TestAgentModelErrorDegradesToApology(t *testing.T) {
	var executed int
	cm := &stubChatModel{err: errors.New("provider unavailable")}
	node := NewAgentNode(echoRole(&executed), agentDeps(cm))

	out, err := node(context.Background(), freshState("echo"))
	require.NoError(t, err)

	assert.Equal(t, NodeSupervisor, out.Next)
	last := out.Messages[len(out.Messages)-1]
	assert.Equal(t, agentApology, last.Content)
	// metrics still advance so failure loops hit the switch ceiling
	assert.Equal(t, 1, out.Metrics.AgentSwitches)
	assert.Equal(t, model.AgentProfileReader, out.Metrics.LastAgentType)
}

func TestAgentPlainTextBecomesDirectReply(t *testing.T) {
	var executed int
	cm := &stubChatModel{responses: []*schema.Message{
		schema.AssistantMessage("Nothing is stored for you yet.", nil),
	}}
	node := NewAgentNode(echoRole(&executed), agentDeps(cm))

	out, err := node(context.Background(), freshState("what do you have on me?"))
	require.NoError(t, err)

	assert.Equal(t, 0, executed)
	assert.Equal(t, NodeSupervisor, out.Next)
	last := out.Messages[len(out.Messages)-1]
	assert.Equal(t, "Nothing is stored for you yet.", last.Content)
}

func TestAgentConsolidatesResultsViaProcessor(t *testing.T) {
	var executed int
	cfg := echoRole(&executed)
	cfg.ProcessToolCalls = func(calls []model.ValidatedToolCall, userID string, response *schema.Message, results []*schema.Message) string {
		require.Len(t, calls, 1)
		require.Len(t, results, 1)
		return "summary: " + results[0].Content
	}

	cm := &stubChatModel{responses: []*schema.Message{echoCallResponse("call-5", "hi")}}
	node := NewAgentNode(cfg, agentDeps(cm))

	out, err := node(context.Background(), freshState("echo hi"))
	require.NoError(t, err)

	last := out.Messages[len(out.Messages)-1]
	assert.Equal(t, schema.Assistant, last.Role)
	assert.Equal(t, `summary: {"echo":"hi"}`, last.Content)
	// consolidated mode emits exactly one message for the whole pass
	assert.Equal(t, schema.User, out.Messages[len(out.Messages)-2].Role)
}

func TestAgentRecoversInlineSerializedCall(t *testing.T) {
	var executed int
	cm := &stubChatModel{responses: []*schema.Message{
		schema.AssistantMessage(`{"functionCall": {"name": "echo_tool", "args": {"value": "hi"}}}`, nil),
	}}
	node := NewAgentNode(echoRole(&executed), agentDeps(cm))

	out, err := node(context.Background(), freshState("echo hi"))
	require.NoError(t, err)

	assert.Equal(t, 1, executed)
	require.Len(t, out.CompletedActions, 1)
	assert.Equal(t, "echo_tool", out.CompletedActions[0].ToolName)
	toolMsg := out.Messages[len(out.Messages)-1]
	assert.Contains(t, toolMsg.Content, `"echo":"hi"`)
}

func TestAgentIsolatesToolFailure(t *testing.T) {
	failing := utils.NewTool(
		&schema.ToolInfo{
			Name: "echo_tool",
			Desc: "Always fails.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"value": {Type: "string", Required: true},
			}),
		},
		func(ctx context.Context, in *echoInput) (*echoOutput, error) {
			return nil, errors.New("boom")
		},
	)
	cfg := model.RoleConfig{
		AgentType:     model.AgentProfileReader,
		SystemMessage: "You echo things.",
		GetTools: func(userID string) []tool.BaseTool {
			return []tool.BaseTool{failing}
		},
		RequiresUserID: true,
	}

	cm := &stubChatModel{responses: []*schema.Message{echoCallResponse("call-6", "hi")}}
	node := NewAgentNode(cfg, agentDeps(cm))

	out, err := node(context.Background(), freshState("echo hi"))
	require.NoError(t, err)

	assert.Equal(t, NodeSupervisor, out.Next)
	toolMsg := out.Messages[len(out.Messages)-1]
	assert.Contains(t, toolMsg.Content, "Error executing echo_tool")
	// the failed call is still recorded so it is not retried blindly
	require.Len(t, out.CompletedActions, 1)
}
