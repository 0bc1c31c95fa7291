package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/careerpilot/server/internal/agent/graph/parsers"
	"github.com/careerpilot/server/internal/agent/graph/prompts"
	"github.com/careerpilot/server/internal/agent/model"
	logx "github.com/careerpilot/server/pkg/logger"
)

const (
	supervisorApology = "I'm sorry, something went wrong on my side while handling that. Please try again."
	needMoreDetails   = "I need a bit more detail to help. Could you tell me whether you want to work on " +
		"your resume, a cover letter, or a job posting?"
)

// routingToolInfo describes the single tool bound to the supervisor
// model: a routing call naming the destination agent.
func routingToolInfo() *schema.ToolInfo {
	return &schema.ToolInfo{
		Name: prompts.RouteToolName,
		Desc: "Hand the conversation to one specialist agent. Call this at most once per decision.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"agent": {
				Type:     "string",
				Desc:     "Destination agent name. One of: " + strings.Join(model.KnownAgents(), ", "),
				Required: true,
				Enum:     model.KnownAgents(),
			},
		}),
	}
}

// NewSupervisorNode creates the supervisor node: the single entry/exit
// point of each turn. It classifies intent and either answers directly
// (terminating the turn) or emits the next agent in State.Next. No error
// from the model ever escapes; every failure degrades to an apology with
// a terminal route.
func NewSupervisorNode(
	cm einomodel.ToolCallingChatModel,
	modelName string,
	orch *model.OrchestrationConfig,
) func(context.Context, *model.State) (*model.State, error) {
	return func(ctx context.Context, s *model.State) (out *model.State, err error) {
		defer func() {
			if r := recover(); r != nil {
				logx.Error().
					Str("node", NodeSupervisor).
					Str("conversation_id", s.ConversationID).
					Msgf("panic recovered: %v", r)
				out = model.MergeState(s, &model.StatePatch{
					Messages: []*schema.Message{schema.AssistantMessage(supervisorApology, nil)},
					Next:     model.RouteFinish,
				})
				err = nil
			}
		}()

		resp, callErr := invokeSupervisorModel(ctx, cm, orch, s)
		if callErr != nil {
			logx.Error().
				Err(callErr).
				Str("node", NodeSupervisor).
				Str("conversation_id", s.ConversationID).
				Msg("supervisor model invocation failed")
			return model.MergeState(s, &model.StatePatch{
				Messages: []*schema.Message{schema.AssistantMessage(supervisorApology, nil)},
				Next:     model.RouteFinish,
			}), nil
		}

		logModelUsage(s.ConversationID, NodeSupervisor, modelName, resp)

		// Structured calls first, then the inline-text recovery layer.
		extracted := false
		calls := parsers.ValidateToolCalls(parsers.FromSchemaToolCalls(resp.ToolCalls))
		if len(calls) == 0 {
			if recovered := parsers.ExtractToolCalls(resp.Content); len(recovered) > 0 {
				calls = recovered
				extracted = true
			}
		}

		dest := routeDestination(calls)
		text := strings.TrimSpace(parsers.NormalizeContent(resp.Content))

		switch {
		case dest != "":
			ack := text
			if ack == "" || extracted {
				// an extracted call means the text was the serialized
				// call itself; never echo that at the user
				ack = fmt.Sprintf("Got it, bringing in the %s.", strings.ReplaceAll(dest, "_", " "))
			}
			logx.Debug().
				Str("conversation_id", s.ConversationID).
				Str("destination", dest).
				Msg("supervisor routing to agent")
			return model.MergeState(s, &model.StatePatch{
				Messages: []*schema.Message{schema.AssistantMessage(ack, nil)},
				Next:     dest,
			}), nil

		case text != "":
			// No routable call but a real answer: the supervisor handles
			// this turn itself.
			logx.Debug().
				Str("conversation_id", s.ConversationID).
				Msg("supervisor answering directly")
			return model.MergeState(s, &model.StatePatch{
				Messages: []*schema.Message{schema.AssistantMessage(text, nil)},
				Next:     model.RouteFinish,
			}), nil

		default:
			// Empty on both counts: ask for more detail and end the turn.
			logx.Debug().
				Str("conversation_id", s.ConversationID).
				Msg("supervisor received empty response; requesting clarification")
			return model.MergeState(s, &model.StatePatch{
				Messages: []*schema.Message{schema.AssistantMessage(needMoreDetails, nil)},
				Next:     model.RouteFinish,
				PendingClarification: &model.Clarification{
					Question: needMoreDetails,
					Agent:    NodeSupervisor,
					IssuedAt: time.Now(),
				},
				Metrics: &model.LoopMetricsPatch{
					ClarificationRounds: model.IntPtr(s.Metrics.ClarificationRounds + 1),
				},
			}), nil
		}
	}
}

func invokeSupervisorModel(
	ctx context.Context,
	cm einomodel.ToolCallingChatModel,
	orch *model.OrchestrationConfig,
	s *model.State,
) (*schema.Message, error) {
	bound, err := cm.WithTools([]*schema.ToolInfo{routingToolInfo()})
	if err != nil {
		return nil, fmt.Errorf("bind routing tool: %w", err)
	}

	sysPrompt, err := prompts.RenderSupervisorSystem(ctx)
	if err != nil {
		return nil, fmt.Errorf("render supervisor prompt: %w", err)
	}

	msgs := append([]*schema.Message{schema.SystemMessage(sysPrompt)}, filterModelHistory(s.Messages)...)

	if orch != nil && orch.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, orch.ModelTimeout)
		defer cancel()
	}

	resp, err := bound.Generate(ctx, msgs)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("model returned nil response")
	}
	return resp, nil
}

// routeDestination finds the first validated call that names a known
// destination, either through the routing tool's agent argument or a
// call named directly after the agent.
func routeDestination(calls []model.ValidatedToolCall) string {
	for _, c := range calls {
		if c.Name == prompts.RouteToolName {
			if agent, ok := c.Args["agent"].(string); ok && model.IsKnownAgent(agent) {
				return agent
			}
			logx.Warn().Interface("args", c.Args).Msg("routing call without a known destination; ignoring")
			continue
		}
		if model.IsKnownAgent(c.Name) {
			return c.Name
		}
	}
	return ""
}
