package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/careerpilot/server/internal/agent/graph/parsers"
	"github.com/careerpilot/server/internal/agent/graph/prompts"
	"github.com/careerpilot/server/internal/agent/graph/tools"
	"github.com/careerpilot/server/internal/agent/model"
	logx "github.com/careerpilot/server/pkg/logger"
)

const (
	agentApology = "I'm sorry, I ran into a problem while working on that. Let me hand this back."

	missingUserIDMessage = "I can't work with your stored data without knowing who you are. " +
		"Please sign in and try again."
)

// AgentDeps bundles what every specialized agent node shares: the worker
// model, the loop ceilings and the duplicate detector.
type AgentDeps struct {
	Model         einomodel.ToolCallingChatModel
	ModelName     string
	Orchestration *model.OrchestrationConfig
	Detector      *DuplicateDetector
}

// NewAgentNode builds one specialized agent node from a role
// configuration. All five roles share this implementation; only the
// RoleConfig record differs. The node returns a merged state patch and
// never a raw error: every failure mode degrades to an in-conversation
// message.
func NewAgentNode(cfg model.RoleConfig, deps AgentDeps) func(context.Context, *model.State) (*model.State, error) {
	return func(ctx context.Context, s *model.State) (out *model.State, err error) {
		defer func() {
			if r := recover(); r != nil {
				logx.Error().
					Str("node", cfg.AgentType).
					Str("conversation_id", s.ConversationID).
					Msgf("panic recovered: %v", r)
				out = model.MergeState(s, agentFailurePatch(cfg.AgentType, s.Metrics))
				err = nil
			}
		}()

		// Governor first: no model call once a ceiling is hit.
		if reason := CheckCeilings(s.Metrics, cfg.AgentType, deps.Orchestration); reason != "" {
			logx.Warn().
				Str("node", cfg.AgentType).
				Str("conversation_id", s.ConversationID).
				Int("agent_switches", s.Metrics.AgentSwitches).
				Int("tool_calls", s.Metrics.ToolCallsPerAgent[cfg.AgentType]).
				Int("clarification_rounds", s.Metrics.ClarificationRounds).
				Msg("loop ceiling reached; terminating turn")
			return model.MergeState(s, &model.StatePatch{
				Messages: []*schema.Message{schema.AssistantMessage(reason, nil)},
				Next:     model.RouteFinish,
			}), nil
		}

		if cfg.RequiresUserID && strings.TrimSpace(s.UserID) == "" {
			logx.Warn().
				Str("node", cfg.AgentType).
				Str("conversation_id", s.ConversationID).
				Msg("role requires a user id; terminating turn")
			return model.MergeState(s, &model.StatePatch{
				Messages: []*schema.Message{schema.AssistantMessage(missingUserIDMessage, nil)},
				Next:     model.RouteFinish,
			}), nil
		}

		registry, resp, callErr := invokeAgentModel(ctx, cfg, deps, s)
		if callErr != nil {
			logx.Error().
				Err(callErr).
				Str("node", cfg.AgentType).
				Str("conversation_id", s.ConversationID).
				Msg("agent model invocation failed")
			return model.MergeState(s, agentFailurePatch(cfg.AgentType, s.Metrics)), nil
		}

		logModelUsage(s.ConversationID, cfg.AgentType, deps.ModelName, resp)

		calls := parsers.ValidateToolCalls(parsers.FromSchemaToolCalls(resp.ToolCalls))
		if len(calls) == 0 {
			calls = parsers.ExtractToolCalls(resp.Content)
		}

		patch := &model.StatePatch{Next: NodeSupervisor}

		if len(calls) > 0 {
			execution := executeToolCalls(ctx, cfg, deps, s, registry, calls)
			patch.CompletedActions = execution.actions

			if cfg.ProcessToolCalls != nil {
				summary := cfg.ProcessToolCalls(calls, s.UserID, resp, execution.messages)
				patch.Messages = []*schema.Message{schema.AssistantMessage(summary, nil)}
			} else {
				assistant := &schema.Message{
					Role:      schema.Assistant,
					Content:   parsers.NormalizeContent(resp.Content),
					ToolCalls: toSchemaToolCalls(calls),
				}
				patch.Messages = append([]*schema.Message{assistant}, execution.messages...)
			}

			patch.Metrics = &model.LoopMetricsPatch{
				AgentSwitches:     model.IntPtr(switchesAfter(s.Metrics, cfg.AgentType)),
				LastAgentType:     model.StrPtr(cfg.AgentType),
				ToolCallsPerAgent: map[string]int{cfg.AgentType: execution.executed},
			}
			return model.MergeState(s, patch), nil
		}

		// No tool calls: the cleaned text is a direct reply.
		if text := strings.TrimSpace(parsers.NormalizeContent(resp.Content)); text != "" {
			patch.Messages = []*schema.Message{schema.AssistantMessage(text, nil)}
		}
		patch.Metrics = &model.LoopMetricsPatch{
			AgentSwitches: model.IntPtr(switchesAfter(s.Metrics, cfg.AgentType)),
			LastAgentType: model.StrPtr(cfg.AgentType),
		}
		return model.MergeState(s, patch), nil
	}
}

// agentFailurePatch degrades an unexpected agent failure into an apology
// routed back to the supervisor. Metrics still advance so repeated
// failures run into the switch ceiling instead of looping.
func agentFailurePatch(agentType string, m model.LoopMetrics) *model.StatePatch {
	return &model.StatePatch{
		Messages: []*schema.Message{schema.AssistantMessage(agentApology, nil)},
		Next:     NodeSupervisor,
		Metrics: &model.LoopMetricsPatch{
			AgentSwitches: model.IntPtr(switchesAfter(m, agentType)),
			LastAgentType: model.StrPtr(agentType),
		},
	}
}

func invokeAgentModel(
	ctx context.Context,
	cfg model.RoleConfig,
	deps AgentDeps,
	s *model.State,
) (*tools.Registry, *schema.Message, error) {
	var roleTools []tool.BaseTool
	if cfg.GetTools != nil {
		roleTools = cfg.GetTools(s.UserID)
	}
	registry, err := tools.NewRegistry(ctx, roleTools)
	if err != nil {
		return nil, nil, fmt.Errorf("build tool registry: %w", err)
	}

	cm := deps.Model
	if registry.Len() > 0 {
		cm, err = deps.Model.WithTools(registry.Infos())
		if err != nil {
			return nil, nil, fmt.Errorf("bind role tools: %w", err)
		}
	}

	sysPrompt, err := prompts.RenderAgentSystem(ctx, cfg.AgentType, cfg.SystemMessage)
	if err != nil {
		return nil, nil, fmt.Errorf("render agent prompt: %w", err)
	}

	msgs := append([]*schema.Message{schema.SystemMessage(sysPrompt)}, filterModelHistory(s.Messages)...)

	mctx := ctx
	if deps.Orchestration != nil && deps.Orchestration.ModelTimeout > 0 {
		var cancel context.CancelFunc
		mctx, cancel = context.WithTimeout(ctx, deps.Orchestration.ModelTimeout)
		defer cancel()
	}

	resp, err := cm.Generate(mctx, msgs)
	if err != nil {
		return nil, nil, err
	}
	if resp == nil {
		return nil, nil, fmt.Errorf("model returned nil response")
	}
	return registry, resp, nil
}

// executionResult carries what a sequential tool-execution pass produced.
type executionResult struct {
	messages []*schema.Message       // one tool message per call (result or skip notice)
	actions  []model.CompletedAction // executed calls only, in execution order
	executed int
}

// executeToolCalls runs validated calls one at a time, in the order
// returned, so duplicate-detection state accumulated by earlier calls is
// visible to later ones. Tool failures are isolated per call; a failed
// sibling never aborts the rest.
func executeToolCalls(
	ctx context.Context,
	cfg model.RoleConfig,
	deps AgentDeps,
	s *model.State,
	registry *tools.Registry,
	calls []model.ValidatedToolCall,
) executionResult {
	previewLen := 240
	if deps.Orchestration != nil && deps.Orchestration.ResultPreviewLen > 0 {
		previewLen = deps.Orchestration.ResultPreviewLen
	}

	seen := append([]model.CompletedAction{}, s.CompletedActions...)
	var res executionResult

	for _, call := range calls {
		contentArg := cfg.ContentArgByTool[call.Name]
		now := time.Now()

		if prior := deps.Detector.FindDuplicate(seen, cfg.AgentType, call, contentArg, now); prior != nil {
			skip := fmt.Sprintf(
				"Skipped %s: this exact action was already completed in this conversation. Previous result: %s",
				call.Name, truncateResult(prior.Result, previewLen))
			res.messages = append(res.messages, schema.ToolMessage(skip, call.ID))
			logx.Info().
				Str("node", cfg.AgentType).
				Str("tool_name", call.Name).
				Str("prior_action_id", prior.ID).
				Msg("suppressed duplicate tool call")
			continue
		}

		result := runOneTool(ctx, registry, deps, call)

		action := deps.Detector.RecordAction(cfg.AgentType, call, result, previewLen, contentArg, now)
		seen = append(seen, action)
		res.actions = append(res.actions, action)
		res.messages = append(res.messages, schema.ToolMessage(result, call.ID))
		res.executed++
	}
	return res
}

// runOneTool executes a single call under the tool timeout and converts
// any failure into an inline error string.
func runOneTool(ctx context.Context, registry *tools.Registry, deps AgentDeps, call model.ValidatedToolCall) string {
	if registry == nil {
		return fmt.Sprintf("Error executing %s: tool registry unavailable", call.Name)
	}

	tctx := ctx
	if deps.Orchestration != nil && deps.Orchestration.ToolTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, deps.Orchestration.ToolTimeout)
		defer cancel()
	}

	result, err := registry.Execute(tctx, call.Name, call.Args)
	if err != nil {
		logx.Warn().
			Err(err).
			Str("tool_name", call.Name).
			Msg("tool execution failed; reporting inline")
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}
	return result
}
