package model

import (
	"time"

	"github.com/cloudwego/eino/schema"
)

// RouteFinish is the terminal sentinel for State.Next. The supervisor is
// the only node allowed to emit it; agents always route back to the
// supervisor.
const RouteFinish = "finish"

// ToolCallKind is the discriminator a call must carry to survive validation.
const ToolCallKind = "tool_call"

// TurnInput is what the calling layer hands the engine for one user turn.
type TurnInput struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id,omitempty"`
	Query          string `json:"query"`
}

// TurnResult is returned to the calling layer when a turn reaches the
// terminal state.
type TurnResult struct {
	Reply    string
	Messages []*schema.Message
}

// Clarification is the single outstanding request for more detail.
// Issuing a new one replaces the previous wholesale.
type Clarification struct {
	Question string
	Agent    string
	IssuedAt time.Time
}

// CompletedAction records one executed tool call. Identity is incidental
// (random uuid); duplicate detection keys on (AgentType, ToolName) plus
// either ContentHash or deep Args equality. Immutable after creation,
// discarded at turn end.
type CompletedAction struct {
	ID          string
	AgentType   string
	ToolName    string
	Args        map[string]any
	Result      string // truncated to a bounded prefix
	Timestamp   time.Time
	ContentHash string // set only for content-bearing tools
}

// ValidatedToolCall is a tool invocation request that survived validation:
// non-empty Name, non-empty ID and the correct Kind discriminator.
type ValidatedToolCall struct {
	Name string
	Args map[string]any
	ID   string
	Kind string
}

// LoopMetrics are the turn-scoped counters the loop governor enforces.
// Reset at turn start, updated monotonically during the turn.
type LoopMetrics struct {
	AgentSwitches       int
	ToolCallsPerAgent   map[string]int
	ClarificationRounds int
	LastAgentType       string
}

// LoopMetricsPatch is a partial metrics update. Nil scalar fields mean
// "keep the prior value"; per-agent tool-call counts are summed key-wise.
type LoopMetricsPatch struct {
	AgentSwitches       *int
	ToolCallsPerAgent   map[string]int
	ClarificationRounds *int
	LastAgentType       *string
}

// MergeLoopMetrics merges a partial update into prior metrics. Scalar
// counters take the incoming value when present, else the prior value;
// per-agent tool-call counts are summed key-wise.
func MergeLoopMetrics(prev LoopMetrics, patch *LoopMetricsPatch) LoopMetrics {
	next := LoopMetrics{
		AgentSwitches:       prev.AgentSwitches,
		ClarificationRounds: prev.ClarificationRounds,
		LastAgentType:       prev.LastAgentType,
		ToolCallsPerAgent:   make(map[string]int, len(prev.ToolCallsPerAgent)),
	}
	for k, v := range prev.ToolCallsPerAgent {
		next.ToolCallsPerAgent[k] = v
	}
	if patch == nil {
		return next
	}
	if patch.AgentSwitches != nil {
		next.AgentSwitches = *patch.AgentSwitches
	}
	if patch.ClarificationRounds != nil {
		next.ClarificationRounds = *patch.ClarificationRounds
	}
	if patch.LastAgentType != nil {
		next.LastAgentType = *patch.LastAgentType
	}
	for k, v := range patch.ToolCallsPerAgent {
		next.ToolCallsPerAgent[k] += v
	}
	return next
}

// State is the conversation state threaded through every node for the
// duration of one turn. It is owned exclusively by the graph; nodes
// never mutate it in place; they return a StatePatch merged via
// MergeState.
type State struct {
	ConversationID string
	UserID         string // read-only after turn start

	// Messages is append-only for the whole turn; never reordered or
	// truncated mid-turn.
	Messages []*schema.Message

	// Next names the node that should run next, or RouteFinish.
	Next string

	// CompletedActions accumulate strictly within the current turn.
	CompletedActions []CompletedAction

	// PendingClarification holds at most one outstanding request,
	// replaced wholesale when a new one is issued.
	PendingClarification *Clarification

	Metrics LoopMetrics
}

// StatePatch is the partial state a node returns. Zero-valued fields
// leave the prior state untouched.
type StatePatch struct {
	Messages             []*schema.Message
	Next                 string
	CompletedActions     []CompletedAction
	PendingClarification *Clarification
	Metrics              *LoopMetricsPatch
}

// MergeState merges a node's patch into the running state and returns the
// next state. Merge rules per field: append for messages and completed
// actions, replace-when-present for Next and PendingClarification,
// MergeLoopMetrics for counters. prev is not mutated.
func MergeState(prev *State, patch *StatePatch) *State {
	next := &State{
		ConversationID:       prev.ConversationID,
		UserID:               prev.UserID,
		Next:                 prev.Next,
		PendingClarification: prev.PendingClarification,
	}
	next.Messages = make([]*schema.Message, 0, len(prev.Messages))
	next.Messages = append(next.Messages, prev.Messages...)
	next.CompletedActions = make([]CompletedAction, 0, len(prev.CompletedActions))
	next.CompletedActions = append(next.CompletedActions, prev.CompletedActions...)

	if patch == nil {
		next.Metrics = MergeLoopMetrics(prev.Metrics, nil)
		return next
	}

	next.Messages = append(next.Messages, patch.Messages...)
	next.CompletedActions = append(next.CompletedActions, patch.CompletedActions...)
	if patch.Next != "" {
		next.Next = patch.Next
	}
	if patch.PendingClarification != nil {
		next.PendingClarification = patch.PendingClarification
	}
	next.Metrics = MergeLoopMetrics(prev.Metrics, patch.Metrics)
	return next
}

// IntPtr is a small helper for building metrics patches.
func IntPtr(v int) *int { return &v }

// StrPtr is a small helper for building metrics patches.
func StrPtr(v string) *string { return &v }
