package nodes

import (
	"fmt"

	"github.com/careerpilot/server/internal/agent/model"
)

const (
	DefaultMaxAgentSwitches       = 10
	DefaultMaxToolCallsPerAgent   = 5
	DefaultMaxClarificationRounds = 3
)

// normalizeCeiling returns a sane default when the configured value is invalid.
func normalizeCeiling(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

// CheckCeilings evaluates the turn's counters against the role about to
// execute. A non-empty return is the user-facing explanation of which
// ceiling was hit; the caller must terminate the turn without a model
// call. Counters are only ever updated after a node successfully runs,
// so this is a pure read.
func CheckCeilings(m model.LoopMetrics, agentType string, cfg *model.OrchestrationConfig) string {
	maxSwitches := DefaultMaxAgentSwitches
	maxToolCalls := DefaultMaxToolCallsPerAgent
	maxRounds := DefaultMaxClarificationRounds
	if cfg != nil {
		maxSwitches = normalizeCeiling(cfg.MaxAgentSwitches, DefaultMaxAgentSwitches)
		maxToolCalls = normalizeCeiling(cfg.MaxToolCallsPerAgent, DefaultMaxToolCallsPerAgent)
		maxRounds = normalizeCeiling(cfg.MaxClarificationRounds, DefaultMaxClarificationRounds)
	}

	if m.AgentSwitches >= maxSwitches {
		return fmt.Sprintf(
			"I've reached the limit of %d agent handoffs for this request, so I'm stopping here. "+
				"Try narrowing your request to a single task.", maxSwitches)
	}
	if m.ToolCallsPerAgent[agentType] >= maxToolCalls {
		return fmt.Sprintf(
			"The %s has reached its limit of %d tool calls for this request, so I'm stopping here. "+
				"Try narrowing your request to a single task.", agentType, maxToolCalls)
	}
	if m.ClarificationRounds >= maxRounds {
		return fmt.Sprintf(
			"I've asked for clarification %d times without getting enough to work with, so I'm stopping here. "+
				"Try rephrasing your request with more detail.", maxRounds)
	}
	return ""
}

// switchesAfter computes the agent-switch counter value once agentType
// runs: it increments exactly when the executing agent differs from the
// last one.
func switchesAfter(m model.LoopMetrics, agentType string) int {
	if m.LastAgentType != agentType {
		return m.AgentSwitches + 1
	}
	return m.AgentSwitches
}
