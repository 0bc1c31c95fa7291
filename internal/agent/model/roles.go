package model

import (
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// Agent node names. These double as the State.Next routing values the
// supervisor may emit.
const (
	AgentDataManager     = "data_manager"
	AgentResumeGenerator = "resume_generator"
	AgentCoverLetter     = "cover_letter_generator"
	AgentProfileReader   = "profile_reader"
	AgentJobPosting      = "job_posting_manager"
)

// KnownAgents lists every specialized agent in routing order.
func KnownAgents() []string {
	return []string{
		AgentDataManager,
		AgentResumeGenerator,
		AgentCoverLetter,
		AgentProfileReader,
		AgentJobPosting,
	}
}

// IsKnownAgent reports whether name is one of the specialized agents.
func IsKnownAgent(name string) bool {
	for _, a := range KnownAgents() {
		if a == name {
			return true
		}
	}
	return false
}

// ResultProcessor consolidates a role's validated tool calls into a
// single human-readable summary message. It runs after execution;
// results holds one tool message per call, in call order, carrying the
// full (untruncated) result or skip notice.
type ResultProcessor func(calls []ValidatedToolCall, userID string, response *schema.Message, results []*schema.Message) string

// RoleConfig is the seam where new agent roles are added. One generic
// agent node is parameterized by this record instead of one bespoke
// implementation per role.
type RoleConfig struct {
	// AgentType is the node name, e.g. AgentResumeGenerator.
	AgentType string

	// SystemMessage carries the role's instructions.
	SystemMessage string

	// GetTools instantiates the role's tool subset for one user.
	GetTools func(userID string) []tool.BaseTool

	// ProcessToolCalls, when set, replaces per-tool result messages
	// with one consolidated summary.
	ProcessToolCalls ResultProcessor

	// RequiresUserID makes a missing user id a fatal-for-the-turn
	// validation error (surfaced to the user, never a crash).
	RequiresUserID bool

	// ContentArgByTool names the primary free-text argument of each
	// content-bearing tool, keyed by tool name. Duplicate detection
	// hashes that argument instead of comparing the full bag.
	ContentArgByTool map[string]string
}
