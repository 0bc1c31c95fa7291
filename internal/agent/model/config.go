package model

import "time"

// ================ Config ================

// OrchestrationConfig carries every loop ceiling and runtime budget the
// engine enforces. It is loaded once per process and passed by reference
// into the nodes that need it; tests substitute deterministic values.
type OrchestrationConfig struct {
	MaxAgentSwitches       int           `envconfig:"ORCH_MAX_AGENT_SWITCHES" default:"10"`
	MaxToolCallsPerAgent   int           `envconfig:"ORCH_MAX_TOOL_CALLS_PER_AGENT" default:"5"`
	MaxClarificationRounds int           `envconfig:"ORCH_MAX_CLARIFICATION_ROUNDS" default:"3"`
	DuplicateWindow        time.Duration `envconfig:"ORCH_DUPLICATE_WINDOW" default:"5m"`
	ModelTimeout           time.Duration `envconfig:"ORCH_MODEL_TIMEOUT" default:"60s"`
	ToolTimeout            time.Duration `envconfig:"ORCH_TOOL_TIMEOUT" default:"30s"`
	ResultPreviewLen       int           `envconfig:"ORCH_RESULT_PREVIEW_LEN" default:"240"`
}

type SupervisorModelConfig struct {
	Model       string  `envconfig:"SUPERVISOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"SUPERVISOR_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"SUPERVISOR_TEMPERATURE" default:"0.1"`
}

type WorkerModelConfig struct {
	Model       string  `envconfig:"WORKER_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"WORKER_MAX_TOKENS" default:"4000"`
	Temperature float32 `envconfig:"WORKER_TEMPERATURE" default:"0.4"`
}

type ConversationHistoryConfig struct {
	MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"30"`
}

type ConversationConfig struct {
	TTL     time.Duration `envconfig:"CONVERSATION_TTL" default:"168h"`
	History ConversationHistoryConfig
}
