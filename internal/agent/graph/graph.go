package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"

	"github.com/careerpilot/server/internal/agent/graph/conversations"
	"github.com/careerpilot/server/internal/agent/graph/nodes"
	"github.com/careerpilot/server/internal/agent/graph/observers"
	"github.com/careerpilot/server/internal/agent/graph/prompts"
	"github.com/careerpilot/server/internal/agent/graph/tools"
	"github.com/careerpilot/server/internal/agent/model"
	logx "github.com/careerpilot/server/pkg/logger"
)

// Runner executes one user turn against the compiled graph.
type Runner interface {
	Invoke(ctx context.Context, in *model.TurnInput) (*model.TurnResult, error)
}

// Config holds everything needed to compose the full turn graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs
// ChatModels and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	SupervisorModel  model.SupervisorModelConfig
	WorkerModel      model.WorkerModelConfig
	Orchestration    model.OrchestrationConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	ProfileRepo      model.ProfileRepository
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Orchestration   *model.OrchestrationConfig
	Roles           []model.RoleConfig
}

// GraphBuilder handles the construction of the supervisor conversation graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[*model.TurnInput, *model.State]
}

type graphRunner struct {
	runnable compose.Runnable[*model.TurnInput, *model.State]
}

func (r *graphRunner) Invoke(ctx context.Context, in *model.TurnInput) (*model.TurnResult, error) {
	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewGraphCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return &model.TurnResult{}, nil
	}
	return &model.TurnResult{
		Reply:    nodes.LastAssistantContent(out.Messages),
		Messages: out.Messages,
	}, nil
}

// DefaultRoles wires the five specialized agent roles against the
// profile repository. This is the single place a new role gets added.
func DefaultRoles(profileRepo model.ProfileRepository) []model.RoleConfig {
	return []model.RoleConfig{
		{
			AgentType:     model.AgentDataManager,
			SystemMessage: prompts.RoleInstructions(model.AgentDataManager),
			GetTools: func(userID string) []tool.BaseTool {
				return tools.NewDataManagerTools(profileRepo, userID)
			},
			RequiresUserID: true,
			ContentArgByTool: map[string]string{
				"store_resume_text": "resume_text",
			},
		},
		{
			AgentType:     model.AgentResumeGenerator,
			SystemMessage: prompts.RoleInstructions(model.AgentResumeGenerator),
			GetTools: func(userID string) []tool.BaseTool {
				return tools.NewResumeGeneratorTools(profileRepo, userID)
			},
			ProcessToolCalls: tools.ProcessResumeResults,
			RequiresUserID:   true,
		},
		{
			AgentType:     model.AgentCoverLetter,
			SystemMessage: prompts.RoleInstructions(model.AgentCoverLetter),
			GetTools: func(userID string) []tool.BaseTool {
				return tools.NewCoverLetterTools(profileRepo, userID)
			},
			RequiresUserID: true,
		},
		{
			AgentType:     model.AgentProfileReader,
			SystemMessage: prompts.RoleInstructions(model.AgentProfileReader),
			GetTools: func(userID string) []tool.BaseTool {
				return tools.NewProfileReaderTools(profileRepo, userID)
			},
			RequiresUserID: true,
		},
		{
			AgentType:     model.AgentJobPosting,
			SystemMessage: prompts.RoleInstructions(model.AgentJobPosting),
			GetTools: func(userID string) []tool.BaseTool {
				return tools.NewJobPostingTools(profileRepo, userID)
			},
			ContentArgByTool: map[string]string{
				"analyze_job_posting": "posting_text",
			},
		},
	}
}

// BuildTurnGraph composes ChatModels, MessagesManager and the default
// roles, builds the graph, and returns a Runner.
func BuildTurnGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.ProfileRepo == nil {
		return nil, fmt.Errorf("profile repo is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:           cfg.APIKey,
		BaseURL:          cfg.BaseURL,
		SupervisorConfig: &cfg.SupervisorModel,
		WorkerConfig:     &cfg.WorkerModel,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		Orchestration:   &cfg.Orchestration,
		Roles:           DefaultRoles(cfg.ProfileRepo),
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Turn graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled supervisor graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[*model.TurnInput, *model.State], error) {
	// Basic config validation
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Supervisor == nil || config.ChatModels.Worker == nil {
		return nil, fmt.Errorf("chat models are not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.Orchestration == nil {
		return nil, fmt.Errorf("orchestration config is nil")
	}
	if len(config.Roles) == 0 {
		return nil, fmt.Errorf("no agent roles configured")
	}

	builder := &GraphBuilder{
		config: config,
		graph:  compose.NewGraph[*model.TurnInput, *model.State](),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeTurnInit,
		compose.InvokableLambda(func(ctx context.Context, in *model.TurnInput) (*model.State, error) {
			return b.config.MessagesManager.BeginTurn(ctx, in)
		}),
	)

	b.graph.AddLambdaNode(nodes.NodeSupervisor,
		compose.InvokableLambda(nodes.NewSupervisorNode(
			b.config.ChatModels.Supervisor,
			b.config.ChatModels.SupervisorModelName,
			b.config.Orchestration,
		)),
	)

	detector := nodes.NewDuplicateDetector(b.config.Orchestration.DuplicateWindow)
	for _, role := range b.config.Roles {
		b.graph.AddLambdaNode(role.AgentType,
			compose.InvokableLambda(nodes.NewAgentNode(role, nodes.AgentDeps{
				Model:         b.config.ChatModels.Worker,
				ModelName:     b.config.ChatModels.WorkerModelName,
				Orchestration: b.config.Orchestration,
				Detector:      detector,
			})),
		)
	}

	b.graph.AddLambdaNode(nodes.NodeFinalize,
		compose.InvokableLambda(func(ctx context.Context, s *model.State) (*model.State, error) {
			// Persistence failure must not destroy an already-computed
			// reply; it is logged inside FinishTurn.
			_ = b.config.MessagesManager.FinishTurn(ctx, s)
			return s, nil
		}),
	)
}

// addEdges creates the unconditional flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeTurnInit},
		{nodes.NodeTurnInit, nodes.NodeSupervisor},
		{nodes.NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates the routing branches. The supervisor fans out to
// any agent or terminates; every agent either returns to the supervisor
// or terminates when it ended the turn itself (ceiling, validation).
func (b *GraphBuilder) addBranches() error {
	supervisorTargets := map[string]bool{nodes.NodeFinalize: true}
	for _, role := range b.config.Roles {
		supervisorTargets[role.AgentType] = true
	}

	supervisorBranch := compose.NewGraphBranch(
		func(ctx context.Context, s *model.State) (string, error) {
			if s != nil && supervisorTargets[s.Next] {
				return s.Next, nil
			}
			// Unknown or terminal route: end the turn.
			return nodes.NodeFinalize, nil
		},
		supervisorTargets,
	)
	if err := b.graph.AddBranch(nodes.NodeSupervisor, supervisorBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding supervisor branch")
		return fmt.Errorf("error adding supervisor branch: %w", err)
	}

	agentTargets := map[string]bool{
		nodes.NodeSupervisor: true,
		nodes.NodeFinalize:   true,
	}
	for _, role := range b.config.Roles {
		agentBranch := compose.NewGraphBranch(
			func(ctx context.Context, s *model.State) (string, error) {
				if s != nil && s.Next == nodes.NodeSupervisor {
					return nodes.NodeSupervisor, nil
				}
				return nodes.NodeFinalize, nil
			},
			agentTargets,
		)
		if err := b.graph.AddBranch(role.AgentType, agentBranch); err != nil {
			logx.Error().Err(err).Msg("Error adding agent branch")
			return fmt.Errorf("error adding branch for %s: %w", role.AgentType, err)
		}
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.TurnInput, *model.State], error) {
	// Each supervisor->agent round trip is two steps; bound total steps
	// so a routing loop can never outrun the switch ceiling.
	maxSteps := 4 + b.config.Orchestration.MaxAgentSwitches*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
