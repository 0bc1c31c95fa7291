package nodes

import (
	"context"
	"fmt"

	logx "github.com/careerpilot/server/pkg/logger"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/careerpilot/server/internal/agent/model"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey           string
	BaseURL          string
	SupervisorConfig *model.SupervisorModelConfig
	WorkerConfig     *model.WorkerModelConfig
}

// ChatModels holds the supervisor and worker chat models. Fields are
// interface-typed so tests can substitute deterministic stubs.
type ChatModels struct {
	Supervisor          einomodel.ToolCallingChatModel
	Worker              einomodel.ToolCallingChatModel
	SupervisorModelName string
	WorkerModelName     string
}

// NewChatModels creates both supervisor and worker chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	supervisorModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.SupervisorConfig.Model,
		Temperature: &config.SupervisorConfig.Temperature,
		MaxTokens:   &config.SupervisorConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating supervisor model")
		return nil, fmt.Errorf("error creating supervisor model: %w", err)
	}

	workerModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.WorkerConfig.Model,
		Temperature: &config.WorkerConfig.Temperature,
		MaxTokens:   &config.WorkerConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating worker model")
		return nil, fmt.Errorf("error creating worker model: %w", err)
	}

	return &ChatModels{
		Supervisor:          supervisorModel,
		Worker:              workerModel,
		SupervisorModelName: config.SupervisorConfig.Model,
		WorkerModelName:     config.WorkerConfig.Model,
	}, nil
}
