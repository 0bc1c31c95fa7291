package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/careerpilot/server/internal/agent/graph"
	"github.com/careerpilot/server/internal/agent/model"
	"github.com/careerpilot/server/internal/agent/repo"
	"github.com/careerpilot/server/internal/core"
	logx "github.com/careerpilot/server/pkg/logger"
	pkgredis "github.com/careerpilot/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the assistant example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Supervisor    model.SupervisorModelConfig
	Worker        model.WorkerModelConfig
	Orchestration model.OrchestrationConfig
	Conversation  model.ConversationConfig
}

func main() {
	fmt.Println("Testing career assistant turn graph...")
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(os.Getenv("ENVIRONMENT"))})

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	cfg := graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		SupervisorModel:  envCfg.Supervisor,
		WorkerModel:      envCfg.Worker,
		Orchestration:    envCfg.Orchestration,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, envCfg.Conversation.TTL),
		ProfileRepo:      repo.NewRedisProfileRepository(rdb, envCfg.Conversation.TTL),
	}

	runner, err := graph.BuildTurnGraph(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	testTurns := []struct {
		description string
		query       string
	}{
		{
			description: "Store resume text",
			query: "Hi! Please store my resume: Jane Doe, backend engineer with 6 years of Go, " +
				"Kubernetes and PostgreSQL experience at Acme Corp.",
		},
		{
			description: "Generate a tailored resume",
			query:       "Can you generate a resume for a Senior Backend Engineer role using the hybrid template?",
		},
		{
			description: "Analyze a job posting",
			query: "What skills does this posting need?\n\nTitle: Platform Engineer\nCompany: Initech\n" +
				"Requirements:\n- 5+ years with Go and Kubernetes\n- Experience with Terraform and AWS",
		},
		{
			description: "Follow-up with thanks",
			query:       "Thanks, that's all for now!",
		},
	}

	conversationID := "demo-conversation-001"
	userID := "demo-user-001"

	for i, test := range testTurns {
		fmt.Printf("\nTurn %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)
		fmt.Println("Processing...")

		result, err := runner.Invoke(ctx, &model.TurnInput{
			ConversationID: conversationID,
			UserID:         userID,
			Query:          test.query,
		})
		if err != nil {
			log.Fatalf("Failed to invoke graph for turn %d: %v", i+1, err)
		}

		fmt.Printf("Reply %d: %s\n", i+1, result.Reply)
		fmt.Println("─────────────────────────────────────────────")

		// slight delay between turns for readability
		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("All turns completed successfully!")
}
