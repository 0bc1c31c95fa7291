package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type ConversationRepository interface {
	// AddMessage adds a message to the conversation history for the given conversation
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the conversation history for a conversation
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a conversation
	ClearHistory(ctx context.Context, conversationID string) error

	// GetMessageCount returns the number of messages in the conversation
	GetMessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}

// UserProfile is the stored career profile the role tools read and write.
type UserProfile struct {
	Name       string            `json:"name,omitempty"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Headline   string            `json:"headline,omitempty"`
	Skills     []string          `json:"skills,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// JobPosting is a saved job-posting record.
type JobPosting struct {
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url,omitempty"`
}

// ProfileRepository persists per-user career data consumed by the role
// tools. Business logic inside the tools is an external collaborator
// concern; the engine only threads the user id through.
type ProfileRepository interface {
	SaveResumeText(ctx context.Context, userID, text string) error
	GetResumeText(ctx context.Context, userID string) (string, error)
	DeleteResumeText(ctx context.Context, userID string) error

	SaveProfile(ctx context.Context, userID string, p *UserProfile) error
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)

	SaveJobPosting(ctx context.Context, userID string, jp *JobPosting) error
	ListJobPostings(ctx context.Context, userID string) ([]JobPosting, error)
}
