package conversations

import (
	"context"
	"strings"

	"github.com/careerpilot/server/internal/agent/model"
	logx "github.com/careerpilot/server/pkg/logger"

	"github.com/cloudwego/eino/schema"
)

// MessagesManager owns the turn lifecycle around the persisted
// conversation history: rehydration at turn start, persistence of the
// closing assistant message at turn end. Only human/ai messages cross
// turn boundaries; tool and system messages stay turn-scoped.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	historyMaxTurns  int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		historyMaxTurns:  config.History.MaxTurns,
	}
}

// BeginTurn persists the incoming user message, rehydrates history and
// builds the fresh turn state. Loop metrics and completed actions start
// zeroed: both are scoped to a single turn.
func (cm *MessagesManager) BeginTurn(ctx context.Context, in *model.TurnInput) (*model.State, error) {
	userMsg := schema.UserMessage(in.Query)
	if err := cm.conversationRepo.AddMessage(ctx, in.ConversationID, userMsg); err != nil {
		return nil, err
	}

	history, err := cm.conversationRepo.LoadHistory(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}

	return &model.State{
		ConversationID: in.ConversationID,
		UserID:         in.UserID,
		Messages:       trimTail(history.Messages, cm.historyMaxTurns),
		Metrics: model.LoopMetrics{
			ToolCallsPerAgent: map[string]int{},
		},
	}, nil
}

// FinishTurn persists the turn's closing assistant message, if any.
// Tool-role messages and completed actions are deliberately not
// persisted; duplicate suppression is turn-scoped.
func (cm *MessagesManager) FinishTurn(ctx context.Context, s *model.State) error {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m == nil || m.Role != schema.Assistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if err := cm.SaveResponse(ctx, s.ConversationID, m.Content); err != nil {
			logx.Error().
				Err(err).
				Str("conversation_id", s.ConversationID).
				Msg("failed to save closing assistant response")
			return err
		}
		logx.Debug().
			Str("conversation_id", s.ConversationID).
			Msg("saved closing assistant response")
		return nil
	}
	logx.Debug().
		Str("conversation_id", s.ConversationID).
		Msg("turn ended without an assistant response to persist")
	return nil
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	return cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg)
}

// ====================== Helper function ======================

// trimTail bounds rehydrated history to the most recent maxTurns
// messages. Trimming happens only at turn start; mid-turn the message
// sequence is append-only.
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
