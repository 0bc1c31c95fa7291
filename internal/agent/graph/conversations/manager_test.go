package conversations

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerpilot/server/internal/agent/model"
)

type stubConversationRepo struct {
	messages map[string][]*schema.Message
}

func newStubConversationRepo() *stubConversationRepo {
	return &stubConversationRepo{messages: map[string][]*schema.Message{}}
}

func (r *stubConversationRepo) AddMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	r.messages[conversationID] = append(r.messages[conversationID], message)
	return nil
}

func (r *stubConversationRepo) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	msgs := make([]*schema.Message, len(r.messages[conversationID]))
	copy(msgs, r.messages[conversationID])
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func (r *stubConversationRepo) ClearHistory(ctx context.Context, conversationID string) error {
	delete(r.messages, conversationID)
	return nil
}

func (r *stubConversationRepo) GetMessageCount(ctx context.Context, conversationID string) (int, error) {
	return len(r.messages[conversationID]), nil
}

func TestBeginTurnPersistsUserMessageAndBuildsState(t *testing.T) {
	repo := newStubConversationRepo()
	mm := NewMessagesManager(repo, model.ConversationConfig{
		History: model.ConversationHistoryConfig{MaxTurns: 30},
	})

	s, err := mm.BeginTurn(context.Background(), &model.TurnInput{
		ConversationID: "c1", UserID: "u1", Query: "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "c1", s.ConversationID)
	assert.Equal(t, "u1", s.UserID)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, schema.User, s.Messages[0].Role)
	assert.Equal(t, "hello", s.Messages[0].Content)

	// metrics start zeroed with an initialized map
	assert.Zero(t, s.Metrics.AgentSwitches)
	assert.NotNil(t, s.Metrics.ToolCallsPerAgent)
	assert.Empty(t, s.CompletedActions)
	assert.Nil(t, s.PendingClarification)
}

func TestBeginTurnTrimsHistoryTail(t *testing.T) {
	repo := newStubConversationRepo()
	for i := 0; i < 10; i++ {
		require.NoError(t, repo.AddMessage(context.Background(), "c1",
			schema.UserMessage(fmt.Sprintf("msg-%d", i))))
	}
	mm := NewMessagesManager(repo, model.ConversationConfig{
		History: model.ConversationHistoryConfig{MaxTurns: 4},
	})

	s, err := mm.BeginTurn(context.Background(), &model.TurnInput{
		ConversationID: "c1", Query: "latest",
	})
	require.NoError(t, err)

	// 10 stored + the new one, trimmed to the most recent 4
	require.Len(t, s.Messages, 4)
	assert.Equal(t, "latest", s.Messages[3].Content)
	assert.Equal(t, "msg-9", s.Messages[2].Content)
}

func TestFinishTurnPersistsClosingAssistantMessage(t *testing.T) {
	repo := newStubConversationRepo()
	mm := NewMessagesManager(repo, model.ConversationConfig{
		History: model.ConversationHistoryConfig{MaxTurns: 30},
	})

	s := &model.State{
		ConversationID: "c1",
		Messages: []*schema.Message{
			schema.UserMessage("hi"),
			schema.AssistantMessage("routing ack", nil),
			schema.ToolMessage(`{"ok":true}`, "call-1"),
			schema.AssistantMessage("final answer", nil),
		},
	}
	require.NoError(t, mm.FinishTurn(context.Background(), s))

	stored := repo.messages["c1"]
	require.Len(t, stored, 1)
	assert.Equal(t, schema.Assistant, stored[0].Role)
	assert.Equal(t, "final answer", stored[0].Content)
}

func TestFinishTurnSkipsEmptyAssistantMessages(t *testing.T) {
	repo := newStubConversationRepo()
	mm := NewMessagesManager(repo, model.ConversationConfig{})

	s := &model.State{
		ConversationID: "c1",
		Messages: []*schema.Message{
			schema.AssistantMessage("real reply", nil),
			schema.AssistantMessage("   ", nil),
		},
	}
	require.NoError(t, mm.FinishTurn(context.Background(), s))

	stored := repo.messages["c1"]
	require.Len(t, stored, 1)
	assert.Equal(t, "real reply", stored[0].Content)
}

func TestFinishTurnWithoutAssistantMessageIsNoop(t *testing.T) {
	repo := newStubConversationRepo()
	mm := NewMessagesManager(repo, model.ConversationConfig{})

	s := &model.State{
		ConversationID: "c1",
		Messages:       []*schema.Message{schema.UserMessage("hi")},
	}
	require.NoError(t, mm.FinishTurn(context.Background(), s))
	assert.Empty(t, repo.messages["c1"])
}
