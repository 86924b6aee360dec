package conversation

import (
	"testing"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatMessage(t *testing.T) {
	user := domain.NewUserMessage("hello", testNow)
	agentMsg := domain.NewAgentMessage("Triage Agent", "hi there", testNow)
	broadcast := domain.NewBroadcastMessage([]domain.AgentReply{
		{AgentID: "Market Research Agent", Text: "m"},
		{AgentID: "UX Design Agent", Text: "u"},
	}, testNow)

	assert.Equal(t, "14:05 - You: hello", FormatMessage(user))
	assert.Equal(t, "14:05 - Triage Agent: hi there", FormatMessage(agentMsg))
	assert.Equal(t, "14:05 - Agent Responses:\n[Market Research Agent] m\n[UX Design Agent] u", FormatMessage(broadcast))
}

func TestFormatHistory(t *testing.T) {
	state := domain.NewConversationState("Triage Agent").Append(
		domain.NewUserMessage("hello", testNow),
		domain.NewAgentMessage("Triage Agent", "hi", testNow),
	)
	assert.Equal(t, "14:05 - You: hello\n\n14:05 - Triage Agent: hi", FormatHistory(state))
	assert.Empty(t, FormatHistory(domain.NewConversationState("x")))
}

func TestLastReply(t *testing.T) {
	reply := domain.NewAgentMessage("A", "x", testNow)
	events := []domain.Event{
		domain.MessageEvent(domain.EventNewUserMessage, domain.NewUserMessage("q", testNow)),
		domain.MessageEvent(domain.EventAgentResponded, reply),
		{Type: domain.EventConversationCleared},
	}
	got, ok := LastReply(events)
	assert.True(t, ok)
	assert.Equal(t, "x", got.Text())

	_, ok = LastReply(events[:1])
	assert.False(t, ok)
}
