package conversation

import (
	"fmt"
	"strings"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
)

// FormatMessage renders a history entry as plain text:
//
//	14:05 - You: hello
//	14:05 - Triage Agent: hi
//	14:06 - Agent Responses:
//	[UX Design Agent] ...
func FormatMessage(m domain.Message) string {
	switch c := m.Content.(type) {
	case domain.BroadcastContent:
		var b strings.Builder
		fmt.Fprintf(&b, "%s - Agent Responses:", m.Timestamp)
		for _, r := range c.Replies {
			fmt.Fprintf(&b, "\n[%s] %s", r.AgentID, r.Text)
		}
		return b.String()
	case domain.SingleContent:
		return fmt.Sprintf("%s - %s: %s", m.Timestamp, speaker(m), c.Text)
	default:
		return fmt.Sprintf("%s - %s:", m.Timestamp, speaker(m))
	}
}

// FormatHistory renders every message, separated by blank lines.
func FormatHistory(state domain.ConversationState) string {
	parts := make([]string, 0, len(state.History))
	for _, m := range state.History {
		parts = append(parts, FormatMessage(m))
	}
	return strings.Join(parts, "\n\n")
}

func speaker(m domain.Message) string {
	if m.Role == domain.RoleUser {
		return "You"
	}
	if m.AgentID == "" {
		return "Assistant"
	}
	return m.AgentID
}

// LastReply returns the newest assistant message in events.
func LastReply(events []domain.Event) (domain.Message, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		if ev.Type == domain.EventAgentResponded && ev.Message != nil {
			return *ev.Message, true
		}
	}
	return domain.Message{}, false
}
