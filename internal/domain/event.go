package domain

// EventType names a conversation event.
type EventType string

const (
	EventNewUserMessage      EventType = "new_user_message"
	EventAgentRouted         EventType = "agent_routed"
	EventAgentResponded      EventType = "agent_responded"
	EventBookingResult       EventType = "booking_result"
	EventConversationCleared EventType = "conversation_cleared"
)

// Event is emitted by the conversation engine for presentation adapters.
type Event struct {
	Type    EventType      `json:"type"`
	AgentID string         `json:"agentId,omitempty"`
	Message *Message       `json:"message,omitempty"`
	Booking *BookingResult `json:"booking,omitempty"`
}

// MessageEvent wraps m in an event of type t.
func MessageEvent(t EventType, m Message) Event {
	return Event{Type: t, AgentID: m.AgentID, Message: &m}
}
