package domain

import "slices"

// ConversationState is the state of one conversational view within a session.
// Values are treated as immutable: operations return a new state.
type ConversationState struct {
	History           []Message `json:"history"`
	CurrentAgentID    string    `json:"currentAgentId"`
	PendingSubmission bool      `json:"pendingSubmission"`
}

// NewConversationState returns an empty state addressed to currentAgentID.
func NewConversationState(currentAgentID string) ConversationState {
	return ConversationState{History: []Message{}, CurrentAgentID: currentAgentID}
}

// Append returns a copy of s with msgs appended to the history.
func (s ConversationState) Append(msgs ...Message) ConversationState {
	h := make([]Message, 0, len(s.History)+len(msgs))
	h = append(h, s.History...)
	s.History = append(h, msgs...)
	return s
}

// Clone returns a copy of s that shares no history storage with it.
func (s ConversationState) Clone() ConversationState {
	s.History = slices.Clone(s.History)
	if s.History == nil {
		s.History = []Message{}
	}
	return s
}

// Last returns the newest message.
func (s ConversationState) Last() (Message, bool) {
	if len(s.History) == 0 {
		return Message{}, false
	}
	return s.History[len(s.History)-1], true
}
