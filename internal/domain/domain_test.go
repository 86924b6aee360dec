package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	return NewRegistry("test", "Triage Agent",
		AgentDefinition{ID: "Triage Agent", Instruction: "triage", Color: "#FF9999"},
		AgentDefinition{ID: "Billing Agent", Instruction: "billing", Routing: "billing", Tools: []string{"lookup"}},
		AgentDefinition{ID: "Pharmacy Agent", Instruction: "pharmacy", Routing: "prescriptions"},
	)
}

// --- Registry tests ---

func TestRegistryLookup(t *testing.T) {
	r := testRegistry()

	d, ok := r.Lookup("Billing Agent")
	require.True(t, ok)
	assert.Equal(t, "billing", d.Instruction)
	assert.True(t, d.HasTools())

	_, ok = r.Lookup("Nobody")
	assert.False(t, ok)
	assert.True(t, r.Has("Pharmacy Agent"))
	assert.False(t, r.Has("pharmacy agent"))
}

func TestRegistryOrder(t *testing.T) {
	r := testRegistry()
	assert.Equal(t, []string{"Triage Agent", "Billing Agent", "Pharmacy Agent"}, r.IDs())
	assert.Equal(t, 3, r.Len())

	spec := r.Specialists()
	require.Len(t, spec, 2)
	assert.Equal(t, "Billing Agent", spec[0].ID)
	assert.Equal(t, "Pharmacy Agent", spec[1].ID)
}

func TestRegistryReturnsCopies(t *testing.T) {
	r := testRegistry()

	d := r.MustLookup("Billing Agent")
	d.Tools[0] = "mutated"
	d.Instruction = "mutated"

	again := r.MustLookup("Billing Agent")
	assert.Equal(t, "billing", again.Instruction)
	assert.Equal(t, []string{"lookup"}, again.Tools)

	ids := r.IDs()
	ids[0] = "mutated"
	assert.Equal(t, "Triage Agent", r.IDs()[0])
}

func TestRegistryDefaultAgent(t *testing.T) {
	assert.Equal(t, "Triage Agent", testRegistry().DefaultAgentID())

	broadcast := NewRegistry("b", "", AgentDefinition{ID: "A", Instruction: "a"})
	assert.Equal(t, "", broadcast.TriageID())
	assert.Equal(t, AllAgentsLabel, broadcast.DefaultAgentID())
	assert.Len(t, broadcast.Specialists(), 1)
}

func TestRegistryContractViolations(t *testing.T) {
	assert.Panics(t, func() {
		NewRegistry("dup", "", AgentDefinition{ID: "A"}, AgentDefinition{ID: "A"})
	})
	assert.Panics(t, func() {
		NewRegistry("empty", "", AgentDefinition{})
	})
	assert.Panics(t, func() {
		NewRegistry("triage", "Missing", AgentDefinition{ID: "A"})
	})
	assert.Panics(t, func() {
		testRegistry().MustLookup("Nobody")
	})
}

// --- Message tests ---

func TestMessageConstructors(t *testing.T) {
	now := time.Date(2026, 10, 14, 9, 5, 0, 0, time.UTC)

	u := NewUserMessage("hi", now)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, "09:05", u.Timestamp)
	assert.Equal(t, "hi", u.Text())
	assert.Empty(t, u.AgentID)

	a := NewAgentMessage("Billing Agent", "hello", now)
	assert.Equal(t, RoleAssistant, a.Role)
	assert.Equal(t, "Billing Agent", a.AgentID)
	assert.Equal(t, ContentSingle, a.Content.Kind())

	b := NewBroadcastMessage([]AgentReply{{AgentID: "A", Text: "x"}}, now)
	assert.Empty(t, b.AgentID)
	assert.Equal(t, ContentBroadcast, b.Content.Kind())
	assert.Empty(t, b.Text())

	text, ok := b.Content.(BroadcastContent).Lookup("A")
	assert.True(t, ok)
	assert.Equal(t, "x", text)
}

func TestMessageJSONSingle(t *testing.T) {
	m := NewAgentMessage("Pharmacy Agent", "Take with food.", time.Date(2026, 1, 1, 14, 30, 0, 0, time.UTC))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"role": "assistant",
		"contentType": "single",
		"content": "Take with food.",
		"timestamp": "14:30",
		"agentId": "Pharmacy Agent"
	}`, string(data))
}

func TestMessageJSONBroadcastKeepsOrder(t *testing.T) {
	m := NewBroadcastMessage([]AgentReply{
		{AgentID: "Zeta", Text: "last alphabetically"},
		{AgentID: "Alpha", Text: "first alphabetically"},
	}, time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content":{"Zeta":"last alphabetically","Alpha":"first alphabetically"}`)
	assert.NotContains(t, string(data), "agentId")
	assert.Contains(t, string(data), `"contentType":"broadcast"`)
}

// --- ConversationState tests ---

func TestConversationStateAppendCopies(t *testing.T) {
	now := time.Now()
	s0 := NewConversationState("Triage Agent")
	s1 := s0.Append(NewUserMessage("one", now))
	s2 := s1.Append(NewUserMessage("two", now))

	assert.Empty(t, s0.History)
	assert.Len(t, s1.History, 1)
	assert.Len(t, s2.History, 2)

	last, ok := s2.Last()
	require.True(t, ok)
	assert.Equal(t, "two", last.Text())

	_, ok = s0.Last()
	assert.False(t, ok)
}

func TestConversationStateClone(t *testing.T) {
	s := NewConversationState("Triage Agent").Append(NewUserMessage("one", time.Now()))
	c := s.Clone()
	c.History[0] = NewUserMessage("changed", time.Now())
	assert.Equal(t, "one", s.History[0].Text())

	empty := ConversationState{}.Clone()
	assert.NotNil(t, empty.History)
}

// --- Appointment tests ---

func TestSlotKey(t *testing.T) {
	assert.Equal(t, "2026-10-14_15:00", SlotKey("2026-10-14", "15:00"))
	r := AppointmentRecord{Date: "2026-10-14", Time: "09:30"}
	assert.Equal(t, "2026-10-14_09:30", r.Key())
}

func TestMessageEvent(t *testing.T) {
	m := NewAgentMessage("A", "x", time.Now())
	e := MessageEvent(EventAgentResponded, m)
	assert.Equal(t, EventAgentResponded, e.Type)
	assert.Equal(t, "A", e.AgentID)
	require.NotNil(t, e.Message)
	assert.Equal(t, "x", e.Message.Text())
}

// --- SessionKey tests ---

func TestSessionKeyString(t *testing.T) {
	tests := []struct {
		name string
		key  SessionKey
		want string
	}{
		{"with sender", SessionKey{ChannelID: "irc", ChatID: "#clinic", SenderID: "alice"}, "irc:#clinic:alice"},
		{"without sender", SessionKey{ChannelID: "irc", ChatID: "#clinic"}, "irc:#clinic"},
		{"empty fields", SessionKey{}, ":"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}
