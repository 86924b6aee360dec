package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Role identifies who authored a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TimestampLayout is the display layout of message timestamps (HH:MM).
const TimestampLayout = "15:04"

// ContentKind tags the variant held by a Content value.
type ContentKind string

const (
	ContentSingle    ContentKind = "single"
	ContentBroadcast ContentKind = "broadcast"
)

// Content is the body of a Message: SingleContent or BroadcastContent.
type Content interface {
	Kind() ContentKind
	isContent()
}

// SingleContent is the text of one author.
type SingleContent struct {
	Text string
}

func (SingleContent) Kind() ContentKind { return ContentSingle }
func (SingleContent) isContent()        {}

// AgentReply is one agent's answer within a broadcast.
type AgentReply struct {
	AgentID string `json:"agentId"`
	Text    string `json:"text"`
}

// BroadcastContent holds one reply per broadcast agent, in registry order.
type BroadcastContent struct {
	Replies []AgentReply
}

func (BroadcastContent) Kind() ContentKind { return ContentBroadcast }
func (BroadcastContent) isContent()        {}

// Lookup returns the reply text of agentID.
func (b BroadcastContent) Lookup(agentID string) (string, bool) {
	for _, r := range b.Replies {
		if r.AgentID == agentID {
			return r.Text, true
		}
	}
	return "", false
}

// Message is a single entry of a conversation history.
type Message struct {
	Role      Role
	Content   Content
	Timestamp string
	AgentID   string // empty for user messages and broadcast replies
}

// NewUserMessage builds a user message stamped with now.
func NewUserMessage(text string, now time.Time) Message {
	return Message{Role: RoleUser, Content: SingleContent{Text: text}, Timestamp: now.Format(TimestampLayout)}
}

// NewAgentMessage builds a single-agent assistant message.
func NewAgentMessage(agentID, text string, now time.Time) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   SingleContent{Text: text},
		Timestamp: now.Format(TimestampLayout),
		AgentID:   agentID,
	}
}

// NewBroadcastMessage builds the assistant message of a broadcast turn.
func NewBroadcastMessage(replies []AgentReply, now time.Time) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   BroadcastContent{Replies: replies},
		Timestamp: now.Format(TimestampLayout),
	}
}

// Text returns the content of a single-content message, or "" otherwise.
func (m Message) Text() string {
	if c, ok := m.Content.(SingleContent); ok {
		return c.Text
	}
	return ""
}

// MarshalJSON renders content as a string for single messages and as an
// object keyed by agent id, in registry order, for broadcast messages.
func (m Message) MarshalJSON() ([]byte, error) {
	var content json.RawMessage
	var kind ContentKind
	var err error

	switch c := m.Content.(type) {
	case BroadcastContent:
		kind = ContentBroadcast
		content, err = marshalReplies(c.Replies)
	case SingleContent:
		kind = ContentSingle
		content, err = json.Marshal(c.Text)
	default:
		kind = ContentSingle
		content = json.RawMessage(`""`)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(struct {
		Role        Role            `json:"role"`
		ContentType ContentKind     `json:"contentType"`
		Content     json.RawMessage `json:"content"`
		Timestamp   string          `json:"timestamp"`
		AgentID     string          `json:"agentId,omitempty"`
	}{m.Role, kind, content, m.Timestamp, m.AgentID})
}

func marshalReplies(replies []AgentReply) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range replies {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(r.AgentID)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ChatType classifies the conversation context of a channel message.
type ChatType string

const (
	ChatTypeDM    ChatType = "dm"
	ChatTypeGroup ChatType = "group"
)

// InboundMessage is a message received from a messaging channel.
type InboundMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channelId"`
	From      string    `json:"from"`
	ChatID    string    `json:"chatId"`
	ChatType  ChatType  `json:"chatType"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// OutboundMessage is a message to be sent via a messaging channel.
type OutboundMessage struct {
	ChannelID string `json:"channelId"`
	To        string `json:"to"`
	Body      string `json:"body"`
}
