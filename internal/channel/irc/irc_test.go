package irc

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestNew(t *testing.T) {
	cfg := config.IRCConfig{
		Server:   "irc.libera.chat",
		Port:     6697,
		Nick:     "swarmbot",
		Channels: []string{"#product"},
		UseTLS:   true,
	}
	ch := New(cfg, testLogger())
	assert.Equal(t, "irc", ch.ID())
	var _ domain.Channel = ch
}

func TestStatus_NotStarted(t *testing.T) {
	ch := New(config.IRCConfig{}, testLogger())
	status := ch.Status()

	assert.Equal(t, "irc", status.ChannelID)
	assert.False(t, status.Connected)
	assert.False(t, status.Running)
	assert.Empty(t, status.LastError)
}

func TestDeliverInbound(t *testing.T) {
	ch := New(config.IRCConfig{}, testLogger())

	var received domain.InboundMessage
	ch.OnMessage(func(msg domain.InboundMessage) {
		received = msg
	})

	ch.deliverInbound("alice", "#healthcare", domain.ChatTypeGroup, "book me in")

	assert.NotEmpty(t, received.ID)
	assert.Equal(t, "irc", received.ChannelID)
	assert.Equal(t, "alice", received.From)
	assert.Equal(t, "#healthcare", received.ChatID)
	assert.Equal(t, domain.ChatTypeGroup, received.ChatType)
	assert.Equal(t, "book me in", received.Body)
	assert.WithinDuration(t, time.Now(), received.Timestamp, time.Minute)
}

func TestDeliverInbound_NoHandler(t *testing.T) {
	ch := New(config.IRCConfig{}, testLogger())
	// Should not panic
	ch.deliverInbound("alice", "#x", domain.ChatTypeGroup, "hi")
}

func TestAddressedTo(t *testing.T) {
	tests := []struct {
		body   string
		want   string
		wantOK bool
	}{
		{"swarmbot: hello", "hello", true},
		{"swarmbot, hello", "hello", true},
		{"swarmbot hello", "hello", true},
		{"SwarmBot: hello", "hello", true},
		{"  swarmbot:   !clear  ", "!clear", true},
		{"swarmbot", "", true},
		{"swarmbots: hello", "", false},
		{"hello swarmbot", "", false},
		{"hi", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			got, ok := addressedTo(tt.body, "swarmbot")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := addressedTo("anything", "")
	assert.False(t, ok)
}

func TestSend_NotConnected(t *testing.T) {
	ch := New(config.IRCConfig{}, testLogger())
	err := ch.Send(context.Background(), domain.OutboundMessage{To: "#test", Body: "hi"})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestStop_NotStarted(t *testing.T) {
	ch := New(config.IRCConfig{}, testLogger())
	assert.NoError(t, ch.Stop(context.Background()))
}

func TestSplitMessage_Short(t *testing.T) {
	assert.Equal(t, []string{"hello world"}, splitMessage("hello world", 400))
}

func TestSplitMessage_MultiLine(t *testing.T) {
	text := "14:05 - Agent Responses:\n[UX Design Agent] one\n\n[Market Research Agent] two"
	assert.Equal(t, []string{
		"14:05 - Agent Responses:",
		"[UX Design Agent] one",
		"[Market Research Agent] two",
	}, splitMessage(text, 400))
}

func TestSplitMessage_LongLine(t *testing.T) {
	text := strings.Repeat("abcdefghij", 3) + "xyz"
	result := splitMessage(text, 10)
	require.Len(t, result, 4)
	for _, chunk := range result {
		assert.LessOrEqual(t, len(chunk), 10)
	}
	assert.Equal(t, text, strings.Join(result, ""))
}

func TestSplitMessage_Empty(t *testing.T) {
	assert.Equal(t, []string{""}, splitMessage("", 400))
}

func TestSplitMessage_RuneBoundary(t *testing.T) {
	text := strings.Repeat("é", 6) // 12 bytes
	result := splitMessage(text, 5)
	assert.Equal(t, []string{"éé", "éé", "éé"}, result)
	for _, chunk := range result {
		assert.True(t, utf8.ValidString(chunk))
	}
}

func TestClientConfig(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.IRCConfig
		port       int
		sasl       bool
		serverPass string
	}{
		{"plain default port", config.IRCConfig{Server: "irc.example", Nick: "bot"}, 6667, false, ""},
		{"tls default port", config.IRCConfig{Server: "irc.example", Nick: "bot", UseTLS: true}, 6697, false, ""},
		{"explicit port", config.IRCConfig{Server: "irc.example", Nick: "bot", Port: 7000}, 7000, false, ""},
		{"server password", config.IRCConfig{Nick: "bot", Password: "pw"}, 6667, false, "pw"},
		{"sasl", config.IRCConfig{Nick: "bot", Password: "pw", SASL: true}, 6667, true, ""},
		{"sasl without password", config.IRCConfig{Nick: "bot", SASL: true}, 6667, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := clientConfig(tt.cfg)
			assert.Equal(t, tt.port, gc.Port)
			assert.Equal(t, tt.sasl, gc.SASL != nil)
			assert.Equal(t, tt.serverPass, gc.ServerPass)
			assert.Equal(t, tt.cfg.UseTLS, gc.TLSConfig != nil)
			assert.Equal(t, "bot", gc.User)
		})
	}
}
