package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/conversation"
	"github.com/KLM-Solutions/swarm-bot/internal/llm"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

func testClient() *llm.MockClient {
	return &llm.MockClient{
		ProviderName: "mock",
		Native:       true,
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			last := req.Messages[len(req.Messages)-1].Content
			if strings.HasPrefix(req.System, "Analyze the following message") {
				if strings.Contains(last, "appointment") {
					return &llm.CompletionResponse{Content: "Appointment Scheduling Agent"}, nil
				}
				return &llm.CompletionResponse{Content: "unsure"}, nil
			}
			if len(req.Tools) > 0 && len(req.Messages) == 1 {
				return &llm.CompletionResponse{ToolCalls: []llm.ToolCall{{
					ID:    "call_1",
					Name:  "book_appointment",
					Input: `{"date":"2026-10-21","time":"15:00"}`,
				}}}, nil
			}
			return &llm.CompletionResponse{Content: "reply to: " + last}, nil
		},
	}
}

func testManager(t *testing.T) *conversation.Manager {
	t.Helper()
	c := config.Defaults()
	m, err := conversation.NewManagerFromConfig(&c, testClient(), nil, nil, logging.New(nil, "silent"))
	require.NoError(t, err)
	return m
}

func TestRunChat_SingleView(t *testing.T) {
	m := testManager(t)
	in := strings.NewReader("hello\n\n/agents\n/clear\n/quit\n")
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), m, "product", in, &out))

	s := out.String()
	assert.Contains(t, s, "swarmbot product (")
	assert.Contains(t, s, "[Triage Agent] > ")
	assert.Contains(t, s, "Triage Agent: reply to: hello")
	assert.Contains(t, s, "  Triage Agent\n")
	assert.Contains(t, s, "Conversation cleared.")
	assert.Equal(t, 0, m.Count(), "session ends when the loop exits")
}

func TestRunChat_Booking(t *testing.T) {
	m := testManager(t)
	in := strings.NewReader("book an appointment\nbook an appointment\n/appointments\n")
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), m, "healthcare", in, &out))

	s := out.String()
	assert.Contains(t, s, "[booking] Appointment booked for 2026-10-21 at 15:00.")
	assert.Contains(t, s, "already booked")
	assert.Contains(t, s, "[Appointment Scheduling Agent] > ")
	assert.Equal(t, 1, strings.Count(s, "  2026-10-21 15:00 (booked "))
}

func TestRunChat_NoLedger(t *testing.T) {
	m := testManager(t)
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), m, "product", strings.NewReader("/appointments\n"), &out))
	assert.Contains(t, out.String(), "error: ")
}

func TestRunChat_UnknownView(t *testing.T) {
	m := testManager(t)
	err := runChat(context.Background(), m, "missing", strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, conversation.ErrUnknownView)
}

func TestRunChat_Broadcast(t *testing.T) {
	m := testManager(t)
	var out bytes.Buffer

	require.NoError(t, runChat(context.Background(), m, "product-broadcast", strings.NewReader("ideas?\n"), &out))
	s := out.String()
	assert.Contains(t, s, "Agent Responses:")
	assert.NotContains(t, s, "[Triage Agent] reply")
}

func TestListAgents(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listAgents(&out, config.DefaultViews(), ""))

	s := out.String()
	assert.Contains(t, s, "product (registry=product mode=single booking=false)")
	assert.Contains(t, s, "healthcare (registry=healthcare mode=single booking=true)")
	assert.Contains(t, s, "* Triage Agent")
	assert.Contains(t, s, "Appointment Scheduling Agent")
}

func TestListAgents_Filter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listAgents(&out, config.DefaultViews(), "healthcare"))
	assert.NotContains(t, out.String(), "registry=product")

	err := listAgents(&out, config.DefaultViews(), "nope")
	assert.ErrorContains(t, err, `unknown view "nope"`)

	err = listAgents(&out, []config.ViewConfig{{Name: "x", Registry: "bogus"}}, "")
	assert.ErrorContains(t, err, "unknown registry")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"FALSE", false},
		{"18790", 18790},
		{"0.2", 0.2},
		{"1", 1},
		{"loopback", "loopback"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

func TestPrintValue(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printValue(&out, map[string]any{"port": 1}))
	assert.Equal(t, "port: 1\n", out.String())

	out.Reset()
	require.NoError(t, printValue(&out, "x"))
	assert.Equal(t, "x\n", out.String())
}

func TestRedacted(t *testing.T) {
	c := config.Defaults()
	c.Models.Providers = map[string]config.ModelProviderEntry{
		"openai": {APIKey: "sk-1234567890"},
		"env":    {APIKey: "${OPENAI_API_KEY}"},
		"short":  {APIKey: "abc"},
	}
	c.Channels.IRC = &config.IRCConfig{Password: "ircsecret123"}

	r := redacted(c)
	assert.Equal(t, "sk-1****", r.Models.Providers["openai"].APIKey)
	assert.Equal(t, "${OPENAI_API_KEY}", r.Models.Providers["env"].APIKey)
	assert.Equal(t, "****", r.Models.Providers["short"].APIKey)
	assert.Equal(t, "ircs****", r.Channels.IRC.Password)
	assert.Equal(t, "sk-1234567890", c.Models.Providers["openai"].APIKey, "input untouched")
	assert.Equal(t, "ircsecret123", c.Channels.IRC.Password)
}

func TestBridgeConfig(t *testing.T) {
	c := config.Defaults()
	bc := bridgeConfig(&c)
	assert.Equal(t, c.Views[0].Name, bc.DefaultView)
	assert.Nil(t, bc.Views)

	c.Channels.IRC = &config.IRCConfig{
		View:  "healthcare",
		Views: map[string]string{"#pm": "product"},
	}
	bc = bridgeConfig(&c)
	assert.Equal(t, "healthcare", bc.DefaultView)
	assert.Equal(t, "product", bc.Views["#pm"])
}

func TestPrintStatus(t *testing.T) {
	c := config.Defaults()
	p := config.PathsAt(t.TempDir())

	var out bytes.Buffer
	printStatus(&out, p, &c)

	s := out.String()
	assert.Contains(t, s, "(not found, using defaults)")
	assert.Contains(t, s, "Views:     product, product-broadcast, healthcare")
	assert.Contains(t, s, "IRC:       (not configured)")
}

func TestConfigSetGetUnset(t *testing.T) {
	saved := paths
	t.Cleanup(func() { paths = saved })
	paths = config.PathsAt(t.TempDir())

	run := func(cmd *cobra.Command, args ...string) (string, error) {
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run(newConfigSetCmd(), "gateway.port", "19000")
	require.NoError(t, err)
	assert.Equal(t, "Set gateway.port = 19000\n", out)

	out, err = run(newConfigGetCmd(), "Gateway.Port")
	require.NoError(t, err)
	assert.Equal(t, "19000\n", out)

	out, err = run(newConfigUnsetCmd(), "gateway.port")
	require.NoError(t, err)
	assert.Equal(t, "Unset gateway.port\n", out)

	_, err = run(newConfigGetCmd(), "gateway.port")
	assert.ErrorContains(t, err, "not found")

	_, err = run(newConfigUnsetCmd(), "gateway.port")
	assert.ErrorContains(t, err, "not found")

	_, err = run(newConfigSetCmd(), "gateway..port", "1")
	assert.Error(t, err)
}
