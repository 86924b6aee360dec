package routing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/KLM-Solutions/swarm-bot/internal/catalog"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/llm"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func replying(content string) *llm.MockClient {
	return &llm.MockClient{
		ProviderName: "mock",
		CompleteFunc: func(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: content}, nil
		},
	}
}

func TestClassify_ExactMatch(t *testing.T) {
	temp := 0.3
	var got llm.CompletionRequest
	mock := &llm.MockClient{
		CompleteFunc: func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			got = req
			return &llm.CompletionResponse{Content: "  Medical Advice Agent\n"}, nil
		},
	}
	r := NewRouter(mock, Config{Model: "gpt-4o-mini", Temperature: &temp, MaxTokens: 1000}, testLogger())

	agentID := r.Classify(context.Background(), "I have a rash, what should I do?", catalog.Healthcare())
	assert.Equal(t, "Medical Advice Agent", agentID)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.3, *got.Temperature)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "I have a rash, what should I do?", got.Messages[0].Content)
	assert.True(t, strings.HasPrefix(got.System, "Analyze the following message"))
}

func TestClassify_FallsBackToTriage(t *testing.T) {
	reg := catalog.Product()
	tests := []struct {
		name   string
		client llm.Client
	}{
		{"unknown label", replying("Sales Agent")},
		{"empty", replying("")},
		{"partial match", replying("The UX Design Agent")},
		{"wrong case", replying("ux design agent")},
		{"gateway error", &llm.MockClient{
			CompleteFunc: func(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
				return nil, errors.New("401 unauthorized")
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(tt.client, Config{}, testLogger())
			assert.Equal(t, catalog.TriageAgent, r.Classify(context.Background(), "hello", reg))
		})
	}
}

func TestClassify_AlwaysRegistryMember(t *testing.T) {
	reg := catalog.Product()
	for _, label := range []string{"Product Strategy Agent", "garbage", "Triage Agent", "\tMarket Research Agent ", "Medical Advice Agent"} {
		r := NewRouter(replying(label), Config{}, testLogger())
		assert.True(t, reg.Has(r.Classify(context.Background(), "msg", reg)), label)
	}
}

func TestBuildRoutingPrompt(t *testing.T) {
	prompt := BuildRoutingPrompt(catalog.Product())
	want := "Analyze the following message and determine which specialist should handle it:\n" +
		"- If about product strategy/roadmap → 'Product Strategy Agent'\n" +
		"- If about market/competition → 'Market Research Agent'\n" +
		"- If about technical feasibility → 'Technical Advisor Agent'\n" +
		"- If about user experience/design → 'UX Design Agent'\n" +
		"- If unclear or general → 'Triage Agent'\n" +
		"Only respond with the exact agent name."
	assert.Equal(t, want, prompt)
}

func TestBuildRoutingPrompt_DefaultRule(t *testing.T) {
	reg := domain.NewRegistry("tiny", "Front Desk",
		domain.AgentDefinition{ID: "Front Desk", Instruction: "hi"},
		domain.AgentDefinition{ID: "Billing", Instruction: "bill"},
	)
	prompt := BuildRoutingPrompt(reg)
	assert.Contains(t, prompt, "- If about billing → 'Billing'\n")
	assert.Contains(t, prompt, "- If unclear or general → 'Front Desk'\n")
}

func TestSessionKey_PerSender(t *testing.T) {
	msg := domain.InboundMessage{
		ChannelID: "irc",
		From:      "alice",
		ChatID:    "#general",
	}

	key := ResolveSessionKey(msg, ScopePerSender)
	assert.Equal(t, "irc", key.ChannelID)
	assert.Equal(t, "#general", key.ChatID)
	assert.Equal(t, "alice", key.SenderID)
}

func TestSessionKey_Global(t *testing.T) {
	msg := domain.InboundMessage{
		ChannelID: "irc",
		From:      "alice",
		ChatID:    "#general",
	}

	key := ResolveSessionKey(msg, ScopeGlobal)
	assert.Equal(t, "#general", key.ChatID)
	assert.Empty(t, key.SenderID) // No sender in global mode
}

func TestSessionKey_DefaultScope(t *testing.T) {
	msg := domain.InboundMessage{ChannelID: "irc", From: "bob", ChatID: "#test"}
	key := ResolveSessionKey(msg, "")
	assert.Equal(t, "bob", key.SenderID) // Defaults to per-sender
}
