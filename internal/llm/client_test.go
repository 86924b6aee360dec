package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

// --- Registry tests ---

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("test-provider", &MockClient{ProviderName: "test-provider"})

	client, err := reg.Resolve("test-provider")
	require.NoError(t, err)
	assert.Equal(t, "test-provider", client.Name())
}

func TestRegistryAlias(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("openai", &MockClient{ProviderName: "openai"})
	reg.Alias("gpt-4o-mini", "openai")

	client, err := reg.Resolve("gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

func TestRegistryFallback(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("default-llm", &MockClient{ProviderName: "default-llm"})
	reg.SetFallback("default-llm")

	client, err := reg.Resolve("unknown-model-xyz")
	require.NoError(t, err)
	assert.Equal(t, "default-llm", client.Name())
}

func TestRegistryNoMatch(t *testing.T) {
	reg := NewRegistry(silentLog())
	_, err := reg.Resolve("anything")
	assert.Error(t, err)
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("b", &MockClient{ProviderName: "b"})
	reg.Register("a", &MockClient{ProviderName: "a"})
	assert.Equal(t, []string{"a", "b"}, reg.List())
}

func TestNewRegistryFromConfig(t *testing.T) {
	cfg := config.ModelsConfig{
		Primary:   "openai",
		Fallbacks: []string{"claude"},
		Providers: map[string]config.ModelProviderEntry{
			"openai": {API: config.APIOpenAICompletions, APIKey: "sk-test", Model: "gpt-4o-mini"},
			"claude": {API: config.APIAnthropicMessages, APIKey: "sk-ant", Model: "claude-3-5-haiku-latest"},
		},
	}

	reg, err := NewRegistryFromConfig(cfg, silentLog())
	require.NoError(t, err)
	assert.Equal(t, []string{"claude", "openai"}, reg.List())

	c, err := reg.Resolve("claude-3-5-haiku-latest")
	require.NoError(t, err)
	assert.Equal(t, "claude", c.Name())
	assert.IsType(t, &AnthropicClient{}, c)

	c, err = reg.Resolve("mystery")
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Name())
	assert.IsType(t, &OpenAIClient{}, c)
}

func TestNewRegistryFromConfigUnsupportedAPI(t *testing.T) {
	cfg := config.ModelsConfig{
		Providers: map[string]config.ModelProviderEntry{
			"gemini": {API: "google-generative-ai"},
		},
	}
	_, err := NewRegistryFromConfig(cfg, silentLog())
	var ce *config.ConfigError
	assert.ErrorAs(t, err, &ce)
}

// --- ProviderError tests ---

func TestProviderError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &ProviderError{Provider: "openai", Message: "rate limited", Code: 429}
	assert.Equal(t, "openai: 429 rate limited", err.Error())

	err = &ProviderError{Provider: "openai", Message: "dial tcp: refused", Err: cause}
	assert.Equal(t, "openai: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

// --- MockClient tests ---

func TestMockClient(t *testing.T) {
	m := &MockClient{ProviderName: "mock"}
	resp, err := m.Complete(context.Background(), SingleTurn("sys", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)
	assert.False(t, SupportsNativeTools(m))

	m.Native = true
	m.CompleteFunc = func(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
		return &CompletionResponse{Content: req.System + "|" + req.Messages[0].Content}, nil
	}
	resp, err = m.Complete(context.Background(), SingleTurn("sys", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "sys|hi", resp.Content)
	assert.True(t, SupportsNativeTools(m))
}

func TestSingleTurn(t *testing.T) {
	req := SingleTurn("instruction", "message")
	assert.Equal(t, "instruction", req.System)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, RoleUser, req.Messages[0].Role)
	assert.Equal(t, "message", req.Messages[0].Content)
}

func TestParseSchema(t *testing.T) {
	s, err := parseSchema("")
	require.NoError(t, err)
	assert.Equal(t, "object", s["type"])

	s, err = parseSchema(`{"type":"object","required":["date"]}`)
	require.NoError(t, err)
	assert.Equal(t, []any{"date"}, s["required"])

	_, err = parseSchema("{not json")
	assert.Error(t, err)
}
