package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"

	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// OpenAIConfig configures an OpenAI Chat Completions client. BaseURL points
// it at any compatible endpoint (OpenRouter, Ollama, vLLM).
type OpenAIConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Headers map[string]string
	Timeout time.Duration
}

// OpenAIClient implements Client using the OpenAI SDK.
type OpenAIClient struct {
	name   string
	model  string
	client openai.Client
	log    *logging.Logger
}

// NewOpenAIClient creates a client. SDK retries are disabled: a failed call
// is reported to the caller, which decides what to do.
func NewOpenAIClient(cfg OpenAIConfig, log *logging.Logger) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	opts := []oaioption.RequestOption{oaioption.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, oaioption.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(cfg.BaseURL))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, oaioption.WithHeader(k, v))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, oaioption.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAIClient{
		name:   cfg.Name,
		model:  cfg.Model,
		client: openai.NewClient(opts...),
		log:    log.Sub("llm." + cfg.Name),
	}
}

func (c *OpenAIClient) Name() string { return c.name }

func (c *OpenAIClient) NativeTools() bool { return true }

// Complete sends one chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Messages: openAIMessages(req),
		Model:    model,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if len(req.Tools) > 0 {
		tools, err := openAITools(req.Tools)
		if err != nil {
			return nil, &ProviderError{Provider: c.name, Message: err.Error(), Err: err}
		}
		params.Tools = tools
	}

	c.log.Debug().
		Str("model", model).
		Int("messages", len(params.Messages)).
		Int("tools", len(params.Tools)).
		Msg("chat completion request")

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: c.name, Message: "no choices returned"}
	}

	choice := resp.Choices[0]
	out := &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Model:      resp.Model,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Duration: time.Since(start),
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: tc.Function.Arguments,
		})
	}
	return out, nil
}

func (c *OpenAIClient) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: c.name, Message: apiErr.Error(), Code: apiErr.StatusCode, Err: err}
	}
	return &ProviderError{Provider: c.name, Message: err.Error(), Err: err}
}

// openAIMessages converts the request into chat messages, system first.
func openAIMessages(req CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleAssistant:
			if len(m.ToolCalls) == 0 {
				msgs = append(msgs, openai.AssistantMessage(m.Content))
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID:   tc.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: tc.Input,
					},
				})
			}
			msgs = append(msgs, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: calls,
				},
			})
		case RoleTool:
			msgs = append(msgs, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	return msgs
}

func openAITools(defs []ToolDefinition) ([]openai.ChatCompletionToolParam, error) {
	tools := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		schema, err := parseSchema(d.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", d.Name, err)
		}
		tools = append(tools, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  schema,
			},
		})
	}
	return tools, nil
}

// parseSchema decodes a JSON Schema string; empty means an object without properties.
func parseSchema(s string) (map[string]any, error) {
	if s == "" {
		return map[string]any{"type": "object", "properties": map[string]any{}}, nil
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(s), &schema); err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	return schema, nil
}
