package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	antoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// defaultAnthropicMaxTokens is used when the request sets no ceiling; the
// Messages API requires one.
const defaultAnthropicMaxTokens = 1024

// AnthropicConfig configures an Anthropic Messages API client.
type AnthropicConfig struct {
	Name    string
	APIKey  string
	BaseURL string
	Model   string
	Headers map[string]string
	Timeout time.Duration
}

// AnthropicClient implements Client using the Anthropic SDK.
type AnthropicClient struct {
	name   string
	model  string
	client anthropic.Client
	log    *logging.Logger
}

// NewAnthropicClient creates a client with SDK retries disabled.
func NewAnthropicClient(cfg AnthropicConfig, log *logging.Logger) *AnthropicClient {
	if cfg.Name == "" {
		cfg.Name = "anthropic"
	}
	opts := []antoption.RequestOption{antoption.WithMaxRetries(0)}
	if cfg.APIKey != "" {
		opts = append(opts, antoption.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, antoption.WithBaseURL(cfg.BaseURL))
	}
	for k, v := range cfg.Headers {
		opts = append(opts, antoption.WithHeader(k, v))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, antoption.WithRequestTimeout(cfg.Timeout))
	}

	return &AnthropicClient{
		name:   cfg.Name,
		model:  cfg.Model,
		client: anthropic.NewClient(opts...),
		log:    log.Sub("llm." + cfg.Name),
	}
}

func (c *AnthropicClient) Name() string { return c.name }

func (c *AnthropicClient) NativeTools() bool { return true }

// Complete sends one Messages API request.
func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  anthropicMessages(req.Messages),
		MaxTokens: int64(maxTokens),
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		tools, err := anthropicTools(req.Tools)
		if err != nil {
			return nil, &ProviderError{Provider: c.name, Message: err.Error(), Err: err}
		}
		params.Tools = tools
	}

	c.log.Debug().
		Str("model", model).
		Int("messages", len(params.Messages)).
		Int("tools", len(params.Tools)).
		Msg("messages request")

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: c.name, Message: apiErr.Error(), Code: apiErr.StatusCode, Err: err}
		}
		return nil, &ProviderError{Provider: c.name, Message: err.Error(), Err: err}
	}

	out := &CompletionResponse{
		StopReason: string(resp.StopReason),
		Model:      string(resp.Model),
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.AsText().Text)
		case "tool_use":
			tu := block.AsToolUse()
			input := "{}"
			if tu.Input != nil {
				if b, err := json.Marshal(tu.Input); err == nil {
					input = string(b)
				}
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{ID: tu.ID, Name: tu.Name, Input: input})
		}
	}
	out.Content = text.String()
	out.Duration = time.Since(start)
	return out, nil
}

// anthropicMessages converts messages; consecutive tool results are merged
// into one user turn as the Messages API expects.
func anthropicMessages(in []Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	var results []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(results) > 0 {
			out = append(out, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, m := range in {
		if m.Role == RoleTool {
			results = append(results, anthropic.NewToolResultBlock(m.ToolCallID, m.Content, m.IsError))
			continue
		}
		flush()

		switch m.Role {
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var input any = map[string]any{}
				if tc.Input != "" && json.Valid([]byte(tc.Input)) {
					input = json.RawMessage(tc.Input)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	flush()
	return out
}

func anthropicTools(defs []ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	tools := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, d := range defs {
		schema, err := parseSchema(d.InputSchema)
		if err != nil {
			return nil, err
		}
		input := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if props, ok := schema["properties"]; ok {
			input.Properties = props
		}
		if req, ok := schema["required"].([]any); ok {
			for _, r := range req {
				if s, ok := r.(string); ok {
					input.Required = append(input.Required, s)
				}
			}
		}
		tool := anthropic.ToolUnionParamOfTool(input, d.Name)
		if tool.OfTool != nil && d.Description != "" {
			tool.OfTool.Description = anthropic.String(d.Description)
		}
		tools = append(tools, tool)
	}
	return tools, nil
}
