package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/llm"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// maxToolIterations limits how many tool call rounds the agent can perform.
const maxToolIterations = 5

// ErrNoResponse is returned when the provider produced no completion.
var ErrNoResponse = errors.New("no response from LLM")

// ErrToolLimit is returned when the model still asks for tools after
// maxToolIterations rounds. The Reply returned with it carries the tool
// results that did run.
var ErrToolLimit = errors.New("tool call limit reached")

// RunnerConfig configures agent completions.
type RunnerConfig struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Reply is the outcome of one agent answering one message.
type Reply struct {
	AgentID     string        `json:"agentId"`
	Text        string        `json:"text"`
	Model       string        `json:"model,omitempty"`
	Usage       llm.Usage     `json:"usage"`
	Duration    time.Duration `json:"duration"`
	ToolResults []ToolResult  `json:"toolResults,omitempty"`
}

// ToolResult holds the output from executing a tool.
type ToolResult struct {
	Tool   string `json:"tool"`
	CallID string `json:"callId,omitempty"`
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Err    error  `json:"-"`
}

// Runner sends one message to one agent and returns its answer.
// Prior turns are never sent; every call stands alone.
type Runner struct {
	cfg    RunnerConfig
	client llm.Client
	log    *logging.Logger
	now    func() time.Time
}

// NewRunner creates an agent runner.
func NewRunner(cfg RunnerConfig, client llm.Client, log *logging.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		client: client,
		log:    log.Sub("agent"),
		now:    time.Now,
	}
}

// Respond asks the agent defined by def to answer message. Tools the agent
// declares are looked up in tools; missing ones are ignored.
func (r *Runner) Respond(ctx context.Context, def domain.AgentDefinition, message string, tools *ToolRegistry) (*Reply, error) {
	start := r.now()

	available := tools.Subset(def.Tools)
	native := llm.SupportsNativeTools(r.client)
	defs := available.Definitions()

	system := BuildSystemPrompt(PromptConfig{
		Instruction: def.Instruction,
		Tools:       defs,
		InlineTools: !native,
		Now:         start,
	})

	req := llm.SingleTurn(system, message)
	req.Model = r.cfg.Model
	req.MaxTokens = r.cfg.MaxTokens
	req.Temperature = r.cfg.Temperature
	if native {
		req.Tools = defs
	}

	reply := &Reply{AgentID: def.ID}
	var finalResp *llm.CompletionResponse
	wantsTools := false
	for i := 0; i < maxToolIterations; i++ {
		wantsTools = false
		resp, err := r.client.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		finalResp = resp
		reply.Usage.InputTokens += resp.Usage.InputTokens
		reply.Usage.OutputTokens += resp.Usage.OutputTokens

		if available.Len() == 0 {
			break
		}

		calls := resp.ToolCalls
		if len(calls) == 0 {
			calls = parseToolCalls(resp.Content)
		}
		if len(calls) == 0 {
			break
		}

		wantsTools = true
		r.log.Info().Str("agent", def.ID).Int("toolCalls", len(calls)).Msg("executing tool calls")

		results := r.executeToolCalls(ctx, available, calls)
		reply.ToolResults = append(reply.ToolResults, results...)

		if len(resp.ToolCalls) > 0 {
			req.Messages = append(req.Messages, llm.Message{
				Role:      llm.RoleAssistant,
				Content:   resp.Content,
				ToolCalls: resp.ToolCalls,
			})
			for _, tr := range results {
				req.Messages = append(req.Messages, llm.Message{
					Role:       llm.RoleTool,
					Content:    tr.content(),
					ToolCallID: tr.CallID,
					IsError:    tr.Err != nil,
				})
			}
		} else {
			req.Messages = append(req.Messages,
				llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
				llm.Message{Role: llm.RoleUser, Content: formatToolResults(results)},
			)
		}
	}

	if finalResp == nil {
		return nil, ErrNoResponse
	}
	if wantsTools {
		r.log.Warn().Str("agent", def.ID).Int("rounds", maxToolIterations).Msg("tool loop did not settle")
		return reply, fmt.Errorf("%w after %d rounds", ErrToolLimit, maxToolIterations)
	}

	text := finalResp.Content
	if available.Len() > 0 {
		text = stripToolCalls(text, r.log)
	}

	reply.Text = text
	reply.Model = finalResp.Model
	reply.Duration = r.now().Sub(start)

	r.log.Debug().
		Str("agent", def.ID).
		Str("model", finalResp.Model).
		Int("inputTokens", reply.Usage.InputTokens).
		Int("outputTokens", reply.Usage.OutputTokens).
		Dur("duration", reply.Duration).
		Msg("response generated")

	return reply, nil
}

func (tr ToolResult) content() string {
	if tr.Err != nil {
		return "Error: " + tr.Err.Error()
	}
	return tr.Output
}

// inlineCall is a tool invocation written into the response text.
type inlineCall struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// toolCallRe matches ```tool_call\n{...}\n``` blocks in LLM output.
var toolCallRe = regexp.MustCompile("(?s)```tool_call\\s*\n(\\{.*?\\})\n\\s*```")

// xmlFuncCallRe matches <function_calls>...</function_calls> XML blocks in LLM output.
var xmlFuncCallRe = regexp.MustCompile(`(?s)<function_calls>.*?</function_calls>`)

// xmlBlockLevelRe matches self-contained XML blocks that LLMs emit for tool use.
var xmlBlockLevelRe = regexp.MustCompile(`(?s)(?:` +
	`<invoke\b[^>]*>.*?</invoke>` +
	`|<tool_call\b[^>]*>.*?</tool_call>` +
	`|<tool_use\b[^>]*>.*?</tool_use>` +
	`)`)

// xmlInlineTagRe matches parameter tags that can appear inline within text.
var xmlInlineTagRe = regexp.MustCompile(`(?s)<parameter\b[^>]*>.*?</parameter>`)

// whitespaceLineRe matches lines containing only horizontal whitespace.
var whitespaceLineRe = regexp.MustCompile(`(?m)^[ \t]+$`)

// blankLineCollapseRe collapses 3+ consecutive newlines to a single blank line.
var blankLineCollapseRe = regexp.MustCompile(`\n{3,}`)

// spaceRunRe collapses runs of spaces left by inline replacements.
var spaceRunRe = regexp.MustCompile(` {2,}`)

// parseToolCalls extracts tool_call blocks from LLM response text.
func parseToolCalls(text string) []llm.ToolCall {
	matches := toolCallRe.FindAllStringSubmatch(text, -1)
	var calls []llm.ToolCall
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		var ic inlineCall
		if err := json.Unmarshal([]byte(match[1]), &ic); err != nil {
			continue
		}
		if ic.Tool == "" {
			continue
		}
		input := string(ic.Input)
		if input == "" {
			input = "{}"
		}
		calls = append(calls, llm.ToolCall{
			ID:    "call_" + uuid.NewString()[:8],
			Name:  ic.Tool,
			Input: input,
		})
	}
	return calls
}

// executeToolCalls runs each tool and returns results in call order.
func (r *Runner) executeToolCalls(ctx context.Context, tools *ToolRegistry, calls []llm.ToolCall) []ToolResult {
	results := make([]ToolResult, 0, len(calls))
	for _, tc := range calls {
		res := ToolResult{Tool: tc.Name, CallID: tc.ID, Input: tc.Input}

		tool, ok := tools.Get(tc.Name)
		if !ok {
			res.Err = fmt.Errorf("unknown tool: %s", tc.Name)
			results = append(results, res)
			continue
		}
		if err := ValidateInput(tool.InputSchema(), tc.Input); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		r.log.Debug().Str("tool", tc.Name).Str("input", tc.Input).Msg("executing tool")
		res.Output, res.Err = tool.Execute(ctx, tc.Input)
		if res.Err != nil {
			r.log.Warn().Str("tool", tc.Name).Err(res.Err).Msg("tool failed")
		}
		results = append(results, res)
	}
	return results
}

// formatToolResults renders tool execution results for the LLM.
func formatToolResults(results []ToolResult) string {
	var b strings.Builder
	b.WriteString("Tool execution results:\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "### %s\n", r.Tool)
		if r.Err != nil {
			fmt.Fprintf(&b, "Error: %s\n", r.Err)
		} else {
			b.WriteString(r.Output)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stripToolCalls removes tool_call code blocks and XML tool-use markup from
// the response, leaving surrounding text.
func stripToolCalls(text string, log *logging.Logger) string {
	// Block-level elements become a paragraph break, inline tags a space.
	cleaned := toolCallRe.ReplaceAllString(text, "\n\n")

	xmlMatches := xmlFuncCallRe.FindAllString(cleaned, -1)
	if len(xmlMatches) > 0 && log != nil {
		for _, m := range xmlMatches {
			log.Debug().Str("xml", m).Msg("stripped XML function_calls from LLM response")
		}
	}
	cleaned = xmlFuncCallRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = xmlBlockLevelRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = xmlInlineTagRe.ReplaceAllString(cleaned, " ")
	cleaned = spaceRunRe.ReplaceAllString(cleaned, " ")

	cleaned = whitespaceLineRe.ReplaceAllString(cleaned, "")
	cleaned = blankLineCollapseRe.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
