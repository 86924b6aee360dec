package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/llm"
)

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	Instruction string
	Tools       []llm.ToolDefinition
	InlineTools bool // describe the tool_call block protocol in the prompt
	Now         time.Time
}

// BuildSystemPrompt constructs the system prompt of one agent call. Without
// tools the agent's instruction is sent unchanged.
func BuildSystemPrompt(cfg PromptConfig) string {
	if len(cfg.Tools) == 0 {
		return cfg.Instruction
	}

	var b strings.Builder
	b.WriteString(cfg.Instruction)
	b.WriteString("\n\n")

	// Date context
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	fmt.Fprintf(&b, "Current date: %s (%s)\n", now.Format("2006-01-02"), now.Weekday())

	if !cfg.InlineTools {
		b.WriteString("Use the provided tools when a request needs them, and report their results accurately.\n")
		return b.String()
	}

	b.WriteString("\n## Available Tools\n\n")
	b.WriteString("You can call tools by outputting a fenced code block with the language tag `tool_call`:\n\n")
	b.WriteString("```tool_call\n{\"tool\": \"tool_name\", \"input\": {\"param\": \"value\"}}\n```\n\n")
	b.WriteString("After a tool is executed, the result will be provided. You may call multiple tools before giving your final response.\n\n")
	for _, t := range cfg.Tools {
		fmt.Fprintf(&b, "### %s\n%s\n", t.Name, t.Description)
		if t.InputSchema != "" {
			fmt.Fprintf(&b, "Input schema: %s\n", t.InputSchema)
		}
		b.WriteString("\n")
	}
	return b.String()
}
