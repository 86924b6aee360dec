// Package routing picks the agent that answers a message.
//
// Classification is a single low-temperature completion asking the model
// for an agent name. Anything other than an exact registry ID, including a
// failed call, selects the registry's Triage agent.
package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/llm"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// Config tunes the classification call.
type Config struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Router classifies messages against an agent registry.
type Router struct {
	client llm.Client
	cfg    Config
	log    *logging.Logger
}

// NewRouter creates a router that classifies with client.
func NewRouter(client llm.Client, cfg Config, log *logging.Logger) *Router {
	return &Router{
		client: client,
		cfg:    cfg,
		log:    log.Sub("routing"),
	}
}

// Classify returns the ID of the agent in reg that should answer message.
// The result is always a member of reg.
func (r *Router) Classify(ctx context.Context, message string, reg *domain.Registry) string {
	triage := reg.TriageID()

	req := llm.SingleTurn(BuildRoutingPrompt(reg), message)
	req.Model = r.cfg.Model
	req.Temperature = r.cfg.Temperature
	req.MaxTokens = r.cfg.MaxTokens

	resp, err := r.client.Complete(ctx, req)
	if err != nil {
		r.log.Debug().Err(err).Str("registry", reg.Name()).Msg("classification failed, using triage")
		return triage
	}

	label := strings.TrimSpace(resp.Content)
	if reg.Has(label) {
		r.log.Debug().Str("registry", reg.Name()).Str("agent", label).Msg("message classified")
		return label
	}

	r.log.Debug().
		Str("registry", reg.Name()).
		Str("label", label).
		Msg("unknown agent label, using triage")
	return triage
}

// BuildRoutingPrompt renders the classification instruction for reg: one
// rule per specialist, then the Triage fallback.
func BuildRoutingPrompt(reg *domain.Registry) string {
	var b strings.Builder
	b.WriteString("Analyze the following message and determine which specialist should handle it:\n")
	for _, def := range reg.Specialists() {
		rule := def.Routing
		if rule == "" {
			rule = strings.ToLower(def.ID)
		}
		fmt.Fprintf(&b, "- If about %s → '%s'\n", rule, def.ID)
	}
	if triage, ok := reg.Lookup(reg.TriageID()); ok {
		rule := triage.Routing
		if rule == "" {
			rule = "unclear or general"
		}
		fmt.Fprintf(&b, "- If %s → '%s'\n", rule, triage.ID)
	}
	b.WriteString("Only respond with the exact agent name.")
	return b.String()
}
