// Package conversation runs chat turns against an agent registry.
//
// The Engine is pure with respect to conversation state: every operation
// takes a ConversationState and returns the next one together with the
// events it produced. Sessions own the state and serialize access to it.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/KLM-Solutions/swarm-bot/internal/agent"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/ledger"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// Classifier picks the agent that answers a message.
type Classifier interface {
	Classify(ctx context.Context, message string, reg *domain.Registry) string
}

// Responder asks one agent to answer one message.
type Responder interface {
	Respond(ctx context.Context, def domain.AgentDefinition, message string, tools *agent.ToolRegistry) (*agent.Reply, error)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithParallelBroadcast queries broadcast agents concurrently, at most
// maxConcurrency at a time. A value below 1 means one per agent.
func WithParallelBroadcast(maxConcurrency int) EngineOption {
	return func(e *Engine) {
		e.parallel = true
		e.maxConcurrency = maxConcurrency
	}
}

// WithEngineClock sets the time source for message timestamps.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// Engine orchestrates turns for one registry.
type Engine struct {
	registry       *domain.Registry
	router         Classifier
	runner         Responder
	parallel       bool
	maxConcurrency int
	now            func() time.Time
	log            *logging.Logger
}

// NewEngine creates an engine over reg. router may be nil for engines only
// used in broadcast mode.
func NewEngine(reg *domain.Registry, router Classifier, runner Responder, log *logging.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		router:   router,
		runner:   runner,
		now:      time.Now,
		log:      log.Sub("conversation"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Registry returns the engine's agent registry.
func (e *Engine) Registry() *domain.Registry { return e.registry }

// NewState returns a fresh conversation for this engine's registry.
func (e *Engine) NewState() domain.ConversationState {
	return domain.NewConversationState(e.registry.DefaultAgentID())
}

// accepts reports whether a turn may start.
func accepts(state domain.ConversationState, message string) bool {
	return strings.TrimSpace(message) != "" && !state.PendingSubmission
}

// HandleTurn routes message to one agent and records its answer. An empty
// message or a pending submission leaves state untouched. A failed
// completion is recorded as an error reply from the routed agent and
// currentAgentId keeps its previous value.
func (e *Engine) HandleTurn(ctx context.Context, state domain.ConversationState, message string, tools *agent.ToolRegistry) (domain.ConversationState, []domain.Event) {
	if !accepts(state, message) {
		return state, nil
	}

	user := domain.NewUserMessage(message, e.now())
	state = state.Append(user)
	events := []domain.Event{domain.MessageEvent(domain.EventNewUserMessage, user)}

	agentID := e.router.Classify(ctx, message, e.registry)
	events = append(events, domain.Event{Type: domain.EventAgentRouted, AgentID: agentID})

	def := e.registry.MustLookup(agentID)
	reply, err := e.runner.Respond(ctx, def, message, tools)

	var text string
	if reply != nil {
		events = append(events, bookingEvents(reply)...)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("agent", agentID).Msg("agent call failed")
		text = fmt.Sprintf("Error: Unable to get response. Please try again. (%s)", err)
	} else {
		text = reply.Text
	}

	answer := domain.NewAgentMessage(agentID, text, e.now())
	state = state.Append(answer)
	events = append(events, domain.MessageEvent(domain.EventAgentResponded, answer))

	if err == nil {
		state.CurrentAgentID = agentID
	}
	state.PendingSubmission = false
	return state, events
}

// HandleBroadcast asks every specialist to answer message and records all
// answers as one message. A failing agent contributes its error text.
func (e *Engine) HandleBroadcast(ctx context.Context, state domain.ConversationState, message string) (domain.ConversationState, []domain.Event) {
	if !accepts(state, message) {
		return state, nil
	}

	user := domain.NewUserMessage(message, e.now())
	state = state.Append(user)
	events := []domain.Event{domain.MessageEvent(domain.EventNewUserMessage, user)}

	agents := e.registry.Specialists()
	replies := make([]domain.AgentReply, len(agents))
	ask := func(i int) {
		def := agents[i]
		reply, err := e.runner.Respond(ctx, def, message, nil)
		if err != nil {
			e.log.Warn().Err(err).Str("agent", def.ID).Msg("broadcast agent call failed")
			replies[i] = domain.AgentReply{
				AgentID: def.ID,
				Text:    fmt.Sprintf("Error: Unable to get response from %s. Please try again. (%s)", def.ID, err),
			}
			return
		}
		replies[i] = domain.AgentReply{AgentID: def.ID, Text: reply.Text}
	}

	if e.parallel && len(agents) > 1 {
		p := pool.New()
		if e.maxConcurrency > 0 {
			p = p.WithMaxGoroutines(e.maxConcurrency)
		}
		for i := range agents {
			p.Go(func() { ask(i) })
		}
		p.Wait()
	} else {
		for i := range agents {
			ask(i)
		}
	}

	answer := domain.NewBroadcastMessage(replies, e.now())
	state = state.Append(answer)
	events = append(events, domain.MessageEvent(domain.EventAgentResponded, answer))

	state.PendingSubmission = false
	return state, events
}

// Clear returns an empty conversation addressed to the registry default.
func (e *Engine) Clear(domain.ConversationState) (domain.ConversationState, []domain.Event) {
	state := e.NewState()
	return state, []domain.Event{{Type: domain.EventConversationCleared, AgentID: state.CurrentAgentID}}
}

// bookingEvents reports each successful book_appointment call of reply.
func bookingEvents(reply *agent.Reply) []domain.Event {
	var events []domain.Event
	for _, tr := range reply.ToolResults {
		if tr.Tool != ledger.ToolName || tr.Err != nil {
			continue
		}
		var res domain.BookingResult
		if err := json.Unmarshal([]byte(tr.Output), &res); err != nil {
			continue
		}
		events = append(events, domain.Event{
			Type:    domain.EventBookingResult,
			AgentID: reply.AgentID,
			Booking: &res,
		})
	}
	return events
}
