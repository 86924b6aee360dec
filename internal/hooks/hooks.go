// Package hooks dispatches conversation and lifecycle events to handlers.
package hooks

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// Event names for the hook system.
const (
	EventMessageReceived     = "message_received"
	EventAgentRouted         = "agent_routed"
	EventAgentResponded      = "agent_responded"
	EventBookingResult       = "booking_result"
	EventConversationCleared = "conversation_cleared"
	EventSessionStart        = "session_start"
	EventSessionEnd          = "session_end"
	EventGatewayStart        = "gateway_start"
	EventGatewayStop         = "gateway_stop"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventMessageReceived,
	EventAgentRouted,
	EventAgentResponded,
	EventBookingResult,
	EventConversationCleared,
	EventSessionStart,
	EventSessionEnd,
	EventGatewayStart,
	EventGatewayStop,
}

// conversationEvents maps engine events to hook event names.
var conversationEvents = map[domain.EventType]string{
	domain.EventNewUserMessage:      EventMessageReceived,
	domain.EventAgentRouted:         EventAgentRouted,
	domain.EventAgentResponded:      EventAgentResponded,
	domain.EventBookingResult:       EventBookingResult,
	domain.EventConversationCleared: EventConversationCleared,
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event string         `json:"event"`
	At    time.Time      `json:"at"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles one event. A returned error or a panic is logged and the
// remaining handlers still run.
type Handler func(ctx context.Context, p Payload) error

// Manager dispatches events to registered handlers. A nil *Manager accepts
// every call and does nothing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]*registration
	now      func() time.Time
	log      *logging.Logger
}

type registration struct {
	name string
	fn   Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]*registration),
		now:      time.Now,
		log:      log.Sub("hooks"),
	}
}

// On registers fn for event and returns a func that removes it again.
func (m *Manager) On(event, name string, fn Handler) (remove func()) {
	if m == nil {
		return func() {}
	}
	reg := &registration{name: name, fn: fn}

	m.mu.Lock()
	m.handlers[event] = append(m.handlers[event], reg)
	m.mu.Unlock()
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handlers[event] = slices.DeleteFunc(m.handlers[event], func(r *registration) bool { return r == reg })
	}
}

// OnAll registers fn for every event in AllEvents.
func (m *Manager) OnAll(name string, fn Handler) (remove func()) {
	removers := make([]func(), 0, len(AllEvents))
	for _, ev := range AllEvents {
		removers = append(removers, m.On(ev, name, fn))
	}
	return func() {
		for _, r := range removers {
			r()
		}
	}
}

// Emit calls the handlers of event synchronously, in registration order.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	if m == nil {
		return
	}
	m.mu.RLock()
	regs := slices.Clone(m.handlers[event])
	m.mu.RUnlock()
	if len(regs) == 0 {
		return
	}

	p := Payload{Event: event, At: m.now(), Data: data}
	for _, r := range regs {
		if err := m.call(ctx, r, p); err != nil {
			m.log.Warn().Err(err).Str("event", event).Str("handler", r.name).Msg("hook handler failed")
		}
	}
}

func (m *Manager) call(ctx context.Context, r *registration, p Payload) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()
	return r.fn(ctx, p)
}

// Count returns the number of handlers registered for event.
func (m *Manager) Count(event string) int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events lists, sorted, the events that have at least one handler.
func (m *Manager) Events() []string {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event, regs := range m.handlers {
		if len(regs) > 0 {
			events = append(events, event)
		}
	}
	slices.Sort(events)
	return events
}

// EmitConversation dispatches an engine event under its hook name.
// Unknown event types are ignored.
func (m *Manager) EmitConversation(ctx context.Context, sessionID, view string, ev domain.Event) {
	name, ok := conversationEvents[ev.Type]
	if !ok {
		return
	}

	data := map[string]any{
		"sessionId": sessionID,
		"view":      view,
	}
	if ev.AgentID != "" {
		data["agentId"] = ev.AgentID
	}
	if ev.Message != nil {
		data["role"] = string(ev.Message.Role)
		data["contentType"] = string(ev.Message.Content.Kind())
		if text := ev.Message.Text(); text != "" {
			data["text"] = text
		}
	}
	if ev.Booking != nil {
		data["success"] = ev.Booking.Success
		data["date"] = ev.Booking.Date
		data["time"] = ev.Booking.Time
		data["message"] = ev.Booking.Message
	}
	m.Emit(ctx, name, data)
}
