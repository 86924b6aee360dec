package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/KLM-Solutions/swarm-bot/internal/agent"
	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/hooks"
	"github.com/KLM-Solutions/swarm-bot/internal/ledger"
)

var (
	// ErrEmptyMessage is returned by Submit for a blank message.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrTurnInProgress is returned by Submit while another turn is running.
	ErrTurnInProgress = errors.New("a submission is already pending")
	// ErrNoLedger is returned for ledger operations on views without booking.
	ErrNoLedger = errors.New("view has no appointment ledger")
)

// Session is one conversational view owned by one client session.
type Session struct {
	id     string
	view   View
	engine *Engine
	ledger *ledger.Ledger
	tools  *agent.ToolRegistry
	hooks  *hooks.Manager
	now    func() time.Time

	mu         sync.Mutex
	state      domain.ConversationState
	lastActive time.Time
	// clears counts Clear calls; a turn that started before a clear is discarded.
	clears uint64
}

func newSession(id string, v View, l *ledger.Ledger, h *hooks.Manager, now func() time.Time) *Session {
	tools := agent.NewToolRegistry()
	if l != nil {
		tools.Register(ledger.NewBookTool(l))
	}
	return &Session{
		id:         id,
		view:       v,
		engine:     v.Engine,
		ledger:     l,
		tools:      tools,
		hooks:      h,
		now:        now,
		state:      v.Engine.NewState(),
		lastActive: now(),
	}
}

// ID returns the owning session id.
func (s *Session) ID() string { return s.id }

// View returns the view this session converses in.
func (s *Session) View() View { return s.view }

// Submit runs one turn. Only one turn runs at a time; a second Submit while
// one is pending returns ErrTurnInProgress without touching the history.
func (s *Session) Submit(ctx context.Context, message string) ([]domain.Event, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	if s.state.PendingSubmission {
		s.mu.Unlock()
		return nil, ErrTurnInProgress
	}
	snapshot := s.state.Clone()
	s.state.PendingSubmission = true
	gen := s.clears
	s.mu.Unlock()

	// A panicking turn must not leave the session locked out.
	finished := false
	defer func() {
		if finished {
			return
		}
		s.mu.Lock()
		if gen == s.clears {
			s.state.PendingSubmission = false
		}
		s.mu.Unlock()
	}()

	var next domain.ConversationState
	var events []domain.Event
	if s.view.Mode == config.ModeBroadcast {
		next, events = s.engine.HandleBroadcast(ctx, snapshot, message)
	} else {
		next, events = s.engine.HandleTurn(ctx, snapshot, message, s.tools)
	}

	finished = true
	s.mu.Lock()
	stale := gen != s.clears
	if !stale {
		s.state = next
		s.state.PendingSubmission = false
	}
	s.lastActive = s.now()
	s.mu.Unlock()

	if stale {
		return events, nil
	}
	s.emit(ctx, events)
	return events, nil
}

// Clear empties the history and resets the current agent.
func (s *Session) Clear(ctx context.Context) []domain.Event {
	s.mu.Lock()
	next, events := s.engine.Clear(s.state)
	s.state = next
	s.clears++
	s.lastActive = s.now()
	s.mu.Unlock()

	s.emit(ctx, events)
	return events
}

// State returns a copy of the current conversation.
func (s *Session) State() domain.ConversationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Appointments lists the session's bookings.
func (s *Session) Appointments(ctx context.Context) ([]domain.AppointmentRecord, error) {
	if s.ledger == nil {
		return nil, ErrNoLedger
	}
	return s.ledger.Appointments(ctx)
}

// Ledger returns the session's ledger, or nil for views without booking.
func (s *Session) Ledger() *ledger.Ledger { return s.ledger }

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) emit(ctx context.Context, events []domain.Event) {
	for _, ev := range events {
		s.hooks.EmitConversation(ctx, s.id, s.view.Name, ev)
	}
}
