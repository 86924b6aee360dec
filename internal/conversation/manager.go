package conversation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/hooks"
	"github.com/KLM-Solutions/swarm-bot/internal/ledger"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// ErrUnknownView is returned when a view name is not configured.
var ErrUnknownView = errors.New("unknown view")

// View is a named conversational surface backed by one engine.
type View struct {
	Name    string
	Mode    string // config.ModeSingle or config.ModeBroadcast
	Booking bool
	Engine  *Engine
}

// Registry returns the view's agent registry.
func (v View) Registry() *domain.Registry { return v.Engine.Registry() }

// StoreFactory returns the appointment store of one session view.
type StoreFactory func(ledgerID string) ledger.Store

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithHooks sets the hook manager that receives conversation events.
func WithHooks(h *hooks.Manager) ManagerOption {
	return func(m *Manager) { m.hooks = h }
}

// WithStoreFactory sets where session ledgers keep their bookings.
func WithStoreFactory(f StoreFactory) ManagerOption {
	return func(m *Manager) { m.stores = f }
}

// WithIdleTimeout sets how long an untouched session survives Prune.
func WithIdleTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.idle = d }
}

// WithClock sets the manager's time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// Manager owns every live session and the views they converse in.
type Manager struct {
	views  map[string]View
	order  []string
	hooks  *hooks.Manager
	stores StoreFactory
	idle   time.Duration
	now    func() time.Time
	log    *logging.Logger

	mu       sync.Mutex
	sessions map[string]map[string]*Session // session id → view → session
}

// NewManager creates a manager serving views.
func NewManager(views []View, log *logging.Logger, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		views:    make(map[string]View, len(views)),
		stores:   func(string) ledger.Store { return ledger.NewMemoryStore() },
		now:      time.Now,
		log:      log.Sub("sessions"),
		sessions: make(map[string]map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, v := range views {
		if v.Engine == nil {
			return nil, fmt.Errorf("view %q has no engine", v.Name)
		}
		if _, dup := m.views[v.Name]; dup {
			return nil, fmt.Errorf("duplicate view %q", v.Name)
		}
		if v.Mode == "" {
			v.Mode = config.ModeSingle
		}
		if v.Mode == config.ModeSingle && v.Engine.Registry().TriageID() == "" {
			return nil, fmt.Errorf("view %q: registry %s has no triage agent for single mode", v.Name, v.Engine.Registry().Name())
		}
		m.views[v.Name] = v
		m.order = append(m.order, v.Name)
	}
	return m, nil
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string { return uuid.NewString() }

// Views returns the configured views in configuration order.
func (m *Manager) Views() []View {
	out := make([]View, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.views[name])
	}
	return out
}

// View returns the view named name.
func (m *Manager) View(name string) (View, bool) {
	v, ok := m.views[name]
	return v, ok
}

// Session returns the conversation of session id in view, creating it on
// first use.
func (m *Manager) Session(ctx context.Context, id, view string) (*Session, error) {
	v, ok := m.views[view]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownView, view)
	}

	m.mu.Lock()
	byView, known := m.sessions[id]
	if !known {
		byView = make(map[string]*Session)
		m.sessions[id] = byView
	}
	if s, ok := byView[view]; ok {
		m.mu.Unlock()
		return s, nil
	}

	var l *ledger.Ledger
	if v.Booking {
		l = ledger.New(m.stores(id+"/"+view), ledger.WithClock(m.now), ledger.WithLogger(m.log.With("sessionId", id)))
	}
	s := newSession(id, v, l, m.hooks, m.now)
	byView[view] = s
	m.mu.Unlock()

	if !known {
		m.log.Debug().Str("sessionId", id).Msg("session started")
		m.emit(ctx, hooks.EventSessionStart, id)
	}
	return s, nil
}

// Lookup returns an existing session view without creating it.
func (m *Manager) Lookup(id, view string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id][view]
	return s, ok
}

// End discards every view of session id.
func (m *Manager) End(ctx context.Context, id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.log.Debug().Str("sessionId", id).Msg("session ended")
		m.emit(ctx, hooks.EventSessionEnd, id)
	}
	return ok
}

// Prune ends sessions whose views have all been idle longer than the idle
// timeout, returning how many were ended. A zero timeout disables pruning.
func (m *Manager) Prune(ctx context.Context) int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	var stale []string
	for id, byView := range m.sessions {
		idle := true
		for _, s := range byView {
			if s.idleSince().After(cutoff) {
				idle = false
				break
			}
		}
		if idle {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	slices.Sort(stale)
	for _, id := range stale {
		m.End(ctx, id)
	}
	if len(stale) > 0 {
		m.log.Info().Int("count", len(stale)).Msg("pruned idle sessions")
	}
	return len(stale)
}

// RunPruner calls Prune every interval until ctx is done.
func (m *Manager) RunPruner(ctx context.Context, interval time.Duration) {
	if m.idle <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune(ctx)
		}
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) emit(ctx context.Context, event, id string) {
	if m.hooks == nil {
		return
	}
	m.hooks.Emit(ctx, event, map[string]any{"sessionId": id})
}
