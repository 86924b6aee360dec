// Package channel tracks the messaging channels chat sessions are reachable on.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// ErrUnknownChannel is returned when a message names an unregistered channel.
var ErrUnknownChannel = errors.New("channel not found")

// Registry holds channels in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []domain.Channel
	byID  map[string]domain.Channel
	log   *logging.Logger
}

// NewRegistry creates an empty channel registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		byID: make(map[string]domain.Channel),
		log:  log.Sub("channels"),
	}
}

// Register adds ch. Ids must be unique.
func (r *Registry) Register(ch domain.Channel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byID[ch.ID()]; dup {
		return fmt.Errorf("channel %q already registered", ch.ID())
	}
	r.byID[ch.ID()] = ch
	r.order = append(r.order, ch)
	r.log.Debug().Str("channel", ch.ID()).Msg("channel registered")
	return nil
}

// Get returns the channel with the given id.
func (r *Registry) Get(id string) (domain.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.byID[id]
	return ch, ok
}

// IDs lists channel ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, len(r.order))
	for i, ch := range r.order {
		ids[i] = ch.ID()
	}
	return ids
}

// Count returns the number of registered channels.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Status reports every channel. Channels without a Status method are
// reported as running.
func (r *Registry) Status() []domain.ChannelStatus {
	out := make([]domain.ChannelStatus, 0, r.Count())
	for _, ch := range r.snapshot() {
		if sc, ok := ch.(interface{ Status() domain.ChannelStatus }); ok {
			out = append(out, sc.Status())
			continue
		}
		out = append(out, domain.ChannelStatus{ChannelID: ch.ID(), Running: true})
	}
	return out
}

// OnMessage installs handler on every registered channel.
func (r *Registry) OnMessage(handler func(domain.InboundMessage)) {
	for _, ch := range r.snapshot() {
		ch.OnMessage(handler)
	}
}

// Send delivers msg through the channel named by msg.ChannelID.
func (r *Registry) Send(ctx context.Context, msg domain.OutboundMessage) error {
	ch, ok := r.Get(msg.ChannelID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, msg.ChannelID)
	}
	return ch.Send(ctx, msg)
}

// StartAll starts each channel in its own goroutine. Start may block for
// the life of the connection, so failures are logged rather than returned.
func (r *Registry) StartAll(ctx context.Context) {
	for _, ch := range r.snapshot() {
		r.log.Info().Str("channel", ch.ID()).Msg("starting channel")
		go func(ch domain.Channel) {
			if err := ch.Start(ctx); err != nil {
				r.log.Error().Err(err).Str("channel", ch.ID()).Msg("channel exited with error")
			}
		}(ch)
	}
}

// StopAll stops every channel concurrently and joins their errors.
func (r *Registry) StopAll(ctx context.Context) error {
	p := pool.New().WithErrors().WithContext(ctx)
	for _, ch := range r.snapshot() {
		p.Go(func(ctx context.Context) error {
			if err := ch.Stop(ctx); err != nil {
				r.log.Error().Err(err).Str("channel", ch.ID()).Msg("failed to stop channel")
				return fmt.Errorf("stopping %s: %w", ch.ID(), err)
			}
			return nil
		})
	}
	return p.Wait()
}

func (r *Registry) snapshot() []domain.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Channel(nil), r.order...)
}
