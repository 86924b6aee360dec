package conversation

import (
	"context"
	"errors"
	"strings"

	"github.com/KLM-Solutions/swarm-bot/internal/channel"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
	"github.com/KLM-Solutions/swarm-bot/internal/routing"
)

// ClearCommand clears the sender's conversation when sent over a channel.
const ClearCommand = "!clear"

// BridgeConfig maps channel chats to views.
type BridgeConfig struct {
	Scope       string            // routing.ScopePerSender or routing.ScopeGlobal
	Views       map[string]string // chat id → view name
	DefaultView string            // used for chats without an entry, and DMs
}

// Bridge connects messaging channels to conversation sessions.
type Bridge struct {
	channels *channel.Registry
	sessions *Manager
	cfg      BridgeConfig
	log      *logging.Logger
}

// NewBridge creates a channel bridge.
func NewBridge(channels *channel.Registry, sessions *Manager, cfg BridgeConfig, log *logging.Logger) *Bridge {
	if cfg.Scope == "" {
		cfg.Scope = routing.ScopePerSender
	}
	return &Bridge{
		channels: channels,
		sessions: sessions,
		cfg:      cfg,
		log:      log.Sub("bridge"),
	}
}

// viewFor picks the view an inbound message converses in.
func (b *Bridge) viewFor(msg domain.InboundMessage) string {
	if v, ok := b.cfg.Views[msg.ChatID]; ok {
		return v
	}
	return b.cfg.DefaultView
}

// HandleInbound runs the message through its session and sends the reply
// back through the originating channel.
func (b *Bridge) HandleInbound(ctx context.Context, msg domain.InboundMessage) {
	b.log.Info().
		Str("channel", msg.ChannelID).
		Str("from", msg.From).
		Str("chatId", msg.ChatID).
		Str("chatType", string(msg.ChatType)).
		Msg("routing inbound message")

	view := b.viewFor(msg)
	if view == "" {
		b.log.Warn().Str("chatId", msg.ChatID).Msg("no view for chat, dropping message")
		return
	}

	key := routing.ResolveSessionKey(msg, b.cfg.Scope)
	sess, err := b.sessions.Session(ctx, key.String(), view)
	if err != nil {
		b.log.Error().Err(err).Str("view", view).Msg("opening session failed")
		return
	}

	var body string
	text := strings.TrimSpace(msg.Body)
	if strings.EqualFold(text, ClearCommand) {
		sess.Clear(ctx)
		body = "Conversation cleared."
	} else {
		events, err := sess.Submit(ctx, text)
		switch {
		case errors.Is(err, ErrEmptyMessage):
			return
		case errors.Is(err, ErrTurnInProgress):
			body = "Still working on your previous message."
		case err != nil:
			b.log.Error().Err(err).Msg("turn failed")
			return
		default:
			reply, ok := LastReply(events)
			if !ok {
				return
			}
			body = FormatMessage(reply)
		}
	}

	if err := b.SendTo(ctx, msg.ChannelID, replyTarget(msg), body); err != nil {
		b.log.Error().Err(err).
			Str("channel", msg.ChannelID).
			Str("to", replyTarget(msg)).
			Msg("failed to send reply")
		return
	}

	b.log.Info().
		Str("channel", msg.ChannelID).
		Str("to", replyTarget(msg)).
		Str("view", view).
		Msg("reply sent")
}

// Wire makes HandleInbound the message handler of every channel. Each
// message is handled on its own goroutine.
func (b *Bridge) Wire(ctx context.Context) {
	b.channels.OnMessage(func(msg domain.InboundMessage) {
		go b.HandleInbound(ctx, msg)
	})
	b.log.Debug().Strs("channels", b.channels.IDs()).Msg("wired message handlers")
}

// SendTo sends body to target on the given channel.
func (b *Bridge) SendTo(ctx context.Context, channelID, target, body string) error {
	return b.channels.Send(ctx, domain.OutboundMessage{
		ChannelID: channelID,
		To:        target,
		Body:      body,
	})
}

// replyTarget determines where to send the response.
func replyTarget(msg domain.InboundMessage) string {
	if msg.ChatType == domain.ChatTypeDM {
		return msg.From
	}
	return msg.ChatID
}
