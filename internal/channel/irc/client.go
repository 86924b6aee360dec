// Package irc lets IRC users chat with agent views through the girc library.
package irc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lrstanley/girc"

	"github.com/KLM-Solutions/swarm-bot/internal/config"
	"github.com/KLM-Solutions/swarm-bot/internal/domain"
	"github.com/KLM-Solutions/swarm-bot/internal/logging"
	"github.com/KLM-Solutions/swarm-bot/internal/version"
)

const channelID = "irc"

// maxLineBytes keeps a PRIVMSG under the 512 byte protocol limit once the
// prefix and target are added.
const maxLineBytes = 400

var (
	ErrNotConnected = errors.New("irc: not connected")
	ErrNoTarget     = errors.New("irc: no target specified")
)

// Channel implements domain.Channel for IRC.
type Channel struct {
	cfg config.IRCConfig
	log *logging.Logger

	mu      sync.RWMutex
	client  *girc.Client
	handler func(msg domain.InboundMessage)
	running bool
	lastErr string
}

func New(cfg config.IRCConfig, log *logging.Logger) *Channel {
	return &Channel{cfg: cfg, log: log.Sub(channelID)}
}

func (c *Channel) ID() string { return channelID }

func (c *Channel) OnMessage(handler func(msg domain.InboundMessage)) {
	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()
}

func (c *Channel) Status() domain.ChannelStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.ChannelStatus{
		ChannelID: channelID,
		Connected: c.client != nil && c.client.IsConnected(),
		Running:   c.running,
		LastError: c.lastErr,
	}
}

// clientConfig maps IRCConfig onto girc. The port defaults to 6697 with
// TLS and 6667 without. SASL PLAIN is used when requested, otherwise the
// password is sent as the server password.
func clientConfig(cfg config.IRCConfig) girc.Config {
	gc := girc.Config{
		Server:  cfg.Server,
		Port:    cfg.Port,
		Nick:    cfg.Nick,
		User:    cfg.Nick,
		Name:    version.Name,
		SSL:     cfg.UseTLS,
		Version: version.UserAgent(),
	}
	if gc.Port == 0 {
		gc.Port = 6667
		if cfg.UseTLS {
			gc.Port = 6697
		}
	}
	if cfg.UseTLS {
		gc.TLSConfig = &tls.Config{ServerName: cfg.Server}
	}
	switch {
	case cfg.Password == "":
	case cfg.SASL:
		gc.SASL = &girc.SASLPlain{User: cfg.Nick, Pass: cfg.Password}
	default:
		gc.ServerPass = cfg.Password
	}
	return gc
}

// Start connects and serves events until the connection ends or ctx is
// cancelled.
func (c *Channel) Start(ctx context.Context) error {
	gc := clientConfig(c.cfg)
	client := girc.New(gc)
	client.Handlers.Add(girc.CONNECTED, c.onConnected)
	client.Handlers.Add(girc.PRIVMSG, c.onPrivmsg)
	client.Handlers.Add(girc.JOIN, c.onMembership("joined"))
	client.Handlers.Add(girc.PART, c.onMembership("parted"))
	client.Handlers.Add(girc.DISCONNECTED, func(*girc.Client, girc.Event) {
		c.log.Warn().Msg("disconnected from IRC")
		c.setRunning(false, nil)
	})

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	c.setRunning(true, nil)

	c.log.Info().
		Str("server", gc.Server).
		Int("port", gc.Port).
		Str("nick", gc.Nick).
		Strs("channels", c.cfg.Channels).
		Bool("tls", gc.SSL).
		Msg("connecting to IRC")

	done := make(chan error, 1)
	go func() { done <- client.Connect() }()

	select {
	case err := <-done:
		c.setRunning(false, err)
		if err != nil {
			return fmt.Errorf("irc connect: %w", err)
		}
		return nil
	case <-ctx.Done():
		client.Close()
		c.setRunning(false, nil)
		return ctx.Err()
	}
}

func (c *Channel) setRunning(running bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = running
	switch {
	case err != nil:
		c.lastErr = err.Error()
	case running:
		c.lastErr = ""
	}
}

func (c *Channel) Stop(ctx context.Context) error {
	c.mu.Lock()
	client := c.client
	c.running = false
	c.mu.Unlock()

	if client != nil && client.IsConnected() {
		c.log.Info().Msg("disconnecting from IRC")
		client.Quit(version.Name + " shutting down")
	}
	return nil
}

// Send writes msg.Body to msg.To, one PRIVMSG per line.
func (c *Channel) Send(ctx context.Context, msg domain.OutboundMessage) error {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()

	if client == nil || !client.IsConnected() {
		return ErrNotConnected
	}
	if msg.To == "" {
		return ErrNoTarget
	}

	lines := splitMessage(msg.Body, maxLineBytes)
	for _, line := range lines {
		client.Cmd.Message(msg.To, line)
	}
	c.log.Debug().Str("to", msg.To).Int("lines", len(lines)).Msg("sent IRC message")
	return nil
}

func (c *Channel) onConnected(client *girc.Client, _ girc.Event) {
	c.log.Info().Str("nick", client.GetNick()).Msg("connected to IRC")
	for _, ch := range c.cfg.Channels {
		client.Cmd.Join(ch)
		c.log.Info().Str("channel", ch).Msg("joining channel")
	}
}

func (c *Channel) onMembership(verb string) func(*girc.Client, girc.Event) {
	return func(_ *girc.Client, e girc.Event) {
		if e.Source == nil || len(e.Params) == 0 {
			return
		}
		c.log.Debug().Str("nick", e.Source.Name).Str("channel", e.Params[0]).Msg("user " + verb)
	}
}

// onPrivmsg forwards direct messages, and channel messages that start with
// the bot's nick.
func (c *Channel) onPrivmsg(client *girc.Client, e girc.Event) {
	if e.Source == nil {
		return
	}
	nick := client.GetNick()
	if e.Source.Name == nick {
		return
	}

	body := e.Last()
	if e.IsAction() {
		body = e.StripAction()
	}

	if !e.IsFromChannel() {
		c.deliverInbound(e.Source.Name, e.Source.Name, domain.ChatTypeDM, body)
		return
	}
	if text, ok := addressedTo(body, nick); ok {
		c.deliverInbound(e.Source.Name, e.Params[0], domain.ChatTypeGroup, text)
	}
}

// addressedTo reports whether body starts with nick ("bot: hi", "bot, hi",
// "bot hi") and returns the rest of the message.
func addressedTo(body, nick string) (string, bool) {
	body = strings.TrimSpace(body)
	if nick == "" || len(body) < len(nick) || !strings.EqualFold(body[:len(nick)], nick) {
		return "", false
	}
	rest := body[len(nick):]
	if rest == "" {
		return "", true
	}
	if !strings.ContainsRune(":, \t", rune(rest[0])) {
		return "", false
	}
	return strings.TrimSpace(rest[1:]), true
}

func (c *Channel) deliverInbound(from, chatID string, chatType domain.ChatType, body string) {
	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return
	}
	handler(domain.InboundMessage{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		From:      from,
		ChatID:    chatID,
		ChatType:  chatType,
		Body:      body,
		Timestamp: time.Now(),
	})
}

// splitMessage breaks text into PRIVMSG-sized lines. Newlines always split
// and blank lines are dropped; a line over maxLen bytes is cut at the last
// rune boundary that fits.
func splitMessage(text string, maxLen int) []string {
	var chunks []string
	for line := range strings.SplitSeq(text, "\n") {
		for len(line) > maxLen {
			cut := maxLen
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxLen
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if line != "" {
			chunks = append(chunks, line)
		}
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
