package gateway

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/KLM-Solutions/swarm-bot/internal/logging"
)

// writeWait bounds a single frame write.
const writeWait = 10 * time.Second

// frameConn is the part of *websocket.Conn a Client uses.
type frameConn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is a WebSocket connection that completed the handshake. It owns
// one conversation session and numbers the events pushed to it.
type Client struct {
	ConnID      string
	SessionID   string
	Info        ClientInfo
	ConnectedAt time.Time

	conn frameConn
	seq  atomic.Int64

	mu     sync.Mutex
	closed bool
}

// NewClient wraps conn for the session sessionID.
func NewClient(conn frameConn, info ClientInfo, sessionID string) *Client {
	return &Client{
		ConnID:      uuid.NewString(),
		SessionID:   sessionID,
		Info:        info,
		ConnectedAt: time.Now(),
		conn:        conn,
	}
}

// Send writes frame. Writes are serialized.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return ErrClientClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(frame)
}

// Push sends an event frame with the connection's next sequence number.
func (c *Client) Push(event string, payload any) error {
	f, err := NewEvent(event, payload, c.seq.Add(1))
	if err != nil {
		return err
	}
	return c.Send(f)
}

// Respond answers request reqID with payload.
func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// RespondError answers request reqID with an error.
func (c *Client) RespondError(reqID string, shape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, shape))
}

// ReadFrame blocks for the next frame.
func (c *Client) ReadFrame() (Frame, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return Frame{}, err
	}
	return ParseFrame(data)
}

// Close closes the connection once; later calls are no-ops.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// ClientRegistry tracks connected clients by connection id.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logging.Logger
}

// NewClientRegistry creates an empty client registry.
func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]*Client), log: log}
}

// Add registers c.
func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	r.clients[c.ConnID] = c
	n := len(r.clients)
	r.mu.Unlock()

	r.log.Info().
		Str("connId", c.ConnID).
		Str("sessionId", c.SessionID).
		Str("client", c.Info.ID).
		Int("clients", n).
		Msg("client connected")
}

// Remove forgets c and reports whether it was registered.
func (r *ClientRegistry) Remove(c *Client) bool {
	r.mu.Lock()
	_, ok := r.clients[c.ConnID]
	delete(r.clients, c.ConnID)
	r.mu.Unlock()

	if ok {
		r.log.Info().
			Str("connId", c.ConnID).
			Dur("connected", time.Since(c.ConnectedAt)).
			Msg("client disconnected")
	}
	return ok
}

// Get returns the client with connection id connID.
func (r *ClientRegistry) Get(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connID]
	return c, ok
}

// Count returns the number of connected clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll closes and forgets every client, returning how many there were.
func (r *ClientRegistry) CloseAll() int {
	r.mu.Lock()
	all := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
	return len(all)
}
