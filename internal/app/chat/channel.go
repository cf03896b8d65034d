package chat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"skillswap/internal/pkg/logx"
	"skillswap/internal/pkg/metrics"
)

// DefaultRoom is the room the chat page opens first.
const DefaultRoom = "public-demo"

// dialTimeout bounds the WebSocket handshake.
const dialTimeout = 10 * time.Second

// State is the channel's position in its lifecycle.
type State string

const (
	StateClosed    State = "closed"
	StateOpen      State = "open"
	StateUnmounted State = "closed_by_unmount"
)

// ChatURL derives the room endpoint from the backend base address:
// http becomes ws, https becomes wss, and the room is path-escaped.
func ChatURL(backendURL, room string) (string, error) {
	u, err := url.Parse(strings.TrimRight(backendURL, "/"))
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}

	return u.String() + "/ws/chat/" + url.PathEscape(room), nil
}

// Channel owns at most one live connection and the message log of the room it is open on.
type Channel struct {
	backendURL string
	dialer     *websocket.Dialer
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	// selectMu sequences Select and Close so that the previous
	// connection is always closed before the next one is dialed.
	selectMu sync.Mutex

	// mu guards everything below.
	mu       sync.Mutex
	room     string
	state    State
	conn     *connection
	gen      uint64
	messages []Message
}

// Option configures a Channel.
type Option func(*Channel)

// WithMetrics reports frame counts to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Channel) { c.metrics = m }
}

// WithDialer replaces the default dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// NewChannel returns a closed channel that dials rooms under backendURL.
func NewChannel(backendURL string, opts ...Option) *Channel {
	c := &Channel{
		backendURL: backendURL,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: dialTimeout,
		},
		logger:   logx.Component("chat"),
		state:    StateClosed,
		messages: []Message{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Select makes room the current room. A different room closes the current
// connection, clears the log and opens a connection for the new room; the room
// that is already open is left alone. An empty room only closes.
//
// Dial failures are logged and leave the channel closed.
func (c *Channel) Select(ctx context.Context, room string) State {
	c.selectMu.Lock()
	defer c.selectMu.Unlock()

	c.mu.Lock()
	if room == c.room && c.state == StateOpen {
		c.mu.Unlock()
		return StateOpen
	}
	gen, old := c.resetLocked(room, StateClosed)
	c.mu.Unlock()
	old.close()

	if room == "" {
		return StateClosed
	}

	conn, err := c.dial(ctx, room, gen)
	if err != nil {
		c.logger.Warn().Err(err).Str("room", room).Msg("Failed to open chat channel")
		return StateClosed
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	go conn.readPump(c.deliver, c.onConnectionExit)

	c.logger.Info().Str("room", room).Msg("Chat channel opened")
	return StateOpen
}

// Close tears the channel down. Later Selects may open it again.
func (c *Channel) Close() {
	c.selectMu.Lock()
	defer c.selectMu.Unlock()

	c.mu.Lock()
	_, old := c.resetLocked(c.room, StateUnmounted)
	c.mu.Unlock()
	old.close()
}

// Send writes one outbound frame. It does nothing unless the channel is open,
// and reports whether the frame was written.
func (c *Channel) Send(text string) bool {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || conn == nil {
		c.metrics.ChatFrame("out", "not_open")
		return false
	}

	if err := conn.writeJSON(outbound{Text: text, SenderID: SenderMe}); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to send chat frame")
		c.metrics.ChatFrame("out", "error")
		return false
	}

	c.metrics.ChatFrame("out", "ok")
	return true
}

// Messages returns a copy of the log for the current room, in arrival order.
func (c *Channel) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// State returns the current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Room returns the selected room, which may be closed.
func (c *Channel) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// resetLocked detaches the live connection, bumps the generation and starts an
// empty log for room. The caller closes the returned connection after releasing
// c.mu. Frames still arriving on it are dropped by deliver because their
// generation no longer matches.
func (c *Channel) resetLocked(room string, state State) (uint64, *connection) {
	old := c.conn
	if old != nil {
		c.conn = nil
		c.logger.Info().Str("room", c.room).Msg("Chat channel closed")
	}

	c.gen++
	c.room = room
	c.state = state
	c.messages = []Message{}
	return c.gen, old
}

func (c *Channel) dial(ctx context.Context, room string, gen uint64) (*connection, error) {
	target, err := ChatURL(c.backendURL, room)
	if err != nil {
		return nil, err
	}

	ws, res, err := c.dialer.DialContext(ctx, target, nil)
	if res != nil && res.Body != nil {
		res.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}

	logger := c.logger.With().Str("room", room).Uint64("generation", gen).Logger()
	return newConnection(ws, gen, logger), nil
}

// deliver appends a parsed frame if it came from the current connection.
func (c *Channel) deliver(gen uint64, data []byte) {
	msg, err := parseMessage(data)
	if err != nil {
		c.metrics.ChatFrame("in", "malformed")
		c.logger.Debug().Err(err).Msg("Dropped malformed chat frame")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.metrics.ChatFrame("in", "stale")
		return
	}

	c.messages = append(c.messages, msg)
	c.metrics.ChatFrame("in", "ok")
}

// onConnectionExit marks the channel closed when its current connection drops on its own.
func (c *Channel) onConnectionExit(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.conn == nil {
		c.mu.Unlock()
		return
	}

	old := c.conn
	c.conn = nil
	if c.state == StateOpen {
		c.state = StateClosed
	}
	room := c.room
	c.mu.Unlock()

	old.close()
	c.logger.Info().Str("room", room).Msg("Chat channel dropped by backend")
}
