/*
Package chat is the realtime chat preview: a single WebSocket connection to the
backend's room endpoint, appending every parsed inbound frame to a local log.

This file defines the connection wrapper and its read loop. The channel state
machine that owns it lives in channel.go.
*/
package chat

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum allowed size (in bytes) of a frame read from the backend.
	maxMessageSize = 64 * 1024
)

// connection wraps one dialed WebSocket and tags it with the channel generation it belongs to.
type connection struct {
	conn *websocket.Conn

	// generation of the channel that opened this connection.
	gen uint64

	// serialises writers; gorilla allows one concurrent writer.
	writeMu sync.Mutex

	closeOnce sync.Once

	logger zerolog.Logger
}

func newConnection(conn *websocket.Conn, gen uint64, logger zerolog.Logger) *connection {
	return &connection{
		conn:   conn,
		gen:    gen,
		logger: logger,
	}
}

// readPump reads frames until the connection fails or is closed, handing each
// payload to deliver. onExit runs once the loop ends.
func (c *connection) readPump(deliver func(gen uint64, data []byte), onExit func(gen uint64)) {
	defer onExit(c.gen)

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Chat connection closed unexpectedly")
			}
			return
		}

		deliver(c.gen, data)
	}
}

// writeJSON marshals v and writes it as one text frame.
func (c *connection) writeJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// close sends a normal close frame and closes the socket. It is safe to call
// more than once and on a nil connection.
func (c *connection) close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait)); err != nil {
			c.logger.Debug().Err(err).Msg("Failed to send close frame")
		}

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Chat connection close error")
		}
	})
}
