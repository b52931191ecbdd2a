package hub

import (
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/lumen-live/relay-service/internal/config"
	"github.com/lumen-live/relay-service/internal/domain"
	"github.com/lumen-live/relay-service/pkg/log"
)

const defaultSendQueueSize = 256

// maxCloseReasonBytes is the most a close frame description can carry:
// control frame payloads are capped at 125 bytes, two of which hold
// the status code.
const maxCloseReasonBytes = 123

// Client owns one WebSocket connection: a buffered outbound queue
// drained by WritePump and an inbound loop in ReadPump. ID and Session
// are assigned by the coordinator when the connection is registered,
// before either pump starts.
type Client struct {
	ID      string
	Conn    *websocket.Conn
	Session *domain.Session
	Send    chan []byte

	config    config.WebSocketConfig
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	size := cfg.SendQueueSize
	if size <= 0 {
		size = defaultSendQueueSize
	}
	return &Client{
		Conn:   conn,
		Send:   make(chan []byte, size),
		config: cfg,
	}
}

// ReadPump reads frames until the connection closes and hands each one
// to handler. It returns when the peer disconnects, the transport
// errors, or the connection was force-closed; the caller is expected
// to run disconnect cleanup exactly once after it returns.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer func() {
		c.closed.Store(true)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				l := log.L()
				l.Debug().Str(log.FieldConnectionID, c.ID).Err(err).Msg("websocket read error")
			}
			return
		}

		if c.Session != nil {
			c.Session.UpdateActivity()
		}

		handler(c, message)
	}
}

// WritePump drains the send queue to the socket and keeps the
// connection alive with pings. One goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Deliver enqueues an already-encoded payload without blocking.
// Returns false when the client is closed or its queue is full; a
// skipped delivery is the caller's signal to move on, not an error.
func (c *Client) Deliver(payload []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// CloseWithReason sends a close frame carrying a human-readable reason
// and tears down the connection. Safe to call multiple times and with
// no underlying connection (tests).
func (c *Client) CloseWithReason(reason string) {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.Conn == nil {
			return
		}
		deadline := time.Now().Add(c.config.WriteWait)
		c.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, truncateCloseReason(reason)), deadline)
		c.Conn.Close()
	})
}

// truncateCloseReason caps the reason so the close frame stays within
// the control-frame payload limit, backing off to a rune boundary so
// the description remains valid UTF-8.
func truncateCloseReason(reason string) string {
	if len(reason) <= maxCloseReasonBytes {
		return reason
	}
	reason = reason[:maxCloseReasonBytes]
	for len(reason) > 0 && !utf8.ValidString(reason) {
		reason = reason[:len(reason)-1]
	}
	return reason
}
