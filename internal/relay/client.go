package relay

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"weechat-relay/internal/relay/api"
)

// State is one node of the client connection state machine: connecting
// -> authenticating -> connected -> disconnected, with auth-failed as the
// other terminal state reachable from authenticating.
type State int

const (
	_ State = iota
	connecting
	authenticating
	connected
	authFailed
	disconnected
)

func (s State) String() string {
	switch s {
	case connecting:
		return "connecting"
	case authenticating:
		return "authenticating"
	case connected:
		return "connected"
	case authFailed:
		return "auth-failed"
	case disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Client is one connected relay peer: either a plain HTTP client (one
// request at a time, no send queue needed beyond the response writer) or
// a WebSocket-upgraded client with a persistent connection, a send queue
// and sync subscriptions.
type Client struct {
	mu    sync.Mutex
	state State
	log   *logrus.Entry

	ws *websocket.Conn

	// sendQueue is the single outbound queue for this connection; one
	// writer goroutine drains it so concurrent handlers never interleave
	// writes on the same *websocket.Conn (gorilla requires a single
	// writer per connection).
	sendQueue chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	syncEnabled bool
	syncNicks   bool
	syncInput   bool
	syncColors  api.ColorMode

	unsubscribers []func()
}

func newClient(log *logrus.Entry) *Client {
	return &Client{
		state:     connecting,
		log:       log,
		sendQueue: make(chan []byte, 256),
		closed:    make(chan struct{}),
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	if prev != s {
		c.log.WithFields(logrus.Fields{"from": prev.String(), "to": s.String()}).Debug("client_state_changed")
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// attachWebSocket upgrades this client to WebSocket-ready sub-mode and
// starts its dedicated writer goroutine.
func (c *Client) attachWebSocket(conn *websocket.Conn) {
	c.mu.Lock()
	c.ws = conn
	c.mu.Unlock()
	go c.writePump()
}

func (c *Client) writePump() {
	for {
		select {
		case msg, ok := <-c.sendQueue:
			if !ok {
				return
			}
			c.mu.Lock()
			ws := c.ws
			c.mu.Unlock()
			if ws == nil {
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.WithError(err).Debug("write failed, closing client")
				c.Close()
				return
			}
		case <-c.closed:
			// Drain whatever is left so a close doesn't deadlock a
			// blocked sender: writes are still attempted until the
			// queue drains or an error occurs.
			for {
				select {
				case msg, ok := <-c.sendQueue:
					if !ok {
						return
					}
					c.mu.Lock()
					ws := c.ws
					c.mu.Unlock()
					if ws != nil {
						ws.WriteMessage(websocket.TextMessage, msg)
					}
				default:
					return
				}
			}
		}
	}
}

// Enqueue queues msg for delivery, dropping it with a warning log if the
// queue is full (a slow client must not block event fan-out to every other
// client). There is no closed check: a message queued after Close is never
// written, since writePump has already exited.
func (c *Client) Enqueue(msg []byte) {
	select {
	case c.sendQueue <- msg:
	default:
		c.log.Warn("send queue full, dropping message")
	}
}

// Close tears the client down: all hooks (subscriptions) are canceled,
// matching "Closing a client cancels all its hooks".
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.mu.Lock()
		ws := c.ws
		subs := c.unsubscribers
		c.unsubscribers = nil
		c.mu.Unlock()

		for _, unsub := range subs {
			unsub()
		}
		if ws != nil {
			ws.Close()
		}
		c.setState(disconnected)
	})
}

func (c *Client) addUnsubscriber(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubscribers = append(c.unsubscribers, fn)
}
