// Package realtime maintains the shared websocket connection to the server.
// One Conn is shared by every synchronizer through Acquire/Release
// refcounting: the socket dials when the first consumer arrives and closes
// when the last one leaves.
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"socialhub/wire"
)

// Status is the connection lifecycle state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned by Emit while the socket is down. Sends are
// not queued: the caller decides whether to retry.
var ErrNotConnected = errors.New("realtime: not connected")

const (
	maxReconnectAttempts = 5
	reconnectDelay       = time.Second
)

// Handler receives the raw data payload of one envelope.
type Handler func(data json.RawMessage)

type Conn struct {
	url    string
	dialer *websocket.Dialer

	mu       sync.Mutex
	ws       *websocket.Conn
	status   Status
	refs     int
	closing  bool
	onStatus func(Status)

	// event -> registration id -> handler. Registrations survive
	// reconnects; only Release to zero or explicit cancel removes them.
	handlers map[string]map[int]Handler
	nextID   int

	writeMu sync.Mutex
}

// New prepares a connection to wsURL (ws://host/ws) identifying as userID.
// Nothing is dialed until the first Acquire.
func New(wsURL string, userID int) *Conn {
	return &Conn{
		url:      fmt.Sprintf("%s?userId=%d", wsURL, userID),
		dialer:   websocket.DefaultDialer,
		handlers: make(map[string]map[int]Handler),
	}
}

// OnStatus registers the status observer. At most one; the TUI is the only
// consumer that cares.
func (c *Conn) OnStatus(fn func(Status)) {
	c.mu.Lock()
	c.onStatus = fn
	c.mu.Unlock()
}

// Status returns the current lifecycle state.
func (c *Conn) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Acquire takes a reference. The first reference dials the socket.
func (c *Conn) Acquire() {
	c.mu.Lock()
	c.refs++
	first := c.refs == 1
	if first {
		c.closing = false
	}
	c.mu.Unlock()

	if first {
		go c.connect(maxReconnectAttempts)
	}
}

// Release drops a reference. The last release closes the socket and clears
// all handlers.
func (c *Conn) Release() {
	c.mu.Lock()
	if c.refs > 0 {
		c.refs--
	}
	last := c.refs == 0
	var ws *websocket.Conn
	if last {
		c.closing = true
		ws = c.ws
		c.ws = nil
		c.handlers = make(map[string]map[int]Handler)
	}
	c.mu.Unlock()

	if last {
		if ws != nil {
			ws.Close()
		}
		c.setStatus(StatusDisconnected)
	}
}

// On registers a handler for an event and returns its cancel func. Handlers
// run on the read loop goroutine.
func (c *Conn) On(event string, fn Handler) (cancel func()) {
	c.mu.Lock()
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]Handler)
	}
	c.nextID++
	id := c.nextID
	c.handlers[event][id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.handlers[event], id)
		c.mu.Unlock()
	}
}

// Emit sends an envelope. It fails fast when the socket is down.
func (c *Conn) Emit(event string, v interface{}) error {
	c.mu.Lock()
	ws := c.ws
	connected := c.status == StatusConnected
	c.mu.Unlock()
	if !connected || ws == nil {
		return ErrNotConnected
	}

	env := wire.NewEnvelope(event, v)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return ws.WriteJSON(env)
}

func (c *Conn) setStatus(s Status) {
	c.mu.Lock()
	changed := c.status != s
	c.status = s
	fn := c.onStatus
	c.mu.Unlock()
	if changed && fn != nil {
		fn(s)
	}
}

// connect dials with a bounded retry budget and hands the socket to the read
// loop. Each disconnect gets a fresh budget.
func (c *Conn) connect(attempts int) {
	c.setStatus(StatusConnecting)

	for i := 0; i < attempts; i++ {
		c.mu.Lock()
		stop := c.closing
		c.mu.Unlock()
		if stop {
			return
		}

		ws, _, err := c.dialer.Dial(c.url, nil)
		if err == nil {
			c.mu.Lock()
			// The last Release can land while the dial is in flight;
			// installing the socket then would resurrect a connection
			// nobody holds.
			if c.closing {
				c.mu.Unlock()
				ws.Close()
				return
			}
			c.ws = ws
			c.mu.Unlock()
			c.setStatus(StatusConnected)
			go c.readLoop(ws)
			return
		}

		log.Printf("realtime: dial failed (attempt %d/%d): %v", i+1, attempts, err)
		time.Sleep(reconnectDelay)
	}

	c.setStatus(StatusError)
}

func (c *Conn) readLoop(ws *websocket.Conn) {
	for {
		var env wire.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			c.mu.Lock()
			stale := c.ws != ws
			stop := c.closing
			if !stale {
				c.ws = nil
			}
			c.mu.Unlock()

			if stale || stop {
				return
			}
			c.setStatus(StatusDisconnected)
			go c.connect(maxReconnectAttempts)
			return
		}
		c.dispatch(env)
	}
}

// dispatch runs every handler registered for the envelope's event. Handlers
// are invoked synchronously so consumers observe events in arrival order.
func (c *Conn) dispatch(env wire.Envelope) {
	c.mu.Lock()
	fns := make([]Handler, 0, len(c.handlers[env.Event]))
	for _, fn := range c.handlers[env.Event] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(env.Data)
	}
}
