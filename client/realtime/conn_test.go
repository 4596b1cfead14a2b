package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"socialhub/wire"
)

var upgrader = websocket.Upgrader{}

// echoServer upgrades /ws and echoes every envelope back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			var env wire.Envelope
			if err := ws.ReadJSON(&env); err != nil {
				return
			}
			if err := ws.WriteJSON(env); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func waitStatus(t *testing.T, c *Conn, want Status) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if c.Status() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("status = %v, want %v", c.Status(), want)
}

func TestAcquireDialsAndDispatches(t *testing.T) {
	srv := echoServer(t)
	c := New(wsURL(srv), 1)

	received := make(chan string, 1)
	c.On("ping", func(data json.RawMessage) {
		var s string
		_ = json.Unmarshal(data, &s)
		received <- s
	})

	c.Acquire()
	defer c.Release()
	waitStatus(t, c, StatusConnected)

	if err := c.Emit("ping", "hello"); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case got := <-received:
		if got != "hello" {
			t.Errorf("got %q", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("handler never fired")
	}
}

func TestEmitFailsFastWhenDisconnected(t *testing.T) {
	c := New("ws://127.0.0.1:1/ws", 1)
	if err := c.Emit("ping", "x"); err != ErrNotConnected {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}
}

func TestRefcountClosesOnLastRelease(t *testing.T) {
	srv := echoServer(t)
	c := New(wsURL(srv), 1)

	c.Acquire()
	c.Acquire()
	waitStatus(t, c, StatusConnected)

	c.Release()
	// Still held by the second reference.
	if c.Status() != StatusConnected {
		t.Fatalf("released too early: %v", c.Status())
	}

	c.Release()
	waitStatus(t, c, StatusDisconnected)
	if err := c.Emit("ping", "x"); err != ErrNotConnected {
		t.Errorf("emit after close = %v, want ErrNotConnected", err)
	}
}

func TestCancelRemovesHandler(t *testing.T) {
	srv := echoServer(t)
	c := New(wsURL(srv), 1)

	pings := make(chan struct{}, 4)
	cancel := c.On("ping", func(json.RawMessage) {
		pings <- struct{}{}
	})

	c.Acquire()
	defer c.Release()
	waitStatus(t, c, StatusConnected)

	done := make(chan struct{}, 1)
	c.On("done", func(json.RawMessage) { done <- struct{}{} })

	if err := c.Emit("ping", "1"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-pings:
	case <-time.After(3 * time.Second):
		t.Fatal("first ping never handled")
	}

	cancel()
	if err := c.Emit("ping", "2"); err != nil {
		t.Fatal(err)
	}
	// A marker event flushes the echo stream past the second ping.
	if err := c.Emit("done", nil); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("marker never arrived")
	}

	select {
	case <-pings:
		t.Error("cancelled handler still ran")
	default:
	}
}

func TestReleaseDuringDialStaysClosed(t *testing.T) {
	// The handshake stalls on gate, so the last Release lands while the
	// dial is still in flight. The late dial success must not install the
	// socket and bring the connection back with zero references.
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-gate
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			var env wire.Envelope
			if err := ws.ReadJSON(&env); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() {
		select {
		case <-gate:
		default:
			close(gate)
		}
	})

	c := New(wsURL(srv), 1)
	c.Acquire()
	time.Sleep(200 * time.Millisecond) // dial is now blocked in the handshake
	c.Release()
	waitStatus(t, c, StatusDisconnected)

	close(gate)
	time.Sleep(500 * time.Millisecond)
	if got := c.Status(); got != StatusDisconnected {
		t.Fatalf("status after last release = %v, want disconnected", got)
	}
	if err := c.Emit("ping", "x"); err != ErrNotConnected {
		t.Errorf("emit after last release = %v, want ErrNotConnected", err)
	}
}

func TestDialFailureEndsInErrorStatus(t *testing.T) {
	c := New("ws://127.0.0.1:1/ws", 1)
	c.Acquire()
	defer c.Release()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if c.Status() == StatusError {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("status = %v, want StatusError after exhausting retries", c.Status())
}
