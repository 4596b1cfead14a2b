package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"socialhub/internal/models"
	"socialhub/internal/store/sqlstore"
	"socialhub/wire"
)

// startTestServer runs the app on a random port and returns its address.
func startTestServer(t *testing.T) (*sqlstore.SQLStore, string) {
	t.Helper()
	st, err := sqlstore.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	app := New(st)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	return st, ln.Addr().String()
}

func seedUser(t *testing.T, st *sqlstore.SQLStore, name string) *models.User {
	t.Helper()
	u := &models.User{FirstName: name, LastName: "ws", Email: name + "@ws.example.com", PasswordHash: "x"}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func dialWS(t *testing.T, addr string, userID int) *websocket.Conn {
	t.Helper()
	url := fmt.Sprintf("ws://%s/ws?userId=%d", addr, userID)
	var conn *websocket.Conn
	var err error
	// The listener may need a moment to come up.
	for i := 0; i < 20; i++ {
		conn, _, err = websocket.DefaultDialer.Dial(url, nil)
		if err == nil {
			t.Cleanup(func() { conn.Close() })
			return conn
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", url, err)
	return nil
}

func readEnvelope(t *testing.T, conn *websocket.Conn, wantEvent string) wire.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var env wire.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read waiting for %q: %v", wantEvent, err)
		}
		if env.Event == wantEvent {
			return env
		}
	}
}

func TestPrivateMessageDeliveryAndEcho(t *testing.T) {
	st, addr := startTestServer(t)
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	aliceConn := dialWS(t, addr, alice.ID)
	bobConn := dialWS(t, addr, bob.ID)

	send := wire.PrivateMessageSend{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Message:    "hello bob",
		Nonce:      "nonce-1",
	}
	if err := aliceConn.WriteJSON(wire.NewEnvelope(wire.EventPrivateMessage, send)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The recipient gets the message.
	env := readEnvelope(t, bobConn, wire.EventPrivateMessage)
	var push wire.PrivateMessagePush
	if err := json.Unmarshal(env.Data, &push); err != nil {
		t.Fatalf("decode push: %v", err)
	}
	if push.From != alice.ID || push.Message != "hello bob" || push.ID == 0 {
		t.Errorf("push = %+v", push)
	}

	// The sender gets the echo carrying the same nonce and the server ID.
	env = readEnvelope(t, aliceConn, wire.EventPrivateMessage)
	var echo wire.PrivateMessagePush
	if err := json.Unmarshal(env.Data, &echo); err != nil {
		t.Fatal(err)
	}
	if echo.Nonce != "nonce-1" || echo.ID != push.ID {
		t.Errorf("echo = %+v, want nonce-1 / id %d", echo, push.ID)
	}

	// The message was persisted.
	messages, total, err := st.GetDirectHistory(context.Background(), bob.ID, alice.ID, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || messages[0].Content != "hello bob" {
		t.Errorf("history = %v (total %d)", messages, total)
	}
}

func TestGroupMessageBroadcast(t *testing.T) {
	st, addr := startTestServer(t)
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")

	aliceConn := dialWS(t, addr, alice.ID)
	bobConn := dialWS(t, addr, bob.ID)

	if err := aliceConn.WriteJSON(wire.NewEnvelope(wire.EventJoinRoom, "general")); err != nil {
		t.Fatal(err)
	}
	readEnvelope(t, aliceConn, wire.EventRoomInfo)

	if err := bobConn.WriteJSON(wire.NewEnvelope(wire.EventJoinRoom, "general")); err != nil {
		t.Fatal(err)
	}
	readEnvelope(t, bobConn, wire.EventRoomInfo)

	if err := aliceConn.WriteJSON(wire.NewEnvelope(wire.EventGroupMessage, wire.GroupMessageSend{
		Room: "general", Message: "hi room", Nonce: "g-1",
	})); err != nil {
		t.Fatal(err)
	}

	// Both members receive it, the sender included.
	env := readEnvelope(t, bobConn, wire.EventGroupMessage)
	var push wire.GroupMessagePush
	if err := json.Unmarshal(env.Data, &push); err != nil {
		t.Fatal(err)
	}
	if push.From != alice.ID || push.Message != "hi room" {
		t.Errorf("bob push = %+v", push)
	}

	env = readEnvelope(t, aliceConn, wire.EventGroupMessage)
	var echo wire.GroupMessagePush
	if err := json.Unmarshal(env.Data, &echo); err != nil {
		t.Fatal(err)
	}
	if echo.Nonce != "g-1" {
		t.Errorf("sender echo nonce = %q", echo.Nonce)
	}
}

func TestBadUserIDRejected(t *testing.T) {
	_, addr := startTestServer(t)
	url := fmt.Sprintf("ws://%s/ws?userId=abc", addr)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		// Either the upgrade fails outright or the server closes at once.
		return
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env wire.Envelope
	if err := conn.ReadJSON(&env); err == nil {
		t.Error("expected close after bad userId, got a message")
	}
}
