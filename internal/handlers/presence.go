package handlers

import (
	"sync"

	"github.com/gofiber/websocket/v2"

	"socialhub/internal/utils"
	"socialhub/wire"
)

// client wraps a websocket connection with a write lock. Fiber's websocket
// implementation is not safe for concurrent writes, and pushes can originate
// from REST handlers and the read loop at the same time.
type client struct {
	conn   *websocket.Conn
	userID int
	mu     sync.Mutex
}

func (c *client) send(env wire.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	utils.LogError(c.conn.WriteJSON(env), "push")
}

// ClientManager tracks live connections per user and per room. A user may
// hold several connections (tabs, devices); pushes fan out to all of them.
type ClientManager struct {
	mu sync.RWMutex
	// connID -> client
	conns map[string]*client
	// userID -> set of connIDs
	users map[int]map[string]bool
	// room -> set of connIDs
	rooms map[string]map[string]bool
}

// Manager is the process-wide connection registry, shared by the socket
// gateway and the REST handlers that push events.
var Manager = NewClientManager()

func NewClientManager() *ClientManager {
	return &ClientManager{
		conns: make(map[string]*client),
		users: make(map[int]map[string]bool),
		rooms: make(map[string]map[string]bool),
	}
}

// Register stores a new connection. Returns true if this is the user's
// first live connection.
func (m *ClientManager) Register(connID string, userID int, conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.conns[connID] = &client{conn: conn, userID: userID}
	first := len(m.users[userID]) == 0
	if m.users[userID] == nil {
		m.users[userID] = make(map[string]bool)
	}
	m.users[userID][connID] = true
	return first
}

// Unregister drops the connection from the registry and from every room it
// joined. Returns true if the user has no connections left.
func (m *ClientManager) Unregister(connID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.conns[connID]
	if !ok {
		return false
	}
	delete(m.conns, connID)

	for room, members := range m.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(m.rooms, room)
		}
	}

	delete(m.users[cl.userID], connID)
	if len(m.users[cl.userID]) == 0 {
		delete(m.users, cl.userID)
		return true
	}
	return false
}

func (m *ClientManager) JoinRoom(room, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rooms[room] == nil {
		m.rooms[room] = make(map[string]bool)
	}
	m.rooms[room][connID] = true
}

func (m *ClientManager) LeaveRoom(room, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, ok := m.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(m.rooms, room)
		}
	}
}

// RoomsOf returns the rooms this connection has joined.
func (m *ClientManager) RoomsOf(connID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rooms []string
	for room, members := range m.rooms {
		if members[connID] {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

// SendToUser pushes an envelope to every connection of userID.
func (m *ClientManager) SendToUser(userID int, env wire.Envelope) {
	m.mu.RLock()
	var targets []*client
	for connID := range m.users[userID] {
		if cl, ok := m.conns[connID]; ok {
			targets = append(targets, cl)
		}
	}
	m.mu.RUnlock()

	for _, cl := range targets {
		cl.send(env)
	}
}

// BroadcastRoom pushes an envelope to every connection in a room, skipping
// excludeConnID when non-empty.
func (m *ClientManager) BroadcastRoom(room string, env wire.Envelope, excludeConnID string) {
	m.mu.RLock()
	var targets []*client
	for connID := range m.rooms[room] {
		if connID == excludeConnID {
			continue
		}
		if cl, ok := m.conns[connID]; ok {
			targets = append(targets, cl)
		}
	}
	m.mu.RUnlock()

	for _, cl := range targets {
		cl.send(env)
	}
}

// BroadcastAll pushes an envelope to every live connection.
func (m *ClientManager) BroadcastAll(env wire.Envelope) {
	m.mu.RLock()
	targets := make([]*client, 0, len(m.conns))
	for _, cl := range m.conns {
		targets = append(targets, cl)
	}
	m.mu.RUnlock()

	for _, cl := range targets {
		cl.send(env)
	}
}
