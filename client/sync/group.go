package sync

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialhub/wire"
)

// maxNotices bounds the join/leave notice backlog per room.
const maxNotices = 50

// GroupChat synchronizes one named room. Membership is connection-scoped on
// the server, so Join is re-emitted after every reconnect by the caller.
type GroupChat struct {
	transport Transport
	selfID    int
	room      string

	mu       sync.Mutex
	joined   bool
	messages []Message
	notices  []string
	seen     map[string]bool
	onChange func()
	cancels  []func()
}

// OpenGroupChat starts synchronizing a room. The caller still has to Join.
func OpenGroupChat(transport Transport, selfID int, room string) *GroupChat {
	gc := &GroupChat{
		transport: transport,
		selfID:    selfID,
		room:      room,
		seen:      make(map[string]bool),
	}
	transport.Acquire()
	gc.cancels = append(gc.cancels,
		transport.On(wire.EventGroupMessage, gc.onMessage),
		transport.On(wire.EventRoomInfo, gc.onRoomInfo),
	)
	return gc
}

func (gc *GroupChat) Close() {
	gc.mu.Lock()
	cancels := gc.cancels
	gc.cancels = nil
	gc.mu.Unlock()
	if cancels == nil {
		return
	}
	for _, cancel := range cancels {
		cancel()
	}
	gc.transport.Release()
}

func (gc *GroupChat) OnChange(fn func()) {
	gc.mu.Lock()
	gc.onChange = fn
	gc.mu.Unlock()
}

// Join announces membership. Idempotent: a second call while joined is a
// no-op, so callers can safely re-join after reconnects.
func (gc *GroupChat) Join() error {
	gc.mu.Lock()
	if gc.joined {
		gc.mu.Unlock()
		return nil
	}
	gc.mu.Unlock()

	if err := gc.transport.Emit(wire.EventJoinRoom, gc.room); err != nil {
		return err
	}
	gc.mu.Lock()
	gc.joined = true
	gc.mu.Unlock()
	return nil
}

// Rejoin forces the join announcement regardless of local state, for use
// after a reconnect invalidated the server-side membership.
func (gc *GroupChat) Rejoin() error {
	gc.mu.Lock()
	gc.joined = false
	gc.mu.Unlock()
	return gc.Join()
}

func (gc *GroupChat) Leave() error {
	gc.mu.Lock()
	if !gc.joined {
		gc.mu.Unlock()
		return nil
	}
	gc.joined = false
	gc.mu.Unlock()
	return gc.transport.Emit(wire.EventLeaveRoom, gc.room)
}

// Send emits a room message with a fresh nonce and appends it optimistically.
func (gc *GroupChat) Send(text string) error {
	nonce := uuid.New().String()
	msg := Message{
		ID:        tempID(nonce),
		SenderID:  gc.selfID,
		Content:   text,
		Timestamp: time.Now(),
		Mine:      true,
		Pending:   true,
	}

	gc.mu.Lock()
	gc.messages = append(gc.messages, msg)
	gc.mu.Unlock()
	gc.notify()

	err := gc.transport.Emit(wire.EventGroupMessage, wire.GroupMessageSend{
		Room:    gc.room,
		Message: text,
		Nonce:   nonce,
	})
	if err != nil {
		gc.mu.Lock()
		for i := range gc.messages {
			if gc.messages[i].ID == msg.ID {
				gc.messages = append(gc.messages[:i], gc.messages[i+1:]...)
				break
			}
		}
		gc.mu.Unlock()
		gc.notify()
		return err
	}
	return nil
}

func (gc *GroupChat) Messages() []Message {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	out := make([]Message, len(gc.messages))
	copy(out, gc.messages)
	return out
}

// Notices returns the recent join/leave lines for the room.
func (gc *GroupChat) Notices() []string {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	out := make([]string, len(gc.notices))
	copy(out, gc.notices)
	return out
}

func (gc *GroupChat) onMessage(data json.RawMessage) {
	var push wire.GroupMessagePush
	if !parse(data, &push) {
		return
	}
	if push.Room != "" && push.Room != gc.room {
		return
	}

	id := serverID(push.ID)

	gc.mu.Lock()
	// Our broadcast comes back to us too; resolve the optimistic entry.
	if push.Nonce != "" && push.From == gc.selfID {
		resolved := false
		for i := range gc.messages {
			if gc.messages[i].ID == tempID(push.Nonce) {
				gc.messages[i].ID = id
				gc.messages[i].Pending = false
				if push.Timestamp > 0 {
					gc.messages[i].Timestamp = time.UnixMilli(push.Timestamp)
				}
				resolved = true
				break
			}
		}
		if resolved {
			gc.seen[id] = true
			gc.mu.Unlock()
			gc.notify()
			return
		}
	}

	if gc.seen[id] {
		gc.mu.Unlock()
		return
	}
	gc.seen[id] = true
	gc.messages = append(gc.messages, Message{
		ID:        id,
		SenderID:  push.From,
		Content:   push.Message,
		Timestamp: pushTime(push.Timestamp),
		Mine:      push.From == gc.selfID,
	})
	gc.mu.Unlock()
	gc.notify()
}

func (gc *GroupChat) onRoomInfo(data json.RawMessage) {
	var info wire.RoomInfo
	if !parse(data, &info) {
		return
	}
	if info.Room != gc.room {
		return
	}

	gc.mu.Lock()
	gc.notices = append(gc.notices, info.Message)
	if len(gc.notices) > maxNotices {
		gc.notices = gc.notices[len(gc.notices)-maxNotices:]
	}
	gc.mu.Unlock()
	gc.notify()
}

func (gc *GroupChat) notify() {
	gc.mu.Lock()
	fn := gc.onChange
	gc.mu.Unlock()
	if fn != nil {
		fn()
	}
}
