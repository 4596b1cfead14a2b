package sync

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialhub/client/rest"
	"socialhub/wire"
)

// PrivateChat synchronizes one direct conversation. History comes from REST;
// live messages arrive over the socket. Sent messages appear immediately
// under a temporary ID and adopt the server ID when the echo comes back.
type PrivateChat struct {
	api       *rest.Client
	transport Transport
	selfID    int
	peerID    int
	convs     *Conversations

	mu       sync.Mutex
	messages []Message
	seen     map[string]bool
	onChange func()
	cancel   func()
}

// OpenPrivateChat starts synchronizing the conversation with peerID. convs
// may be nil when no badge aggregator is running.
func OpenPrivateChat(api *rest.Client, transport Transport, selfID, peerID int, convs *Conversations) *PrivateChat {
	pc := &PrivateChat{
		api:       api,
		transport: transport,
		selfID:    selfID,
		peerID:    peerID,
		convs:     convs,
		seen:      make(map[string]bool),
	}
	transport.Acquire()
	pc.cancel = transport.On(wire.EventPrivateMessage, pc.onPush)
	return pc
}

// Close stops listening and drops the connection reference. The message
// slice stays readable.
func (pc *PrivateChat) Close() {
	if pc.cancel != nil {
		pc.cancel()
		pc.cancel = nil
		pc.transport.Release()
	}
}

// OnChange registers the redraw hook, called after every mutation.
func (pc *PrivateChat) OnChange(fn func()) {
	pc.mu.Lock()
	pc.onChange = fn
	pc.mu.Unlock()
}

// Load replaces the local view with the first page of history and marks the
// conversation read.
func (pc *PrivateChat) Load() error {
	history, err := pc.api.ChatHistory(pc.peerID, 1, 50)
	if err != nil {
		return err
	}

	pc.mu.Lock()
	pc.messages = pc.messages[:0]
	pc.seen = make(map[string]bool)
	for _, m := range history.Data {
		id := serverID(m.ID)
		pc.seen[id] = true
		pc.messages = append(pc.messages, Message{
			ID:        id,
			SenderID:  m.SenderID,
			Content:   m.Content,
			ImageURL:  m.ImageURL,
			Timestamp: m.CreatedAt,
			Mine:      m.IsFromMe,
		})
	}
	pc.mu.Unlock()
	pc.notify()

	return pc.MarkRead()
}

// MarkRead clears the unread state on the server and in the badge aggregator.
func (pc *PrivateChat) MarkRead() error {
	if _, err := pc.api.MarkChatRead(pc.peerID); err != nil {
		return err
	}
	if pc.convs != nil {
		pc.convs.noteRead(pc.peerID)
	}
	return nil
}

// Send emits the message with a fresh nonce and appends it optimistically.
// When the socket is down the optimistic entry is rolled back and the error
// returned.
func (pc *PrivateChat) Send(text, imageURL string) error {
	nonce := uuid.New().String()
	msg := Message{
		ID:        tempID(nonce),
		SenderID:  pc.selfID,
		Content:   text,
		ImageURL:  imageURL,
		Timestamp: time.Now(),
		Mine:      true,
		Pending:   true,
	}

	pc.mu.Lock()
	pc.messages = append(pc.messages, msg)
	pc.mu.Unlock()
	pc.notify()

	err := pc.transport.Emit(wire.EventPrivateMessage, wire.PrivateMessageSend{
		FromUserID: pc.selfID,
		ToUserID:   pc.peerID,
		Message:    text,
		ImageURL:   imageURL,
		Nonce:      nonce,
	})
	if err != nil {
		pc.mu.Lock()
		for i := range pc.messages {
			if pc.messages[i].ID == msg.ID {
				pc.messages = append(pc.messages[:i], pc.messages[i+1:]...)
				break
			}
		}
		pc.mu.Unlock()
		pc.notify()
		return err
	}
	return nil
}

// Messages returns a copy of the conversation in order.
func (pc *PrivateChat) Messages() []Message {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	out := make([]Message, len(pc.messages))
	copy(out, pc.messages)
	return out
}

func (pc *PrivateChat) onPush(data json.RawMessage) {
	var push wire.PrivateMessagePush
	if !parse(data, &push) {
		return
	}
	// Not this conversation.
	if push.From != pc.peerID && push.From != pc.selfID {
		return
	}

	id := serverID(push.ID)

	pc.mu.Lock()
	// Our own echo: the optimistic entry adopts the server identity.
	if push.Nonce != "" && push.From == pc.selfID {
		resolved := false
		for i := range pc.messages {
			if pc.messages[i].ID == tempID(push.Nonce) {
				pc.messages[i].ID = id
				pc.messages[i].Pending = false
				if push.Timestamp > 0 {
					pc.messages[i].Timestamp = time.UnixMilli(push.Timestamp)
				}
				resolved = true
				break
			}
		}
		if resolved {
			pc.seen[id] = true
			pc.mu.Unlock()
			pc.notify()
			return
		}
	}

	// New message from the peer, or our own send from another device.
	if pc.seen[id] {
		pc.mu.Unlock()
		return
	}
	pc.seen[id] = true
	pc.messages = append(pc.messages, Message{
		ID:        id,
		SenderID:  push.From,
		Content:   push.Message,
		ImageURL:  push.ImageURL,
		Timestamp: pushTime(push.Timestamp),
		Mine:      push.From == pc.selfID,
	})
	pc.mu.Unlock()
	pc.notify()
}

func (pc *PrivateChat) notify() {
	pc.mu.Lock()
	fn := pc.onChange
	pc.mu.Unlock()
	if fn != nil {
		fn()
	}
}
