package sync

import (
	"encoding/json"
	"sync"

	"socialhub/client/rest"
	"socialhub/wire"
)

// Conversations is the single owner of per-conversation unread counts. The
// sidebar, the badge and the chat view all read from it; incoming pushes and
// read acknowledgements mutate it in one place, so the totals cannot drift
// apart across views.
type Conversations struct {
	api       *rest.Client
	transport Transport
	selfID    int

	mu       sync.Mutex
	convs    []wire.Conversation
	onChange func()
	cancel   func()
}

func OpenConversations(api *rest.Client, transport Transport, selfID int) *Conversations {
	c := &Conversations{api: api, transport: transport, selfID: selfID}
	transport.Acquire()
	c.cancel = transport.On(wire.EventPrivateMessage, c.onPush)
	return c
}

func (c *Conversations) Close() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.transport.Release()
	}
}

func (c *Conversations) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Load replaces the list with the server snapshot.
func (c *Conversations) Load() error {
	convs, err := c.api.Conversations()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.convs = convs
	c.mu.Unlock()
	c.notify()
	return nil
}

// MarkConversationRead clears the unread count for one peer, server first.
func (c *Conversations) MarkConversationRead(peerID int) error {
	if _, err := c.api.MarkChatRead(peerID); err != nil {
		return err
	}
	c.noteRead(peerID)
	return nil
}

// noteRead zeroes the local counter after the server already acknowledged a
// read through some other path.
func (c *Conversations) noteRead(peerID int) {
	c.mu.Lock()
	for i := range c.convs {
		if c.convs[i].UserID == peerID {
			c.convs[i].UnreadCount = 0
			break
		}
	}
	c.mu.Unlock()
	c.notify()
}

// List returns a copy of the conversations.
func (c *Conversations) List() []wire.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]wire.Conversation, len(c.convs))
	copy(out, c.convs)
	return out
}

// TotalUnread is derived from the per-conversation counts, never stored, and
// never negative.
func (c *Conversations) TotalUnread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, conv := range c.convs {
		if conv.UnreadCount > 0 {
			total += conv.UnreadCount
		}
	}
	return total
}

// onPush bumps the sender's conversation on every incoming direct message.
// Our own echoes update the preview without touching the unread count.
func (c *Conversations) onPush(data json.RawMessage) {
	var push wire.PrivateMessagePush
	if !parse(data, &push) {
		return
	}
	if push.From == c.selfID {
		return
	}

	ts := pushTime(push.Timestamp)

	c.mu.Lock()
	found := false
	for i := range c.convs {
		if c.convs[i].UserID == push.From {
			c.convs[i].LastMessage = push.Message
			c.convs[i].LastMessageTime = ts
			c.convs[i].UnreadCount++
			found = true
			break
		}
	}
	if !found {
		c.convs = append([]wire.Conversation{{
			UserID:          push.From,
			LastMessage:     push.Message,
			LastMessageTime: ts,
			UnreadCount:     1,
		}}, c.convs...)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Conversations) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
