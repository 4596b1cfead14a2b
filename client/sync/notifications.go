package sync

import (
	"encoding/json"
	"sync"

	"socialhub/client/rest"
	"socialhub/wire"
)

// Notifications synchronizes the activity-notification feed and its unread
// counter. The counter is adjusted locally on reads and pushes; Load is the
// only full resync.
type Notifications struct {
	api       *rest.Client
	transport Transport

	mu       sync.Mutex
	items    []wire.Notification
	total    int
	unread   int
	onChange func()
	onToast  func(wire.Notification)
	cancel   func()
}

func OpenNotifications(api *rest.Client, transport Transport) *Notifications {
	n := &Notifications{api: api, transport: transport}
	transport.Acquire()
	n.cancel = transport.On(wire.EventNewNotification, n.onPush)
	return n
}

func (n *Notifications) Close() {
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
		n.transport.Release()
	}
}

func (n *Notifications) OnChange(fn func()) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

// OnToast registers a hook fired once per pushed notification, for transient
// UI like a toast line.
func (n *Notifications) OnToast(fn func(wire.Notification)) {
	n.mu.Lock()
	n.onToast = fn
	n.mu.Unlock()
}

// Load fetches the first page and the authoritative unread count.
func (n *Notifications) Load() error {
	list, err := n.api.Notifications(1, 20)
	if err != nil {
		return err
	}
	unread, err := n.api.NotificationUnreadCount()
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.items = list.Data
	n.total = list.Total
	n.unread = unread
	n.mu.Unlock()
	n.notify()
	return nil
}

// MarkRead flags one notification. Server first; the local counter never
// goes below zero.
func (n *Notifications) MarkRead(id int) error {
	if err := n.api.MarkNotificationRead(id); err != nil {
		return err
	}

	n.mu.Lock()
	for i := range n.items {
		if n.items[i].ID == id && !n.items[i].IsRead {
			n.items[i].IsRead = true
			if n.unread > 0 {
				n.unread--
			}
			break
		}
	}
	n.mu.Unlock()
	n.notify()
	return nil
}

// MarkAllRead flags everything and zeroes the counter.
func (n *Notifications) MarkAllRead() error {
	if err := n.api.MarkAllNotificationsRead(); err != nil {
		return err
	}

	n.mu.Lock()
	for i := range n.items {
		n.items[i].IsRead = true
	}
	n.unread = 0
	n.mu.Unlock()
	n.notify()
	return nil
}

// Items returns a copy of the feed, newest first.
func (n *Notifications) Items() []wire.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]wire.Notification, len(n.items))
	copy(out, n.items)
	return out
}

// Unread returns the current unread count.
func (n *Notifications) Unread() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.unread
}

func (n *Notifications) onPush(data json.RawMessage) {
	var push wire.NotificationPush
	if !parse(data, &push) {
		return
	}

	n.mu.Lock()
	for _, item := range n.items {
		if item.ID == push.Data.ID {
			n.mu.Unlock()
			return
		}
	}
	n.items = append([]wire.Notification{push.Data}, n.items...)
	n.total++
	n.unread++
	toast := n.onToast
	n.mu.Unlock()

	if toast != nil {
		toast(push.Data)
	}
	n.notify()
}

func (n *Notifications) notify() {
	n.mu.Lock()
	fn := n.onChange
	n.mu.Unlock()
	if fn != nil {
		fn()
	}
}
