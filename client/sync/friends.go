package sync

import (
	"encoding/json"
	"sync"

	"socialhub/client/rest"
	"socialhub/wire"
)

// FriendGraph synchronizes the pending-request list and the friend list.
// All five friend push events funnel into one reducer that applies a
// targeted merge to local state; nothing triggers a wholesale refetch.
type FriendGraph struct {
	api       *rest.Client
	transport Transport

	mu       sync.Mutex
	pending  []wire.FriendRequest
	friends  []wire.Friend
	total    int
	page     int
	limit    int
	search   string
	onChange func()
	cancels  []func()
}

func OpenFriendGraph(api *rest.Client, transport Transport) *FriendGraph {
	fg := &FriendGraph{api: api, transport: transport, page: 1, limit: 10}
	transport.Acquire()
	fg.cancels = append(fg.cancels,
		transport.On(wire.EventFriendRequestReceived, fg.onRequestReceived),
		transport.On(wire.EventFriendRequestAccepted, fg.onRequestAccepted),
		transport.On(wire.EventFriendRequestRejected, fg.onRequestRejected),
		transport.On(wire.EventUnfriended, fg.onUnfriended),
		transport.On(wire.EventBlocked, fg.onBlocked),
	)
	return fg
}

func (fg *FriendGraph) Close() {
	fg.mu.Lock()
	cancels := fg.cancels
	fg.cancels = nil
	fg.mu.Unlock()
	if cancels == nil {
		return
	}
	for _, cancel := range cancels {
		cancel()
	}
	fg.transport.Release()
}

func (fg *FriendGraph) OnChange(fn func()) {
	fg.mu.Lock()
	fg.onChange = fn
	fg.mu.Unlock()
}

// Load fetches the pending requests and the requested friend page.
func (fg *FriendGraph) Load(page, limit int, search string) error {
	pending, err := fg.api.PendingRequests()
	if err != nil {
		return err
	}
	list, err := fg.api.Friends(page, limit, search)
	if err != nil {
		return err
	}

	fg.mu.Lock()
	fg.pending = pending
	fg.friends = list.Data
	fg.total = list.Total
	fg.page = list.Page
	fg.limit = list.Limit
	fg.search = search
	fg.mu.Unlock()
	fg.notify()
	return nil
}

// Accept confirms a pending request. The server is told first; only on
// success does the entry move from pending to friends.
func (fg *FriendGraph) Accept(friendshipID int) error {
	if err := fg.api.RespondFriendRequest(friendshipID, "accept"); err != nil {
		return err
	}

	fg.mu.Lock()
	if req, ok := fg.removePending(friendshipID); ok {
		fg.addFriend(wire.Friend{
			ID:           req.Requester.ID,
			FirstName:    req.Requester.FirstName,
			LastName:     req.Requester.LastName,
			Avatar:       req.Requester.Avatar,
			FriendshipID: friendshipID,
		})
	}
	fg.mu.Unlock()
	fg.notify()
	return nil
}

// Reject declines a pending request and drops exactly that entry.
func (fg *FriendGraph) Reject(friendshipID int) error {
	if err := fg.api.RespondFriendRequest(friendshipID, "reject"); err != nil {
		return err
	}
	fg.mu.Lock()
	fg.removePending(friendshipID)
	fg.mu.Unlock()
	fg.notify()
	return nil
}

// Unfriend dissolves a friendship and drops the friend locally.
func (fg *FriendGraph) Unfriend(friendID int) error {
	if err := fg.api.Unfriend(friendID); err != nil {
		return err
	}
	fg.mu.Lock()
	fg.removeFriend(friendID)
	fg.mu.Unlock()
	fg.notify()
	return nil
}

// Pending returns a copy of the pending requests.
func (fg *FriendGraph) Pending() []wire.FriendRequest {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	out := make([]wire.FriendRequest, len(fg.pending))
	copy(out, fg.pending)
	return out
}

// Friends returns a copy of the current friend page and the overall total.
func (fg *FriendGraph) Friends() ([]wire.Friend, int) {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	out := make([]wire.Friend, len(fg.friends))
	copy(out, fg.friends)
	return out, fg.total
}

// removePending drops the request with friendshipID. Caller holds the lock.
func (fg *FriendGraph) removePending(friendshipID int) (wire.FriendRequest, bool) {
	for i, req := range fg.pending {
		if req.FriendshipID == friendshipID {
			fg.pending = append(fg.pending[:i], fg.pending[i+1:]...)
			return req, true
		}
	}
	return wire.FriendRequest{}, false
}

// addFriend inserts without duplicating. Caller holds the lock.
func (fg *FriendGraph) addFriend(f wire.Friend) {
	for _, existing := range fg.friends {
		if existing.ID == f.ID {
			return
		}
	}
	fg.friends = append(fg.friends, f)
	fg.total++
}

// removeFriend drops the friend with the given user ID. Caller holds the lock.
func (fg *FriendGraph) removeFriend(userID int) {
	for i, f := range fg.friends {
		if f.ID == userID {
			fg.friends = append(fg.friends[:i], fg.friends[i+1:]...)
			if fg.total > 0 {
				fg.total--
			}
			return
		}
	}
}

func (fg *FriendGraph) onRequestReceived(data json.RawMessage) {
	var push wire.FriendRequestReceivedPush
	if !parse(data, &push) {
		return
	}

	fg.mu.Lock()
	for _, req := range fg.pending {
		if req.FriendshipID == push.FriendshipID {
			fg.mu.Unlock()
			return
		}
	}
	fg.pending = append([]wire.FriendRequest{{
		FriendshipID: push.FriendshipID,
		Requester:    push.From,
	}}, fg.pending...)
	fg.mu.Unlock()
	fg.notify()
}

func (fg *FriendGraph) onRequestAccepted(data json.RawMessage) {
	var push wire.FriendRequestAcceptedPush
	if !parse(data, &push) {
		return
	}

	fg.mu.Lock()
	fg.addFriend(wire.Friend{
		ID:           push.Friend.ID,
		FirstName:    push.Friend.FirstName,
		LastName:     push.Friend.LastName,
		Avatar:       push.Friend.Avatar,
		FriendshipID: push.FriendshipID,
	})
	fg.mu.Unlock()
	fg.notify()
}

func (fg *FriendGraph) onRequestRejected(data json.RawMessage) {
	var push wire.FriendRequestRejectedPush
	if !parse(data, &push) {
		return
	}
	// Nothing of ours to merge: the rejected request lived on the other
	// side. Still notify so status views can refetch lazily.
	fg.notify()
}

func (fg *FriendGraph) onUnfriended(data json.RawMessage) {
	var push wire.UnfriendedPush
	if !parse(data, &push) {
		return
	}
	fg.mu.Lock()
	fg.removeFriend(push.UserID)
	fg.mu.Unlock()
	fg.notify()
}

func (fg *FriendGraph) onBlocked(data json.RawMessage) {
	var push wire.BlockedPush
	if !parse(data, &push) {
		return
	}
	fg.mu.Lock()
	fg.removeFriend(push.UserID)
	for i, req := range fg.pending {
		if req.Requester.ID == push.UserID {
			fg.pending = append(fg.pending[:i], fg.pending[i+1:]...)
			break
		}
	}
	fg.mu.Unlock()
	fg.notify()
}

func (fg *FriendGraph) notify() {
	fg.mu.Lock()
	fn := fg.onChange
	fg.mu.Unlock()
	if fn != nil {
		fn()
	}
}
