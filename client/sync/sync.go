// Package sync keeps client-side views of chats, the friend graph,
// notifications and unread badges consistent with the server, merging REST
// snapshots with socket pushes.
package sync

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"socialhub/client/realtime"
)

// Transport is the slice of the realtime connection the synchronizers use.
// *realtime.Conn implements it; tests substitute a fake. Every synchronizer
// holds one reference for its lifetime, so the socket stays up as long as
// anything is listening and closes when the last synchronizer does.
type Transport interface {
	On(event string, fn realtime.Handler) (cancel func())
	Emit(event string, v interface{}) error
	Acquire()
	Release()
}

// Message is the client-side view of one chat message. ID starts as the
// sender's temporary nonce and is swapped for the server-assigned ID when the
// echo arrives.
type Message struct {
	ID        string
	SenderID  int
	Content   string
	ImageURL  string
	Timestamp time.Time
	Mine      bool
	Pending   bool
}

const tempIDPrefix = "tmp-"

func tempID(nonce string) string {
	return tempIDPrefix + nonce
}

// IsTemp reports whether the message still carries its optimistic ID.
func (m Message) IsTemp() bool {
	return strings.HasPrefix(m.ID, tempIDPrefix)
}

func serverID(id int) string {
	return strconv.Itoa(id)
}

// pushTime converts a push's unix-millisecond timestamp, falling back to the
// local clock when the server omitted the field.
func pushTime(millis int64) time.Time {
	if millis <= 0 {
		return time.Now()
	}
	return time.UnixMilli(millis)
}

func parse(data json.RawMessage, v interface{}) bool {
	return json.Unmarshal(data, v) == nil
}
