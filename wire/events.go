// Package wire holds the payload types shared by the server and the client SDK:
// socket event envelopes and the REST request/response bodies.
package wire

import "encoding/json"

// Socket event names. Client-emitted and server-pushed events share one
// namespace; privateMessage and groupMessage are used in both directions
// with different payload shapes (Send vs Push).
const (
	EventPrivateMessage        = "privateMessage"
	EventJoinRoom              = "joinRoom"
	EventLeaveRoom             = "leaveRoom"
	EventGroupMessage          = "groupMessage"
	EventBroadcast             = "newMessage"
	EventRoomInfo              = "roomInfo"
	EventFriendRequestReceived = "friendRequestReceived"
	EventFriendRequestAccepted = "friendRequestAccepted"
	EventFriendRequestRejected = "friendRequestRejected"
	EventUnfriended            = "unfriended"
	EventBlocked               = "blocked"
	EventNewNotification       = "newNotification"
)

// Envelope frames every socket message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals data into an Envelope. Marshal errors are not
// expected for the fixed payload types and yield an empty Data.
func NewEnvelope(event string, data interface{}) Envelope {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{Event: event}
	}
	return Envelope{Event: event, Data: raw}
}

// PrivateMessageSend is the client->server payload for a direct message.
// Nonce is generated by the sender and echoed back so the optimistic local
// entry can be resolved against the server-assigned ID.
type PrivateMessageSend struct {
	FromUserID int    `json:"fromUserId"`
	ToUserID   int    `json:"toUserId"`
	Message    string `json:"message"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Nonce      string `json:"nonce,omitempty"`
}

// PrivateMessagePush is the server->client payload for a direct message.
// It is delivered to the recipient and echoed to the sender.
type PrivateMessagePush struct {
	From      int    `json:"from"`
	Message   string `json:"message"`
	ID        int    `json:"id,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // unix millis
	ImageURL  string `json:"imageUrl,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
}

// GroupMessageSend is the client->server payload for a room message.
type GroupMessageSend struct {
	Room    string `json:"room"`
	Message string `json:"message"`
	Nonce   string `json:"nonce,omitempty"`
}

// GroupMessagePush is the server->client payload for a room message.
type GroupMessagePush struct {
	From      int    `json:"from"`
	Room      string `json:"room,omitempty"`
	Message   string `json:"message"`
	ID        int    `json:"id,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
}

// RoomInfo carries free-text join/leave notices for a room.
type RoomInfo struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// FriendRequestReceivedPush notifies the addressee of a new friend request.
type FriendRequestReceivedPush struct {
	FriendshipID int         `json:"friendshipId"`
	From         UserSummary `json:"from"`
}

// FriendRequestAcceptedPush notifies the requester that their request was accepted.
type FriendRequestAcceptedPush struct {
	FriendshipID int         `json:"friendshipId"`
	Friend       UserSummary `json:"friend"`
}

// FriendRequestRejectedPush notifies the requester that their request was rejected.
type FriendRequestRejectedPush struct {
	FriendshipID int `json:"friendshipId"`
	UserID       int `json:"userId"`
}

// UnfriendedPush notifies a user that a friendship was dissolved by the other party.
type UnfriendedPush struct {
	UserID  int    `json:"userId"`
	Message string `json:"message,omitempty"`
}

// BlockedPush notifies a user that they were blocked.
type BlockedPush struct {
	UserID  int    `json:"userId"`
	Message string `json:"message,omitempty"`
}

// NotificationPush wraps a new activity notification.
type NotificationPush struct {
	Type string       `json:"type"` // always "new_notification"
	Data Notification `json:"data"`
}
