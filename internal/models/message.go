package models

import "time"

// DirectMessage is a one-to-one chat message as stored.
type DirectMessage struct {
	ID          int       `json:"id"`
	SenderID    int       `json:"sender_id"`
	RecipientID int       `json:"recipient_id"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomMessage is a group chat message, scoped by room ID.
type RoomMessage struct {
	ID        int       `json:"id"`
	Room      string    `json:"room"`
	SenderID  int       `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationRow is one row of the per-peer conversation summary:
// the latest message exchanged with the peer plus the unread count.
type ConversationRow struct {
	PeerID          int
	PeerFirstName   string
	PeerLastName    string
	PeerAvatar      string
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
}
