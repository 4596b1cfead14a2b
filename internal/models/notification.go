package models

import "time"

// Post exists as the target of likes and comments, which are the
// producers of activity notifications.
type Post struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Notification is a like/comment event addressed to a post's owner.
type Notification struct {
	ID          int       `json:"id"`
	RecipientID int       `json:"recipient_id"`
	SenderID    int       `json:"sender_id"`
	PostID      int       `json:"post_id"`
	Type        string    `json:"type"` // "like" or "comment"
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationRow is a notification joined with sender and post summaries.
type NotificationRow struct {
	Notification
	Sender    User
	PostTitle string
}
