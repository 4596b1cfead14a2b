package wire

import "time"

// UserSummary is the compact user shape embedded in requests, friends and
// notification payloads.
type UserSummary struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_Name"`
	LastName  string `json:"last_Name"`
	Avatar    string `json:"avatar,omitempty"`
}

// DisplayName joins first and last name, falling back to the numeric ID.
func (u UserSummary) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}

// Auth

type RegisterRequest struct {
	FirstName string `json:"first_Name"`
	LastName  string `json:"last_Name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         UserSummary `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Chat

type ChatMessage struct {
	ID           int       `json:"id"`
	SenderID     int       `json:"senderId"`
	SenderName   string    `json:"senderName,omitempty"`
	SenderAvatar string    `json:"senderAvatar,omitempty"`
	Content      string    `json:"content"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	IsRead       bool      `json:"isRead"`
	IsFromMe     bool      `json:"isFromMe"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ChatHistory struct {
	Data       []ChatMessage `json:"data"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

type Conversation struct {
	UserID          int       `json:"userId"`
	UserName        string    `json:"userName"`
	UserAvatar      string    `json:"userAvatar,omitempty"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	UnreadCount     int       `json:"unreadCount"`
}

// Friends

type SendFriendRequest struct {
	AddresseeID int `json:"addresseeId"`
}

type RespondFriendRequest struct {
	FriendshipID int    `json:"friendshipId"`
	Action       string `json:"action"` // "accept" or "reject"
}

type FriendRequest struct {
	FriendshipID int         `json:"friendshipId"`
	Requester    UserSummary `json:"requester"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type Friend struct {
	ID           int    `json:"id"`
	FirstName    string `json:"first_Name"`
	LastName     string `json:"last_Name"`
	Email        string `json:"email,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	FriendshipID int    `json:"friendshipId"`
}

type FriendList struct {
	Data  []Friend `json:"data"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Limit int      `json:"limit"`
}

// Friendship status values mirror the server-side state machine.
const (
	FriendshipNone     = "none"
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
	FriendshipBlocked  = "blocked"
)

type FriendshipStatus struct {
	Status       string `json:"status"`
	FriendshipID int    `json:"friendshipId,omitempty"`
	// Requester reports whether the current user initiated the pending request.
	Requester bool `json:"isRequester,omitempty"`
}

// Notifications

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

type PostSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type Notification struct {
	ID        int         `json:"id"`
	Type      string      `json:"type"`
	IsRead    bool        `json:"is_read"`
	CreatedAt time.Time   `json:"created_at"`
	Sender    UserSummary `json:"sender"`
	Post      PostSummary `json:"post"`
}

type NotificationList struct {
	Data        []Notification `json:"data"`
	Total       int            `json:"total"`
	CurrentPage int            `json:"currentPage"`
	LastPage    int            `json:"lastPage"`
}

type UnreadCount struct {
	UnreadCount int `json:"unreadCount"`
}

// Posts (the notification producers)

type CreatePostRequest struct {
	Title string `json:"title"`
}

type CommentRequest struct {
	Text string `json:"text"`
}
