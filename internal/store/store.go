// Package store defines the persistence interface shared by the Postgres
// and SQLite implementations.
package store

import (
	"context"
	"errors"

	"socialhub/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type Store interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)

	// Direct messages
	SaveDirectMessage(ctx context.Context, m *models.DirectMessage) error
	GetDirectHistory(ctx context.Context, userID, peerID, page, limit int) ([]models.DirectMessage, int, error)
	MarkDirectRead(ctx context.Context, userID, peerID int) (int, error)
	GetConversations(ctx context.Context, userID int) ([]models.ConversationRow, error)

	// Room messages
	SaveRoomMessage(ctx context.Context, m *models.RoomMessage) error
	GetRecentRoomMessages(ctx context.Context, room string, limit int) ([]models.RoomMessage, error)

	// Friendships
	CreateFriendship(ctx context.Context, f *models.Friendship) error
	GetFriendship(ctx context.Context, id int) (*models.Friendship, error)
	GetFriendshipBetween(ctx context.Context, userA, userB int) (*models.Friendship, error)
	UpdateFriendshipStatus(ctx context.Context, id int, status string) error
	DeleteFriendship(ctx context.Context, id int) error
	GetPendingRequests(ctx context.Context, addresseeID int) ([]models.PendingRequest, error)
	GetFriends(ctx context.Context, userID, page, limit int, search string) ([]models.FriendRow, int, error)
	GetSuggestedUsers(ctx context.Context, userID, limit int) ([]models.User, error)

	// Posts and notifications
	CreatePost(ctx context.Context, p *models.Post) error
	GetPost(ctx context.Context, id int) (*models.Post, error)
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotifications(ctx context.Context, recipientID, page, limit int) ([]models.NotificationRow, int, error)
	CountUnreadNotifications(ctx context.Context, recipientID int) (int, error)
	MarkNotificationRead(ctx context.Context, recipientID, id int) error
	MarkAllNotificationsRead(ctx context.Context, recipientID int) error

	Close() error
}
