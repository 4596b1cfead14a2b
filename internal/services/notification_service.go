package services

import (
	"context"
	"errors"

	"socialhub/internal/models"
	"socialhub/internal/store"
	"socialhub/wire"
)

var ErrPostNotFound = errors.New("post not found")

// NotificationService covers activity notifications and the posts that
// produce them.
type NotificationService struct {
	store store.Store
}

func NewNotificationService(st store.Store) *NotificationService {
	return &NotificationService{store: st}
}

func (s *NotificationService) CreatePost(ctx context.Context, userID int, title string) (*models.Post, error) {
	post := &models.Post{UserID: userID, Title: title}
	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// NotifyPostActivity records a like/comment notification for the post's
// owner and returns the wire notification for the push channel. Activity on
// your own post produces nothing.
func (s *NotificationService) NotifyPostActivity(ctx context.Context, senderID, postID int, typ string) (*wire.Notification, int, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, ErrPostNotFound
		}
		return nil, 0, err
	}
	if post.UserID == senderID {
		return nil, 0, nil
	}

	n := &models.Notification{
		RecipientID: post.UserID,
		SenderID:    senderID,
		PostID:      post.ID,
		Type:        typ,
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, 0, err
	}

	sender, err := s.store.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, 0, err
	}
	return &wire.Notification{
		ID:        n.ID,
		Type:      n.Type,
		IsRead:    false,
		CreatedAt: n.CreatedAt,
		Sender:    sender.Summary(),
		Post:      wire.PostSummary{ID: post.ID, Title: post.Title},
	}, post.UserID, nil
}

func (s *NotificationService) List(ctx context.Context, userID, page, perPage int) (*wire.NotificationList, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	rows, total, err := s.store.GetNotifications(ctx, userID, page, perPage)
	if err != nil {
		return nil, err
	}
	data := make([]wire.Notification, 0, len(rows))
	for _, r := range rows {
		data = append(data, wire.Notification{
			ID:        r.ID,
			Type:      r.Type,
			IsRead:    r.IsRead,
			CreatedAt: r.CreatedAt,
			Sender:    r.Sender.Summary(),
			Post:      wire.PostSummary{ID: r.PostID, Title: r.PostTitle},
		})
	}
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	return &wire.NotificationList{
		Data:        data,
		Total:       total,
		CurrentPage: page,
		LastPage:    lastPage,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	return s.store.CountUnreadNotifications(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int) error {
	return s.store.MarkNotificationRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}
