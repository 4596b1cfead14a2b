package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"socialhub/internal/models"
	"socialhub/internal/store"
)

func (s *PGStore) CreatePost(ctx context.Context, p *models.Post) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO posts (user_id, title) VALUES ($1, $2) RETURNING id, created_at`,
		p.UserID, p.Title).Scan(&p.ID, &p.CreatedAt)
}

func (s *PGStore) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var p models.Post
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, created_at FROM posts WHERE id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.Title, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PGStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO notifications (recipient_id, sender_id, post_id, type)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		n.RecipientID, n.SenderID, n.PostID, n.Type).Scan(&n.ID, &n.CreatedAt)
}

func (s *PGStore) GetNotifications(ctx context.Context, recipientID, page, limit int) ([]models.NotificationRow, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`, recipientID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT n.id, n.recipient_id, n.sender_id, n.post_id, n.type, n.is_read, n.created_at,
		        u.id, u.first_name, u.last_name, u.avatar, p.title
		 FROM notifications n
		 JOIN users u ON u.id = n.sender_id
		 JOIN posts p ON p.id = n.post_id
		 WHERE n.recipient_id = $1
		 ORDER BY n.id DESC LIMIT $2 OFFSET $3`,
		recipientID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notifs []models.NotificationRow
	for rows.Next() {
		var r models.NotificationRow
		if err := rows.Scan(&r.ID, &r.RecipientID, &r.SenderID, &r.PostID, &r.Type, &r.IsRead, &r.CreatedAt,
			&r.Sender.ID, &r.Sender.FirstName, &r.Sender.LastName, &r.Sender.Avatar, &r.PostTitle); err != nil {
			return nil, 0, err
		}
		notifs = append(notifs, r)
	}
	return notifs, total, rows.Err()
}

func (s *PGStore) CountUnreadNotifications(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, recipientID).Scan(&count)
	return count, err
}

func (s *PGStore) MarkNotificationRead(ctx context.Context, recipientID, id int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *PGStore) MarkAllNotificationsRead(ctx context.Context, recipientID int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	return err
}
