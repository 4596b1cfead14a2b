package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/store"
)

func (s *SQLStore) CreatePost(ctx context.Context, p *models.Post) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (user_id, title, created_at) VALUES (?, ?, ?)`, p.UserID, p.Title, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = int(id)
	p.CreatedAt = now
	return nil
}

func (s *SQLStore) GetPost(ctx context.Context, id int) (*models.Post, error) {
	var p models.Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.UserID, &p.Title, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (recipient_id, sender_id, post_id, type, is_read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		n.RecipientID, n.SenderID, n.PostID, n.Type, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = int(id)
	n.CreatedAt = now
	return nil
}

func (s *SQLStore) GetNotifications(ctx context.Context, recipientID, page, limit int) ([]models.NotificationRow, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ?`, recipientID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.recipient_id, n.sender_id, n.post_id, n.type, n.is_read, n.created_at,
		        u.id, u.first_name, u.last_name, u.avatar, p.title
		 FROM notifications n
		 JOIN users u ON u.id = n.sender_id
		 JOIN posts p ON p.id = n.post_id
		 WHERE n.recipient_id = ?
		 ORDER BY n.id DESC LIMIT ? OFFSET ?`,
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

func (s *SQLStore) CountUnreadNotifications(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0`, recipientID).Scan(&count)
	return count, err
}

func (s *SQLStore) MarkNotificationRead(ctx context.Context, recipientID, id int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND recipient_id = ?`, id, recipientID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) MarkAllNotificationsRead(ctx context.Context, recipientID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE recipient_id = ? AND is_read = 0`, recipientID)
	return err
}
