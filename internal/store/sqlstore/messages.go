package sqlstore

import (
	"context"
	"time"

	"socialhub/internal/models"
)

func (s *SQLStore) SaveDirectMessage(ctx context.Context, m *models.DirectMessage) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO direct_messages (sender_id, recipient_id, content, image_url, is_read, created_at)
		 VALUES (?, ?, ?, ?, 0, ?)`,
		m.SenderID, m.RecipientID, m.Content, m.ImageURL, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = int(id)
	m.CreatedAt = now
	return nil
}

// GetDirectHistory returns page N of the conversation between userID and
// peerID, newest page first but chronological within the page, plus the
// total message count.
func (s *SQLStore) GetDirectHistory(ctx context.Context, userID, peerID, page, limit int) ([]models.DirectMessage, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM direct_messages
		 WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)`,
		userID, peerID, peerID, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender_id, recipient_id, content, image_url, is_read, created_at
		 FROM direct_messages
		 WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		 ORDER BY id DESC LIMIT ? OFFSET ?`,
		userID, peerID, peerID, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []models.DirectMessage
	for rows.Next() {
		var m models.DirectMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.ImageURL, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// Reverse to oldest-first within the page.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

func (s *SQLStore) MarkDirectRead(ctx context.Context, userID, peerID int) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE direct_messages SET is_read = 1
		 WHERE recipient_id = ? AND sender_id = ? AND is_read = 0`,
		userID, peerID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLStore) GetConversations(ctx context.Context, userID int) ([]models.ConversationRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.peer_id, u.first_name, u.last_name, u.avatar, m.content, m.created_at, p.unread
		 FROM (
			SELECT CASE WHEN sender_id = ?1 THEN recipient_id ELSE sender_id END AS peer_id,
			       MAX(id) AS last_id,
			       SUM(CASE WHEN recipient_id = ?1 AND is_read = 0 THEN 1 ELSE 0 END) AS unread
			FROM direct_messages
			WHERE sender_id = ?1 OR recipient_id = ?1
			GROUP BY peer_id
		 ) p
		 JOIN direct_messages m ON m.id = p.last_id
		 JOIN users u ON u.id = p.peer_id
		 ORDER BY m.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []models.ConversationRow
	for rows.Next() {
		var c models.ConversationRow
		if err := rows.Scan(&c.PeerID, &c.PeerFirstName, &c.PeerLastName, &c.PeerAvatar,
			&c.LastMessage, &c.LastMessageTime, &c.UnreadCount); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

func (s *SQLStore) SaveRoomMessage(ctx context.Context, m *models.RoomMessage) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO room_messages (room, sender_id, content, created_at) VALUES (?, ?, ?, ?)`,
		m.Room, m.SenderID, m.Content, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = int(id)
	m.CreatedAt = now
	return nil
}

func (s *SQLStore) GetRecentRoomMessages(ctx context.Context, room string, limit int) ([]models.RoomMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, room, sender_id, content, created_at FROM room_messages
		 WHERE room = ? ORDER BY id DESC LIMIT ?`, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.RoomMessage
	for rows.Next() {
		var m models.RoomMessage
		if err := rows.Scan(&m.ID, &m.Room, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, rows.Err()
}
