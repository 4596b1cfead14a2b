package pgstore

import (
	"context"

	"socialhub/internal/models"
)

func (s *PGStore) SaveDirectMessage(ctx context.Context, m *models.DirectMessage) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO direct_messages (sender_id, recipient_id, content, image_url)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		m.SenderID, m.RecipientID, m.Content, m.ImageURL).Scan(&m.ID, &m.CreatedAt)
}

func (s *PGStore) GetDirectHistory(ctx context.Context, userID, peerID, page, limit int) ([]models.DirectMessage, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM direct_messages
		 WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)`,
		userID, peerID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, sender_id, recipient_id, content, image_url, is_read, created_at
		 FROM direct_messages
		 WHERE (sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1)
		 ORDER BY id DESC LIMIT $3 OFFSET $4`,
		userID, peerID, limit, (page-1)*limit)
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

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

func (s *PGStore) MarkDirectRead(ctx context.Context, userID, peerID int) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE direct_messages SET is_read = TRUE
		 WHERE recipient_id = $1 AND sender_id = $2 AND is_read = FALSE`,
		userID, peerID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PGStore) GetConversations(ctx context.Context, userID int) ([]models.ConversationRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.peer_id, u.first_name, u.last_name, u.avatar, m.content, m.created_at, p.unread
		 FROM (
			SELECT CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS peer_id,
			       MAX(id) AS last_id,
			       SUM(CASE WHEN recipient_id = $1 AND is_read = FALSE THEN 1 ELSE 0 END) AS unread
			FROM direct_messages
			WHERE sender_id = $1 OR recipient_id = $1
			GROUP BY 1
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

func (s *PGStore) SaveRoomMessage(ctx context.Context, m *models.RoomMessage) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO room_messages (room, sender_id, content)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		m.Room, m.SenderID, m.Content).Scan(&m.ID, &m.CreatedAt)
}

func (s *PGStore) GetRecentRoomMessages(ctx context.Context, room string, limit int) ([]models.RoomMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, room, sender_id, content, created_at FROM room_messages
		 WHERE room = $1 ORDER BY id DESC LIMIT $2`, room, limit)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
