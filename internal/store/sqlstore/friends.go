package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/store"
)

func (s *SQLStore) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (requester_id, addressee_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.RequesterID, f.AddresseeID, f.Status, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = int(id)
	f.CreatedAt = now
	f.UpdatedAt = now
	return nil
}

func scanFriendship(row interface{ Scan(...interface{}) error }) (*models.Friendship, error) {
	var f models.Friendship
	err := row.Scan(&f.ID, &f.RequesterID, &f.AddresseeID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const friendshipColumns = `id, requester_id, addressee_id, status, created_at, updated_at`

func (s *SQLStore) GetFriendship(ctx context.Context, id int) (*models.Friendship, error) {
	return scanFriendship(s.db.QueryRowContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships WHERE id = ?`, id))
}

func (s *SQLStore) GetFriendshipBetween(ctx context.Context, userA, userB int) (*models.Friendship, error) {
	return scanFriendship(s.db.QueryRowContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE (requester_id = ?1 AND addressee_id = ?2) OR (requester_id = ?2 AND addressee_id = ?1)`,
		userA, userB))
}

func (s *SQLStore) UpdateFriendshipStatus(ctx context.Context, id int, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE friendships SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) DeleteFriendship(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM friendships WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) GetPendingRequests(ctx context.Context, addresseeID int) ([]models.PendingRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, f.created_at, u.id, u.first_name, u.last_name, u.email, u.avatar
		 FROM friendships f JOIN users u ON u.id = f.requester_id
		 WHERE f.addressee_id = ? AND f.status = 'pending'
		 ORDER BY f.created_at DESC`,
		addresseeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []models.PendingRequest
	for rows.Next() {
		var p models.PendingRequest
		if err := rows.Scan(&p.FriendshipID, &p.CreatedAt,
			&p.Requester.ID, &p.Requester.FirstName, &p.Requester.LastName,
			&p.Requester.Email, &p.Requester.Avatar); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (s *SQLStore) GetFriends(ctx context.Context, userID, page, limit int, search string) ([]models.FriendRow, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pattern := "%" + search + "%"

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		 FROM friendships f JOIN users u ON u.id = CASE WHEN f.requester_id = ?1 THEN f.addressee_id ELSE f.requester_id END
		 WHERE (f.requester_id = ?1 OR f.addressee_id = ?1) AND f.status = 'accepted'
		   AND (u.first_name LIKE ?2 OR u.last_name LIKE ?2)`,
		userID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT f.id, u.id, u.first_name, u.last_name, u.email, u.avatar
		 FROM friendships f JOIN users u ON u.id = CASE WHEN f.requester_id = ?1 THEN f.addressee_id ELSE f.requester_id END
		 WHERE (f.requester_id = ?1 OR f.addressee_id = ?1) AND f.status = 'accepted'
		   AND (u.first_name LIKE ?2 OR u.last_name LIKE ?2)
		 ORDER BY u.first_name, u.last_name
		 LIMIT ?3 OFFSET ?4`,
		userID, pattern, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var friends []models.FriendRow
	for rows.Next() {
		var r models.FriendRow
		if err := rows.Scan(&r.FriendshipID, &r.Friend.ID, &r.Friend.FirstName,
			&r.Friend.LastName, &r.Friend.Email, &r.Friend.Avatar); err != nil {
			return nil, 0, err
		}
		friends = append(friends, r)
	}
	return friends, total, rows.Err()
}

func (s *SQLStore) GetSuggestedUsers(ctx context.Context, userID, limit int) ([]models.User, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id != ?1 AND id NOT IN (
			SELECT CASE WHEN requester_id = ?1 THEN addressee_id ELSE requester_id END
			FROM friendships WHERE requester_id = ?1 OR addressee_id = ?1
		 )
		 ORDER BY created_at DESC LIMIT ?2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Avatar, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
