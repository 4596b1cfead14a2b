package models

import "time"

// Friendship tracks the edge between two users. Status is one of the
// wire.Friendship* values; pending edges point requester -> addressee.
type Friendship struct {
	ID          int       `json:"id"`
	RequesterID int       `json:"requester_id"`
	AddresseeID int       `json:"addressee_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Other returns the user on the far side of the edge from userID.
func (f *Friendship) Other(userID int) int {
	if f.RequesterID == userID {
		return f.AddresseeID
	}
	return f.RequesterID
}

// PendingRequest is a pending friendship joined with the requester's profile.
type PendingRequest struct {
	FriendshipID int
	Requester    User
	CreatedAt    time.Time
}

// FriendRow is an accepted friendship joined with the friend's profile.
type FriendRow struct {
	FriendshipID int
	Friend       User
}
