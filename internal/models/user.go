package models

import (
	"time"

	"socialhub/wire"
)

type User struct {
	ID           int       `json:"id"`
	FirstName    string    `json:"first_Name"`
	LastName     string    `json:"last_Name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Summary converts a stored user into the wire shape.
func (u *User) Summary() wire.UserSummary {
	return wire.UserSummary{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
	}
}
