package domain

import "time"

// User is the domain model for registered accounts.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the token claim set for the user.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username}
}
