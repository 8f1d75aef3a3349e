/*
Package user defines the account identity returned to clients after registration,
login and profile refresh.
*/
package user

import (
	"time"

	"phonebook/internal/app/avatar"
	"phonebook/internal/app/db"
)

// User is the public view of an account. Avatar is the derived placeholder shown
// while AvatarURL is empty.
type User struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	AvatarURL string      `json:"avatarUrl,omitempty"`
	Avatar    avatar.Spec `json:"avatar"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Session is a signed-in user together with the bearer token issued for them.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// FromRecord converts a stored row into its public view.
func FromRecord(u db.User) User {
	return User{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Avatar:    avatar.Derive(u.Name),
		CreatedAt: u.CreatedAt,
	}
}
