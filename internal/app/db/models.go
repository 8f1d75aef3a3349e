package db

import (
	"time"

	"github.com/google/uuid"
)

// User is a row of the users table.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string

	// AvatarKey is the object key of the uploaded profile photo, AvatarURL its public URL.
	// Both are empty when the user has no photo.
	AvatarKey string
	AvatarURL string

	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// Contact is a row of the contacts table.
type Contact struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Number    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

type UpdateUserAvatarParams struct {
	ID        uuid.UUID
	AvatarKey string
	AvatarURL string
}

type CreateContactParams struct {
	OwnerID uuid.UUID
	Name    string
	Number  string
}

type UpdateContactParams struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Number  string
}
