package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract of the account and contact services.
// Lookups of missing rows return ErrNotFound; contact operations are scoped to
// OwnerID and treat another owner's contact as missing.
type Store interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUserAvatar(ctx context.Context, arg UpdateUserAvatarParams) (User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateContact(ctx context.Context, arg CreateContactParams) (Contact, error)
	ListContacts(ctx context.Context, ownerID uuid.UUID) ([]Contact, error)
	UpdateContact(ctx context.Context, arg UpdateContactParams) (Contact, error)
	DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error
}

var (
	_ Store = (*Queries)(nil)
	_ Store = (*MemoryStore)(nil)
)
