package db

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"phonebook/internal/pkg/randx"
)

// MemoryStore is a Store kept in process memory. It enforces the same unique email
// and owner scoping rules as the PostgreSQL schema.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	byEmail  map[string]uuid.UUID
	contacts map[uuid.UUID]Contact
	order    []uuid.UUID

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]User),
		byEmail:  make(map[string]uuid.UUID),
		contacts: make(map[uuid.UUID]Contact),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, arg CreateUserParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byEmail[arg.Email]; taken {
		return User{}, ErrDuplicate
	}

	u := User{
		ID:           randx.NewID(),
		Name:         arg.Name,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		CreatedAt:    m.now(),
	}
	m.users[u.ID] = u
	m.byEmail[u.Email] = u.ID

	return u, nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return m.users[id], nil
}

func (m *MemoryStore) UpdateUserAvatar(_ context.Context, arg UpdateUserAvatarParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[arg.ID]
	if !ok {
		return User{}, ErrNotFound
	}
	u.AvatarKey = arg.AvatarKey
	u.AvatarURL = arg.AvatarURL
	m.users[u.ID] = u

	return u, nil
}

func (m *MemoryStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	at = at.UTC()
	u.LastLoginAt = &at
	m.users[id] = u

	return nil
}

func (m *MemoryStore) CreateContact(_ context.Context, arg CreateContactParams) (Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[arg.OwnerID]; !ok {
		return Contact{}, ErrNotFound
	}

	now := m.now()
	c := Contact{
		ID:        randx.NewID(),
		OwnerID:   arg.OwnerID,
		Name:      arg.Name,
		Number:    arg.Number,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.contacts[c.ID] = c
	m.order = append(m.order, c.ID)

	return c, nil
}

func (m *MemoryStore) ListContacts(_ context.Context, ownerID uuid.UUID) ([]Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := []Contact{}
	for _, id := range m.order {
		if c := m.contacts[id]; c.OwnerID == ownerID {
			items = append(items, c)
		}
	}
	return items, nil
}

func (m *MemoryStore) UpdateContact(_ context.Context, arg UpdateContactParams) (Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contacts[arg.ID]
	if !ok || c.OwnerID != arg.OwnerID {
		return Contact{}, ErrNotFound
	}
	c.Name = arg.Name
	c.Number = arg.Number
	c.UpdatedAt = m.now()
	m.contacts[c.ID] = c

	return c, nil
}

func (m *MemoryStore) DeleteContact(_ context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(m.contacts, id)
	m.order = slices.DeleteFunc(m.order, func(other uuid.UUID) bool { return other == id })

	return nil
}
