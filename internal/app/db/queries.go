package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"phonebook/internal/pkg/randx"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the PostgreSQL Store.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const userColumns = `id, name, email, password_hash, avatar_key, avatar_url, created_at, last_login_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.AvatarKey,
		&u.AvatarURL,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	return u, notFound(err)
}

const createUser = `INSERT INTO users (id, name, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, randx.NewID(), arg.Name, arg.Email, arg.PasswordHash)
	return scanUser(row)
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, id))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const updateUserAvatar = `UPDATE users SET avatar_key = $2, avatar_url = $3
WHERE id = $1
RETURNING ` + userColumns

func (q *Queries) UpdateUserAvatar(ctx context.Context, arg UpdateUserAvatarParams) (User, error) {
	return scanUser(q.db.QueryRow(ctx, updateUserAvatar, arg.ID, arg.AvatarKey, arg.AvatarURL))
}

const updateLastLogin = `UPDATE users SET last_login_at = $2 WHERE id = $1`

func (q *Queries) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := q.db.Exec(ctx, updateLastLogin, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const contactColumns = `id, owner_id, name, number, created_at, updated_at`

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Number, &c.CreatedAt, &c.UpdatedAt)
	return c, notFound(err)
}

const createContact = `INSERT INTO contacts (id, owner_id, name, number)
VALUES ($1, $2, $3, $4)
RETURNING ` + contactColumns

func (q *Queries) CreateContact(ctx context.Context, arg CreateContactParams) (Contact, error) {
	row := q.db.QueryRow(ctx, createContact, randx.NewID(), arg.OwnerID, arg.Name, arg.Number)
	return scanContact(row)
}

const listContacts = `SELECT ` + contactColumns + ` FROM contacts
WHERE owner_id = $1
ORDER BY created_at, id`

func (q *Queries) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]Contact, error) {
	rows, err := q.db.Query(ctx, listContacts, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}

	return items, rows.Err()
}

const updateContact = `UPDATE contacts SET name = $3, number = $4, updated_at = now()
WHERE id = $1 AND owner_id = $2
RETURNING ` + contactColumns

func (q *Queries) UpdateContact(ctx context.Context, arg UpdateContactParams) (Contact, error) {
	return scanContact(q.db.QueryRow(ctx, updateContact, arg.ID, arg.OwnerID, arg.Name, arg.Number))
}

const deleteContact = `DELETE FROM contacts WHERE id = $1 AND owner_id = $2`

func (q *Queries) DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, deleteContact, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
