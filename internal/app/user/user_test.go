package user

import (
	"encoding/json"
	"testing"
	"time"

	"phonebook/internal/app/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecord(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	u := FromRecord(db.User{ID: id, Name: "Jane Doe", Email: "jane@example.com", PasswordHash: "secret", CreatedAt: created})

	assert.Equal(t, id.String(), u.ID)
	assert.Equal(t, "JD", u.Avatar.Initials)
	assert.Equal(t, "#485fa7", u.Avatar.BackgroundColor)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUser_JSONOmitsSecrets(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(FromRecord(db.User{ID: uuid.New(), Name: "Jane Doe", Email: "jane@example.com", PasswordHash: "secret"}))
	require.NoError(t, err)

	assert.NotContains(t, string(body), "secret")
	assert.NotContains(t, string(body), "avatarUrl")
	assert.Contains(t, string(body), `"initials":"JD"`)
}
