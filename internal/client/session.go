package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"phonebook/internal/app/user"

	"gopkg.in/yaml.v3"
)

// SessionFileEnv overrides the location of the session file.
const SessionFileEnv = "PHONEBOOK_SESSION_FILE"

// Session is what the CLI remembers between runs.
type Session struct {
	Server  string      `yaml:"server"`
	Token   string      `yaml:"token"`
	User    SessionUser `yaml:"user"`
	SavedAt time.Time   `yaml:"saved_at"`
}

type SessionUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// SignedIn reports whether the session holds a token.
func (s Session) SignedIn() bool {
	return s.Token != ""
}

// NewSession records a signed-in user on server.
func NewSession(server string, s user.Session) Session {
	return Session{
		Server: server,
		Token:  s.Token,
		User: SessionUser{
			ID:    s.User.ID,
			Name:  s.User.Name,
			Email: s.User.Email,
		},
		SavedAt: time.Now().UTC(),
	}
}

// DefaultSessionPath returns $PHONEBOOK_SESSION_FILE, or session.yaml in the user's
// config directory.
func DefaultSessionPath() (string, error) {
	if p := os.Getenv(SessionFileEnv); p != "" {
		return p, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(dir, "phonebook", "session.yaml"), nil
}

// LoadSession reads the session at path. A missing file is an empty session.
func LoadSession(path string) (Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("parse session %s: %w", path, err)
	}
	return s, nil
}

// SaveSession writes s to path, readable by the current user only.
func SaveSession(path string, s Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	raw, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// ClearSession removes the session file. A missing file is not an error.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
