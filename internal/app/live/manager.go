/*
Package live serves form sessions over websockets.

Each Session owns one websocket connection and one form.Controller. Client frames
(CHANGE, BLUR, SUBMIT) are fed to the controller; every state it produces, and every
notification or modal instruction it emits, is pushed back to the client. Closing the
connection unmounts the form.
*/
package live

import (
	"context"
	"fmt"
	"sync"
	"time"

	"phonebook/internal/app/form"
	"phonebook/internal/pkg/logx"
	"phonebook/internal/pkg/randx"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Manager tracks the open sessions of the server.
type Manager struct {
	// sessions stores every open session keyed by its ID.
	sessions map[string]*Session

	// mu protects sessions and closed.
	mu     sync.Mutex
	closed bool

	// wg counts running pumps so Shutdown can wait for them.
	wg sync.WaitGroup

	// baseCtx is the parent of every remote call made by a form.
	baseCtx context.Context

	// submitTimeout applies to forms whose Config has no Timeout.
	submitTimeout time.Duration

	// structured logger with Manager context.
	logger zerolog.Logger
}

// NewManager returns a Manager. Remote calls started by forms derive from ctx.
func NewManager(ctx context.Context, submitTimeout time.Duration) *Manager {
	return &Manager{
		sessions:      make(map[string]*Session),
		baseCtx:       ctx,
		submitTimeout: submitTimeout,
		logger:        logx.Component("live"),
	}
}

// Serve starts a session for conn running a form built from cfg, and returns it
// without waiting for the session to end.
func (m *Manager) Serve(conn *websocket.Conn, cfg form.Config) (*Session, error) {
	id, err := randx.SessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("live manager is shut down")
	}

	s := newSession(m, id, conn, cfg)
	m.sessions[id] = s
	m.wg.Add(2)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		s.WritePump()
	}()
	go func() {
		defer m.wg.Done()
		s.ReadPump()
	}()

	s.logger.Info().Int("open_sessions", m.Count()).Msg("Live session started.")
	return s, nil
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) unregister(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, s.ID)
}

// Shutdown closes every connection and waits until all sessions have ended.
// Serve fails afterwards.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down live sessions...")

	m.mu.Lock()
	m.closed = true
	for _, s := range m.sessions {
		_ = s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second),
		)
		_ = s.conn.Close()
	}
	m.mu.Unlock()

	m.wg.Wait()

	m.logger.Info().Msg("Live sessions shut down.")
}
