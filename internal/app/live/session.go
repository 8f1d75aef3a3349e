package live

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"phonebook/internal/app/form"
	"phonebook/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Pings; must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maximum size in bytes of a client frame.
	maxMessageSize = 8192

	// outbound frames queued per session before new ones are dropped.
	sendBuffer = 64
)

// Session is one websocket connection driving one form instance.
type Session struct {
	// ID identifies the session in logs and in every outbound message.
	ID string

	// manager is notified when the session ends.
	manager *Manager

	// underlying WebSocket connection.
	conn *websocket.Conn

	// form state machine, unmounted when the connection goes away.
	controller *form.Controller

	schema *form.Schema

	// a buffered channel of encoded frames waiting for WritePump.
	send chan []byte

	// structured logger with session context.
	logger zerolog.Logger
}

func newSession(m *Manager, id string, conn *websocket.Conn, cfg form.Config) *Session {
	s := &Session{
		ID:      id,
		manager: m,
		conn:    conn,
		schema:  cfg.Schema,
		send:    make(chan []byte, sendBuffer),
		logger: m.logger.With().
			Str("session_id", id).
			Str("form_kind", string(cfg.Schema.Kind)).
			Logger(),
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = m.submitTimeout
	}
	cfg.OnUpdate = s.onUpdate

	s.controller = form.NewController(cfg,
		form.WithNotifier(s),
		form.WithModal(s),
		form.WithContext(m.baseCtx),
		form.WithLogger(s.logger),
	)

	return s
}

// Notify implements form.Notifier by forwarding the toast to the client.
func (s *Session) Notify(severity form.Severity, message string) {
	s.queue(NewMessage(TypeNotify, s.ID, NotifyPayload{Severity: severity, Message: message}))
}

// Close implements form.ModalCloser by asking the client to close the modal.
func (s *Session) Close(modalID string) {
	s.queue(NewMessage(TypeCloseModal, s.ID, CloseModalPayload{ModalID: modalID}))
}

func (s *Session) onUpdate(st form.State) {
	if st.Phase == form.PhaseSucceeded && st.Result != nil {
		s.queue(NewMessage(TypeResult, s.ID, ResultPayload{Fields: st.Result.Fields}))
	}
	s.queue(NewMessage(TypeState, s.ID, NewStatePayload(s.schema, st)))
}

// ReadPump reads client frames until the connection fails, then unmounts the form.
func (s *Session) ReadPump() {
	defer s.cleanupOnDisconnect()

	s.conn.SetReadLimit(maxMessageSize)

	if err := s.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if st, err := s.controller.Snapshot(); err == nil {
		s.queue(NewMessage(TypeState, s.ID, NewStatePayload(s.schema, st)))
	}

	for {
		_, messageBytes, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Info().Err(err).Msg("Error reading message (client close/going away)")
			}
			break
		}

		s.processInboundMessage(messageBytes)
	}
}

// cleanupOnDisconnect unmounts the form before the send queue is closed, so no
// late notification can be queued on a closed channel.
func (s *Session) cleanupOnDisconnect() {
	s.controller.Close()
	close(s.send)
	s.manager.unregister(s)

	s.logger.Info().Msg("Live session closed.")
}

func (s *Session) processInboundMessage(messageBytes []byte) {
	var inboundMsg struct {
		Type    MessageType     `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	if err := json.Unmarshal(messageBytes, &inboundMsg); err != nil {
		s.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		s.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	var err error
	switch inboundMsg.Type {
	case TypeChange:
		var p ChangePayload
		if err = json.Unmarshal(inboundMsg.Payload, &p); err == nil {
			_, err = s.controller.Change(p.Field, p.Value)
		}

	case TypeBlur:
		var p BlurPayload
		if err = json.Unmarshal(inboundMsg.Payload, &p); err == nil {
			_, err = s.controller.Blur(p.Field)
		}

	case TypeSubmit:
		_, err = s.controller.Submit()

	default:
		err = fmt.Errorf("unsupported message type %q", inboundMsg.Type)
	}

	if err != nil {
		s.logger.Warn().Err(err).Str("msg_type", string(inboundMsg.Type)).Msg("Rejected client message")
		s.SendError(errs.NewError(errs.ErrInvalidParams))
	}
}

// SendError queues an ERROR frame for err.
func (s *Session) SendError(err error) {
	customErr := errs.From(err)
	s.queue(NewMessage(TypeError, s.ID, ErrorPayload{Code: customErr.Code, Message: customErr.Message}))
}

// queue encodes msg and hands it to WritePump without blocking.
func (s *Session) queue(msg Message) {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error marshaling message for client")
		return
	}

	select {
	case s.send <- messageBytes:
	default:
		s.logger.Warn().Int("queue_len", len(s.send)).Str("msg_type", string(msg.Type)).Msg("Send queue full, dropping message")
	}
}

// WritePump writes queued frames and heartbeats until the send queue is closed.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		if err := s.conn.Close(); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			s.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-s.send:
			if !s.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !s.writePingMessage() {
				return
			}
		}
	}
}

func (s *Session) writeQueuedMessage(message []byte, ok bool) bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return false
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		s.logger.Warn().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (s *Session) writePingMessage() bool {
	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		s.logger.Warn().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
