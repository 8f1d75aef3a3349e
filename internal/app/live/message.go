package live

import (
	"slices"
	"time"

	"phonebook/internal/app/form"
)

// MessageType identifies a websocket message.
type MessageType string

// Client to server.
const (
	TypeChange MessageType = "CHANGE"
	TypeBlur   MessageType = "BLUR"
	TypeSubmit MessageType = "SUBMIT"
)

// Server to client.
const (
	TypeState      MessageType = "STATE"
	TypeNotify     MessageType = "NOTIFY"
	TypeCloseModal MessageType = "CLOSE_MODAL"
	TypeResult     MessageType = "RESULT"
	TypeError      MessageType = "ERROR"
)

// Message is the envelope of every frame sent to the client.
type Message struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"sessionId"`
	Payload   any         `json:"payload,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func NewMessage(msgType MessageType, sessionID string, payload any) Message {
	return Message{
		Type:      msgType,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

type ChangePayload struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type BlurPayload struct {
	Field string `json:"field"`
}

// StatePayload is the client view of a form.State. Values of secret fields are
// never sent back, and Errors only lists touched fields.
type StatePayload struct {
	Kind     form.Kind         `json:"kind"`
	Phase    string            `json:"phase"`
	Busy     bool              `json:"busy"`
	Values   map[string]string `json:"values"`
	Errors   map[string]string `json:"errors"`
	Touched  []string          `json:"touched"`
	Attempts int               `json:"attempts"`
}

type NotifyPayload struct {
	Severity form.Severity `json:"severity"`
	Message  string        `json:"message"`
}

type CloseModalPayload struct {
	ModalID string `json:"modalId"`
}

type ResultPayload struct {
	Fields map[string]string `json:"fields"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewStatePayload converts st for the client using schema to find secret fields.
func NewStatePayload(schema *form.Schema, st form.State) StatePayload {
	p := StatePayload{
		Kind:     st.Kind,
		Phase:    st.Phase.String(),
		Busy:     st.Busy(),
		Values:   make(map[string]string, len(st.Values)),
		Errors:   make(map[string]string, len(st.Errors)),
		Touched:  make([]string, 0, len(st.Touched)),
		Attempts: st.Attempts,
	}

	for name, value := range st.Values {
		if f, ok := schema.Field(name); ok && f.Secret {
			continue
		}
		p.Values[name] = value
	}

	for name, touched := range st.Touched {
		if !touched {
			continue
		}
		p.Touched = append(p.Touched, name)
		if msg := st.VisibleError(name); msg != "" {
			p.Errors[name] = msg
		}
	}
	slices.Sort(p.Touched)

	return p
}
