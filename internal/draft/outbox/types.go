package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one row of the transactional outbox: a domain event persisted in
// the same transaction as the state change that produced it, relayed to the
// message bus by the Worker.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// NewEvent marshals payload and wraps it as an outbox Event.
func NewEvent(sessionID uuid.UUID, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:        uuid.New(),
		SessionID: sessionID,
		EventType: eventType,
		Payload:   data,
	}, nil
}
