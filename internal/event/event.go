package event

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the unit handed to delivery sinks: an accepted event
// stamped with identity and occurrence time. Payload is nil for kinds
// that carry no data.
type Envelope struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps a fresh envelope for kind with a generated ID and the
// current UTC time.
func New(kind string, payload any) Envelope {
	return Envelope{
		ID:         uuid.New().String(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Domain returns the leading dot-separated segment of an event kind
// (e.g. "user" for "user.signed_in"). Kinds without a dot are their
// own domain.
func Domain(kind string) string {
	for i, c := range kind {
		if c == '.' {
			return kind[:i]
		}
	}
	return kind
}
