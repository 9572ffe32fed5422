// Package sink provides delivery sinks for the dispatcher: adapters
// that turn an accepted envelope into an effect (a log entry, an
// in-process fan-out, a Redis publish). Sinks do not retry and do not
// queue; a failed delivery is reported to the sender and nothing else.
package sink

import (
	"context"

	"github.com/matheus3301/eventd/internal/bus"
	"github.com/matheus3301/eventd/internal/event"
)

// Bus fans accepted envelopes out to in-process subscribers.
type Bus struct {
	bus *bus.Bus
}

// NewBus wraps an in-process bus as a delivery sink.
func NewBus(b *bus.Bus) *Bus {
	return &Bus{bus: b}
}

// Deliver publishes the envelope on the bus. Publication never fails;
// subscribers with full buffers miss the envelope.
func (s *Bus) Deliver(_ context.Context, evt event.Envelope) error {
	s.bus.Publish(evt)
	return nil
}
