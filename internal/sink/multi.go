package sink

import (
	"context"

	"github.com/matheus3301/eventd/internal/dispatch"
	"github.com/matheus3301/eventd/internal/event"
)

// Multi forwards each envelope to several sinks in order, stopping at
// the first failure.
type Multi struct {
	sinks []dispatch.Sink
}

// NewMulti chains sinks into one.
func NewMulti(sinks ...dispatch.Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Deliver hands the envelope to every sink in order. The first error
// aborts the chain and is returned as the delivery result.
func (m *Multi) Deliver(ctx context.Context, evt event.Envelope) error {
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}
