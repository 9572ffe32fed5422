// Package dispatch sends typed events: every request is resolved
// against the catalog and checked against the kind's payload schema
// before an envelope reaches the delivery sink. Requests that fail
// validation are never forwarded.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheus3301/eventd/internal/catalog"
	"github.com/matheus3301/eventd/internal/event"
	"github.com/matheus3301/eventd/internal/schema"
)

// Sink receives envelopes that passed validation. Implementations
// decide what delivery means (logging, pub/sub fan-out, a network
// publish) and must be safe for concurrent use.
type Sink interface {
	Deliver(ctx context.Context, evt event.Envelope) error
}

// Func adapts a plain function to the Sink interface.
type Func func(ctx context.Context, evt event.Envelope) error

// Deliver calls f.
func (f Func) Deliver(ctx context.Context, evt event.Envelope) error {
	return f(ctx, evt)
}

// ErrTooManyPayloads reports a Send or Check call with more than one
// payload argument. A request carries at most one payload.
var ErrTooManyPayloads = errors.New("at most one payload argument allowed")

// Option adjusts dispatcher behavior.
type Option func(*Dispatcher)

// WithLenientFields makes payload checks tolerate fields the schema
// does not declare. The default rejects them.
func WithLenientFields() Option {
	return func(d *Dispatcher) {
		d.opts.AllowUnknownFields = true
	}
}

// Dispatcher validates and forwards events. It keeps no state between
// calls; the catalog is immutable, so a Dispatcher is safe for
// concurrent use.
type Dispatcher struct {
	catalog *catalog.Catalog
	sink    Sink
	opts    schema.Options
}

// New builds a dispatcher over a catalog and a delivery sink.
func New(c *catalog.Catalog, sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{catalog: c, sink: sink}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send validates a dispatch request and forwards it to the sink,
// returning the stamped envelope once the sink has accepted it. The
// payload argument is optional; kinds whose catalog entry declares no
// schema must be sent bare. Failures are *catalog.UnknownVariantError,
// *schema.ValidationError, schema.ErrUnexpectedPayload, or the sink's
// own error. A request that fails validation never reaches the sink.
func (d *Dispatcher) Send(ctx context.Context, kind string, payload ...any) (event.Envelope, error) {
	body, err := one(payload)
	if err != nil {
		return event.Envelope{}, fmt.Errorf("send %q: %w", kind, err)
	}
	s, err := d.catalog.SchemaFor(kind)
	if err != nil {
		return event.Envelope{}, err
	}
	if err := schema.Check(body, s, d.opts); err != nil {
		return event.Envelope{}, fmt.Errorf("send %q: %w", kind, err)
	}
	evt := event.New(kind, body)
	if err := d.sink.Deliver(ctx, evt); err != nil {
		return event.Envelope{}, fmt.Errorf("deliver %q: %w", kind, err)
	}
	return evt, nil
}

// Check runs the same validation as Send without forwarding anything.
func (d *Dispatcher) Check(kind string, payload ...any) error {
	body, err := one(payload)
	if err != nil {
		return fmt.Errorf("check %q: %w", kind, err)
	}
	s, err := d.catalog.SchemaFor(kind)
	if err != nil {
		return err
	}
	if err := schema.Check(body, s, d.opts); err != nil {
		return fmt.Errorf("check %q: %w", kind, err)
	}
	return nil
}

// Catalog returns the catalog this dispatcher resolves kinds against.
func (d *Dispatcher) Catalog() *catalog.Catalog {
	return d.catalog
}

func one(payload []any) (any, error) {
	switch len(payload) {
	case 0:
		return nil, nil
	case 1:
		return payload[0], nil
	default:
		return nil, ErrTooManyPayloads
	}
}
