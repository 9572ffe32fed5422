package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/matheus3301/eventd/internal/catalog"
	"github.com/matheus3301/eventd/internal/event"
	"github.com/matheus3301/eventd/internal/schema"
)

// mockSink records every envelope it is asked to deliver and returns a
// configurable error.
type mockSink struct {
	mu        sync.Mutex
	delivered []event.Envelope
	err       error
}

func (m *mockSink) Deliver(_ context.Context, evt event.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, evt)
	return m.err
}

func (m *mockSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.delivered)
}

func (m *mockSink) last() event.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delivered[len(m.delivered)-1]
}

// authCatalog has one kind with a payload schema and one without.
func authCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.NewBuilder().
		Event("user.signed_in", schema.New(schema.Required("user_id", schema.String()))).
		Event("user.signed_out", nil).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSendValidPayload(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	evt, err := d.Send(context.Background(), "user.signed_in", map[string]any{"user_id": "u-1"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d envelopes, want 1", sink.count())
	}
	got := sink.last()
	if got.ID != evt.ID {
		t.Errorf("delivered ID %q differs from returned ID %q", got.ID, evt.ID)
	}
	if got.Kind != "user.signed_in" {
		t.Errorf("Kind = %q, want user.signed_in", got.Kind)
	}
	payload, ok := got.Payload.(map[string]any)
	if !ok || payload["user_id"] != "u-1" {
		t.Errorf("Payload = %v, want map with user_id u-1", got.Payload)
	}
}

func TestSendMissingFieldNotForwarded(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	_, err := d.Send(context.Background(), "user.signed_in", map[string]any{})
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Send() error = %v, want *schema.ValidationError", err)
	}
	if len(ve.Errors) != 1 || ve.Errors[0].Field != "user_id" || ve.Errors[0].Reason != schema.ReasonMissingField {
		t.Errorf("Errors = %v, want missing_field on user_id", ve.Errors)
	}
	if sink.count() != 0 {
		t.Errorf("sink received %d envelopes, want 0 for a failed request", sink.count())
	}
}

func TestSendWithoutRequiredPayload(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	_, err := d.Send(context.Background(), "user.signed_in")
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Send() error = %v, want *schema.ValidationError", err)
	}
	if len(ve.Errors) != 1 || ve.Errors[0].Reason != schema.ReasonMissingPayload {
		t.Errorf("Errors = %v, want one missing_payload entry", ve.Errors)
	}
	if sink.count() != 0 {
		t.Errorf("sink received %d envelopes, want 0", sink.count())
	}
}

func TestSendWrongTypeNotForwarded(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	_, err := d.Send(context.Background(), "user.signed_in", map[string]any{"user_id": 42})
	var ve *schema.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Send() error = %v, want *schema.ValidationError", err)
	}
	if ve.Errors[0].Reason != schema.ReasonWrongType {
		t.Errorf("Reason = %q, want wrong_type", ve.Errors[0].Reason)
	}
	if sink.count() != 0 {
		t.Errorf("sink received %d envelopes, want 0", sink.count())
	}
}

func TestSendUnknownKind(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	_, err := d.Send(context.Background(), "user.deleted")
	var uv *catalog.UnknownVariantError
	if !errors.As(err, &uv) {
		t.Fatalf("Send() error = %v, want *catalog.UnknownVariantError", err)
	}
	if uv.Kind != "user.deleted" {
		t.Errorf("Kind = %q, want user.deleted", uv.Kind)
	}

	// Kind resolution comes before payload checks: an unknown kind with
	// a payload still reports the unknown kind.
	_, err = d.Send(context.Background(), "user.deleted", map[string]any{"user_id": "u-1"})
	if !errors.As(err, &uv) {
		t.Errorf("Send() with payload error = %v, want *catalog.UnknownVariantError", err)
	}
	if sink.count() != 0 {
		t.Errorf("sink received %d envelopes, want 0", sink.count())
	}
}

func TestSendKindWithoutPayload(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	evt, err := d.Send(context.Background(), "user.signed_out")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if evt.Payload != nil {
		t.Errorf("Payload = %v, want nil", evt.Payload)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d envelopes, want 1", sink.count())
	}

	// Supplying any payload to a payload-less kind is rejected, even an
	// empty object.
	_, err = d.Send(context.Background(), "user.signed_out", map[string]any{})
	if !errors.Is(err, schema.ErrUnexpectedPayload) {
		t.Fatalf("Send() error = %v, want ErrUnexpectedPayload", err)
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d envelopes, want still 1", sink.count())
	}
}

func TestSendTooManyPayloads(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	_, err := d.Send(context.Background(), "user.signed_out", map[string]any{}, map[string]any{})
	if !errors.Is(err, ErrTooManyPayloads) {
		t.Fatalf("Send() error = %v, want ErrTooManyPayloads", err)
	}
	if sink.count() != 0 {
		t.Errorf("sink received %d envelopes, want 0", sink.count())
	}
}

// The returned envelope carries the validated payload, so callers can
// rely on required fields being present and well-typed.
func TestDeliveredPayloadReadable(t *testing.T) {
	c := catalog.NewBuilder().
		Event("ui.alert", nil).
		Event("ui.confirm", schema.New(schema.Required("message", schema.String()))).
		MustBuild()
	sink := &mockSink{}
	d := New(c, sink)

	evt, err := d.Send(context.Background(), "ui.confirm", map[string]any{"message": "delete 3 files?"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	msg := evt.Payload.(map[string]any)["message"]
	if msg != "delete 3 files?" {
		t.Errorf("message = %v, want %q", msg, "delete 3 files?")
	}

	if _, err := d.Send(context.Background(), "ui.alert"); err != nil {
		t.Errorf("Send(ui.alert) error = %v", err)
	}
}

func TestSendSinkFailure(t *testing.T) {
	errBroker := errors.New("broker down")
	sink := &mockSink{err: errBroker}
	d := New(authCatalog(t), sink)

	evt, err := d.Send(context.Background(), "user.signed_out")
	if !errors.Is(err, errBroker) {
		t.Fatalf("Send() error = %v, want wrapped broker error", err)
	}
	if evt.ID != "" {
		t.Errorf("Send() returned envelope %+v despite sink failure", evt)
	}
}

func TestWithLenientFields(t *testing.T) {
	c := catalog.NewBuilder().
		Event("ui.confirm", schema.New(schema.Required("message", schema.String()))).
		MustBuild()
	payload := map[string]any{"message": "hi", "trace_id": "t-1"}

	strict := New(c, &mockSink{})
	if _, err := strict.Send(context.Background(), "ui.confirm", payload); err == nil {
		t.Error("strict dispatcher accepted an undeclared field")
	}

	lenient := New(c, &mockSink{}, WithLenientFields())
	if _, err := lenient.Send(context.Background(), "ui.confirm", payload); err != nil {
		t.Errorf("lenient dispatcher error = %v, want nil", err)
	}
}

func TestCheckDoesNotDeliver(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	if err := d.Check("user.signed_in", map[string]any{"user_id": "u-1"}); err != nil {
		t.Errorf("Check() error = %v, want nil", err)
	}
	if err := d.Check("user.signed_in"); err == nil {
		t.Error("Check() without required payload returned nil error")
	}
	var uv *catalog.UnknownVariantError
	if err := d.Check("bogus.kind"); !errors.As(err, &uv) {
		t.Errorf("Check(bogus.kind) error = %v, want *catalog.UnknownVariantError", err)
	}
	if sink.count() != 0 {
		t.Errorf("Check() delivered %d envelopes, want 0", sink.count())
	}
}

// Sending the same request twice produces two deliveries with distinct
// envelope IDs: the dispatcher holds no memory of prior sends.
func TestSendStampsFreshEnvelopes(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	first, err := d.Send(context.Background(), "user.signed_out")
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Send(context.Background(), "user.signed_out")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == "" || second.ID == "" {
		t.Fatal("envelope ID left empty")
	}
	if first.ID == second.ID {
		t.Errorf("both sends used envelope ID %q", first.ID)
	}
	if sink.count() != 2 {
		t.Errorf("sink received %d envelopes, want 2", sink.count())
	}
}

func TestConcurrentSend(t *testing.T) {
	sink := &mockSink{}
	d := New(authCatalog(t), sink)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				if _, err := d.Send(context.Background(), "user.signed_in", map[string]any{"user_id": fmt.Sprintf("u-%d", i)}); err != nil {
					t.Errorf("Send() error = %v", err)
				}
				return
			}
			if _, err := d.Send(context.Background(), "user.signed_in", map[string]any{"user_id": i}); err == nil {
				t.Error("Send() accepted a wrong-typed payload")
			}
		}(i)
	}
	wg.Wait()

	if sink.count() != n/2 {
		t.Errorf("sink received %d envelopes, want %d", sink.count(), n/2)
	}
}
