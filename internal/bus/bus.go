package bus

import (
	"strings"
	"sync"

	"github.com/matheus3301/eventd/internal/event"
)

// Bus is an in-process publish/subscribe fan-out for accepted event
// envelopes, with namespace filtering.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	namespace string
	ch        chan event.Envelope
}

// New creates a new bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
	}
}

// Publish sends an envelope to all subscribers whose namespace is a
// prefix of the envelope's kind.
func (b *Bus) Publish(evt event.Envelope) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if strings.HasPrefix(evt.Kind, sub.namespace) {
			select {
			case sub.ch <- evt:
			default:
				// Drop envelope if subscriber is full (non-blocking).
			}
		}
	}
}

// Subscribe returns a channel that receives envelopes whose kind matches
// the given namespace prefix. bufSize controls the channel buffer.
// Returns the channel and an unsubscribe function.
func (b *Bus) Subscribe(namespace string, bufSize int) (<-chan event.Envelope, func()) {
	ch := make(chan event.Envelope, bufSize)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = &subscription{namespace: namespace, ch: ch}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}
