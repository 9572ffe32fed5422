package catalog

import (
	"fmt"

	"github.com/matheus3301/eventd/internal/event"
	"github.com/matheus3301/eventd/internal/schema"
)

// Builder accumulates event variants and produces an immutable
// Catalog. Builders are not safe for concurrent use.
type Builder struct {
	variants map[string]Variant
	err      error
}

// NewBuilder returns an empty catalog builder.
func NewBuilder() *Builder {
	return &Builder{variants: make(map[string]Variant)}
}

// Event registers kind with a payload schema. Pass a nil schema for
// kinds that accept no payload. Registration errors (malformed or
// duplicate kind) are carried until Build reports them.
func (b *Builder) Event(kind string, s *schema.Schema) *Builder {
	if b.err != nil {
		return b
	}
	if err := event.ValidateKind(kind); err != nil {
		b.err = err
		return b
	}
	if _, dup := b.variants[kind]; dup {
		b.err = fmt.Errorf("duplicate event kind %q", kind)
		return b
	}
	b.variants[kind] = Variant{Kind: kind, Payload: s}
	return b
}

// Build returns the catalog, or the first registration error.
func (b *Builder) Build() (*Catalog, error) {
	if b.err != nil {
		return nil, b.err
	}
	variants := make(map[string]Variant, len(b.variants))
	for k, v := range b.variants {
		variants[k] = v
	}
	return &Catalog{variants: variants}, nil
}

// MustBuild is Build for catalogs fixed at compile time; it panics on
// registration errors.
func (b *Builder) MustBuild() *Catalog {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
