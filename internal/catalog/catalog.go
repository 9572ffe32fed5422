// Package catalog holds the closed set of event kinds a dispatcher
// accepts, each optionally bound to a payload schema.
package catalog

import (
	"fmt"
	"sort"

	"github.com/matheus3301/eventd/internal/schema"
)

// UnknownVariantError reports an event kind outside the catalog.
type UnknownVariantError struct {
	Kind string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown event kind %q", e.Kind)
}

// Variant pairs an event kind with its payload schema. A nil Payload
// means the kind accepts no payload at all.
type Variant struct {
	Kind    string
	Payload *schema.Schema
}

// Catalog is an immutable set of event variants keyed by kind.
// Construct one with a Builder or Load; contents never change
// afterwards, so lookups are safe for concurrent use.
type Catalog struct {
	variants map[string]Variant
}

// SchemaFor returns the payload schema registered for kind. A nil
// schema with a nil error means the kind is known and accepts no
// payload. Unknown kinds return *UnknownVariantError.
func (c *Catalog) SchemaFor(kind string) (*schema.Schema, error) {
	v, ok := c.variants[kind]
	if !ok {
		return nil, &UnknownVariantError{Kind: kind}
	}
	return v.Payload, nil
}

// Has reports whether kind is registered.
func (c *Catalog) Has(kind string) bool {
	_, ok := c.variants[kind]
	return ok
}

// Kinds returns every registered kind in sorted order.
func (c *Catalog) Kinds() []string {
	kinds := make([]string, 0, len(c.variants))
	for k := range c.variants {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Variants returns every variant, sorted by kind.
func (c *Catalog) Variants() []Variant {
	out := make([]Variant, 0, len(c.variants))
	for _, k := range c.Kinds() {
		out = append(out, c.variants[k])
	}
	return out
}

// Len returns the number of registered kinds.
func (c *Catalog) Len() int {
	return len(c.variants)
}
