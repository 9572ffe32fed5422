// Package schema declares payload shapes for event kinds and checks
// candidate payloads against them. Payloads are structural documents
// (map[string]any, the shape encoding/json produces), so checks are
// plain type switches with no reflection.
package schema

// Kind enumerates the value kinds a field can require.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindObject Kind = "object"
	KindArray  Kind = "array"
	KindAny    Kind = "any"
)

// Spec describes the shape required of a single value.
type Spec struct {
	Kind Kind
	// Fields lists object members in declaration order. Only set for
	// KindObject.
	Fields []Field
	// Elem is the element spec for KindArray. A nil Elem accepts
	// elements of any kind.
	Elem *Spec
}

// Field is a named member of an object spec.
type Field struct {
	Name     string
	Optional bool
	Spec     Spec
}

// Schema is the payload contract of an event kind: a closed set of
// named top-level fields. The zero value is not usable; construct with
// New.
type Schema struct {
	fields []Field
}

// New builds a schema from top-level fields. The field list is copied,
// so later mutation of the arguments does not affect the schema.
func New(fields ...Field) *Schema {
	s := &Schema{fields: make([]Field, len(fields))}
	copy(s.fields, fields)
	return s
}

// Fields returns a copy of the schema's top-level fields in
// declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// String declares a string value.
func String() Spec { return Spec{Kind: KindString} }

// Int declares an integer value. JSON numbers with integral values
// qualify.
func Int() Spec { return Spec{Kind: KindInt} }

// Float declares a numeric value.
func Float() Spec { return Spec{Kind: KindFloat} }

// Bool declares a boolean value.
func Bool() Spec { return Spec{Kind: KindBool} }

// Any declares a value of any kind, including null.
func Any() Spec { return Spec{Kind: KindAny} }

// Object declares a nested object with its own closed field set.
func Object(fields ...Field) Spec { return Spec{Kind: KindObject, Fields: fields} }

// Array declares an array whose elements all match elem.
func Array(elem Spec) Spec { return Spec{Kind: KindArray, Elem: &elem} }

// Required declares a field that must be present.
func Required(name string, spec Spec) Field {
	return Field{Name: name, Spec: spec}
}

// Optional declares a field that may be absent. When present it must
// still match spec.
func Optional(name string, spec Spec) Field {
	return Field{Name: name, Optional: true, Spec: spec}
}
