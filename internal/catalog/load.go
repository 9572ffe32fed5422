package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matheus3301/eventd/internal/schema"
)

// File represents a top-level catalog document.
type File struct {
	// Events lists the event kinds the dispatcher accepts.
	Events []EventDef `yaml:"events" json:"events"`
}

// EventDef declares a single event kind.
type EventDef struct {
	// Kind is the event kind name (e.g. "user.signed_in").
	Kind string `yaml:"kind" json:"kind"`

	// Payload describes the payload schema. Omit it entirely for kinds
	// that accept no payload.
	Payload *PayloadDef `yaml:"payload,omitempty" json:"payload,omitempty"`
}

// PayloadDef describes the payload accepted by an event kind.
type PayloadDef struct {
	// Fields lists the payload's top-level fields. Undeclared fields
	// are rejected unless the dispatcher runs in lenient mode.
	Fields []FieldDef `yaml:"fields" json:"fields"`
}

// FieldDef describes one named payload field.
type FieldDef struct {
	// Name is the payload key.
	Name string `yaml:"name" json:"name"`

	// Type is one of: string, int, float, bool, object, array, any.
	Type string `yaml:"type" json:"type"`

	// Optional marks the field as allowed to be absent. Present values
	// must still match Type.
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty"`

	// Fields lists object members. Only valid when Type is object.
	Fields []FieldDef `yaml:"fields,omitempty" json:"fields,omitempty"`

	// Elem describes array elements. Only valid when Type is array;
	// omitted, the array accepts elements of any kind.
	Elem *SpecDef `yaml:"elem,omitempty" json:"elem,omitempty"`
}

// SpecDef describes an unnamed value shape, used for array elements.
type SpecDef struct {
	Type   string     `yaml:"type" json:"type"`
	Fields []FieldDef `yaml:"fields,omitempty" json:"fields,omitempty"`
	Elem   *SpecDef   `yaml:"elem,omitempty" json:"elem,omitempty"`
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses catalog content from bytes. The path argument is used
// only for error messages.
func Parse(data []byte, path string) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(f.Events) == 0 {
		return nil, fmt.Errorf("%s: no events defined", path)
	}

	b := NewBuilder()
	for i, def := range f.Events {
		if def.Kind == "" {
			return nil, fmt.Errorf("%s: events[%d]: kind is required", path, i)
		}
		var s *schema.Schema
		if def.Payload != nil {
			fields, err := buildFields(def.Payload.Fields, fmt.Sprintf("%s: events[%d] (%s)", path, i, def.Kind))
			if err != nil {
				return nil, err
			}
			s = schema.New(fields...)
		}
		b.Event(def.Kind, s)
	}

	c, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func buildFields(defs []FieldDef, errPrefix string) ([]schema.Field, error) {
	seen := make(map[string]bool, len(defs))
	fields := make([]schema.Field, 0, len(defs))
	for i, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("%s: fields[%d]: name is required", errPrefix, i)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("%s: fields[%d]: duplicate field %q", errPrefix, i, def.Name)
		}
		seen[def.Name] = true

		spec, err := buildSpec(
			SpecDef{Type: def.Type, Fields: def.Fields, Elem: def.Elem},
			fmt.Sprintf("%s: fields[%d] (%s)", errPrefix, i, def.Name),
		)
		if err != nil {
			return nil, err
		}
		if def.Optional {
			fields = append(fields, schema.Optional(def.Name, spec))
		} else {
			fields = append(fields, schema.Required(def.Name, spec))
		}
	}
	return fields, nil
}

func buildSpec(def SpecDef, errPrefix string) (schema.Spec, error) {
	switch def.Type {
	case "object":
		if def.Elem != nil {
			return schema.Spec{}, fmt.Errorf("%s: elem is only valid with type array", errPrefix)
		}
		fields, err := buildFields(def.Fields, errPrefix)
		if err != nil {
			return schema.Spec{}, err
		}
		return schema.Object(fields...), nil
	case "array":
		if len(def.Fields) > 0 {
			return schema.Spec{}, fmt.Errorf("%s: fields is only valid with type object", errPrefix)
		}
		if def.Elem == nil {
			return schema.Spec{Kind: schema.KindArray}, nil
		}
		elem, err := buildSpec(*def.Elem, errPrefix+": elem")
		if err != nil {
			return schema.Spec{}, err
		}
		return schema.Array(elem), nil
	case "string", "int", "float", "bool", "any":
		if len(def.Fields) > 0 {
			return schema.Spec{}, fmt.Errorf("%s: fields is only valid with type object", errPrefix)
		}
		if def.Elem != nil {
			return schema.Spec{}, fmt.Errorf("%s: elem is only valid with type array", errPrefix)
		}
		return schema.Spec{Kind: schema.Kind(def.Type)}, nil
	case "":
		return schema.Spec{}, fmt.Errorf("%s: type is required", errPrefix)
	default:
		return schema.Spec{}, fmt.Errorf("%s: unknown type %q", errPrefix, def.Type)
	}
}
