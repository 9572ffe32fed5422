package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheus3301/eventd/internal/schema"
)

const sampleCatalog = `events:
  - kind: user.signed_in
    payload:
      fields:
        - name: user_id
          type: string
        - name: attrs
          type: object
          optional: true
          fields:
            - name: plan
              type: string
        - name: tags
          type: array
          optional: true
          elem:
            type: string
  - kind: user.signed_out
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0600); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	s, err := c.SchemaFor("user.signed_in")
	if err != nil || s == nil {
		t.Fatalf("SchemaFor(user.signed_in) = %v, %v, want schema", s, err)
	}
	if err := schema.Check(map[string]any{"user_id": "u-1", "tags": []any{"a"}}, s, schema.Options{}); err != nil {
		t.Errorf("loaded schema rejected a valid payload: %v", err)
	}
	if err := schema.Check(map[string]any{"user_id": 1}, s, schema.Options{}); err == nil {
		t.Error("loaded schema accepted a wrong-typed payload")
	}

	s, err = c.SchemaFor("user.signed_out")
	if err != nil {
		t.Fatalf("SchemaFor(user.signed_out) error = %v", err)
	}
	if s != nil {
		t.Error("kind without a payload block got a schema")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() on a missing file returned nil error")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string // substring of the error message
	}{
		{"empty document", "events: []", "no events defined"},
		{"missing kind", "events:\n  - payload:\n      fields: []", "events[0]: kind is required"},
		{"missing field name", "events:\n  - kind: a.b\n    payload:\n      fields:\n        - type: string", "name is required"},
		{"missing type", "events:\n  - kind: a.b\n    payload:\n      fields:\n        - name: x", "type is required"},
		{"unknown type", "events:\n  - kind: a.b\n    payload:\n      fields:\n        - name: x\n          type: strin", `unknown type "strin"`},
		{"duplicate field", "events:\n  - kind: a.b\n    payload:\n      fields:\n        - name: x\n          type: string\n        - name: x\n          type: int", `duplicate field "x"`},
		{"duplicate kind", "events:\n  - kind: a.b\n  - kind: a.b", `duplicate event kind "a.b"`},
		{"elem on scalar", "events:\n  - kind: a.b\n    payload:\n      fields:\n        - name: x\n          type: string\n          elem:\n            type: int", "elem is only valid with type array"},
		{"fields on array", "events:\n  - kind: a.b\n    payload:\n      fields:\n        - name: x\n          type: array\n          fields:\n            - name: y\n              type: int", "fields is only valid with type object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "catalog.yaml")
			if err == nil {
				t.Fatal("Parse() error = nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestDescribeRoundTrip(t *testing.T) {
	c, err := Parse([]byte(sampleCatalog), "catalog.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	defs := c.Describe()
	if len(defs) != 2 {
		t.Fatalf("Describe() returned %d defs, want 2", len(defs))
	}
	if defs[0].Kind != "user.signed_in" || defs[1].Kind != "user.signed_out" {
		t.Fatalf("Describe() order = %q, %q", defs[0].Kind, defs[1].Kind)
	}
	if defs[1].Payload != nil {
		t.Error("payload-less kind described with a payload block")
	}

	fields := defs[0].Payload.Fields
	if len(fields) != 3 {
		t.Fatalf("described %d fields, want 3", len(fields))
	}
	if fields[0].Name != "user_id" || fields[0].Type != "string" || fields[0].Optional {
		t.Errorf("fields[0] = %+v, want required string user_id", fields[0])
	}
	if fields[1].Name != "attrs" || len(fields[1].Fields) != 1 {
		t.Errorf("fields[1] = %+v, want object with one member", fields[1])
	}
	if fields[2].Elem == nil || fields[2].Elem.Type != "string" {
		t.Errorf("fields[2].Elem = %+v, want string elem", fields[2].Elem)
	}
}
