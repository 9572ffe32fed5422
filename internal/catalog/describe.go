package catalog

import "github.com/matheus3301/eventd/internal/schema"

// Describe renders the catalog back into declaration form, sorted by
// kind. The daemon's catalog endpoint serves this, and marshalling it
// as YAML reproduces a loadable catalog file.
func (c *Catalog) Describe() []EventDef {
	variants := c.Variants()
	defs := make([]EventDef, 0, len(variants))
	for _, v := range variants {
		def := EventDef{Kind: v.Kind}
		if v.Payload != nil {
			def.Payload = &PayloadDef{Fields: fieldDefs(v.Payload.Fields())}
		}
		defs = append(defs, def)
	}
	return defs
}

func fieldDefs(fields []schema.Field) []FieldDef {
	defs := make([]FieldDef, 0, len(fields))
	for _, f := range fields {
		spec := specDef(f.Spec)
		defs = append(defs, FieldDef{
			Name:     f.Name,
			Type:     spec.Type,
			Optional: f.Optional,
			Fields:   spec.Fields,
			Elem:     spec.Elem,
		})
	}
	return defs
}

func specDef(s schema.Spec) SpecDef {
	def := SpecDef{Type: string(s.Kind)}
	if len(s.Fields) > 0 {
		def.Fields = fieldDefs(s.Fields)
	}
	if s.Elem != nil {
		elem := specDef(*s.Elem)
		def.Elem = &elem
	}
	return def
}
