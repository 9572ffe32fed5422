package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Options adjusts how strictly Check applies a schema.
type Options struct {
	// AllowUnknownFields accepts payload fields the schema does not
	// declare instead of rejecting them.
	AllowUnknownFields bool
}

// Check validates payload against s. A nil s means the event kind
// declares no payload: nil payload passes, anything else (even an
// empty object) fails with ErrUnexpectedPayload. A non-nil s requires
// an object payload matching every declared field.
//
// Check never mutates payload and depends only on its arguments, so a
// repeated call returns the same result.
func Check(payload any, s *Schema, opts Options) error {
	if s == nil {
		if payload == nil {
			return nil
		}
		return ErrUnexpectedPayload
	}
	if payload == nil {
		return &ValidationError{Errors: []FieldError{{Reason: ReasonMissingPayload}}}
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return &ValidationError{Errors: []FieldError{{Reason: ReasonNotObject, Got: describe(payload)}}}
	}
	var errs []FieldError
	checkObject(&errs, "", obj, s.fields, opts)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func checkObject(errs *[]FieldError, path string, obj map[string]any, fields []Field, opts Options) {
	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f.Name] = true
		fieldPath := joinPath(path, f.Name)
		v, ok := obj[f.Name]
		if !ok {
			if !f.Optional {
				*errs = append(*errs, FieldError{Field: fieldPath, Reason: ReasonMissingField, Want: f.Spec.Kind})
			}
			continue
		}
		checkValue(errs, fieldPath, v, f.Spec, opts)
	}
	if opts.AllowUnknownFields {
		return
	}
	var extra []string
	for name := range obj {
		if !declared[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		*errs = append(*errs, FieldError{Field: joinPath(path, name), Reason: ReasonUnexpectedField, Got: describe(obj[name])})
	}
}

func checkValue(errs *[]FieldError, path string, v any, spec Spec, opts Options) {
	switch spec.Kind {
	case KindAny:
	case KindString:
		if _, ok := v.(string); !ok {
			*errs = append(*errs, FieldError{Field: path, Reason: ReasonWrongType, Want: KindString, Got: describe(v)})
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			*errs = append(*errs, FieldError{Field: path, Reason: ReasonWrongType, Want: KindBool, Got: describe(v)})
		}
	case KindInt:
		if !isInt(v) {
			*errs = append(*errs, FieldError{Field: path, Reason: ReasonWrongType, Want: KindInt, Got: describe(v)})
		}
	case KindFloat:
		if !isNumber(v) {
			*errs = append(*errs, FieldError{Field: path, Reason: ReasonWrongType, Want: KindFloat, Got: describe(v)})
		}
	case KindObject:
		obj, ok := v.(map[string]any)
		if !ok {
			*errs = append(*errs, FieldError{Field: path, Reason: ReasonWrongType, Want: KindObject, Got: describe(v)})
			return
		}
		checkObject(errs, path, obj, spec.Fields, opts)
	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			*errs = append(*errs, FieldError{Field: path, Reason: ReasonWrongType, Want: KindArray, Got: describe(v)})
			return
		}
		if spec.Elem == nil {
			return
		}
		for i, el := range arr {
			checkValue(errs, fmt.Sprintf("%s[%d]", path, i), el, *spec.Elem, opts)
		}
	default:
		*errs = append(*errs, FieldError{Field: path, Reason: ReasonWrongType, Want: spec.Kind, Got: describe(v)})
	}
}

// isInt accepts Go integer kinds plus JSON numbers (float64 or
// json.Number) that carry integral values.
func isInt(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return float64(n) == math.Trunc(float64(n))
	case float64:
		return n == math.Trunc(n)
	case json.Number:
		_, err := n.Int64()
		return err == nil
	default:
		return false
	}
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	default:
		return false
	}
}

// describe names the kind of a payload value for error messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		if isInt(v) {
			return "int"
		}
		if isNumber(v) {
			return "float"
		}
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
