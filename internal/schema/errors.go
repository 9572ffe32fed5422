package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedPayload reports a payload supplied for an event kind
// that declares none.
var ErrUnexpectedPayload = errors.New("unexpected payload")

// Reason classifies a single field-level validation failure.
type Reason string

const (
	// ReasonMissingPayload: the kind requires a payload and none was given.
	ReasonMissingPayload Reason = "missing_payload"
	// ReasonNotObject: the payload (or a nested value) is not an object.
	ReasonNotObject Reason = "not_object"
	// ReasonMissingField: a required field is absent.
	ReasonMissingField Reason = "missing_field"
	// ReasonWrongType: a field is present with a value of the wrong kind.
	ReasonWrongType Reason = "wrong_type"
	// ReasonUnexpectedField: a field is present that the schema does not declare.
	ReasonUnexpectedField Reason = "unexpected_field"
)

// FieldError pinpoints one offending field. Field is a dotted path with
// array indices ("attrs.tags[2]"); it is empty when the payload as a
// whole is at fault.
type FieldError struct {
	Field  string `json:"field,omitempty"`
	Reason Reason `json:"reason"`
	Want   Kind   `json:"want,omitempty"`
	Got    string `json:"got,omitempty"`
}

func (e FieldError) String() string {
	switch e.Reason {
	case ReasonMissingPayload:
		return "payload required but absent"
	case ReasonNotObject:
		if e.Field == "" {
			return fmt.Sprintf("payload must be an object, got %s", e.Got)
		}
		return fmt.Sprintf("%s: must be an object, got %s", e.Field, e.Got)
	case ReasonMissingField:
		return fmt.Sprintf("%s: required field missing (want %s)", e.Field, e.Want)
	case ReasonWrongType:
		return fmt.Sprintf("%s: wrong type (want %s, got %s)", e.Field, e.Want, e.Got)
	case ReasonUnexpectedField:
		return fmt.Sprintf("%s: field not declared by schema", e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
}

// ValidationError reports every field that failed, in deterministic
// order: declared fields in schema order, then undeclared fields
// sorted by name.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid payload"
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.String()
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}
