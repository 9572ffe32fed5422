package event

import (
	"fmt"
	"regexp"
)

var kindRegexp = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)

const maxKindLength = 128

// ValidateKind checks that kind conforms to event kind naming rules:
// lowercase dot-separated segments, as in "user.signed_in".
func ValidateKind(kind string) error {
	if len(kind) > maxKindLength {
		return fmt.Errorf("invalid event kind %q: longer than %d bytes", kind, maxKindLength)
	}
	if !kindRegexp.MatchString(kind) {
		return fmt.Errorf("invalid event kind %q: must match ^[a-z0-9_]+(\\.[a-z0-9_]+)*$", kind)
	}
	return nil
}
