package schema

import "fmt"

// Error represents a schema rejected at registration time: an unsupported or
// ambiguous declared field type, or a cyclic record-type graph. A type that
// builds cleanly never fails classification later, on the encode/decode path.
type Error struct {
	Type   string
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("schema: %s field %s: %s", e.Type, e.Field, e.Reason)
}
