package wire

import "fmt"

// Errors
var (
	ErrTruncatedVarint  = &FormatError{"truncated varint"}
	ErrVarintOverflow   = &FormatError{"varint exceeds 10 bytes"}
	ErrTruncatedPayload = &FormatError{"length-delimited payload exceeds remaining buffer"}
)

// FormatError represents malformed wire data: a truncated varint or payload,
// or a wire type that does not match the schema for a known field.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return "wire: " + e.Message
}

// Errorf builds a FormatError from a format string.
func Errorf(format string, args ...interface{}) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}
