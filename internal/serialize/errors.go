package serialize

import "fmt"

// ErrorCode categorizes save/load failures.
type ErrorCode string

const (
	// ErrCodeMalformedInput indicates the document is not valid JSON
	// or violates the wire-format shape.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// ErrCodeUnknownTypeKey indicates a node names a type key with no
	// registration.
	ErrCodeUnknownTypeKey ErrorCode = "UNKNOWN_TYPE_KEY"

	// ErrCodeMissingField indicates a node record lacks a required
	// attribute.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	// ErrCodeBadFieldValue indicates an attribute failed to parse
	// under its declared type, or an id is out of range.
	ErrCodeBadFieldValue ErrorCode = "BAD_FIELD_VALUE"

	// ErrCodeCycle indicates the node references form a true cycle.
	ErrCodeCycle ErrorCode = "CYCLIC_REFERENCE"

	// ErrCodeUnsupportedType indicates a reachable object has no
	// reflection metadata, so the graph cannot be saved.
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeReprDecode indicates a repr_b64 payload failed to
	// decode.
	ErrCodeReprDecode ErrorCode = "REPR_DECODE"
)

// Error is a save/load failure with an access hint: the node index
// and field name where the failure occurred, when known.
type Error struct {
	Code    ErrorCode
	Message string
	Node    int    // node index, -1 when not applicable
	Field   string // field or attr name, empty when not applicable
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Node >= 0 {
		msg += fmt.Sprintf(" (node %d", e.Node)
		if e.Field != "" {
			msg += fmt.Sprintf(", field %q", e.Field)
		}
		msg += ")"
	} else if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so callers can test
// failure categories with errors.Is against the sentinel values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrMalformedInput  = &Error{Code: ErrCodeMalformedInput, Node: -1}
	ErrUnknownTypeKey  = &Error{Code: ErrCodeUnknownTypeKey, Node: -1}
	ErrMissingField    = &Error{Code: ErrCodeMissingField, Node: -1}
	ErrBadFieldValue   = &Error{Code: ErrCodeBadFieldValue, Node: -1}
	ErrCycle           = &Error{Code: ErrCodeCycle, Node: -1}
	ErrUnsupportedType = &Error{Code: ErrCodeUnsupportedType, Node: -1}
	ErrReprDecode      = &Error{Code: ErrCodeReprDecode, Node: -1}
)

func errf(code ErrorCode, node int, field, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Node: node, Field: field}
}
