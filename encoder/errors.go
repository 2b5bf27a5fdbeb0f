package encoder

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("JSON parse error")

	// ErrShape is matched by every *ShapeError.
	ErrShape = errors.New("message body is not a JSON object")

	errInvalidUTF8 = errors.New("invalid UTF-8 in message body")
)

// MaxDepth is the deepest array and object nesting a body may use.
const MaxDepth = 128

// DepthError reports a body nested deeper than MaxDepth.
type DepthError struct {
	// Offset is the byte position of the bracket exceeding the limit.
	Offset int
	Limit  int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("nesting exceeds %d levels at offset %d", e.Limit, e.Offset)
}

// ParseError reports a body that is not syntactically valid JSON.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string {
	if e.cause == nil {
		return ErrParse.Error()
	}
	return fmt.Sprintf("%s: %v", ErrParse, e.cause)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Unwrap returns the decoder diagnostic.
func (e *ParseError) Unwrap() error { return e.cause }

// ShapeError reports valid JSON whose top-level value is not an object.
type ShapeError struct {
	// Kind is the JSON type found instead ("array", "string", ...).
	Kind string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s (got %s)", ErrShape, e.Kind)
}

// Is reports whether target is ErrShape.
func (e *ShapeError) Is(target error) bool { return target == ErrShape }
