package codec

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned when stored bytes cannot be decoded.
var ErrCorrupt = errors.New("codec: corrupt data")

// ErrUnsupportedType indicates a value the codec cannot handle.
type ErrUnsupportedType struct {
	Codec string
	Value any
}

func (e *ErrUnsupportedType) Error() string {
	return fmt.Sprintf("codec %s: unsupported type %T", e.Codec, e.Value)
}
