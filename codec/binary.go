package codec

import "encoding"

// Binary encodes values through their encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler implementations.
type Binary struct{}

// Marshal encodes v, which must implement encoding.BinaryMarshaler.
func (Binary) Marshal(v any) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, &ErrUnsupportedType{Codec: "binary", Value: v}
	}
	return m.MarshalBinary()
}

// Unmarshal decodes data into v, which must implement encoding.BinaryUnmarshaler.
func (Binary) Unmarshal(data []byte, v any) error {
	u, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return &ErrUnsupportedType{Codec: "binary", Value: v}
	}
	return u.UnmarshalBinary(data)
}

// Name returns the unique name of the codec ("binary").
func (Binary) Name() string { return "binary" }
