// Package codec turns persisted artifacts into bytes and back.
//
// The codec name is part of the storage contract: values written with one
// codec can only be read back with the same codec.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "binary", "":
		return Binary{}, true
	case "binary+lz4":
		return Compressed{Inner: Binary{}, Type: LZ4}, true
	case "binary+zstd":
		return Compressed{Inner: Binary{}, Type: ZSTD}, true
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Names lists the stable names accepted by ByName.
func Names() []string {
	return []string{"binary", "binary+lz4", "binary+zstd", "json", "go-json"}
}

// MustMarshal is a helper for tests and tooling.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used for persisted vectors.
var Default Codec = Binary{}
