package encoder

import (
	"slices"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/patternmon/retrieval"
	"github.com/hupe1980/patternmon/vsa"
)

// EncodedFields holds the encoding of one message body. Field ids are only
// meaningful within this value.
type EncodedFields struct {
	// Vectors maps field id to its semantic vector.
	Vectors map[int]*vsa.SparseVec
	// Names maps field id to the field name.
	Names map[int]string
	// Index holds every semantic vector under its field id and is finalized.
	Index *retrieval.TernaryInvertedIndex
}

// Len returns the number of encoded fields.
func (e *EncodedFields) Len() int { return len(e.Vectors) }

// IDs returns the field ids in ascending order.
func (e *EncodedFields) IDs() []int {
	ids := make([]int, 0, len(e.Vectors))
	for id := range e.Vectors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// EncodeFields encodes every top-level entry of the JSON object in body.
//
// Duplicate keys resolve to the last occurrence. Field ids follow the
// ascending byte order of the keys. An empty object yields an empty result,
// not an error.
func EncodeFields(body []byte, cfg vsa.Config) (*EncodedFields, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !utf8.Valid(body) {
		return nil, &ParseError{cause: errInvalidUTF8}
	}
	if err := checkDepth(body); err != nil {
		return nil, &ParseError{cause: err}
	}
	if !gjson.ValidBytes(body) {
		return nil, &ParseError{cause: parseDiagnostic(body)}
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, &ShapeError{Kind: kindOf(root)}
	}

	raw := make(map[string]string)
	root.ForEach(func(key, value gjson.Result) bool {
		raw[key.String()] = value.Raw
		return true
	})

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := &EncodedFields{
		Vectors: make(map[int]*vsa.SparseVec, len(keys)),
		Names:   make(map[int]string, len(keys)),
		Index:   retrieval.NewTernaryInvertedIndex(cfg.Dimension),
	}
	for id, key := range keys {
		bound, err := encodeField(key, raw[key], cfg)
		if err != nil {
			return nil, err
		}
		if err := out.Index.Add(uint32(id), bound); err != nil {
			return nil, err
		}
		out.Vectors[id] = bound
		out.Names[id] = key
	}
	out.Index.Finalize()
	return out, nil
}

func encodeField(key, rawValue string, cfg vsa.Config) (*vsa.SparseVec, error) {
	text, err := canonicalText(rawValue)
	if err != nil {
		return nil, &ParseError{cause: err}
	}
	k, err := vsa.EncodeData([]byte(key), cfg, 0)
	if err != nil {
		return nil, err
	}
	v, err := vsa.EncodeData(text, cfg, 0)
	if err != nil {
		return nil, err
	}
	return vsa.Bind(k, v)
}

func kindOf(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Null:
		return "null"
	default:
		if r.IsArray() {
			return "array"
		}
		return "unknown"
	}
}

// checkDepth rejects bodies nesting arrays and objects deeper than
// MaxDepth. The validator recurses per level, so this runs first.
func checkDepth(body []byte) error {
	depth := 0
	inString, escaped := false, false
	for i, c := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
			if depth > MaxDepth {
				return &DepthError{Offset: i, Limit: MaxDepth}
			}
		case ']', '}':
			depth--
		}
	}
	return nil
}
