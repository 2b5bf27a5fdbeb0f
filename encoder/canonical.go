package encoder

import (
	"bytes"

	gojson "github.com/goccy/go-json"
)

// canonicalText renders a raw JSON value as compact text with sorted object
// keys. Number literals are kept as written and HTML characters are not
// escaped. Strings keep their surrounding quotes.
func canonicalText(raw string) ([]byte, error) {
	dec := gojson.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := gojson.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// parseDiagnostic asks the decoder why body was rejected.
func parseDiagnostic(body []byte) error {
	var v any
	if err := gojson.Unmarshal(body, &v); err != nil {
		return err
	}
	return nil
}
