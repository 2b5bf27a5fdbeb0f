// Package encoder turns a JSON object into per-field semantic hypervectors
// and folds them into a single bundle vector.
//
// Each top-level entry (key, value) becomes Bind(Encode(key), Encode(value)),
// where value is the canonical compact JSON text of the entry. Nested objects
// and arrays are encoded as text; they are not decomposed.
package encoder
