package patternmon

import "strings"

// Key-space prefixes. The version segment changes whenever the encoding of
// persisted vectors changes.
const (
	PrefixSemantic = "semantic:v1"
	PrefixBundle   = "bundle:v1"
)

// SemanticKey returns the key of the semantic vector for a field name.
// The name is used verbatim.
func SemanticKey(field string) string { return PrefixSemantic + ":" + field }

// BundleKey returns the key of the bundle vector for a subject.
// The subject is used verbatim.
func BundleKey(subject string) string { return PrefixBundle + ":" + subject }

// KeyKind classifies a persisted key.
type KeyKind string

const (
	KindSemantic KeyKind = "semantic"
	KindBundle   KeyKind = "bundle"
)

// ParseKey splits a persisted key into its kind and the field name or
// subject. Names may themselves contain ':'; everything after the prefix is
// returned.
func ParseKey(key string) (KeyKind, string, bool) {
	if name, ok := strings.CutPrefix(key, PrefixSemantic+":"); ok {
		return KindSemantic, name, true
	}
	if name, ok := strings.CutPrefix(key, PrefixBundle+":"); ok {
		return KindBundle, name, true
	}
	return "", "", false
}
