package encoder

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/patternmon/vsa"
)

func encode(t *testing.T, body string) *EncodedFields {
	t.Helper()
	enc, err := EncodeFields([]byte(body), vsa.DefaultConfig())
	require.NoError(t, err)
	return enc
}

func TestEncodeFields_Object(t *testing.T) {
	enc := encode(t, `{"event":"quake","magnitude":"6.2"}`)

	assert.Equal(t, 2, enc.Len())
	assert.Equal(t, map[int]string{0: "event", 1: "magnitude"}, enc.Names)
	assert.Equal(t, []int{0, 1}, enc.IDs())
	assert.True(t, enc.Index.Finalized())
	assert.Equal(t, 2, enc.Index.Len())
}

func TestEncodeFields_IDsFollowSortedKeys(t *testing.T) {
	enc := encode(t, `{"zeta":1,"alpha":2,"mid":3}`)
	assert.Equal(t, map[int]string{0: "alpha", 1: "mid", 2: "zeta"}, enc.Names)
}

func TestEncodeFields_DuplicateKeysLastWins(t *testing.T) {
	dup := encode(t, `{"a":"first","b":1,"a":"second"}`)
	single := encode(t, `{"a":"second","b":1}`)

	require.Equal(t, 2, dup.Len())
	for id := range single.Vectors {
		assert.True(t, dup.Vectors[id].Equal(single.Vectors[id]), "field %d", id)
	}
}

func TestEncodeFields_SemanticVectorIsBoundPair(t *testing.T) {
	cfg := vsa.DefaultConfig()
	enc := encode(t, `{"sensor":"temperature"}`)

	k, err := vsa.EncodeData([]byte("sensor"), cfg, 0)
	require.NoError(t, err)
	v, err := vsa.EncodeData([]byte(`"temperature"`), cfg, 0)
	require.NoError(t, err)
	want, err := vsa.Bind(k, v)
	require.NoError(t, err)
	assert.True(t, enc.Vectors[0].Equal(want))

	// The value is recoverable from the semantic vector and the key.
	back, err := vsa.Unbind(enc.Vectors[0], k)
	require.NoError(t, err)
	assert.True(t, back.Equal(v))
}

func TestEncodeFields_CanonicalValueText(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"whitespace", `{"v":{"x":1,"y":[1,2]}}`, `{ "v" : { "x" : 1 , "y" : [ 1 , 2 ] } }`},
		{"nested key order", `{"v":{"x":1,"y":2}}`, `{"v":{"y":2,"x":1}}`},
		{"escaped html", `{"v":"<a&b>"}`, `{"v":"<a&b>"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := encode(t, tt.a)
			b := encode(t, tt.b)
			assert.True(t, a.Vectors[0].Equal(b.Vectors[0]))
		})
	}

	// Number literals are not normalized.
	one := encode(t, `{"v":1}`)
	onePointZero := encode(t, `{"v":1.0}`)
	assert.False(t, one.Vectors[0].Equal(onePointZero.Vectors[0]))

	// A string is distinct from the number it spells.
	str := encode(t, `{"v":"1"}`)
	assert.False(t, one.Vectors[0].Equal(str.Vectors[0]))
}

func TestCanonicalText(t *testing.T) {
	tests := map[string]string{
		`"quake"`:                       `"quake"`,
		`6.20`:                          `6.20`,
		`{ "b": 1, "a": [true, null] }`: `{"a":[true,null],"b":1}`,
		`"<tag>"`:                       `"<tag>"`,
	}
	for in, want := range tests {
		got, err := canonicalText(in)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), in)
	}
}

func TestEncodeFields_Idempotent(t *testing.T) {
	body := `{"key":"value","n":42,"nested":{"k":[1,2,3]}}`
	first := encode(t, body)
	second := encode(t, body)

	for _, id := range first.IDs() {
		a, err := first.Vectors[id].MarshalBinary()
		require.NoError(t, err)
		b, err := second.Vectors[id].MarshalBinary()
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestEncodeFields_Empty(t *testing.T) {
	enc := encode(t, `{}`)
	assert.Zero(t, enc.Len())
	assert.Empty(t, enc.Names)
	assert.True(t, enc.Index.Finalized())
}

func TestEncodeFields_ShapeErrors(t *testing.T) {
	tests := map[string]string{
		`[1,2,3]`:         "array",
		`"just a string"`: "string",
		`42`:              "number",
		`true`:            "boolean",
		`null`:            "null",
	}
	for body, kind := range tests {
		t.Run(kind, func(t *testing.T) {
			_, err := EncodeFields([]byte(body), vsa.DefaultConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrShape)
			assert.False(t, errors.Is(err, ErrParse))
			assert.Contains(t, err.Error(), "not a JSON object")

			var se *ShapeError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, kind, se.Kind)
		})
	}
}

func TestEncodeFields_ParseErrors(t *testing.T) {
	for _, body := range []string{`not json`, `{"a":`, ``, `{"a":1}}`, "{\"v\":\"\xff\"}", "{\"\xfe\":1}"} {
		t.Run(body, func(t *testing.T) {
			_, err := EncodeFields([]byte(body), vsa.DefaultConfig())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
			assert.False(t, errors.Is(err, ErrShape))
			assert.Contains(t, err.Error(), "JSON parse error")
		})
	}
}

func TestEncodeFields_InvalidUTF8DoesNotCollide(t *testing.T) {
	for _, body := range []string{"{\"v\":\"\xff\"}", "{\"v\":\"\xfe\"}"} {
		_, err := EncodeFields([]byte(body), vsa.DefaultConfig())
		assert.ErrorIs(t, err, ErrParse)
	}

	// Valid multi-byte text is accepted.
	got := encode(t, `{"city":"Zürich"}`)
	assert.Equal(t, 1, got.Len())
}

func TestEncodeFields_NestingLimit(t *testing.T) {
	nested := func(depth int) []byte {
		return []byte(`{"a":` + strings.Repeat("[", depth-1) + strings.Repeat("]", depth-1) + `}`)
	}

	got, err := EncodeFields(nested(MaxDepth), vsa.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	_, err = EncodeFields(nested(MaxDepth+1), vsa.DefaultConfig())
	require.ErrorIs(t, err, ErrParse)
	var de *DepthError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, MaxDepth, de.Limit)

	deep := []byte(strings.Repeat("[", 1_000_000) + strings.Repeat("]", 1_000_000))
	_, err = EncodeFields(deep, vsa.DefaultConfig())
	assert.ErrorIs(t, err, ErrParse)

	// Brackets inside strings do not count.
	quoted := `{"a":"` + strings.Repeat("[", MaxDepth*2) + `\"{"}`
	got, err = EncodeFields([]byte(quoted), vsa.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestEncodeFields_InvalidConfig(t *testing.T) {
	_, err := EncodeFields([]byte(`{"a":1}`), vsa.Config{Dimension: 2, NonZero: 4})
	var ice *vsa.ErrInvalidConfig
	assert.ErrorAs(t, err, &ice)
}

func TestBuildBundle(t *testing.T) {
	_, ok, err := BuildBundle(nil)
	require.NoError(t, err)
	assert.False(t, ok)

	single := encode(t, `{"only":"field"}`)
	b, ok, err := BuildBundle(single.Vectors)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, b.Equal(single.Vectors[0]))

	multi := encode(t, `{"a":"1","b":"2","c":"3"}`)
	first, ok, err := BuildBundle(multi.Vectors)
	require.NoError(t, err)
	require.True(t, ok)
	for range 5 {
		again, _, err := BuildBundle(multi.Vectors)
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}

	for _, v := range multi.Vectors {
		sim, err := vsa.Cosine(first, v)
		require.NoError(t, err)
		assert.Greater(t, sim, 0.3)
	}
}

func TestBuildBundle_DimensionMismatch(t *testing.T) {
	_, _, err := BuildBundle(map[int]*vsa.SparseVec{0: vsa.Zero(8), 1: vsa.Zero(16)})
	var dm *vsa.ErrDimensionMismatch
	assert.ErrorAs(t, err, &dm)
}
