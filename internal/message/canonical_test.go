package message

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"empty string", "", `""`},
		{"int", 42, "42"},
		{"negative int", int64(-100), "-100"},
		{"number", json.Number("42"), "42"},
		{"large number", json.Number("9223372036854775807"), "9223372036854775807"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"array", []any{json.Number("1"), "a", true}, `[1,"a",true]`},
		{"simple object", map[string]any{"a": json.Number("1")}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := map[string]any{
		"zebra": json.Number("1"),
		"alpha": json.Number("2"),
		"beta":  json.Number("3"),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000 - UTF-16 order differs from UTF-8.
	obj := map[string]any{
		"\uE000": json.Number("1"), // UTF-16: 0xE000
		"𐀀":      json.Number("2"), // UTF-16: 0xD800, 0xDC00 (surrogate pair)
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)

	// UTF-16 order: 0xD800 < 0xE000, so the surrogate pair comes first
	expected := `{"𐀀":2,"` + "\uE000" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	result, err := MarshalCanonical("<a> & </a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a> & </a>"`, string(result))
}

func TestMarshalCanonicalSeparatorsUnescaped(t *testing.T) {
	result, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))
}

func TestMarshalCanonicalEscapedBackslashSurvives(t *testing.T) {
	// A literal backslash followed by the text "u2028" must stay escaped,
	// never be collapsed into the separator character.
	result, err := MarshalCanonical(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	composed := "é"        // U+00E9
	decomposed := "é" // U+0065 U+0301

	a, err := MarshalCanonical(composed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)

	assert.Equal(t, string(a), string(b), "NFC normalization must unify equivalent strings")
}

func TestMarshalCanonicalRejections(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"null", nil},
		{"float64", 3.14},
		{"float32", float32(1.5)},
		{"number with fraction", json.Number("1.5")},
		{"number with exponent", json.Number("1e3")},
		{"number beyond int64", json.Number("9223372036854775808")},
		{"unsupported type", struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestCanonicalBytesIgnoresInputFormatting(t *testing.T) {
	a, err := CanonicalBytes([]byte(`{"b": 2, "a": 1}`))
	require.NoError(t, err)
	b, err := CanonicalBytes([]byte("{\n  \"a\": 1,\n  \"b\": 2\n}"))
	require.NoError(t, err)

	assert.Equal(t, `{"a":1,"b":2}`, string(a))
	assert.Equal(t, string(a), string(b))
}

func TestCanonicalBytesRejectsNull(t *testing.T) {
	_, err := CanonicalBytes([]byte(`{"a": null}`))
	assert.Error(t, err, "absent fields must be omitted, never null")
}
