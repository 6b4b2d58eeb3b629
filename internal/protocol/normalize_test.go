package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"already normalized", "https://example.com/chat", "https://example.com/chat"},
		{"missing scheme", "example.com/chat", "https://example.com/chat"},
		{"uppercase scheme", "HTTPS://example.com/chat", "https://example.com/chat"},
		{"uppercase host", "https://EXAMPLE.COM/chat", "https://example.com/chat"},
		{"trailing slash", "https://example.com/chat/", "https://example.com/chat"},
		{"bare host trailing slash", "https://example.com/", "https://example.com"},
		{"everything at once", "EXAMPLE.com/Chat/", "https://example.com/Chat"},
		{"path case preserved", "https://example.com/Chat", "https://example.com/Chat"},
		{"non-https scheme kept", "ftp://example.com/files", "ftp://example.com/files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURI(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizeURIIdempotent(t *testing.T) {
	inputs := []string{
		"example.com/chat/",
		"HTTPS://EXAMPLE.COM/a/b/",
		"https://example.com",
	}

	for _, in := range inputs {
		once, err := NormalizeURI(in)
		require.NoError(t, err)
		twice, err := NormalizeURI(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "normalizing %q twice must be a no-op", in)
	}
}

func TestNormalizeURIRejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no host", "https:///path"},
		{"unparseable", "https://exa mple.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeURI(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestNormalizeDefinition(t *testing.T) {
	def := &Definition{
		Protocol: "Example.com/chat/",
		Types: map[string]TypeDef{
			"message": {Schema: "EXAMPLE.com/schemas/message/"},
			"thread":  {},
		},
	}

	require.NoError(t, NormalizeDefinition(def))

	assert.Equal(t, "https://example.com/chat", def.Protocol)
	assert.Equal(t, "https://example.com/schemas/message", def.Types["message"].Schema)
	assert.Empty(t, def.Types["thread"].Schema, "absent schema stays absent")
}
