package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderKeyTimestampPrimary(t *testing.T) {
	older, err := NewOrderKey("2024-01-01T00:00:01Z", "ffff")
	require.NoError(t, err)
	newer, err := NewOrderKey("2024-01-01T00:00:02Z", "0000")
	require.NoError(t, err)

	assert.True(t, newer.After(older), "later timestamp wins regardless of identifier")
	assert.True(t, older.Before(newer))
	assert.Equal(t, 1, newer.Compare(older))
	assert.Equal(t, -1, older.Compare(newer))
}

func TestOrderKeyCIDTieBreak(t *testing.T) {
	a, err := NewOrderKey("2024-01-01T00:00:01Z", "0a1b")
	require.NoError(t, err)
	b, err := NewOrderKey("2024-01-01T00:00:01Z", "0a1c")
	require.NoError(t, err)

	assert.True(t, b.After(a), "equal timestamps fall to byte-lexicographic identifier order")
	assert.True(t, a.Before(b))
}

func TestOrderKeyEquality(t *testing.T) {
	a, err := NewOrderKey("2024-01-01T00:00:01Z", "abcd")
	require.NoError(t, err)
	b, err := NewOrderKey("2024-01-01T00:00:01Z", "abcd")
	require.NoError(t, err)

	assert.Equal(t, 0, a.Compare(b))
	assert.False(t, a.After(b))
	assert.False(t, a.Before(b))
}

func TestOrderKeyEquivalentOffsets(t *testing.T) {
	// The same instant written with different UTC offsets must compare equal.
	utc, err := NewOrderKey("2024-01-01T12:00:00Z", "abcd")
	require.NoError(t, err)
	offset, err := NewOrderKey("2024-01-01T13:00:00+01:00", "abcd")
	require.NoError(t, err)

	assert.Equal(t, 0, utc.Compare(offset))
}

func TestNewOrderKeyRejectsBadTimestamp(t *testing.T) {
	_, err := NewOrderKey("yesterday", "abcd")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
