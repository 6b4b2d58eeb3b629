package message

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordID(t *testing.T) {
	id := NewRecordID()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err, "record identifiers are UUIDs in canonical string form")
	assert.Equal(t, uuid.Version(7), parsed.Version(), "create paths mint time-sortable UUIDv7 identifiers")

	assert.NotEqual(t, id, NewRecordID(), "successive identifiers are distinct")
}

func TestNowTimestamp(t *testing.T) {
	ts := NowTimestamp()

	parsed, err := ParseTimestamp(ts)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location(), "wire timestamps are always UTC")
}
