package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/index"
	"github.com/roach88/tessera/internal/store"
	"github.com/roach88/tessera/internal/testutil"
)

func putEntry(t *testing.T, s *store.Store, cid, method, timestamp, msg string) store.Entry {
	t.Helper()
	e := store.Entry{
		Tenant:           testTenant,
		CID:              cid,
		Interface:        "Records",
		Method:           method,
		RecordID:         "r1",
		MessageTimestamp: timestamp,
		Message:          []byte(msg),
		Index: index.Record{
			index.FieldRecordID:         "r1",
			index.FieldMessageTimestamp: timestamp,
		},
	}
	ctx := context.Background()
	require.NoError(t, s.PutMessage(ctx, e))
	require.NoError(t, s.Append(ctx, testTenant, cid, e.Index))
	return e
}

func TestPruneSupersededVersions(t *testing.T) {
	s := testutil.OpenStore(t)
	d := testutil.OpenDataStore(t)
	ctx := context.Background()

	require.NoError(t, d.PutData(ctx, testTenant, "data-mid", []byte("blob")))

	initial := putEntry(t, s, "cid-initial", "Write", "2024-01-01T00:00:01Z",
		`{"descriptor":{"interface":"Records","method":"Write","recordId":"r1","messageTimestamp":"2024-01-01T00:00:01Z"}}`)
	mid := putEntry(t, s, "cid-mid", "Write", "2024-01-01T00:00:02Z",
		`{"descriptor":{"interface":"Records","method":"Write","recordId":"r1","messageTimestamp":"2024-01-01T00:00:02Z","dataCid":"data-mid"}}`)
	newest := putEntry(t, s, "cid-newest", "Delete", "2024-01-01T00:00:03Z",
		`{"descriptor":{"interface":"Records","method":"Delete","recordId":"r1","messageTimestamp":"2024-01-01T00:00:03Z"}}`)

	existing := []store.Entry{initial, mid, newest}
	require.NoError(t, PruneSupersededVersions(ctx, testTenant, existing, newest.CID, initial.CID, s, d, s))

	entries, err := s.QueryRecord(ctx, testTenant, "r1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "cid-initial", entries[0].CID)
	assert.Equal(t, "cid-newest", entries[1].CID)

	_, err = d.GetData(ctx, testTenant, "data-mid")
	assert.ErrorIs(t, err, store.ErrNotFound, "pruned write's blob is removed")

	events, err := s.ReadEvents(ctx, testTenant)
	require.NoError(t, err)
	cids := make([]string, 0, len(events))
	for _, ev := range events {
		cids = append(cids, ev.CID)
	}
	assert.NotContains(t, cids, "cid-mid")
	assert.Contains(t, cids, "cid-initial")
	assert.Contains(t, cids, "cid-newest")
}

func TestPruneIdempotent(t *testing.T) {
	s := testutil.OpenStore(t)
	d := testutil.OpenDataStore(t)
	ctx := context.Background()

	initial := putEntry(t, s, "cid-initial", "Write", "2024-01-01T00:00:01Z",
		`{"descriptor":{"interface":"Records","method":"Write","recordId":"r1","messageTimestamp":"2024-01-01T00:00:01Z"}}`)
	mid := putEntry(t, s, "cid-mid", "Write", "2024-01-01T00:00:02Z",
		`{"descriptor":{"interface":"Records","method":"Write","recordId":"r1","messageTimestamp":"2024-01-01T00:00:02Z"}}`)
	newest := putEntry(t, s, "cid-newest", "Write", "2024-01-01T00:00:03Z",
		`{"descriptor":{"interface":"Records","method":"Write","recordId":"r1","messageTimestamp":"2024-01-01T00:00:03Z"}}`)

	existing := []store.Entry{initial, mid, newest}
	require.NoError(t, PruneSupersededVersions(ctx, testTenant, existing, newest.CID, initial.CID, s, d, s))
	// An interrupted prune simply runs again over the same snapshot.
	require.NoError(t, PruneSupersededVersions(ctx, testTenant, existing, newest.CID, initial.CID, s, d, s))

	entries, err := s.QueryRecord(ctx, testTenant, "r1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
