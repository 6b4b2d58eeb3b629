package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/message"
)

func openTestDataStore(t *testing.T) *DataStore {
	t.Helper()
	d, err := OpenDataInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDataRoundTrip(t *testing.T) {
	d := openTestDataStore(t)
	ctx := context.Background()

	payload := []byte(`{"body":"hello"}`)
	cid := message.DataCID(payload)

	require.NoError(t, d.PutData(ctx, "did:example:tenant", cid, payload))

	got, err := d.GetData(ctx, "did:example:tenant", cid)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDataTenantScoped(t *testing.T) {
	d := openTestDataStore(t)
	ctx := context.Background()

	payload := []byte("blob")
	cid := message.DataCID(payload)
	require.NoError(t, d.PutData(ctx, "did:example:a", cid, payload))

	_, err := d.GetData(ctx, "did:example:b", cid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDataDeleteIdempotent(t *testing.T) {
	d := openTestDataStore(t)
	ctx := context.Background()

	payload := []byte("blob")
	cid := message.DataCID(payload)
	require.NoError(t, d.PutData(ctx, "did:example:tenant", cid, payload))

	require.NoError(t, d.DeleteData(ctx, "did:example:tenant", cid))
	require.NoError(t, d.DeleteData(ctx, "did:example:tenant", cid))

	_, err := d.GetData(ctx, "did:example:tenant", cid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenDataPersistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	d, err := OpenData(dir)
	require.NoError(t, err)

	payload := []byte("durable blob")
	cid := message.DataCID(payload)
	require.NoError(t, d.PutData(ctx, "did:example:tenant", cid, payload))
	require.NoError(t, d.Close())

	d, err = OpenData(dir)
	require.NoError(t, err)
	defer d.Close()

	got, err := d.GetData(ctx, "did:example:tenant", cid)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}
