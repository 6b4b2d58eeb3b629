package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tessera/internal/store"
)

// OpenStore opens a message store backed by a temp SQLite file.
// Closed automatically when the test ends.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "tessera.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// OpenDataStore opens an in-memory data store.
// Closed automatically when the test ends.
func OpenDataStore(t testing.TB) *store.DataStore {
	t.Helper()

	d, err := store.OpenDataInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}
