package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMessageFile(t *testing.T, dir, name, method, recordID, timestamp string) string {
	t.Helper()
	raw := fmt.Sprintf(`{
		"descriptor": {
			"interface": "Records",
			"method": %q,
			"recordId": %q,
			"messageTimestamp": %q
		},
		"authorization": {
			"author": "did:example:alice",
			"signature": "sig"
		}
	}`, method, recordID, timestamp)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))
	return path
}

func execRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestWriteDeleteStatusFlow(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "node.db")
	tenant := "did:example:tenant"

	// Initial write establishes the record.
	w1 := writeMessageFile(t, dir, "w1.json", "Write", "r1", "2024-01-01T00:00:01Z")
	out, err := execRoot(t, "--format", "json", "write", w1, "--db", dbPath, "--tenant", tenant)
	require.NoError(t, err, out)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	// Status shows one current message.
	out, err = execRoot(t, "status", "r1", "--db", dbPath, "--tenant", tenant)
	require.NoError(t, err)
	assert.Contains(t, out, "1 messages")
	assert.Contains(t, out, "*")

	// Delete tombstones it; the initial write is retained.
	d1 := writeMessageFile(t, dir, "d1.json", "Delete", "r1", "2024-01-01T00:00:02Z")
	out, err = execRoot(t, "--format", "json", "delete", d1, "--db", dbPath, "--tenant", tenant)
	require.NoError(t, err, out)

	out, err = execRoot(t, "status", "r1", "--db", dbPath, "--tenant", tenant)
	require.NoError(t, err)
	assert.Contains(t, out, "2 messages")
	assert.Contains(t, out, "no current message")
}

func TestDeleteNonexistentRecordFails(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "node.db")

	d1 := writeMessageFile(t, dir, "d1.json", "Delete", "ghost", "2024-01-01T00:00:01Z")
	out, err := execRoot(t, "delete", d1, "--db", dbPath, "--tenant", "did:example:tenant")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "404")
}

func TestWriteConflictFails(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "node.db")
	tenant := "did:example:tenant"

	w1 := writeMessageFile(t, dir, "w1.json", "Write", "r1", "2024-01-01T00:00:05Z")
	_, err := execRoot(t, "write", w1, "--db", dbPath, "--tenant", tenant)
	require.NoError(t, err)

	older := writeMessageFile(t, dir, "w0.json", "Write", "r1", "2024-01-01T00:00:01Z")
	out, err := execRoot(t, "write", older, "--db", dbPath, "--tenant", tenant)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "409")
}

func TestWriteMissingMessageFile(t *testing.T) {
	_, err := execRoot(t, "write", "/nonexistent/msg.json",
		"--db", filepath.Join(t.TempDir(), "x.db"), "--tenant", "did:example:t")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
