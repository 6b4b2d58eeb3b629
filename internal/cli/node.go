package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/roach88/tessera/internal/auth"
	"github.com/roach88/tessera/internal/records"
	"github.com/roach88/tessera/internal/store"
)

// node bundles the opened stores and a wired processor for one command
// invocation.
type node struct {
	msgs *store.Store
	data *store.DataStore
	proc *records.Processor
}

// openNode opens the message store at dbPath and the data store at dataDir.
// An empty dataDir defaults to dbPath + "-data".
func openNode(dbPath, dataDir string, verbose bool) (*node, error) {
	if dataDir == "" {
		dataDir = dbPath + "-data"
	}

	msgs, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open message store", err)
	}
	data, err := store.OpenData(dataDir)
	if err != nil {
		msgs.Close()
		return nil, WrapExitError(ExitCommandError, "open data store", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	proc := records.NewProcessor(msgs, data, msgs, &auth.EnvelopeAuthenticator{}, logger)
	return &node{msgs: msgs, data: data, proc: proc}, nil
}

func (n *node) close() {
	n.data.Close()
	n.msgs.Close()
}
