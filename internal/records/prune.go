package records

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/tessera/internal/message"
	"github.com/roach88/tessera/internal/store"
)

// PruneSupersededVersions is the storage controller: it removes every
// existing message of a record - message row, event log entry, and
// referenced data blob - except the record's initial write and the newly
// determined newest message.
//
// The initial write is retained UNCONDITIONALLY while any message for the
// record exists: it anchors authorization provenance for every descendant.
// Pruning is idempotent; removing an already-removed message is a no-op,
// so an interrupted prune can simply run again.
func PruneSupersededVersions(ctx context.Context, tenant string, existing []store.Entry, newestCID, initialCID string, msgs MessageStore, data DataStore, events EventLog) error {
	for i := range existing {
		e := &existing[i]
		if e.CID == newestCID || e.CID == initialCID {
			continue
		}

		if dataCID := writeDataCID(e); dataCID != "" {
			if err := data.DeleteData(ctx, tenant, dataCID); err != nil {
				return fmt.Errorf("prune %s: %w", e.CID, err)
			}
		}
		if err := events.DeleteEvent(ctx, tenant, e.CID); err != nil {
			return fmt.Errorf("prune %s: %w", e.CID, err)
		}
		if err := msgs.DeleteMessage(ctx, tenant, e.CID); err != nil {
			return fmt.Errorf("prune %s: %w", e.CID, err)
		}
	}
	return nil
}

// writeDataCID extracts the referenced data blob identifier from a stored
// write, or "" when the entry is not a write or carries no payload.
// Stored envelopes already passed shape validation, so a plain decode is
// enough here.
func writeDataCID(e *store.Entry) string {
	if e.Method != string(message.MethodWrite) {
		return ""
	}
	var w message.RecordsWrite
	if err := json.Unmarshal(e.Message, &w); err != nil {
		return ""
	}
	return w.Descriptor.DataCID
}
