package store

import (
	"context"
	"fmt"
)

// PutMessage inserts a message row.
// ON CONFLICT DO NOTHING for idempotency - re-putting the same content
// identifier is silently ignored, which makes retries after partial
// failures converge.
func (s *Store) PutMessage(ctx context.Context, e Entry) error {
	idxJSON, err := e.Index.Marshal()
	if err != nil {
		return fmt.Errorf("put message: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages
		(tenant, cid, interface, method, record_id, message_timestamp, message, idx)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant, cid) DO NOTHING
	`,
		e.Tenant, e.CID, e.Interface, e.Method, e.RecordID,
		e.MessageTimestamp, string(e.Message), string(idxJSON),
	)
	if err != nil {
		return fmt.Errorf("put message: %w", err)
	}
	return nil
}

// PutNewest inserts a message row and, in the same transaction, flips
// isCurrent to "false" on every other message of the record that carries
// the marker. Keeps the single-current-message invariant atomic: after the
// commit at most one row for the record satisfies isCurrent = "true" - and,
// when the new message is a delete (whose index never carries the marker),
// zero rows do.
func (s *Store) PutNewest(ctx context.Context, e Entry) error {
	idxJSON, err := e.Index.Marshal()
	if err != nil {
		return fmt.Errorf("put newest: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put newest: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages
		(tenant, cid, interface, method, record_id, message_timestamp, message, idx)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant, cid) DO NOTHING
	`,
		e.Tenant, e.CID, e.Interface, e.Method, e.RecordID,
		e.MessageTimestamp, string(e.Message), string(idxJSON),
	)
	if err != nil {
		return fmt.Errorf("put newest: insert: %w", err)
	}

	// Only rows that carry the marker are touched: a tombstone index stays
	// structurally free of isCurrent, it is never set to "false".
	_, err = tx.ExecContext(ctx, `
		UPDATE messages
		SET idx = json_set(idx, '$.isCurrent', 'false')
		WHERE tenant = ? AND record_id = ? AND cid != ?
		  AND json_extract(idx, '$.isCurrent') IS NOT NULL
	`, e.Tenant, e.RecordID, e.CID)
	if err != nil {
		return fmt.Errorf("put newest: supersede: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put newest: commit: %w", err)
	}
	return nil
}

// DeleteMessage removes a message row. Removing an absent row is a no-op,
// so pruning stays idempotent under retry.
func (s *Store) DeleteMessage(ctx context.Context, tenant, cid string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM messages WHERE tenant = ? AND cid = ?
	`, tenant, cid)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
