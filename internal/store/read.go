package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetMessage for an absent content identifier.
var ErrNotFound = errors.New("message not found")

const entryColumns = `tenant, cid, interface, method, record_id, message_timestamp, message, idx`

// GetMessage retrieves a single message by content identifier.
func (s *Store) GetMessage(ctx context.Context, tenant, cid string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM messages
		WHERE tenant = ? AND cid = ?
	`, tenant, cid)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, cid)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get message: %w", err)
	}
	return e, nil
}

// QueryRecord returns every message sharing a record identifier, scoped to
// the tenant and the Records interface.
//
// Ordering is deterministic and matches the conflict-resolution order:
// message_timestamp ASC, then cid ASC COLLATE BINARY. Returns an empty
// slice (not nil) when the record never existed.
func (s *Store) QueryRecord(ctx context.Context, tenant, recordID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM messages
		WHERE tenant = ? AND record_id = ? AND interface = 'Records'
		ORDER BY message_timestamp ASC, cid COLLATE BINARY ASC
	`, tenant, recordID)
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("query record: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query record: iterate: %w", err)
	}
	return entries, nil
}
