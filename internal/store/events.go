package store

import (
	"context"
	"fmt"

	"github.com/roach88/tessera/internal/index"
)

// Event is one event log entry.
type Event struct {
	Position int64
	Tenant   string
	CID      string
	Index    index.Record
}

// Append adds an event keyed by content identifier.
// ON CONFLICT DO NOTHING: appending the same (tenant, cid) twice is a
// no-op, so a retried delete does not duplicate history.
func (s *Store) Append(ctx context.Context, tenant, cid string, idx index.Record) error {
	idxJSON, err := idx.Marshal()
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (tenant, cid, idx)
		VALUES (?, ?, ?)
		ON CONFLICT(tenant, cid) DO NOTHING
	`, tenant, cid, string(idxJSON))
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event row. No-op for absent rows.
func (s *Store) DeleteEvent(ctx context.Context, tenant, cid string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM events WHERE tenant = ? AND cid = ?
	`, tenant, cid)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// ReadEvents returns a tenant's events in append order.
// Returns an empty slice (not nil) when no events exist.
func (s *Store) ReadEvents(ctx context.Context, tenant string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, tenant, cid, idx
		FROM events
		WHERE tenant = ?
		ORDER BY position ASC
	`, tenant)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		var idxJSON string
		if err := rows.Scan(&ev.Position, &ev.Tenant, &ev.CID, &idxJSON); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		ev.Index, err = index.Unmarshal([]byte(idxJSON))
		if err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: iterate: %w", err)
	}
	return events, nil
}
