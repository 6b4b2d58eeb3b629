package store

import (
	"fmt"

	"github.com/roach88/tessera/internal/index"
)

// Entry is one stored message row.
// Message holds the canonical envelope JSON; Index holds the searchable
// index record derived from it.
type Entry struct {
	Tenant           string
	CID              string
	Interface        string
	Method           string
	RecordID         string
	MessageTimestamp string
	Message          []byte
	Index            index.Record
}

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEntry reads one message row.
// Column order: tenant, cid, interface, method, record_id,
// message_timestamp, message, idx.
func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var msg, idx string
	err := row.Scan(&e.Tenant, &e.CID, &e.Interface, &e.Method, &e.RecordID,
		&e.MessageTimestamp, &msg, &idx)
	if err != nil {
		return Entry{}, err
	}
	e.Message = []byte(msg)
	e.Index, err = index.Unmarshal([]byte(idx))
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", e.CID, err)
	}
	return e, nil
}
