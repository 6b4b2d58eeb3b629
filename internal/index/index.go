// Package index builds the flat, string-keyed records used for querying
// messages. Index records are derived data: they are recomputed whenever a
// message is (re)indexed and replaced wholesale, never mutated field by
// field.
package index

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/tessera/internal/message"
)

// Field names used in index records and query filters.
const (
	FieldInterface        = "interface"
	FieldMethod           = "method"
	FieldRecordID         = "recordId"
	FieldMessageTimestamp = "messageTimestamp"
	FieldAuthor           = "author"
	FieldContextID        = "contextId"
	FieldProtocol         = "protocol"
	FieldProtocolPath     = "protocolPath"
	FieldRecipient        = "recipient"
	FieldSchema           = "schema"
	FieldParentID         = "parentId"
	FieldDataFormat       = "dataFormat"
	FieldDateCreated      = "dateCreated"
	FieldPublished        = "published"

	// FieldIsCurrent marks the single current message of a record.
	// Structurally ABSENT on every delete index - that absence is the
	// tombstone mechanism (see ForDelete).
	FieldIsCurrent = "isCurrent"
)

// Record maps index field names to string values.
// Absent fields are omitted entirely - absence is meaningful and distinct
// from empty or "false", so equality filters behave predictably.
type Record map[string]string

// Marshal serializes the record to JSON for storage.
// Map keys sort deterministically under encoding/json.
func (r Record) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal index record: %w", err)
	}
	return data, nil
}

// Unmarshal parses a stored index record.
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal index record: %w", err)
	}
	return r, nil
}

// ForWrite builds the index record for an accepted RecordsWrite.
// A write is current at creation; the store flips isCurrent to false when a
// newer message supersedes it.
func ForWrite(w *message.RecordsWrite) Record {
	d := w.Descriptor
	r := Record{
		FieldInterface:        string(d.Interface),
		FieldMethod:           string(d.Method),
		FieldRecordID:         d.RecordID,
		FieldMessageTimestamp: d.MessageTimestamp,
		FieldAuthor:           w.Authorization.Author,
		FieldIsCurrent:        "true",
	}
	putIfPresent(r, FieldContextID, d.ContextID)
	putIfPresent(r, FieldProtocol, d.Protocol)
	putIfPresent(r, FieldProtocolPath, d.ProtocolPath)
	putIfPresent(r, FieldRecipient, d.Recipient)
	putIfPresent(r, FieldSchema, d.Schema)
	putIfPresent(r, FieldParentID, d.ParentID)
	putIfPresent(r, FieldDataFormat, d.DataFormat)
	putIfPresent(r, FieldDateCreated, d.DateCreated)
	if d.Published {
		r[FieldPublished] = "true"
	}
	return r
}

// ForDelete builds the tombstone index for an accepted RecordsDelete.
//
// The record combines the delete's own descriptor fields, the author from
// the delete's authorization, and the subset of the initial write's
// descriptor needed to cross-reference the delete in history and event
// queries.
//
// DELIBERATE OMISSION: isCurrent is never set. Currency-filtered queries
// require isCurrent to match "true", and the field is structurally absent
// (not "false") here, so no query can ever again surface the record as
// current. No separate deleted flag is needed.
func ForDelete(del *message.RecordsDelete, initial *message.RecordsWrite) Record {
	d := del.Descriptor
	r := Record{
		FieldInterface:        string(d.Interface),
		FieldMethod:           string(d.Method),
		FieldRecordID:         d.RecordID,
		FieldMessageTimestamp: d.MessageTimestamp,
		FieldAuthor:           del.Authorization.Author,
	}

	w := initial.Descriptor
	putIfPresent(r, FieldContextID, w.ContextID)
	putIfPresent(r, FieldProtocol, w.Protocol)
	putIfPresent(r, FieldProtocolPath, w.ProtocolPath)
	putIfPresent(r, FieldRecipient, w.Recipient)
	putIfPresent(r, FieldSchema, w.Schema)
	putIfPresent(r, FieldParentID, w.ParentID)
	putIfPresent(r, FieldDataFormat, w.DataFormat)
	putIfPresent(r, FieldDateCreated, w.DateCreated)
	return r
}

// putIfPresent inserts only fields known to be present.
// Absence must stay structural: no null or empty-string placeholders.
func putIfPresent(r Record, field, value string) {
	if value != "" {
		r[field] = value
	}
}
